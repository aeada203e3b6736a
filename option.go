package thinky_sdk

import "gorm.io/gorm"
import "github.com/go-redis/redis/v8"
import "time"

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	Service     ServiceConfig

	// Moderation 审核闸门配置
	Moderation ModerationConfig

	// DirectMessage 私信发送路径配置
	DirectMessage DirectMessageConfig

	// Notify 弹窗通知配置
	Notify NotifyConfig
}

// ModerationConfig 审核闸门配置。
// BanThreshold 为 0 时使用默认阈值（5 次违规封禁）。
type ModerationConfig struct {
	BanThreshold int
	// ExtraTerms 在内置屏蔽词表之外追加的词（部署方自定义）
	ExtraTerms []string
}

// DirectMessageConfig 私信配置。
// RatePerMinute 为 0 时默认每分钟 10 条；
// RecipientWindow 为 0 时默认 15s（收件方必须在该窗口内有过心跳）。
type DirectMessageConfig struct {
	RatePerMinute   int
	RecipientWindow time.Duration
}

// NotifyConfig 弹窗通知配置。
// MaxVisible 为 0 时默认同屏 3 条；AutoDismiss 为 0 时默认 5s 自动收起。
type NotifyConfig struct {
	MaxVisible  int
	AutoDismiss time.Duration
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}

// WithModerationConfig 配置审核闸门（阈值/追加屏蔽词）。
func WithModerationConfig(cfg ModerationConfig) Option {
	return func(c *Config) {
		c.Moderation = cfg
	}
}

// WithDirectMessageConfig 配置私信限流与收件方在线窗口。
func WithDirectMessageConfig(cfg DirectMessageConfig) Option {
	return func(c *Config) {
		c.DirectMessage = cfg
	}
}

// WithNotifyConfig 配置弹窗通知队列。
func WithNotifyConfig(cfg NotifyConfig) Option {
	return func(c *Config) {
		c.Notify = cfg
	}
}
