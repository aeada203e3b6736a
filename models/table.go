package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "tk_"
)

// Device 匿名设备表
// device_id 是客户端浏览器特征的指纹哈希，同一浏览器环境下稳定不变；
// 不是登录凭证，只用于匿名社区的身份/封禁归属。
type Device struct {
	ID             uint64     `gorm:"primarykey"`
	DeviceID       string     `gorm:"size:64;uniqueIndex;not null"` // 指纹哈希（hex）
	SessionID      string     `gorm:"size:64;index"`                // 当前会话 ID（每次建连刷新）
	Username       string     `gorm:"size:50;not null"`             // 匿名昵称 Animal-Color
	AvatarURL      string     `gorm:"size:500"`                     // 头像
	IsAdmin        bool       `gorm:"default:false"`                // 是否管理员设备
	ViolationCount int        `gorm:"default:0"`                    // 违规次数（只增不减）
	IsBanned       bool       `gorm:"default:false;index"`          // 是否封禁（达到阈值后置位）
	LastActiveAt   *time.Time // 最后活跃时间
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Device) TableName() string {
	return prefix + "device"
}

// Presence 在线心跳表
// 每设备一行（device_id 唯一），心跳只做 upsert；是否在线永远按
// last_seen 的新鲜度窗口判断，而不是按行是否存在（页面卸载删除只是尽力而为）。
type Presence struct {
	ID          uint64    `gorm:"primarykey"`
	DeviceID    string    `gorm:"size:64;uniqueIndex;not null"`
	DeviceName  string    `gorm:"size:100"` // 设备名（客户端上报）
	Browser     string    `gorm:"size:50"`
	OS          string    `gorm:"size:50"`
	Username    string    `gorm:"size:50"`
	CurrentPage string    `gorm:"size:100"` // 当前页面（通知抑制用）
	IsAdmin     bool      `gorm:"default:false"`
	LastSeen    time.Time `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Presence) TableName() string {
	return prefix + "presence"
}

// CommunityMessage 社区公共留言表
// 内容入库前做 HTML 转义；除 reactions 外追加写入、不修改。
// reactions: emoji -> [device_id...]，整体读改写（已知 last-write-wins 竞态，见 service 层说明）。
type CommunityMessage struct {
	ID         uint64         `gorm:"primarykey"`
	DeviceID   string         `gorm:"size:64;index;not null"` // 发送设备
	Username   string         `gorm:"size:50;not null"`
	Message    string         `gorm:"size:1000;not null"` // 已转义内容
	AvatarURL  string         `gorm:"size:500"`
	IsAdmin    bool           `gorm:"default:false"`
	MentionAll bool           `gorm:"default:false"` // 管理员广播 @all
	Reactions  datatypes.JSON `gorm:"type:json"`
	CreatedAt  time.Time      `gorm:"index"`
}

func (CommunityMessage) TableName() string {
	return prefix + "community_message"
}

// BeforeCreate 保证 reactions 永远是合法 JSON 对象（空对象而不是 NULL）
func (m *CommunityMessage) BeforeCreate(tx *gorm.DB) error {
	if len(m.Reactions) == 0 {
		m.Reactions = datatypes.JSON([]byte("{}"))
	}
	return nil
}

// DirectMessage 设备间私信表
// 只能通过 service 的受限发送路径写入（限流 + 对方在线 + 未封禁）；
// 入库后除 is_read 外不可变。
type DirectMessage struct {
	ID           uint64    `gorm:"primarykey"`
	FromDeviceID string    `gorm:"size:64;index:idx_dm_pair,priority:1;not null"`
	ToDeviceID   string    `gorm:"size:64;index:idx_dm_pair,priority:2;not null"`
	Message      string    `gorm:"size:2000;not null"`
	IsRead       bool      `gorm:"default:false;index"`
	CreatedAt    time.Time `gorm:"index"`
}

func (DirectMessage) TableName() string {
	return prefix + "direct_message"
}

// AdminUser 管理后台账号（bcrypt 密码 + Redis token 登录态）
type AdminUser struct {
	ID          uint64 `gorm:"primarykey"`
	Username    string `gorm:"size:50;uniqueIndex;not null"`
	Password    string `gorm:"size:255;not null"` // bcrypt hash
	Email       string `gorm:"size:100;uniqueIndex;default:null"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AdminUser) TableName() string {
	return prefix + "admin_user"
}

// 题目类型
const (
	QuestionTypeMultipleChoice = 1 // 选择题：correct_answer 为选项下标（可能以数字字符串存储）
	QuestionTypeText           = 2 // 填空/简答题
)

// Reviewer 复习卷（题目容器）
type Reviewer struct {
	ID          uint64 `gorm:"primarykey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"size:1000"`
	SubjectID   uint64 `gorm:"index"` // 所属科目（后台 CRUD，不在本 SDK 范围）
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	// 关联关系
	Questions []ReviewerQuestion `gorm:"foreignKey:ReviewerID"`
}

func (Reviewer) TableName() string {
	return prefix + "reviewer"
}

// ReviewerQuestion 复习卷题目
// options 是历史数据遗留的“任意形态” JSON（字符串/数组/对象/标量都有），
// 读取时统一走 service.NormalizeOptions 归一化，渲染层不直接碰原始值。
type ReviewerQuestion struct {
	ID            uint64         `gorm:"primarykey"`
	ReviewerID    uint64         `gorm:"index;not null"`
	Position      int            `gorm:"default:0"` // 题号（0 起）
	Type          uint8          `gorm:"type:tinyint;default:1"`
	Question      string         `gorm:"size:1000;not null"`
	Options       datatypes.JSON `gorm:"type:json"`
	CorrectAnswer string         `gorm:"size:255"` // 不允许出现在任何对外响应里
	Points        int            `gorm:"default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ReviewerQuestion) TableName() string {
	return prefix + "reviewer_question"
}
