package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thinky-app/thinky-sdk/models"
	"gorm.io/gorm"
)

// DeviceService 匿名设备身份
//
// 设计说明：device_id 是由浏览器特征拼接后哈希得到的“尽力而为”指纹，
// 同一浏览器环境下可稳定复算；它不是安全边界（清空全部本地存储即可换身份），
// 只用来做匿名社区的滥用归属。除数据库外还会把设备信息镜像到 Redis，
// 作为第二份冗余存储；Redis 不可用时静默降级。
type DeviceService struct {
	*Service
	deviceDao *models.DeviceDAO
}

func NewDeviceService(s *Service) *DeviceService {
	return &DeviceService{Service: s, deviceDao: models.NewDeviceDAO(s.DB)}
}

// FingerprintInput 客户端上报的指纹信号（与浏览器端采集项一一对应）
type FingerprintInput struct {
	UserAgent         string `json:"user_agent"`
	Language          string `json:"language"`
	ColorDepth        int    `json:"color_depth"`
	ScreenResolution  string `json:"screen_resolution"` // 如 "1920x1080"
	TimezoneOffset    int    `json:"timezone_offset"`   // 分钟
	HasLocalStorage   bool   `json:"has_local_storage"`
	HasSessionStorage bool   `json:"has_session_storage"`
	HasIndexedDB      bool   `json:"has_indexed_db"`
	CPUCount          int    `json:"cpu_count"`
	CanvasPrefix      string `json:"canvas_prefix"` // canvas dataURI 前缀（额外熵源）
}

// ComputeDeviceID 由指纹信号确定性地计算 device_id。
// 相同输入永远得到相同结果；这是“恢复身份”而不是“生成身份”。
func ComputeDeviceID(fp FingerprintInput) string {
	parts := []string{
		fp.UserAgent,
		fp.Language,
		strconv.Itoa(fp.ColorDepth),
		fp.ScreenResolution,
		strconv.Itoa(fp.TimezoneOffset),
		strconv.FormatBool(fp.HasLocalStorage),
		strconv.FormatBool(fp.HasSessionStorage),
		strconv.FormatBool(fp.HasIndexedDB),
		strconv.Itoa(fp.CPUCount),
		fp.CanvasPrefix,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:32]
}

// NewSessionID 生成每次建连的会话 ID：session_<毫秒时间戳>_<随机段>
func NewSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

// 匿名昵称词表（Animal-Color）。昵称一经生成即跟随设备，不再更换。
var (
	usernameAnimals = []string{
		"Tiger", "Panda", "Eagle", "Dolphin", "Fox", "Owl", "Koala", "Wolf",
		"Rabbit", "Falcon", "Otter", "Lynx", "Penguin", "Turtle", "Hawk", "Deer",
	}
	usernameColors = []string{
		"Red", "Blue", "Green", "Gold", "Silver", "Purple", "Orange", "Teal",
		"Crimson", "Violet", "Amber", "Coral", "Indigo", "Jade", "Pearl", "Slate",
	}
)

func randomPick(list []string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return list[0]
	}
	return list[n.Int64()]
}

// RandomUsername 生成一个 Animal-Color 匿名昵称
func RandomUsername() string {
	return randomPick(usernameAnimals) + "-" + randomPick(usernameColors)
}

// DeviceDTO 设备信息（对外）
type DeviceDTO struct {
	DeviceID       string `json:"device_id"`
	SessionID      string `json:"session_id"`
	Username       string `json:"username"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	IsAdmin        bool   `json:"is_admin"`
	ViolationCount int    `json:"violation_count"`
	IsBanned       bool   `json:"is_banned"`
}

func toDeviceDTO(d *models.Device) *DeviceDTO {
	if d == nil {
		return nil
	}
	return &DeviceDTO{
		DeviceID:       d.DeviceID,
		SessionID:      d.SessionID,
		Username:       d.Username,
		AvatarURL:      d.AvatarURL,
		IsAdmin:        d.IsAdmin,
		ViolationCount: d.ViolationCount,
		IsBanned:       d.IsBanned,
	}
}

// RegisterDevice 注册/恢复设备身份。
// 已存在的设备只刷新 session_id 和活跃时间，昵称/违规状态保持不变。
func (s *DeviceService) RegisterDevice(ctx context.Context, fp FingerprintInput) (*DeviceDTO, error) {
	if strings.TrimSpace(fp.UserAgent) == "" {
		return nil, fmt.Errorf("user_agent is required")
	}

	deviceID := ComputeDeviceID(fp)
	sessionID := NewSessionID()

	d, err := s.deviceDao.FindByDeviceID(deviceID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		now := time.Now()
		d = &models.Device{
			DeviceID:     deviceID,
			SessionID:    sessionID,
			Username:     RandomUsername(),
			LastActiveAt: &now,
		}
		if err := s.deviceDao.Create(d); err != nil {
			// 并发首访：两个 tab 同时注册时唯一索引兜底，重查即可
			if existing, findErr := s.deviceDao.FindByDeviceID(deviceID); findErr == nil {
				d = existing
			} else {
				return nil, err
			}
		}
	} else {
		if err := s.deviceDao.TouchSession(deviceID, sessionID); err != nil {
			return nil, err
		}
		d.SessionID = sessionID
	}

	s.mirrorDevice(ctx, d)
	return toDeviceDTO(d), nil
}

// GetDevice 按 device_id 获取设备
func (s *DeviceService) GetDevice(deviceID string) (*DeviceDTO, error) {
	d, err := s.deviceDao.FindByDeviceID(deviceID)
	if err != nil {
		return nil, err
	}
	return toDeviceDTO(d), nil
}

func (s *DeviceService) mirrorKey(deviceID string) string {
	return "tk:device:" + deviceID
}

// mirrorDevice 把设备概要镜像到 Redis（冗余第二存储）。失败静默忽略。
func (s *DeviceService) mirrorDevice(ctx context.Context, d *models.Device) {
	if s.RDB == nil || d == nil {
		return
	}
	_ = s.RDB.HSet(ctx, s.mirrorKey(d.DeviceID), map[string]any{
		"username":   d.Username,
		"session_id": d.SessionID,
		"is_admin":   strconv.FormatBool(d.IsAdmin),
	}).Err()
}

// CachedUsername 从 Redis 镜像里快速取昵称；未命中或 Redis 不可用时回源数据库。
func (s *DeviceService) CachedUsername(ctx context.Context, deviceID string) string {
	name, _ := s.CachedProfile(ctx, deviceID)
	return name
}

// CachedProfile 取昵称和管理员标记（心跳落库用）。
// is_admin 必须由服务端从设备行解析，绝不信任客户端上报。
// 优先 Redis 镜像，未命中或 Redis 不可用时回源数据库。
func (s *DeviceService) CachedProfile(ctx context.Context, deviceID string) (username string, isAdmin bool) {
	if s.RDB != nil {
		vals, err := s.RDB.HMGet(ctx, s.mirrorKey(deviceID), "username", "is_admin").Result()
		if err == nil && len(vals) == 2 {
			if name, ok := vals[0].(string); ok && name != "" {
				admin, _ := vals[1].(string)
				return name, admin == "true"
			}
		}
	}
	if d, err := s.deviceDao.FindByDeviceID(deviceID); err == nil {
		return d.Username, d.IsAdmin
	}
	return "", false
}
