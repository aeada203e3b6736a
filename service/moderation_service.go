package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thinky-app/thinky-sdk/models"
	"gorm.io/gorm"
)

// DefaultBanThreshold 累计违规达到该次数即封禁
const DefaultBanThreshold = 5

// ErrBanned 设备已封禁（终态；只有管理员手动解封能恢复）
var ErrBanned = errors.New("device is banned")

// blockedTerms 静态屏蔽词表。
// 刻意使用大小写不敏感的子串匹配：不做词干化/模糊匹配，宁可误伤不可漏网。
// 按类别分组维护，包含常见的变体拼写。
var blockedTerms = []string{
	// 脏话/人身攻击
	"fuck", "shit", "bitch", "asshole", "bastard", "dumbass", "retard",
	"kill yourself", "kys", "go die", "end yourself", "nobody likes you",
	// 仇恨言论
	"nigger", "faggot", "tranny", "chink", "spic", "white power",
	// 色情内容
	"porn", "nudes", "send pics", "onlyfans", "hentai", "xxx video",
	// 暴力
	"i will kill", "shoot up", "bomb the", "stab you", "beat you up",
	// 毒品
	"buy weed", "sell drugs", "cocaine", "meth for sale", "lsd tabs",
	// 诈骗/垃圾广告
	"free money", "click this link", "wire transfer now", "claim your prize",
	"gift card giveaway", "double your money", "crypto investment guaranteed",
	"earn $", "work from home scam",
	// 钓鱼/隐私套取
	"send your password", "verify your account here", "what is your address",
	"give me your number", "send me your location",
	// 人肉/曝光
	"dox", "leak your address", "expose your info",
	// 变体拼写（绕过过滤用）
	"fvck", "f*ck", "sh1t", "b1tch", "a55hole", "pr0n", "n1gger",
	// 平台垃圾
	"follow for follow", "sub4sub", "check my channel", "join my discord server free",
}

// ModerationService 审核闸门
// 状态机：CLEAN（无违规）→ WARNED（1 ~ 阈值-1 次）→ BANNED（终态）。
// violation_count 只增不减；is_banned 置位后客户端不得再回退。
type ModerationService struct {
	*Service
	deviceDao *models.DeviceDAO

	threshold  int
	extraTerms []string // 配置追加的屏蔽词
}

func NewModerationService(s *Service, threshold int, extraTerms []string) *ModerationService {
	if threshold <= 0 {
		threshold = DefaultBanThreshold
	}
	lowered := make([]string, 0, len(extraTerms))
	for _, t := range extraTerms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lowered = append(lowered, t)
		}
	}
	return &ModerationService{
		Service:    s,
		deviceDao:  models.NewDeviceDAO(s.DB),
		threshold:  threshold,
		extraTerms: lowered,
	}
}

// Threshold 当前封禁阈值
func (s *ModerationService) Threshold() int {
	return s.threshold
}

// ScanForViolation 屏蔽词扫描：命中任意词即违规。
func (s *ModerationService) ScanForViolation(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range blockedTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	for _, term := range s.extraTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// ViolationResult 违规计数后的权威状态
type ViolationResult struct {
	NewCount    int  `json:"new_count"`
	IsNowBanned bool `json:"is_now_banned"`
	Remaining   int  `json:"remaining"` // 距封禁剩余次数（已封禁为 0）
}

// RecordViolation 记一次违规并返回计数后的权威状态。
// 计数必须是服务端原子自增（不能读后写），否则多 tab 并发会少计；
// SET 子句从左到右生效：先 +1，再用新值判断是否达到阈值。
func (s *ModerationService) RecordViolation(deviceID string, username string) (*ViolationResult, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}

	table := s.TablePrefix + "device"
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(fmt.Sprintf(
			"UPDATE `%s` SET `violation_count` = `violation_count` + 1, `is_banned` = `is_banned` OR `violation_count` >= ? WHERE `device_id` = ?",
			table,
		), s.threshold, deviceID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 设备行还不存在（极少见：指纹注册失败后直接发言），补一行从 1 计起
			return tx.Create(&models.Device{
				DeviceID:       deviceID,
				Username:       username,
				ViolationCount: 1,
				IsBanned:       s.threshold <= 1,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d, err := s.deviceDao.FindByDeviceID(deviceID)
	if err != nil {
		return nil, err
	}
	remaining := s.threshold - d.ViolationCount
	if d.IsBanned || remaining < 0 {
		remaining = 0
	}
	return &ViolationResult{
		NewCount:    d.ViolationCount,
		IsNowBanned: d.IsBanned,
		Remaining:   remaining,
	}, nil
}

// EnsureNotBanned 每次发送前的鲜活封禁校验。
// 必须查库而不是用内存缓存：封禁可能刚刚由另一个 tab/设备会话触发。
func (s *ModerationService) EnsureNotBanned(deviceID string) error {
	d, err := s.deviceDao.FindByDeviceID(deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // 未注册设备视为干净，注册在发送路径里兜底
		}
		return err
	}
	if d.IsBanned {
		return ErrBanned
	}
	return nil
}

// Unban 管理员手动解封：清封禁位并把计数归零（唯一的逆向通道）。
func (s *ModerationService) Unban(deviceID string) error {
	return s.deviceDao.UpdateFields(deviceID, map[string]any{
		"is_banned":       false,
		"violation_count": 0,
	})
}

// ListFlagged 管理端：列出所有有违规记录的设备
func (s *ModerationService) ListFlagged() ([]models.Device, error) {
	return s.deviceDao.ListFlagged()
}
