package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thinky-app/thinky-sdk/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminService 管理后台账号与总览
// 登录态是 Redis 里的随机 token（见 TokenService），不用 JWT。
type AdminService struct {
	*Service
	tokenService *TokenService

	loginTokenTTL time.Duration
}

func NewAdminService(s *Service) *AdminService {
	return &AdminService{
		Service:       s,
		tokenService:  NewTokenService(s.RDB),
		loginTokenTTL: defaultTokenTTL,
	}
}

// AdminDTO 管理员信息（对外）
type AdminDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// LoginResp 登录响应
type LoginResp struct {
	Token string   `json:"token"`
	Admin AdminDTO `json:"admin"`
}

// CreateAdmin 创建管理员账号（部署初始化用）
func (s *AdminService) CreateAdmin(username, password, email string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.Create(&models.AdminUser{
		Username: username,
		Password: string(hash),
		Email:    strings.ToLower(strings.TrimSpace(email)),
	}).Error
}

// Login 管理员登录：校验 bcrypt 密码，签发 Redis token。
func (s *AdminService) Login(ctx context.Context, username, password string) (*LoginResp, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	var admin models.AdminUser
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid username or password")
	}

	now := time.Now()
	_ = s.DB.Model(&models.AdminUser{}).Where("id = ?", admin.ID).
		Update("last_login_at", &now).Error

	resp := &LoginResp{Admin: AdminDTO{ID: admin.ID, Username: admin.Username, Email: admin.Email}}

	if s.RDB == nil {
		// 没配 Redis 也允许登录（无 token，仅开发环境）
		return resp, nil
	}
	token, err := s.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenService.StoreToken(ctx, token, admin.ID, s.loginTokenTTL); err != nil {
		return nil, err
	}
	resp.Token = token
	return resp, nil
}

// ModerationOverview 审核总览（管理端仪表盘）
type ModerationOverview struct {
	TotalDevices     int64 `json:"total_devices"`
	BannedDevices    int64 `json:"banned_devices"`
	FlaggedDevices   int64 `json:"flagged_devices"`
	CommunityMessage int64 `json:"community_messages"`
	DirectMessages   int64 `json:"direct_messages"`
}

// Overview 统计各表规模与封禁情况
func (s *AdminService) Overview() (*ModerationOverview, error) {
	var out ModerationOverview
	if err := s.DB.Model(&models.Device{}).Count(&out.TotalDevices).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Device{}).Where("is_banned = ?", true).Count(&out.BannedDevices).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Device{}).Where("violation_count > 0").Count(&out.FlaggedDevices).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.CommunityMessage{}).Count(&out.CommunityMessage).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.DirectMessage{}).Count(&out.DirectMessages).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
