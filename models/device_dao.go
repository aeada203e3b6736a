package models

import (
	"time"

	"gorm.io/gorm"
)

// DeviceDAO 封装 Device 相关的数据库操作
type DeviceDAO struct {
	db *gorm.DB
}

// NewDeviceDAO 创建 DeviceDAO 实例
func NewDeviceDAO(db *gorm.DB) *DeviceDAO {
	return &DeviceDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *DeviceDAO) WithDB(db *gorm.DB) *DeviceDAO {
	if db == nil {
		return dao
	}
	return &DeviceDAO{db: db}
}

// Create 创建设备
func (dao *DeviceDAO) Create(d *Device) error {
	return dao.db.Create(d).Error
}

// FindByDeviceID 根据指纹哈希查找设备
func (dao *DeviceDAO) FindByDeviceID(deviceID string) (*Device, error) {
	var d Device
	if err := dao.db.Where("device_id = ?", deviceID).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateFields 更新设备字段
func (dao *DeviceDAO) UpdateFields(deviceID string, fields map[string]any) error {
	return dao.db.Model(&Device{}).Where("device_id = ?", deviceID).Updates(fields).Error
}

// TouchSession 刷新会话 ID 与最后活跃时间
func (dao *DeviceDAO) TouchSession(deviceID, sessionID string) error {
	now := time.Now()
	return dao.UpdateFields(deviceID, map[string]any{
		"session_id":     sessionID,
		"last_active_at": &now,
	})
}

// ListFlagged 列出有违规记录的设备（管理端用）
func (dao *DeviceDAO) ListFlagged() ([]Device, error) {
	var devices []Device
	err := dao.db.Where("violation_count > 0").
		Order("violation_count DESC").
		Find(&devices).Error
	return devices, err
}

// CountBanned 统计封禁设备数
func (dao *DeviceDAO) CountBanned() (int64, error) {
	var cnt int64
	err := dao.db.Model(&Device{}).Where("is_banned = ?", true).Count(&cnt).Error
	return cnt, err
}
