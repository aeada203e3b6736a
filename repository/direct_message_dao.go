package repository

import (
	"github.com/thinky-app/thinky-sdk/models"
	"gorm.io/gorm"
)

// DirectMessageDAO 封装 DirectMessage 相关的数据库操作
//
// 约定：
// - 只做“数据访问”（CRUD/查询封装），不做业务编排（限流、在线校验等）。
// - 事务边界应由 service 控制；如需在事务中执行，请使用 WithDB(tx)。
type DirectMessageDAO struct {
	db *gorm.DB
}

func NewDirectMessageDAO(db *gorm.DB) *DirectMessageDAO {
	return &DirectMessageDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *DirectMessageDAO) WithDB(db *gorm.DB) *DirectMessageDAO {
	if db == nil {
		return dao
	}
	return &DirectMessageDAO{db: db}
}

// Create 写入一条私信（调用方需先通过受限发送路径的全部校验）
func (dao *DirectMessageDAO) Create(msg *models.DirectMessage) error {
	return dao.db.Create(msg).Error
}

// FindPair 按双向配对查询两台设备之间的历史消息。
// 返回按时间倒序的一页（最新页），调用方负责翻转成正序渲染。
func (dao *DirectMessageDAO) FindPair(a, b string, limit, offset int) ([]models.DirectMessage, error) {
	var messages []models.DirectMessage
	err := dao.db.
		Where("(from_device_id = ? AND to_device_id = ?) OR (from_device_id = ? AND to_device_id = ?)", a, b, b, a).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

// MarkRead 把 peer -> owner 方向的未读消息全部置为已读
func (dao *DirectMessageDAO) MarkRead(owner, peer string) error {
	return dao.db.Model(&models.DirectMessage{}).
		Where("from_device_id = ? AND to_device_id = ? AND is_read = ?", peer, owner, false).
		Update("is_read", true).Error
}

// UnreadCountRow 未读数统计行
type UnreadCountRow struct {
	FromDeviceID string `json:"from_device_id"`
	Count        int64  `json:"count"`
}

// UnreadCounts 按发送方分组统计 owner 的未读私信
func (dao *DirectMessageDAO) UnreadCounts(owner string) ([]UnreadCountRow, error) {
	var rows []UnreadCountRow
	err := dao.db.Model(&models.DirectMessage{}).
		Select("from_device_id, COUNT(*) AS count").
		Where("to_device_id = ? AND is_read = ?", owner, false).
		Group("from_device_id").
		Scan(&rows).Error
	return rows, err
}
