package models

import (
	"gorm.io/gorm"
)

// CommunityMessageDAO 封装 CommunityMessage 相关的数据库操作
type CommunityMessageDAO struct {
	db *gorm.DB
}

// NewCommunityMessageDAO 创建 CommunityMessageDAO 实例
func NewCommunityMessageDAO(db *gorm.DB) *CommunityMessageDAO {
	return &CommunityMessageDAO{db: db}
}

// Create 创建留言
func (dao *CommunityMessageDAO) Create(msg *CommunityMessage) error {
	return dao.db.Create(msg).Error
}

// FindByID 根据 ID 查找留言
func (dao *CommunityMessageDAO) FindByID(id uint64) (*CommunityMessage, error) {
	var msg CommunityMessage
	if err := dao.db.Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindRecent 获取最近 limit 条留言（返回按时间倒序，调用方负责翻转成正序）
func (dao *CommunityMessageDAO) FindRecent(limit int) ([]CommunityMessage, error) {
	var messages []CommunityMessage
	err := dao.db.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// Count 留言总数（对账轮询用）
func (dao *CommunityMessageDAO) Count() (int64, error) {
	var cnt int64
	err := dao.db.Model(&CommunityMessage{}).Count(&cnt).Error
	return cnt, err
}

// UpdateReactions 整体写回 reactions（读改写的写入半边）
func (dao *CommunityMessageDAO) UpdateReactions(id uint64, reactions []byte) error {
	return dao.db.Model(&CommunityMessage{}).Where("id = ?", id).
		Update("reactions", reactions).Error
}
