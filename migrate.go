package thinky_sdk

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// MigrateReactionsToJSON 迁移 community_message 表的 reactions 字段从 TEXT 到 JSON
// 这个函数用于修复早期版本把回应集合存成 TEXT 导致的 schema 不匹配问题
// 迁移会原地保留数据，无法解析为 JSON 的旧值会被重置为 '{}'
func (c *ThinkyEngine) MigrateReactionsToJSON() error {
	db := c.config.DB
	tableName := c.config.TablePrefix + "community_message" // 使用配置的表前缀

	log.Printf("开始迁移 %s 表的 reactions 字段...", tableName)

	// 检查表是否存在
	if !db.Migrator().HasTable(tableName) {
		log.Printf("表 %s 不存在，跳过迁移", tableName)
		return nil
	}

	// 检查 reactions 列的类型
	columnType, err := db.Migrator().ColumnTypes(tableName)
	if err != nil {
		return fmt.Errorf("获取列类型失败: %v", err)
	}

	var needsMigration bool
	for _, col := range columnType {
		if col.Name() == "reactions" {
			dbType := col.DatabaseTypeName()
			if dbType == "TEXT" || dbType == "VARCHAR" || dbType == "LONGTEXT" {
				needsMigration = true
				log.Printf("检测到 reactions 列类型为 %s，需要迁移到 JSON", dbType)
			} else {
				log.Printf("reactions 列类型为 %s，无需迁移", dbType)
			}
			break
		}
	}

	if !needsMigration {
		log.Println("reactions 列类型正确，无需迁移")
		return nil
	}

	// 开始事务迁移
	return db.Transaction(func(tx *gorm.DB) error {
		// 验证表名格式（只允许字母、数字和下划线）
		if !isValidTableName(tableName) {
			return fmt.Errorf("invalid table name: %s", tableName)
		}

		// 1. 把解析不了的旧值重置为空对象，否则类型转换会失败
		log.Println("步骤 1: 清洗非法 JSON 值...")
		if err := tx.Exec(fmt.Sprintf(
			"UPDATE `%s` SET `reactions` = '{}' WHERE `reactions` IS NULL OR `reactions` = '' OR JSON_VALID(`reactions`) = 0",
			tableName,
		)).Error; err != nil {
			return fmt.Errorf("清洗旧值失败: %v", err)
		}

		// 2. 修改列类型
		log.Println("步骤 2: 修改 reactions 列类型...")
		// MySQL/MariaDB
		if err := tx.Exec(fmt.Sprintf(
			"ALTER TABLE `%s` MODIFY COLUMN `reactions` JSON",
			tableName,
		)).Error; err != nil {
			return fmt.Errorf("修改列类型失败: %v", err)
		}

		log.Println("迁移完成！")
		return nil
	})
}

// isValidTableName 验证表名格式，防止 SQL 注入
func isValidTableName(name string) bool {
	// 只允许字母、数字和下划线
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return len(name) > 0 && len(name) < 64 // MySQL 表名最大 64 字符
}
