package models

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// TestCommunityMessageBeforeCreate 测试 CommunityMessage.BeforeCreate 自动补空 reactions 对象
func TestCommunityMessageBeforeCreate(t *testing.T) {
	// 创建 mock DB
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open failed: %v", err)
	}

	// 测试用例 1: Reactions 为空时，自动写成 '{}' 而不是 NULL
	t.Run("EmptyReactionsBecomesObject", func(t *testing.T) {
		msg := &CommunityMessage{
			DeviceID: "dev-a",
			Username: "Tiger-Red",
			Message:  "hello community",
		}

		// Mock INSERT 操作
		mock.ExpectExec("INSERT INTO `tk_community_message`").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := db.Create(msg).Error
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if string(msg.Reactions) != "{}" {
			t.Errorf("Reactions should default to {}, got: %s", msg.Reactions)
		}
	})

	// 测试用例 2: 已有 Reactions 不被覆盖
	t.Run("ExistingReactionsPreserved", func(t *testing.T) {
		payload := `{"👍":["dev-b"]}`
		msg := &CommunityMessage{
			DeviceID:  "dev-a",
			Username:  "Tiger-Red",
			Message:   "hello again",
			Reactions: datatypes.JSON(payload),
		}

		mock.ExpectExec("INSERT INTO `tk_community_message`").
			WillReturnResult(sqlmock.NewResult(2, 1))

		err := db.Create(msg).Error
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if string(msg.Reactions) != payload {
			t.Errorf("Reactions should be preserved, got: %s", msg.Reactions)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sql expectations: %v", err)
	}
}
