package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestToggleReactionEntry(t *testing.T) {
	// 第一次点：加入
	r := toggleReactionEntry(nil, "👍", "dev-a")
	if len(r["👍"]) != 1 || r["👍"][0] != "dev-a" {
		t.Fatalf("expected [dev-a], got %v", r["👍"])
	}

	// 第二台设备同一表情：追加
	r = toggleReactionEntry(r, "👍", "dev-b")
	if len(r["👍"]) != 2 {
		t.Fatalf("expected 2 reactors, got %v", r["👍"])
	}

	// 再点一次：取消，另一台不受影响
	r = toggleReactionEntry(r, "👍", "dev-a")
	if len(r["👍"]) != 1 || r["👍"][0] != "dev-b" {
		t.Fatalf("expected [dev-b] after toggle off, got %v", r["👍"])
	}

	// 最后一个取消后整个键删除（不留空数组）
	r = toggleReactionEntry(r, "👍", "dev-b")
	if _, ok := r["👍"]; ok {
		t.Fatalf("expected emoji key removed, got %v", r)
	}

	// 双击等价于无操作
	r = toggleReactionEntry(r, "❤️", "dev-a")
	r = toggleReactionEntry(r, "❤️", "dev-a")
	if len(r) != 0 {
		t.Fatalf("expected empty map after double toggle, got %v", r)
	}
}

func TestCommunityService_PostMessage_StoresEscapedText(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := &Service{DB: gormDB, TablePrefix: "tk_"}
	cs := NewCommunityService(base, NewModerationService(base, 0, nil), nil)

	now := time.Now()
	deviceRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "device_id", "session_id", "username", "avatar_url",
			"is_admin", "violation_count", "is_banned", "last_active_at", "created_at", "updated_at",
		}).AddRow(uint64(1), "dev-a", "s1", "Tiger-Red", "", false, 0, false, nil, now, now)
	}
	// 发送方查一次，封禁重查再查一次
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("dev-a", 1).WillReturnRows(deviceRow())
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("dev-a", 1).WillReturnRows(deviceRow())

	// 入库的是转义后的文本，reactions 是空对象而不是 NULL
	escaped := "&lt;b&gt;hi &amp; &#34;you&#34;&lt;/b&gt;"
	mock.ExpectExec("INSERT INTO `tk_community_message`").
		WithArgs("dev-a", "Tiger-Red", escaped, "", false, false, "{}", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	dto, violation, err := cs.PostMessage("dev-a", `<b>hi & "you"</b>`)
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if violation != nil {
		t.Fatalf("unexpected violation: %+v", violation)
	}
	if dto == nil || dto.Message != escaped {
		t.Fatalf("expected escaped message in dto, got %+v", dto)
	}
	if dto.Username != "Tiger-Red" || dto.Reactions == nil || len(dto.Reactions) != 0 {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCommunityService_PostMessage_Validation(t *testing.T) {
	cs := NewCommunityService(&Service{TablePrefix: "tk_"},
		NewModerationService(&Service{TablePrefix: "tk_"}, 0, nil), nil)

	if _, _, err := cs.PostMessage("dev-a", "   "); err == nil {
		t.Fatalf("expected error for blank message")
	}

	long := make([]rune, maxCommunityMessageLen+1)
	for i := range long {
		long[i] = '字'
	}
	if _, _, err := cs.PostMessage("dev-a", string(long)); err == nil {
		t.Fatalf("expected error for overlong message")
	}
}
