package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

var deviceCols = []string{
	"id", "device_id", "session_id", "username", "avatar_url",
	"is_admin", "violation_count", "is_banned", "last_active_at", "created_at", "updated_at",
}

func TestScreenSuspicious(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"hey, want to study together?", false},
		{"<script>alert(1)</script>", true},
		{"<SCRIPT>alert(1)</SCRIPT>", true}, // 大小写不敏感
		{"click javascript:void(0)", true},
		{"<img src=x onerror=alert(1)>", true},
		{"1' OR '1'='1", true},
		{"SELECT your favorite topic", false}, // 单独的 select 不算
		{"we should union select the best answers", true},
		{"", false},
	}
	for _, c := range cases {
		if got := screenSuspicious(c.text); got != c.want {
			t.Errorf("screenSuspicious(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestDirectMessageService_AllowSend(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	base := &Service{RDB: rdb, TablePrefix: "tk_"}
	dms := NewDirectMessageService(base, NewModerationService(base, 0, nil), NewPresenceService(base), 10, 0)
	ctx := context.Background()

	// 前 10 条放行
	for i := 0; i < 10; i++ {
		ok, err := dms.allowSend(ctx, "dev-a")
		if err != nil {
			t.Fatalf("allowSend %d err: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("message %d should be allowed", i+1)
		}
	}

	// 第 11 条拒绝
	ok, err := dms.allowSend(ctx, "dev-a")
	if err != nil {
		t.Fatalf("allowSend 11 err: %v", err)
	}
	if ok {
		t.Fatalf("11th message should be rate limited")
	}

	// 其他设备不受影响
	ok, err = dms.allowSend(ctx, "dev-b")
	if err != nil {
		t.Fatalf("allowSend other err: %v", err)
	}
	if !ok {
		t.Fatalf("other device should not be limited")
	}

	// 窗口过期后恢复
	mr.FastForward(61 * time.Second)
	ok, err = dms.allowSend(ctx, "dev-a")
	if err != nil {
		t.Fatalf("allowSend after window err: %v", err)
	}
	if !ok {
		t.Fatalf("expected limit reset after window")
	}
}

func TestDirectMessageService_AllowSend_NoRedis(t *testing.T) {
	base := &Service{TablePrefix: "tk_"}
	dms := NewDirectMessageService(base, NewModerationService(base, 0, nil), NewPresenceService(base), 10, 0)

	ok, err := dms.allowSend(context.Background(), "dev-a")
	if err != nil || !ok {
		t.Fatalf("expected pass-through without redis, got ok=%v err=%v", ok, err)
	}
}

func TestDirectMessageService_Send_Validation(t *testing.T) {
	base := &Service{TablePrefix: "tk_"}
	dms := NewDirectMessageService(base, NewModerationService(base, 0, nil), NewPresenceService(base), 10, 0)
	ctx := context.Background()

	if _, _, err := dms.Send(ctx, "dev-a", "dev-a", "hi"); err == nil {
		t.Fatalf("expected error for self message")
	}
	if _, _, err := dms.Send(ctx, "dev-a", "dev-b", "   "); err == nil {
		t.Fatalf("expected error for blank message")
	}
	if _, _, err := dms.Send(ctx, "dev-a", "dev-b", "<script>hi</script>"); err == nil {
		t.Fatalf("expected error for markup")
	}

	long := make([]rune, maxDirectMessageLen+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, _, err := dms.Send(ctx, "dev-a", "dev-b", string(long)); err == nil {
		t.Fatalf("expected error for overlong message")
	}
}

func TestDirectMessageService_Send_RecipientOffline(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := &Service{DB: gormDB, TablePrefix: "tk_"}
	dms := NewDirectMessageService(base, NewModerationService(base, 0, nil), NewPresenceService(base), 10, 0)

	now := time.Now()
	senderRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(deviceCols).
			AddRow(uint64(1), "dev-a", "s1", "Tiger-Red", "", false, 0, false, nil, now, now)
	}

	// 发送方查一次，封禁重查再查一次
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("dev-a", 1).WillReturnRows(senderRow())
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("dev-a", 1).WillReturnRows(senderRow())

	// 收件方最后心跳在 20 分钟前，早已出了在线窗口
	mock.ExpectQuery("SELECT \\* FROM `tk_presence` WHERE device_id = \\?").
		WithArgs("dev-b", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "device_id", "device_name", "browser", "os",
			"username", "current_page", "is_admin", "last_seen", "created_at", "updated_at",
		}).AddRow(uint64(2), "dev-b", "MacBook", "Chrome", "macOS",
			"Panda-Blue", "/", false, now.Add(-20*time.Minute), now, now))

	dto, violation, err := dms.Send(context.Background(), "dev-a", "dev-b", "are you there?")
	if !errors.Is(err, ErrRecipientOffline) {
		t.Fatalf("expected ErrRecipientOffline, got %v", err)
	}
	if dto != nil || violation != nil {
		t.Fatalf("expected no dto/violation, got %+v / %+v", dto, violation)
	}

	// 没有任何 INSERT 被执行
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDirectMessageService_Send_SenderBanned(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := &Service{DB: gormDB, TablePrefix: "tk_"}
	dms := NewDirectMessageService(base, NewModerationService(base, 0, nil), NewPresenceService(base), 10, 0)

	now := time.Now()
	bannedRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(deviceCols).
			AddRow(uint64(1), "dev-a", "s1", "Tiger-Red", "", false, 5, true, nil, now, now)
	}
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("dev-a", 1).WillReturnRows(bannedRow())
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("dev-a", 1).WillReturnRows(bannedRow())

	dto, violation, err := dms.Send(context.Background(), "dev-a", "dev-b", "hi")
	if !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
	if dto != nil || violation != nil {
		t.Fatalf("expected no dto/violation, got %+v / %+v", dto, violation)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDirectMessageService_Conversation_MarkReadFailureNonFatal(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := &Service{DB: gormDB, TablePrefix: "tk_"}
	dms := NewDirectMessageService(base, NewModerationService(base, 0, nil), NewPresenceService(base), 10, 0)

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `tk_direct_message` WHERE \\(from_device_id = \\? AND to_device_id = \\?\\) OR \\(from_device_id = \\? AND to_device_id = \\?\\)").
		WithArgs("dev-a", "dev-b", "dev-b", "dev-a", 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "from_device_id", "to_device_id", "message", "is_read", "created_at",
		}).AddRow(uint64(9), "dev-b", "dev-a", "ping", false, now))

	mock.ExpectExec("UPDATE `tk_direct_message` SET `is_read`").
		WithArgs(true, "dev-b", "dev-a", false).
		WillReturnError(fmt.Errorf("lock wait timeout"))

	// 打标失败只记日志，历史照常返回
	out, err := dms.Conversation("dev-a", "dev-b", 1, 0)
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if len(out) != 1 || out[0].Message != "ping" {
		t.Fatalf("expected the fetched page back, got %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDirectMessageErrorsAreDistinct(t *testing.T) {
	if errors.Is(ErrRateLimited, ErrRecipientOffline) || errors.Is(ErrRateLimited, ErrBanned) {
		t.Fatalf("sentinel errors must be distinct")
	}
}
