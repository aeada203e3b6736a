package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestModerationService_ScanForViolation(t *testing.T) {
	ms := NewModerationService(&Service{TablePrefix: "tk_"}, 0, nil)

	cases := []struct {
		text string
		want bool
	}{
		{"hello world", false},
		{"today we studied photosynthesis", false},
		{"what the fuck", true},
		{"FREE MONEY for everyone", true}, // 大小写不敏感
		{"sh1t happens", true},            // 变体拼写
		{"check my channel please", true},
		{"", false},
		{"classmate", false}, // 不因包含某些字母序列误判
	}
	for _, c := range cases {
		if got := ms.ScanForViolation(c.text); got != c.want {
			t.Errorf("ScanForViolation(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestModerationService_ExtraTerms(t *testing.T) {
	ms := NewModerationService(&Service{TablePrefix: "tk_"}, 0, []string{" Banana ", ""})

	if !ms.ScanForViolation("i like BANANA bread") {
		t.Fatalf("expected extra term hit")
	}
	if ms.ScanForViolation("i like apple bread") {
		t.Fatalf("unexpected hit")
	}
}

func TestModerationService_RecordViolation_Warned(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	ms := NewModerationService(&Service{DB: gormDB, TablePrefix: "tk_"}, 5, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tk_device` SET `violation_count` = `violation_count` \\+ 1").
		WithArgs(5, "device-a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("device-a", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "device_id", "session_id", "username", "avatar_url",
			"is_admin", "violation_count", "is_banned", "last_active_at", "created_at", "updated_at",
		}).AddRow(uint64(1), "device-a", "s1", "Tiger-Red", "", false, 3, false, nil, now, now))

	ret, err := ms.RecordViolation("device-a", "Tiger-Red")
	if err != nil {
		t.Fatalf("RecordViolation: %v", err)
	}
	if ret.NewCount != 3 || ret.IsNowBanned || ret.Remaining != 2 {
		t.Fatalf("unexpected result: %+v", ret)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestModerationService_RecordViolation_BanAtThreshold(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	ms := NewModerationService(&Service{DB: gormDB, TablePrefix: "tk_"}, 5, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tk_device` SET `violation_count` = `violation_count` \\+ 1").
		WithArgs(5, "device-a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("device-a", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "device_id", "session_id", "username", "avatar_url",
			"is_admin", "violation_count", "is_banned", "last_active_at", "created_at", "updated_at",
		}).AddRow(uint64(1), "device-a", "s1", "Tiger-Red", "", false, 5, true, nil, now, now))

	ret, err := ms.RecordViolation("device-a", "Tiger-Red")
	if err != nil {
		t.Fatalf("RecordViolation: %v", err)
	}
	if !ret.IsNowBanned || ret.Remaining != 0 {
		t.Fatalf("expected banned with 0 remaining, got %+v", ret)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestModerationService_EnsureNotBanned(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	ms := NewModerationService(&Service{DB: gormDB, TablePrefix: "tk_"}, 5, nil)

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("banned-one", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "device_id", "session_id", "username", "avatar_url",
			"is_admin", "violation_count", "is_banned", "last_active_at", "created_at", "updated_at",
		}).AddRow(uint64(1), "banned-one", "s1", "Wolf-Jade", "", false, 5, true, nil, now, now))

	if err := ms.EnsureNotBanned("banned-one"); !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}

	// 未注册设备视为干净
	mock.ExpectQuery("SELECT \\* FROM `tk_device` WHERE device_id = \\?").
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if err := ms.EnsureNotBanned("ghost"); err != nil {
		t.Fatalf("expected nil for unknown device, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
