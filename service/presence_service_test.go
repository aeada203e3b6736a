package service

import (
	"testing"
	"time"
)

func TestFresh_Boundaries(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		age    time.Duration
		window time.Duration
		want   bool
	}{
		{"59s within 60s window", 59 * time.Second, WindowOnlineBadge, true},
		{"60s exactly at boundary", 60 * time.Second, WindowOnlineBadge, true}, // 边界含端点
		{"61s outside 60s window", 61 * time.Second, WindowOnlineBadge, false},
		{"14s within 15s window", 14 * time.Second, WindowActiveDevices, true},
		{"16s outside 15s window", 16 * time.Second, WindowActiveDevices, false},
		{"4m within broadcast window", 4 * time.Minute, WindowAdminBroadcast, true},
		{"6m outside broadcast window", 6 * time.Minute, WindowAdminBroadcast, false},
		{"future heartbeat counts as fresh", -time.Second, WindowOnlineBadge, true},
	}
	for _, c := range cases {
		if got := Fresh(now.Add(-c.age), now, c.window); got != c.want {
			t.Errorf("%s: Fresh = %v, want %v", c.name, got, c.want)
		}
	}
}
