package service

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestAuthService_ExtractToken(t *testing.T) {
	a := NewAuthService(nil)

	r := httptest.NewRequest("GET", "/api/v1/admin/overview", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	if got := a.ExtractToken(r); got != "abc123" {
		t.Fatalf("bearer: got %q", got)
	}

	// header 优先于 query
	r = httptest.NewRequest("GET", "/ws?token=querytoken", nil)
	r.Header.Set("Authorization", "Bearer headertoken")
	if got := a.ExtractToken(r); got != "headertoken" {
		t.Fatalf("precedence: got %q", got)
	}

	// 无 header 时取 query
	r = httptest.NewRequest("GET", "/ws?token=querytoken", nil)
	if got := a.ExtractToken(r); got != "querytoken" {
		t.Fatalf("query: got %q", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	if got := a.ExtractToken(r); got != "" {
		t.Fatalf("empty: got %q", got)
	}
}

func TestAuthService_AuthenticateAndRevoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a := NewAuthService(rdb)
	ctx := context.Background()

	ts := NewTokenService(rdb)
	token, err := ts.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if err := ts.StoreToken(ctx, token, 42, time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}

	adminID, err := a.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if adminID != 42 {
		t.Fatalf("expected admin 42, got %d", adminID)
	}

	if _, err := a.Authenticate(ctx, "no-such-token"); err == nil {
		t.Fatalf("expected error for unknown token")
	}

	if err := a.RevokeToken(ctx, token); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if _, err := a.Authenticate(ctx, token); err == nil {
		t.Fatalf("expected error after revoke")
	}
}

func TestTokenService_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ts := NewTokenService(rdb)
	ctx := context.Background()

	token, err := ts.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if err := ts.StoreToken(ctx, token, 7, time.Minute); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := ts.GetAdminIDByToken(ctx, token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}
