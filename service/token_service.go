package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// 默认 token 过期时间（管理后台会话）
	defaultTokenTTL = 24 * time.Hour
)

// TokenService 专门负责管理员 token 的生成、存储、校验与注销。
// Redis Key 设计：
// - tk:token:{token} -> adminID (String, TTL)
// - tk:admin_tokens:{adminID} -> Set(token1, token2, ...) (Set, 可选 TTL)
//
// 这样可以：
// - 单 token 注销：DEL tokenKey + SREM adminSet
// - 全端注销：SMEMBERS adminSet 再批量 DEL tokenKey
// - 支持同一管理员多端登录/多 token
type TokenService struct {
	rdb *redis.Client
}

func NewTokenService(rdb *redis.Client) *TokenService {
	return &TokenService{rdb: rdb}
}

func (s *TokenService) ensure() error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	return nil
}

func (s *TokenService) tokenKey(token string) string {
	return "tk:token:" + token
}

func (s *TokenService) adminTokensKey(adminID uint64) string {
	return fmt.Sprintf("tk:admin_tokens:%d", adminID)
}

// GenerateToken 生成一个随机 token（不包含任何用户信息）。
func (s *TokenService) GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// StoreToken 保存 token -> adminID 映射，并把 token 加入该管理员的 token 集合。
func (s *TokenService) StoreToken(ctx context.Context, token string, adminID uint64, ttl time.Duration) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.tokenKey(token), fmt.Sprintf("%d", adminID), ttl)
	pipe.SAdd(ctx, s.adminTokensKey(adminID), token)
	// token set 的 TTL 不是必须；设置为略大于 token TTL，方便自动清理
	pipe.Expire(ctx, s.adminTokensKey(adminID), ttl+24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// GetAdminIDByToken 根据 token 取 adminID。
func (s *TokenService) GetAdminIDByToken(ctx context.Context, token string) (uint64, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	val, err := s.rdb.Get(ctx, s.tokenKey(token)).Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(val, 10, 64)
}

// RevokeToken 注销 token（只删除 tokenKey；两边一起删用 AuthService.RevokeToken）。
func (s *TokenService) RevokeToken(ctx context.Context, token string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	return s.rdb.Del(ctx, s.tokenKey(token)).Err()
}

// RemoveAdminToken 从管理员的 token 集合中移除 token。
func (s *TokenService) RemoveAdminToken(ctx context.Context, adminID uint64, token string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	return s.rdb.SRem(ctx, s.adminTokensKey(adminID), token).Err()
}

// RevokeAllTokensByAdmin 注销该管理员的全部 token。
func (s *TokenService) RevokeAllTokensByAdmin(ctx context.Context, adminID uint64) error {
	if err := s.ensure(); err != nil {
		return err
	}
	tokens, err := s.rdb.SMembers(ctx, s.adminTokensKey(adminID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return err
	}
	if len(tokens) == 0 {
		_ = s.rdb.Del(ctx, s.adminTokensKey(adminID)).Err()
		return nil
	}

	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, s.tokenKey(t))
	}
	pipe.Del(ctx, s.adminTokensKey(adminID))
	_, err = pipe.Exec(ctx)
	return err
}
