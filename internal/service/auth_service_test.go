package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ryanson7/schedule-app-v3-sub004/config"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/dto"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/model"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/jwt"
)

func setupTestAuthService(t *testing.T) (AuthService, *testRepos) {
	t.Helper()
	repos := newTestRepos()
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-key-0123456789",
		AccessTokenTTL:          2 * time.Hour,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 720 * time.Hour,
	})
	svc := NewAuthService(repos.toRepository(), jwtMgr, nil, testSuperAdminName, 2*time.Hour, zap.NewNop())
	return svc, repos
}

func seedUser(t *testing.T, repos *testRepos, username, password, role, name string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	u := &model.User{
		UserID:       "user-" + username,
		Name:         name,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	repos.user.users[u.UserID] = u
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repos := setupTestAuthService(t)
	seedUser(t, repos, "linana", "pass123", RawRoleAcademyManager, "李娜")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "linana", Password: "pass123",
	})
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("应返回 Token 对")
	}
	if result.User.ResolvedRole != "manager" {
		t.Errorf("期望 resolved_role=manager，实际=%s", result.User.ResolvedRole)
	}
	if result.ExpiresIn != 7200 {
		t.Errorf("期望 expires_in=7200，实际=%d", result.ExpiresIn)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repos := setupTestAuthService(t)
	seedUser(t, repos, "linana", "pass123", RawRoleAcademyManager, "李娜")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "linana", Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "ghost", Password: "pass123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知用户应与密码错误同等对待，实际: %v", err)
	}
}

func TestAuthService_Logout_WithoutRedisDegrades(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	// Redis 未连接时登出降级为无操作，不报错
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("无 Redis 时登出不应报错: %v", err)
	}
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	svc, repos := setupTestAuthService(t)
	u := seedUser(t, repos, "wangwei", "pass123", RawRoleSystemAdmin, "王伟")

	result, err := svc.GetCurrentUser(context.Background(), u.UserID)
	if err != nil {
		t.Fatalf("查询当前用户失败: %v", err)
	}
	if result.ResolvedRole != "admin" {
		t.Errorf("期望 resolved_role=admin，实际=%s", result.ResolvedRole)
	}

	if _, err := svc.GetCurrentUser(context.Background(), "nonexistent"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
