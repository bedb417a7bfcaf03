package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/dto"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/repository"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/jwt"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/redis"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	repo           *repository.Repository
	jwtManager     *jwt.Manager
	redisClient    *redis.Client
	superAdminName string
	accessTTL      time.Duration
	logger         *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// redisClient 可为 nil（降级运行，Logout 仅记日志）。
func NewAuthService(
	repo *repository.Repository,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	superAdminName string,
	accessTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:           repo,
		jwtManager:     jwtManager,
		redisClient:    redisClient,
		superAdminName: superAdminName,
		accessTTL:      accessTTL,
		logger:         logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.UserID, user.Role, user.Name)
	if err != nil {
		s.logger.Error("生成 Access Token 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.UserID, user.Role, user.Name, req.RememberMe)
	if err != nil {
		s.logger.Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, err
	}

	resolved := ResolveRole(user.Role, user.Name, s.superAdminName)

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		User: dto.UserResponse{
			ID:           user.UserID,
			Name:         user.Name,
			Username:     user.Username,
			Role:         user.Role,
			ResolvedRole: string(resolved),
		},
	}, nil
}

// Logout 将当前 Token 的 jti 加入黑名单
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.redisClient == nil {
		s.logger.Warn("Redis 未连接，登出降级为无操作", zap.String("jti", jti))
		return nil
	}
	ttl := time.Until(expiresAt)
	if err := s.redisClient.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	resolved := ResolveRole(user.Role, user.Name, s.superAdminName)

	return &dto.UserResponse{
		ID:           user.UserID,
		Name:         user.Name,
		Username:     user.Username,
		Role:         user.Role,
		ResolvedRole: string(resolved),
	}, nil
}
