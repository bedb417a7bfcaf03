package service

import (
	"go.uber.org/zap"

	"github.com/ryanson7/schedule-app-v3-sub004/config"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/repository"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/jwt"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/metrics"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/redis"
)

// Service 服务层聚合
type Service struct {
	Auth         AuthService
	Schedule     ScheduleService
	Split        SplitService
	Location     LocationService
	Notification NotificationService
}

// NewService 创建服务层聚合实例
// redisClient 可为 nil（降级运行）；m 可为 nil（测试场景不注册指标）。
func NewService(
	repo *repository.Repository,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	superAdminName := cfg.Auth.SuperAdminName
	notification := NewNotificationService(repo, logger)

	return &Service{
		Auth:         NewAuthService(repo, jwtManager, redisClient, superAdminName, cfg.Auth.AccessTokenTTL, logger),
		Schedule:     NewScheduleService(repo, notification, m, superAdminName, logger),
		Split:        NewSplitService(repo, m, superAdminName, logger),
		Location:     NewLocationService(repo, superAdminName, logger),
		Notification: notification,
	}
}
