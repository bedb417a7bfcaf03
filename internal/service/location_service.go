package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/dto"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/model"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/repository"
	pkgerrors "github.com/ryanson7/schedule-app-v3-sub004/pkg/errors"
)

// LocationService 拍摄地点管理接口（仅 admin 可写）
type LocationService interface {
	Create(ctx context.Context, req *dto.CreateLocationRequest, actor Actor) (*dto.LocationResponse, error)
	Update(ctx context.Context, locationID string, req *dto.UpdateLocationRequest, actor Actor) (*dto.LocationResponse, error)
	Get(ctx context.Context, locationID string) (*dto.LocationResponse, error)
	List(ctx context.Context) ([]dto.LocationResponse, error)
}

type locationService struct {
	repo           *repository.Repository
	superAdminName string
	logger         *zap.Logger
}

// NewLocationService 创建 LocationService 实例
func NewLocationService(repo *repository.Repository, superAdminName string, logger *zap.Logger) LocationService {
	return &locationService{repo: repo, superAdminName: superAdminName, logger: logger}
}

func (s *locationService) Create(ctx context.Context, req *dto.CreateLocationRequest, actor Actor) (*dto.LocationResponse, error) {
	if ResolveRole(actor.RawRole, actor.Name, s.superAdminName) != model.RoleAdmin {
		return nil, pkgerrors.NewRejection(pkgerrors.CodeInvalidTransition, "仅管理员可管理地点")
	}

	location := &model.Location{
		Name:         req.Name,
		LocationType: req.LocationType,
		IsActive:     true,
	}
	location.CreatedBy = &actor.ID
	location.UpdatedBy = &actor.ID

	if err := s.repo.Location.Create(ctx, location); err != nil {
		s.logger.Error("创建地点失败", zap.Error(err))
		return nil, err
	}

	resp := toLocationResponse(location)
	return &resp, nil
}

func (s *locationService) Update(ctx context.Context, locationID string, req *dto.UpdateLocationRequest, actor Actor) (*dto.LocationResponse, error) {
	if ResolveRole(actor.RawRole, actor.Name, s.superAdminName) != model.RoleAdmin {
		return nil, pkgerrors.NewRejection(pkgerrors.CodeInvalidTransition, "仅管理员可管理地点")
	}

	location, err := s.repo.Location.GetByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewRejection(pkgerrors.CodeNotFound, "地点不存在")
		}
		s.logger.Error("查询地点失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.LocationType != nil {
		location.LocationType = *req.LocationType
	}
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}
	location.UpdatedBy = &actor.ID

	if err := s.repo.Location.Update(ctx, location); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.NewRejection(pkgerrors.CodeStaleState, "地点已被并发修改，请刷新后重试")
		}
		s.logger.Error("更新地点失败", zap.Error(err))
		return nil, err
	}

	resp := toLocationResponse(location)
	return &resp, nil
}

func (s *locationService) Get(ctx context.Context, locationID string) (*dto.LocationResponse, error) {
	location, err := s.repo.Location.GetByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewRejection(pkgerrors.CodeNotFound, "地点不存在")
		}
		s.logger.Error("查询地点失败", zap.Error(err))
		return nil, err
	}

	resp := toLocationResponse(location)
	return &resp, nil
}

func (s *locationService) List(ctx context.Context) ([]dto.LocationResponse, error) {
	locations, err := s.repo.Location.List(ctx)
	if err != nil {
		s.logger.Error("查询地点列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		result = append(result, toLocationResponse(&locations[i]))
	}
	return result, nil
}

func toLocationResponse(l *model.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:           l.LocationID,
		Name:         l.Name,
		LocationType: l.LocationType,
		IsActive:     l.IsActive,
		CreatedAt:    l.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
