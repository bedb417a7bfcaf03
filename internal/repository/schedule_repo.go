package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/model"
	pkgerrors "github.com/ryanson7/schedule-app-v3-sub004/pkg/errors"
)

// ScheduleRepository 排期数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	BatchCreate(ctx context.Context, schedules []model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	List(ctx context.Context, filter ScheduleFilter, offset, limit int) ([]model.Schedule, int64, error)
	ListByParent(ctx context.Context, parentID string) ([]model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule) error
}

// ScheduleFilter 列表过滤条件（零值字段不参与过滤）
type ScheduleFilter struct {
	Status     model.Status
	StatusIn   []model.Status
	ShootDate  string
	ActiveOnly bool
}

// ScheduleHistoryRepository 排期历史数据访问接口（仅追加）
type ScheduleHistoryRepository interface {
	Append(ctx context.Context, entry *model.ScheduleHistory) error
	ListBySchedule(ctx context.Context, scheduleID string, offset, limit int) ([]model.ScheduleHistory, int64, error)
}

// ── Schedule Repository 实现 ──

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) BatchCreate(ctx context.Context, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&schedules).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context, filter ScheduleFilter, offset, limit int) ([]model.Schedule, int64, error) {
	var schedules []model.Schedule
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Schedule{})
	if filter.Status != "" {
		db = db.Where("approval_status = ?", filter.Status)
	}
	if len(filter.StatusIn) > 0 {
		db = db.Where("approval_status IN ?", filter.StatusIn)
	}
	if filter.ShootDate != "" {
		db = db.Where("shoot_date = ?", filter.ShootDate)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Location").
		Offset(offset).Limit(limit).
		Order("shoot_date ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, total, err
}

func (r *scheduleRepo) ListByParent(ctx context.Context, parentID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("parent_schedule_id = ?", parentID).
		Order("segment_order ASC").
		Find(&schedules).Error
	return schedules, err
}

// Update 带乐观锁版本检查的整行更新
// 并发修改导致版本不匹配时返回 ErrOptimisticLock（上层映射为 STALE_STATE）
func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	oldVersion := schedule.Version
	result := r.db.WithContext(ctx).
		Model(schedule).
		Where("schedule_id = ? AND version = ?", schedule.ScheduleID, oldVersion).
		Updates(map[string]interface{}{
			"shoot_date":          schedule.ShootDate,
			"start_time":          schedule.StartTime,
			"end_time":            schedule.EndTime,
			"course_name":         schedule.CourseName,
			"professor_name":      schedule.ProfessorName,
			"shooting_type":       schedule.ShootingType,
			"location_id":         schedule.LocationID,
			"approval_status":     schedule.ApprovalStatus,
			"previous_status":     schedule.PreviousStatus,
			"is_active":           schedule.IsActive,
			"assigned_shooter_id": schedule.AssignedShooterID,
			"request_message":     schedule.RequestMessage,
			"requested_by":        schedule.RequestedBy,
			"is_admin_split":      schedule.IsAdminSplit,
			"admin_split_reason":  schedule.AdminSplitReason,
			"split_by_admin_id":   schedule.SplitByAdminID,
			"retire_reason":       schedule.RetireReason,
			"updated_by":          schedule.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	schedule.Version = oldVersion + 1
	return nil
}

// ── ScheduleHistory Repository 实现 ──

type scheduleHistoryRepo struct {
	db *gorm.DB
}

func NewScheduleHistoryRepo(db *gorm.DB) ScheduleHistoryRepository {
	return &scheduleHistoryRepo{db: db}
}

func (r *scheduleHistoryRepo) Append(ctx context.Context, entry *model.ScheduleHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *scheduleHistoryRepo) ListBySchedule(ctx context.Context, scheduleID string, offset, limit int) ([]model.ScheduleHistory, int64, error) {
	var entries []model.ScheduleHistory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ScheduleHistory{}).
		Where("schedule_id = ?", scheduleID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("changed_at DESC").
		Find(&entries).Error
	return entries, total, err
}
