package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/dto"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/model"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/repository"
	pkgerrors "github.com/ryanson7/schedule-app-v3-sub004/pkg/errors"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/metrics"
)

// 拆分父记录的退役标记
const retireReasonAdminSplit = "admin_split"

// SplitService 管理员拆分引擎
// 将一条排期按给定内部时刻拆为 N+1 个无缝分段；父记录退役，
// 子分段继承描述字段并记入血缘，整个过程单事务原子完成。
type SplitService interface {
	// Split 按 splitPoints 拆分排期（仅 admin）
	Split(ctx context.Context, scheduleID string, req *dto.SplitScheduleRequest, actor Actor) (*dto.SplitScheduleResponse, error)
	// ListSegments 列出某父记录的全部子分段（按 segment_order）
	ListSegments(ctx context.Context, parentID string) ([]dto.ScheduleResponse, error)
}

type splitService struct {
	repo           *repository.Repository
	metrics        *metrics.Metrics
	superAdminName string
	logger         *zap.Logger
}

// NewSplitService 创建 SplitService 实例
func NewSplitService(repo *repository.Repository, m *metrics.Metrics, superAdminName string, logger *zap.Logger) SplitService {
	return &splitService{
		repo:           repo,
		metrics:        m,
		superAdminName: superAdminName,
		logger:         logger,
	}
}

// ════════════════════════════════════════════════════════════
// Split — 原子拆分
// ════════════════════════════════════════════════════════════

func (s *splitService) Split(ctx context.Context, scheduleID string, req *dto.SplitScheduleRequest, actor Actor) (*dto.SplitScheduleResponse, error) {
	role := ResolveRole(actor.RawRole, actor.Name, s.superAdminName)
	if role != model.RoleAdmin {
		return nil, s.reject(pkgerrors.NewRejection(pkgerrors.CodeInvalidTransition,
			"仅管理员可执行拆分").WithContext(string(role), "", "split"))
	}

	if strings.TrimSpace(req.Reason) == "" {
		return nil, s.reject(pkgerrors.NewRejection(pkgerrors.CodeValidationFailed,
			"拆分理由不能为空").WithContext(string(role), "", "split"))
	}

	var segments []model.Schedule

	err := s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		parent, err := txRepo.Schedule.GetByID(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NewRejection(pkgerrors.CodeNotFound, "排期不存在").
					WithContext(string(role), "", "split")
			}
			return err
		}

		// 拆分资格：已退役父记录、拆分产生的子分段、已停用记录均不可再拆
		if parent.IsRetiredParent() || parent.ParentScheduleID != nil {
			return pkgerrors.NewRejection(pkgerrors.CodeAlreadySplit,
				"该排期已参与过拆分，不可再次拆分").
				WithContext(string(role), string(parent.ApprovalStatus), "split")
		}
		if !parent.IsActive {
			return pkgerrors.NewRejection(pkgerrors.CodeNotFound, "排期不存在或已停用").
				WithContext(string(role), string(parent.ApprovalStatus), "split")
		}

		start, err := clockToMinutes(parent.StartTime)
		if err != nil {
			return err
		}
		end, err := clockToMinutes(parent.EndTime)
		if err != nil {
			return err
		}

		points, rej := normalizeSplitPoints(req.SplitPoints, start, end)
		if rej != nil {
			return rej.WithContext(string(role), string(parent.ApprovalStatus), "split")
		}

		segments = buildSegments(parent, points, start, end, actor.ID, req.Reason)

		oldSnap := marshalSnapshot(snapshotOf(parent))

		// 父记录退役：保留原始区间，不再参与任何生命周期动作
		parent.IsActive = false
		parent.IsAdminSplit = true
		parent.AdminSplitReason = strings.TrimSpace(req.Reason)
		parent.SplitByAdminID = &actor.ID
		retire := retireReasonAdminSplit
		parent.RetireReason = &retire
		parent.UpdatedBy = &actor.ID

		if err := txRepo.Schedule.BatchCreate(ctx, segments); err != nil {
			return err
		}
		if err := txRepo.Schedule.Update(ctx, parent); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return pkgerrors.NewRejection(pkgerrors.CodeStaleState,
					"排期已被并发修改，请刷新后重试").
					WithContext(string(role), string(parent.ApprovalStatus), "split")
			}
			return err
		}

		reason := strings.TrimSpace(req.Reason)
		// 审计条目须自包含：new_value 快照额外记录分段数
		newSnap := snapshotOf(parent)
		newSnap.SegmentCount = len(segments)
		return txRepo.ScheduleHistory.Append(ctx, &model.ScheduleHistory{
			ScheduleID: parent.ScheduleID,
			ChangeType: "admin_split",
			OldValue:   oldSnap,
			NewValue:   marshalSnapshot(newSnap),
			Reason:     &reason,
			ChangedBy:  actor.ID,
			ChangedAt:  time.Now(),
		})
	})
	if err != nil {
		if _, ok := pkgerrors.AsRejection(err); !ok {
			s.logger.Error("拆分排期失败", zap.Error(err))
		}
		return nil, s.reject(err)
	}

	s.countSplit("ok")
	s.logger.Info("排期拆分完成",
		zap.String("schedule_id", scheduleID),
		zap.Int("segment_count", len(segments)),
	)

	resp := &dto.SplitScheduleResponse{
		Segments:     make([]dto.ScheduleResponse, 0, len(segments)),
		SegmentCount: len(segments),
	}
	for i := range segments {
		resp.Segments = append(resp.Segments, toScheduleResponse(&segments[i]))
	}
	return resp, nil
}

func (s *splitService) ListSegments(ctx context.Context, parentID string) ([]dto.ScheduleResponse, error) {
	children, err := s.repo.Schedule.ListByParent(ctx, parentID)
	if err != nil {
		s.logger.Error("查询拆分分段失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ScheduleResponse, 0, len(children))
	for i := range children {
		result = append(result, toScheduleResponse(&children[i]))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// 拆分点与分段构造
// ════════════════════════════════════════════════════════════

// normalizeSplitPoints 解析、过滤、去重并排序拆分点
// 仅保留严格落在 (start, end) 开区间内的时刻；全部滤除则拒绝。
func normalizeSplitPoints(raw []string, start, end int) ([]int, *pkgerrors.Rejection) {
	seen := make(map[int]bool, len(raw))
	points := make([]int, 0, len(raw))
	for _, r := range raw {
		m, err := clockToMinutes(r)
		if err != nil {
			return nil, pkgerrors.NewRejection(pkgerrors.CodeValidationFailed,
				"拆分时刻格式无效（应为 HH:MM）")
		}
		if m <= start || m >= end {
			continue
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		points = append(points, m)
	}
	if len(points) == 0 {
		return nil, pkgerrors.NewRejection(pkgerrors.CodeNoValidSplitPoints,
			"没有落在排期区间内部的有效拆分时刻")
	}
	sort.Ints(points)
	return points, nil
}

// buildSegments 由排序后的拆分点构造 N+1 个无缝分段
// 分段继承父记录的描述字段；摄影师分配清空，状态置为 approved。
func buildSegments(parent *model.Schedule, points []int, start, end int, adminID, reason string) []model.Schedule {
	bounds := make([]int, 0, len(points)+2)
	bounds = append(bounds, start)
	bounds = append(bounds, points...)
	bounds = append(bounds, end)

	origStart := parent.StartTime
	origEnd := parent.EndTime
	trimmedReason := strings.TrimSpace(reason)

	segments := make([]model.Schedule, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		seg := model.Schedule{
			ShootDate:         parent.ShootDate,
			StartTime:         minutesToClock(bounds[i]),
			EndTime:           minutesToClock(bounds[i+1]),
			CourseName:        parent.CourseName,
			ProfessorName:     parent.ProfessorName,
			ShootingType:      parent.ShootingType,
			LocationID:        parent.LocationID,
			ApprovalStatus:    model.StatusApproved,
			IsActive:          true,
			ParentScheduleID:  &parent.ScheduleID,
			IsAdminSplit:      true,
			AdminSplitReason:  trimmedReason,
			SplitByAdminID:    &adminID,
			OriginalStartTime: &origStart,
			OriginalEndTime:   &origEnd,
			SegmentOrder:      i + 1,
		}
		seg.CreatedBy = parent.CreatedBy
		seg.UpdatedBy = &adminID
		segments = append(segments, seg)
	}
	return segments
}

// ── 指标 ──

func (s *splitService) reject(err error) error {
	if rej, ok := pkgerrors.AsRejection(err); ok {
		s.countSplit("rejected")
		return rej
	}
	s.countSplit("error")
	return err
}

func (s *splitService) countSplit(result string) {
	if s.metrics != nil {
		s.metrics.SplitsTotal.WithLabelValues(result).Inc()
	}
}
