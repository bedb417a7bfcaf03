package service

import (
	"context"
	"encoding/json"
	"errors"
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

// ScheduleService 排期生命周期业务接口
// 状态机入口：创建、动作提交（申请/审批工作流）、直接保存、查询与历史。
type ScheduleService interface {
	// 创建排期（temp 暂存 | request 提交审批 | admin approve 直接批准）
	Create(ctx context.Context, req *dto.CreateScheduleRequest, actor Actor) (*dto.ScheduleResponse, error)
	// 提交生命周期动作（§状态转换表的统一入口）
	SubmitAction(ctx context.Context, scheduleID string, req *dto.SubmitActionRequest, actor Actor) (*dto.ScheduleResponse, error)
	// 直接保存字段（admin 任意状态；manager 仅 pending）
	Update(ctx context.Context, scheduleID string, req *dto.UpdateScheduleRequest, actor Actor) (*dto.ScheduleResponse, error)
	// 获取单条排期
	Get(ctx context.Context, scheduleID string) (*dto.ScheduleResponse, error)
	// 列表查询（状态/日期过滤 + 分页）
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
	// 待处理申请队列（admin 审批用）
	ListPendingRequests(ctx context.Context, req *dto.PaginationRequest) ([]dto.ScheduleResponse, int64, error)
	// 变更历史
	ListHistory(ctx context.Context, scheduleID string, req *dto.ScheduleHistoryListRequest) ([]dto.ScheduleHistoryResponse, int64, error)
}

type scheduleService struct {
	repo           *repository.Repository
	notifier       NotificationService
	metrics        *metrics.Metrics
	superAdminName string
	logger         *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(
	repo *repository.Repository,
	notifier NotificationService,
	m *metrics.Metrics,
	superAdminName string,
	logger *zap.Logger,
) ScheduleService {
	return &scheduleService{
		repo:           repo,
		notifier:       notifier,
		metrics:        m,
		superAdminName: superAdminName,
		logger:         logger,
	}
}

// ════════════════════════════════════════════════════════════
// Create — 创建排期
// ════════════════════════════════════════════════════════════

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, actor Actor) (*dto.ScheduleResponse, error) {
	role := ResolveRole(actor.RawRole, actor.Name, s.superAdminName)
	action := model.Action(req.Action)

	dec, ok := decide(role, model.StatusNone, action)
	if !ok {
		return nil, s.reject(pkgerrors.NewRejection(pkgerrors.CodeInvalidTransition,
			"当前角色不可执行此创建动作").WithContext(string(role), "", req.Action), action)
	}

	// temp 暂存必须通过全量必填校验；request/approve 为纯工作流动作，
	// 仅校验时间字段的格式与先后关系
	if action == model.ActionTemp {
		if rej := validateScheduleFields(req.ShootDate, req.StartTime, req.EndTime,
			req.CourseName, req.ProfessorName, req.ShootingType); rej != nil {
			return nil, s.reject(rej.WithContext(string(role), "", req.Action), action)
		}
	} else if rej := validateTimeRange(req.ShootDate, req.StartTime, req.EndTime); rej != nil {
		return nil, s.reject(rej.WithContext(string(role), "", req.Action), action)
	}

	schedule := &model.Schedule{
		ShootDate:      req.ShootDate,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		CourseName:     req.CourseName,
		ProfessorName:  req.ProfessorName,
		ShootingType:   req.ShootingType,
		LocationID:     req.LocationID,
		ApprovalStatus: dec.to,
		IsActive:       true,
	}
	schedule.CreatedBy = &actor.ID
	schedule.UpdatedBy = &actor.ID

	err := s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Schedule.Create(ctx, schedule); err != nil {
			return err
		}
		return txRepo.ScheduleHistory.Append(ctx, &model.ScheduleHistory{
			ScheduleID: schedule.ScheduleID,
			ChangeType: "create",
			NewValue:   marshalSnapshot(snapshotOf(schedule)),
			ChangedBy:  actor.ID,
			ChangedAt:  time.Now(),
		})
	})
	if err != nil {
		s.logger.Error("创建排期失败", zap.Error(err))
		return nil, s.reject(err, action)
	}

	s.countTransition(action, "ok")
	s.notifyAfterCommit(schedule, action, actor)

	resp := toScheduleResponse(schedule)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// SubmitAction — 生命周期动作统一入口
// ════════════════════════════════════════════════════════════

func (s *scheduleService) SubmitAction(ctx context.Context, scheduleID string, req *dto.SubmitActionRequest, actor Actor) (*dto.ScheduleResponse, error) {
	role := ResolveRole(actor.RawRole, actor.Name, s.superAdminName)
	action := model.Action(req.Action)

	var updated *model.Schedule

	err := s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		// 提交前在事务内重读当前状态（乐观检查的第一环；
		// 第二环是 Update 的版本号条件更新）
		schedule, err := txRepo.Schedule.GetByID(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NewRejection(pkgerrors.CodeNotFound, "排期不存在").
					WithContext(string(role), "", req.Action)
			}
			return err
		}

		// 已停用记录与已退役的拆分父记录不再是任何动作的目标
		if !schedule.IsActive || schedule.IsRetiredParent() {
			return pkgerrors.NewRejection(pkgerrors.CodeNotFound, "排期不存在或已停用").
				WithContext(string(role), string(schedule.ApprovalStatus), req.Action)
		}

		if !action.Valid() {
			return pkgerrors.NewRejection(pkgerrors.CodeInvalidTransition, "未知的动作").
				WithContext(string(role), string(schedule.ApprovalStatus), req.Action)
		}

		// *_request 动作必须附带非空白申请理由
		if action.IsRequest() && strings.TrimSpace(req.Message) == "" {
			return pkgerrors.NewRejection(pkgerrors.CodeValidationFailed, "申请理由不能为空").
				WithContext(string(role), string(schedule.ApprovalStatus), req.Action)
		}

		dec, ok := decide(role, schedule.ApprovalStatus, action)
		if !ok {
			return pkgerrors.NewRejection(pkgerrors.CodeInvalidTransition,
				"当前状态下此角色不可执行该动作").
				WithContext(string(role), string(schedule.ApprovalStatus), req.Action)
		}

		fromStatus := schedule.ApprovalStatus
		oldSnap := marshalSnapshot(snapshotOf(schedule))

		if err := s.applyDecision(schedule, dec, action, req, role, actor.ID); err != nil {
			return err
		}
		schedule.UpdatedBy = &actor.ID

		if err := txRepo.Schedule.Update(ctx, schedule); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return pkgerrors.NewRejection(pkgerrors.CodeStaleState,
					"排期已被并发修改，请刷新后重试").
					WithContext(string(role), string(fromStatus), req.Action)
			}
			return err
		}

		var reason *string
		if msg := strings.TrimSpace(req.Message); msg != "" {
			reason = &msg
		}
		updated = schedule
		return txRepo.ScheduleHistory.Append(ctx, &model.ScheduleHistory{
			ScheduleID: schedule.ScheduleID,
			ChangeType: historyChangeType(action),
			OldValue:   oldSnap,
			NewValue:   marshalSnapshot(snapshotOf(schedule)),
			Reason:     reason,
			ChangedBy:  actor.ID,
			ChangedAt:  time.Now(),
		})
	})
	if err != nil {
		return nil, s.reject(err, action)
	}

	s.countTransition(action, "ok")
	s.notifyAfterCommit(updated, action, actor)

	resp := toScheduleResponse(updated)
	return &resp, nil
}

// applyDecision 将裁决结果落到实体上
func (s *scheduleService) applyDecision(schedule *model.Schedule, dec decision, action model.Action, req *dto.SubmitActionRequest, role model.Role, actorID string) error {
	switch {
	case action.IsRequest():
		// 进入申请状态：记住申请前的稳定状态与申请人，驳回时恢复状态；
		// 申请人与理由在裁决后保留，使裁决历史条目自包含
		prev := schedule.ApprovalStatus
		schedule.PreviousStatus = &prev
		schedule.RequestMessage = strings.TrimSpace(req.Message)
		requester := actorID
		schedule.RequestedBy = &requester
		schedule.ApprovalStatus = dec.to

	case dec.revert:
		// modify_reject：恢复申请前的稳定状态
		restored := model.StatusPending
		if schedule.PreviousStatus != nil && schedule.PreviousStatus.Valid() {
			restored = *schedule.PreviousStatus
		}
		schedule.ApprovalStatus = restored
		schedule.PreviousStatus = nil

	case action == model.ActionModifyApprove:
		// 修改批准：管理员提供的字段编辑与状态变更原子应用
		if req.FieldEdits != nil {
			applyEdits(schedule, req.FieldEdits)
			if rej := validateTimeRange(schedule.ShootDate, schedule.StartTime, schedule.EndTime); rej != nil {
				return rej.WithContext(string(role), string(schedule.ApprovalStatus), string(action))
			}
		}
		schedule.ApprovalStatus = dec.to
		schedule.PreviousStatus = nil

	case action == model.ActionTemp:
		// 暂存动作要求全量必填字段有效
		if rej := validateScheduleFields(schedule.ShootDate, schedule.StartTime, schedule.EndTime,
			schedule.CourseName, schedule.ProfessorName, schedule.ShootingType); rej != nil {
			return rej.WithContext(string(role), string(schedule.ApprovalStatus), string(action))
		}
		schedule.ApprovalStatus = dec.to
		schedule.PreviousStatus = nil

	default:
		schedule.ApprovalStatus = dec.to
		schedule.PreviousStatus = nil
	}

	if dec.deactivate {
		schedule.IsActive = false
	}
	return nil
}

// applyEdits 应用非 nil 的字段编辑
func applyEdits(schedule *model.Schedule, edits *dto.ScheduleEdit) {
	if edits.ShootDate != nil {
		schedule.ShootDate = *edits.ShootDate
	}
	if edits.StartTime != nil {
		schedule.StartTime = *edits.StartTime
	}
	if edits.EndTime != nil {
		schedule.EndTime = *edits.EndTime
	}
	if edits.CourseName != nil {
		schedule.CourseName = *edits.CourseName
	}
	if edits.ProfessorName != nil {
		schedule.ProfessorName = *edits.ProfessorName
	}
	if edits.ShootingType != nil {
		schedule.ShootingType = *edits.ShootingType
	}
	if edits.LocationID != nil {
		schedule.LocationID = edits.LocationID
	}
	if edits.AssignedShooterID != nil {
		schedule.AssignedShooterID = edits.AssignedShooterID
	}
}

// ════════════════════════════════════════════════════════════
// Update — 直接保存字段
// ════════════════════════════════════════════════════════════

func (s *scheduleService) Update(ctx context.Context, scheduleID string, req *dto.UpdateScheduleRequest, actor Actor) (*dto.ScheduleResponse, error) {
	role := ResolveRole(actor.RawRole, actor.Name, s.superAdminName)

	var updated *model.Schedule

	err := s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		schedule, err := txRepo.Schedule.GetByID(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NewRejection(pkgerrors.CodeNotFound, "排期不存在").
					WithContext(string(role), "", "update")
			}
			return err
		}
		if !schedule.IsActive || schedule.IsRetiredParent() {
			return pkgerrors.NewRejection(pkgerrors.CodeNotFound, "排期不存在或已停用").
				WithContext(string(role), string(schedule.ApprovalStatus), "update")
		}

		// 字段可编辑规则：admin 任意状态；manager 仅 pending。
		// approval_requested / approved / confirmed 下 manager 只能走申请流程。
		if role != model.RoleAdmin {
			if role != model.RoleManager || schedule.ApprovalStatus != model.StatusPending {
				return pkgerrors.NewRejection(pkgerrors.CodeInvalidTransition,
					"当前状态下不可直接编辑，请提交修改申请").
					WithContext(string(role), string(schedule.ApprovalStatus), "update")
			}
		}

		if rej := validateScheduleFields(req.ShootDate, req.StartTime, req.EndTime,
			req.CourseName, req.ProfessorName, req.ShootingType); rej != nil {
			return rej.WithContext(string(role), string(schedule.ApprovalStatus), "update")
		}

		oldSnap := marshalSnapshot(snapshotOf(schedule))

		schedule.ShootDate = req.ShootDate
		schedule.StartTime = req.StartTime
		schedule.EndTime = req.EndTime
		schedule.CourseName = req.CourseName
		schedule.ProfessorName = req.ProfessorName
		schedule.ShootingType = req.ShootingType
		schedule.LocationID = req.LocationID
		schedule.UpdatedBy = &actor.ID

		if err := txRepo.Schedule.Update(ctx, schedule); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return pkgerrors.NewRejection(pkgerrors.CodeStaleState,
					"排期已被并发修改，请刷新后重试").
					WithContext(string(role), string(schedule.ApprovalStatus), "update")
			}
			return err
		}

		updated = schedule
		return txRepo.ScheduleHistory.Append(ctx, &model.ScheduleHistory{
			ScheduleID: schedule.ScheduleID,
			ChangeType: "update",
			OldValue:   oldSnap,
			NewValue:   marshalSnapshot(snapshotOf(schedule)),
			ChangedBy:  actor.ID,
			ChangedAt:  time.Now(),
		})
	})
	if err != nil {
		if rej, ok := pkgerrors.AsRejection(err); ok {
			return nil, rej
		}
		s.logger.Error("保存排期失败", zap.Error(err))
		return nil, err
	}

	resp := toScheduleResponse(updated)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *scheduleService) Get(ctx context.Context, scheduleID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewRejection(pkgerrors.CodeNotFound, "排期不存在")
		}
		s.logger.Error("查询排期失败", zap.Error(err))
		return nil, err
	}

	resp := toScheduleResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	filter := repository.ScheduleFilter{
		Status:     model.Status(req.Status),
		ShootDate:  req.ShootDate,
		ActiveOnly: true,
	}

	schedules, total, err := s.repo.Schedule.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询排期列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		result = append(result, toScheduleResponse(&schedules[i]))
	}
	return result, total, nil
}

func (s *scheduleService) ListPendingRequests(ctx context.Context, req *dto.PaginationRequest) ([]dto.ScheduleResponse, int64, error) {
	filter := repository.ScheduleFilter{
		StatusIn: []model.Status{
			model.StatusApprovalRequested,
			model.StatusModificationRequested,
			model.StatusCancellationRequested,
			model.StatusDeletionRequested,
		},
		ActiveOnly: true,
	}

	schedules, total, err := s.repo.Schedule.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询待处理申请失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		result = append(result, toScheduleResponse(&schedules[i]))
	}
	return result, total, nil
}

func (s *scheduleService) ListHistory(ctx context.Context, scheduleID string, req *dto.ScheduleHistoryListRequest) ([]dto.ScheduleHistoryResponse, int64, error) {
	entries, total, err := s.repo.ScheduleHistory.ListBySchedule(ctx, scheduleID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询排期历史失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ScheduleHistoryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, dto.ScheduleHistoryResponse{
			ID:         e.HistoryID,
			ScheduleID: e.ScheduleID,
			ChangeType: e.ChangeType,
			OldValue:   e.OldValue,
			NewValue:   e.NewValue,
			Reason:     e.Reason,
			ChangedBy:  e.ChangedBy,
			ChangedAt:  e.ChangedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return result, total, nil
}

// ════════════════════════════════════════════════════════════
// 内部辅助
// ════════════════════════════════════════════════════════════

// reject 统一出口：记录指标后原样返回业务拒绝；基础设施错误记录日志
func (s *scheduleService) reject(err error, action model.Action) error {
	if rej, ok := pkgerrors.AsRejection(err); ok {
		s.countTransition(action, "rejected")
		return rej
	}
	s.countTransition(action, "error")
	return err
}

func (s *scheduleService) countTransition(action model.Action, result string) {
	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(action), result).Inc()
	}
}

// notifyAfterCommit 提交成功后尽力而为地发出通知
// 独立 goroutine + 独立超时上下文：通知失败只记 Warn，绝不影响已提交的转换。
func (s *scheduleService) notifyAfterCommit(schedule *model.Schedule, action model.Action, actor Actor) {
	if s.notifier == nil || schedule == nil {
		return
	}
	scheduleID := schedule.ScheduleID
	var recipient string
	if action.IsRequest() || action == model.ActionRequest {
		// 申请类动作通知管理员（由通知服务定位具体管理员）
		recipient = ""
	} else if schedule.CreatedBy != nil {
		// 审批/裁决类动作通知排期创建者
		recipient = *schedule.CreatedBy
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, scheduleID, string(action), actor.ID, recipient); err != nil {
			s.logger.Warn("通知发送失败（不影响已提交的状态变更）",
				zap.String("schedule_id", scheduleID),
				zap.String("action", string(action)),
				zap.Error(err),
			)
		}
	}()
}

// historyChangeType 动作到历史类型的映射
func historyChangeType(action model.Action) string {
	switch action {
	case model.ActionModifyApprove:
		return "modify_approve"
	case model.ActionModifyReject:
		return "modify_reject"
	default:
		return "status_change"
	}
}

// ── 字段校验 ──

// validateScheduleFields 全量必填字段校验（temp 与直接保存动作使用）
func validateScheduleFields(shootDate, startTime, endTime, courseName, professorName, shootingType string) *pkgerrors.Rejection {
	if strings.TrimSpace(courseName) == "" ||
		strings.TrimSpace(professorName) == "" ||
		strings.TrimSpace(shootingType) == "" {
		return pkgerrors.NewRejection(pkgerrors.CodeValidationFailed, "课程/教授/拍摄类型为必填项")
	}
	return validateTimeRange(shootDate, startTime, endTime)
}

// validateTimeRange 日期与时间区间校验（start < end 恒成立）
func validateTimeRange(shootDate, startTime, endTime string) *pkgerrors.Rejection {
	if !validDate(shootDate) {
		return pkgerrors.NewRejection(pkgerrors.CodeValidationFailed, "拍摄日期格式无效（应为 YYYY-MM-DD）")
	}
	start, err := clockToMinutes(startTime)
	if err != nil {
		return pkgerrors.NewRejection(pkgerrors.CodeValidationFailed, "开始时间格式无效（应为 HH:MM）")
	}
	end, err := clockToMinutes(endTime)
	if err != nil {
		return pkgerrors.NewRejection(pkgerrors.CodeValidationFailed, "结束时间格式无效（应为 HH:MM）")
	}
	if start >= end {
		return pkgerrors.NewRejection(pkgerrors.CodeValidationFailed, "开始时间必须早于结束时间")
	}
	return nil
}

// ── 快照与响应转换 ──

// scheduleSnapshot 历史条目中的前后快照（仅业务字段）
type scheduleSnapshot struct {
	ApprovalStatus    string  `json:"approval_status"`
	ShootDate         string  `json:"shoot_date"`
	StartTime         string  `json:"start_time"`
	EndTime           string  `json:"end_time"`
	CourseName        string  `json:"course_name"`
	ProfessorName     string  `json:"professor_name"`
	ShootingType      string  `json:"shooting_type"`
	LocationID        *string `json:"location_id,omitempty"`
	AssignedShooterID *string `json:"assigned_shooter_id,omitempty"`
	IsActive          bool    `json:"is_active"`
	RequestMessage    string  `json:"request_message,omitempty"`
	RequestedBy       *string `json:"requested_by,omitempty"`
	SegmentCount      int     `json:"segment_count,omitempty"` // 仅 admin_split 条目填写
}

func snapshotOf(s *model.Schedule) scheduleSnapshot {
	return scheduleSnapshot{
		ApprovalStatus:    string(s.ApprovalStatus),
		ShootDate:         s.ShootDate,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		CourseName:        s.CourseName,
		ProfessorName:     s.ProfessorName,
		ShootingType:      s.ShootingType,
		LocationID:        s.LocationID,
		AssignedShooterID: s.AssignedShooterID,
		IsActive:          s.IsActive,
		RequestMessage:    s.RequestMessage,
		RequestedBy:       s.RequestedBy,
	}
}

func marshalSnapshot(snap scheduleSnapshot) string {
	b, err := json.Marshal(snap)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// toScheduleResponse 转换排期为响应
func toScheduleResponse(s *model.Schedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:                s.ScheduleID,
		ShootDate:         s.ShootDate,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		CourseName:        s.CourseName,
		ProfessorName:     s.ProfessorName,
		ShootingType:      s.ShootingType,
		ApprovalStatus:    string(s.ApprovalStatus),
		IsActive:          s.IsActive,
		AssignedShooterID: s.AssignedShooterID,
		RequestMessage:    s.RequestMessage,
		ParentScheduleID:  s.ParentScheduleID,
		IsAdminSplit:      s.IsAdminSplit,
		AdminSplitReason:  s.AdminSplitReason,
		OriginalStartTime: s.OriginalStartTime,
		OriginalEndTime:   s.OriginalEndTime,
		SegmentOrder:      s.SegmentOrder,
		CreatedAt:         s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:         s.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}

	if s.Location != nil {
		resp.Location = &dto.LocationBrief{
			ID:   s.Location.LocationID,
			Name: s.Location.Name,
			Type: s.Location.LocationType,
		}
	}

	return resp
}
