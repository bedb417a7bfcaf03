package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/dto"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/model"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/repository"
)

// NotificationService 站内通知服务
// 排期工作流提交后由服务层尽力而为地调用；失败仅记日志，不回滚业务。
type NotificationService interface {
	// Notify 针对一次排期动作发出通知
	// recipient 为空表示通知全体管理员（申请类动作）。
	Notify(ctx context.Context, scheduleID, action, actorID, recipient string) error
	// ListMine 当前用户的通知列表
	ListMine(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

// 动作到通知标题的映射
var actionTitles = map[string]string{
	"request":        "新排期等待审批",
	"modify_request": "收到排期修改申请",
	"cancel_request": "收到排期取消申请",
	"delete_request": "收到排期删除申请",
	"approve":        "排期已批准",
	"confirm":        "排期已确认",
	"cancel":         "排期已取消",
	"delete":         "排期已删除",
	"modify_approve": "修改申请已批准",
	"modify_reject":  "修改申请已驳回",
	"cancel_approve": "取消申请已批准",
	"delete_approve": "删除申请已批准",
}

func (s *notificationService) Notify(ctx context.Context, scheduleID, action, actorID, recipient string) error {
	title, ok := actionTitles[action]
	if !ok {
		// temp 等无需通知的动作
		return nil
	}

	recipients := []string{recipient}
	if recipient == "" {
		admins, err := s.repo.User.ListByRoles(ctx, []string{RawRoleSystemAdmin, RawRoleScheduleAdmin})
		if err != nil {
			return err
		}
		recipients = recipients[:0]
		for _, admin := range admins {
			if admin.UserID == actorID {
				continue
			}
			recipients = append(recipients, admin.UserID)
		}
	}

	relatedType := "schedule"
	for _, userID := range recipients {
		if userID == "" {
			continue
		}
		n := &model.Notification{
			UserID:      userID,
			Type:        "schedule_" + action,
			Title:       title,
			Content:     fmt.Sprintf("排期 %s 发生动作：%s", scheduleID, action),
			RelatedType: &relatedType,
			RelatedID:   &scheduleID,
		}
		n.CreatedBy = &actorID
		if err := s.repo.Notification.Create(ctx, n); err != nil {
			s.logger.Warn("写入通知失败",
				zap.String("user_id", userID),
				zap.String("schedule_id", scheduleID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *notificationService) ListMine(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, dto.NotificationResponse{
			ID:        n.NotificationID,
			Type:      n.Type,
			Title:     n.Title,
			Content:   n.Content,
			IsRead:    n.IsRead,
			RelatedID: n.RelatedID,
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return result, total, nil
}
