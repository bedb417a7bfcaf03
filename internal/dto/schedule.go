package dto

// ── 排期模块 DTO ──

// CreateScheduleRequest 创建排期请求
// Action 仅允许 temp（暂存为 pending）、request（直接提交审批）、
// approve（admin 创建即批准）。
type CreateScheduleRequest struct {
	Action        string  `json:"action"          binding:"required,oneof=temp request approve"`
	ShootDate     string  `json:"shoot_date"      binding:"required"`
	StartTime     string  `json:"start_time"      binding:"required"`
	EndTime       string  `json:"end_time"        binding:"required"`
	CourseName    string  `json:"course_name"`
	ProfessorName string  `json:"professor_name"`
	ShootingType  string  `json:"shooting_type"`
	LocationID    *string `json:"location_id"     binding:"omitempty,uuid"`
}

// SubmitActionRequest 提交生命周期动作请求
// Message 在 *_request 动作下必填（申请理由）；
// FieldEdits 仅在 modify_approve 时生效（与状态变更原子应用）。
type SubmitActionRequest struct {
	Action     string        `json:"action"      binding:"required"`
	Message    string        `json:"message"     binding:"omitempty,max=500"`
	FieldEdits *ScheduleEdit `json:"field_edits" binding:"omitempty"`
}

// ScheduleEdit 可编辑字段集合（nil 表示不修改）
type ScheduleEdit struct {
	ShootDate         *string `json:"shoot_date"`
	StartTime         *string `json:"start_time"`
	EndTime           *string `json:"end_time"`
	CourseName        *string `json:"course_name"`
	ProfessorName     *string `json:"professor_name"`
	ShootingType      *string `json:"shooting_type"`
	LocationID        *string `json:"location_id"         binding:"omitempty,uuid"`
	AssignedShooterID *string `json:"assigned_shooter_id" binding:"omitempty,uuid"`
}

// UpdateScheduleRequest 直接保存字段请求（须通过必填字段校验）
type UpdateScheduleRequest struct {
	ShootDate     string  `json:"shoot_date"      binding:"required"`
	StartTime     string  `json:"start_time"      binding:"required"`
	EndTime       string  `json:"end_time"        binding:"required"`
	CourseName    string  `json:"course_name"     binding:"required"`
	ProfessorName string  `json:"professor_name"  binding:"required"`
	ShootingType  string  `json:"shooting_type"   binding:"required"`
	LocationID    *string `json:"location_id"     binding:"omitempty,uuid"`
}

// SplitScheduleRequest 管理员拆分排期请求
type SplitScheduleRequest struct {
	SplitPoints []string `json:"split_points" binding:"required,min=1"`
	Reason      string   `json:"reason"       binding:"required,max=500"`
}

// ScheduleListRequest 排期列表查询参数
type ScheduleListRequest struct {
	Status    string `form:"status"`
	ShootDate string `form:"shoot_date"`
	PaginationRequest
}

// ScheduleHistoryListRequest 变更历史查询参数
type ScheduleHistoryListRequest struct {
	PaginationRequest
}

// ── 响应 ──

// ScheduleResponse 排期响应
type ScheduleResponse struct {
	ID                string         `json:"id"`
	ShootDate         string         `json:"shoot_date"`
	StartTime         string         `json:"start_time"`
	EndTime           string         `json:"end_time"`
	CourseName        string         `json:"course_name"`
	ProfessorName     string         `json:"professor_name"`
	ShootingType      string         `json:"shooting_type"`
	Location          *LocationBrief `json:"location,omitempty"`
	ApprovalStatus    string         `json:"approval_status"`
	IsActive          bool           `json:"is_active"`
	AssignedShooterID *string        `json:"assigned_shooter_id,omitempty"`
	RequestMessage    string         `json:"request_message,omitempty"`
	ParentScheduleID  *string        `json:"parent_schedule_id,omitempty"`
	IsAdminSplit      bool           `json:"is_admin_split"`
	AdminSplitReason  string         `json:"admin_split_reason,omitempty"`
	OriginalStartTime *string        `json:"original_start_time,omitempty"`
	OriginalEndTime   *string        `json:"original_end_time,omitempty"`
	SegmentOrder      int            `json:"segment_order,omitempty"`
	CreatedAt         string         `json:"created_at"`
	UpdatedAt         string         `json:"updated_at"`
}

// SplitScheduleResponse 拆分结果响应
type SplitScheduleResponse struct {
	Segments     []ScheduleResponse `json:"segments"`
	SegmentCount int                `json:"segment_count"`
}

// ScheduleHistoryResponse 变更历史响应
type ScheduleHistoryResponse struct {
	ID         string  `json:"id"`
	ScheduleID string  `json:"schedule_id"`
	ChangeType string  `json:"change_type"`
	OldValue   string  `json:"old_value,omitempty"`
	NewValue   string  `json:"new_value,omitempty"`
	Reason     *string `json:"reason,omitempty"`
	ChangedBy  string  `json:"changed_by"`
	ChangedAt  string  `json:"changed_at"`
}

// LocationBrief 地点简要信息
type LocationBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// [自证通过] internal/dto/schedule.go
