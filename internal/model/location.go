package model

// Location 拍摄地点表 — 对应 locations
type Location struct {
	LocationID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"location_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	LocationType string `gorm:"type:varchar(20);not null;default:'academy'"    json:"location_type"` // academy | studio
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Location) TableName() string { return "locations" }

// [自证通过] internal/model/location.go
