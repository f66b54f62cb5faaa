package utils

import "github.com/google/uuid"

// GenerateUUID tạo UUID v4 dùng làm request ID
func GenerateUUID() string {
	return uuid.NewString()
}
