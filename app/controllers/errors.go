package controllers

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/job-geocoder/app/responses"
)

// RequestIDKey key lưu request ID trong gin.Context
const RequestIDKey = "request_id"

// abortWithError trả ErrorResponse kèm timestamp và request ID
func abortWithError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: c.GetString(RequestIDKey),
	})
}

// bindOptionalJSON như ShouldBindJSON nhưng chấp nhận body rỗng
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
