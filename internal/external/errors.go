package external

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrNotConfigured client chưa có base URL hoặc API key
	ErrNotConfigured = errors.New("external: client not configured")
	// ErrInvalidCoordinates provider trả về tọa độ không phải số hữu hạn
	ErrInvalidCoordinates = errors.New("external: invalid coordinates")
)

// maxErrorBody giới hạn số byte body được giữ lại trong StatusError
const maxErrorBody = 4096

// StatusError provider trả về HTTP status không thành công
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.Status, e.Body)
}

// IsStatus kiểm tra err có phải StatusError với status cho trước không
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

func newStatusError(service string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Service: service,
		Status:  resp.StatusCode,
		Body:    strings.TrimSpace(string(body)),
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
