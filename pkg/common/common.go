package common

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// CommonResponse is a lightweight response wrapper used by HTTP handlers.
type CommonResponse struct {
	Code  int         `json:"code"`
	Msg   string      `json:"msg,omitempty"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// ReturnOK creates a HTTP 200 response.
func (CommonResponse) ReturnOK() CommonResponse {
	return CommonResponse{Code: 200}
}

// StatusResponse is the {"status","message"} body of the visitor forms.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func Success(msg string) StatusResponse { return StatusResponse{Status: "success", Message: msg} }
func Failure(msg string) StatusResponse { return StatusResponse{Status: "error", Message: msg} }

var (
	versionRegexp = regexp.MustCompile(`^v?\d+(\.\d+){0,2}$`)

	ErrInvalidVersion = errors.New("version must follow semantic format such as 1.0.0")
)

// ValidateVersion ensures the supplied version string matches a semantic pattern.
func ValidateVersion(version string) error {
	if version == "" || !versionRegexp.MatchString(version) {
		return ErrInvalidVersion
	}
	return nil
}

// VersionToNumber converts a semantic version (major.minor.patch, optional
// leading v) into a sortable integer.
func VersionToNumber(version string) int64 {
	version = strings.TrimPrefix(version, "v")
	if version == "" {
		return 0
	}
	parts := strings.Split(version, ".")
	var numbers [3]int64
	for i := 0; i < len(parts) && i < 3; i++ {
		if n, err := strconv.ParseInt(parts[i], 10, 64); err == nil {
			numbers[i] = n
		}
	}
	return numbers[0]*1_000_000 + numbers[1]*1_000 + numbers[2]
}

type contextKey string

const (
	adminIDKey  contextKey = "admin_id"
	clientIPKey contextKey = "client_ip"
)

// ContextWithAdminID stores the authenticated admin ID into context.
func ContextWithAdminID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, adminIDKey, id)
}

// GetAdminID retrieves the authenticated admin ID from context.
func GetAdminID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(adminIDKey).(uint)
	return id, ok && id > 0
}

// ContextWithClientIP stores the client address into context.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP retrieves the client address from context.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
