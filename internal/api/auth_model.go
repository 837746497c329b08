package api

// Context key types to avoid collisions
type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "token"
)

// HTTP header constants
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	ContentTypeHeader   = "Content-Type"
	ContentTypeJSON     = "application/json"
	ContentTypeText     = "text/plain; charset=utf-8"
	ContentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	TokenQueryParam     = "token"
)

// HTTP path constants
const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
	LoginPath   = "/api/auth/login"
	SessionPath = "/api/session"
)

// Error label constants, sent as the "error" field
const (
	ErrAuthHeaderRequired = "Authorization header required"
	ErrInvalidAuthHeader  = "Invalid authorization header format"
	ErrInvalidToken       = "Invalid token"
	ErrNoActiveSession    = "No active session"
	ErrInvalidJSON        = "Invalid JSON format"
	ErrValidationFailed   = "Validation failed"
	ErrNotFound           = "Not found"
	ErrUnavailable        = "Service unavailable"
	ErrInternal           = "Internal server error"

	ErrUserNotFound = "user not found in context"
)

// Log message constants
const (
	LogTokenValidationFailed = "Session token validation failed"
	LogRequestFailed         = "Request failed"
)
