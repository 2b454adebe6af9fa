package contextkeys

type contextKey string

const (
	AdminIDKey   contextKey = "AdminID"
	AdminRoleKey contextKey = "AdminRole"
	RequestIDKey contextKey = "RequestID"
)
