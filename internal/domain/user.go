package domain

// UserContext is the authenticated user context injected into request handlers.
// Tokens are issued by the surrounding platform; this service only validates them.
type UserContext struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Role constants carried in token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
