// File: internal/dtos/auth.go
package dtos

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthenticationResponse struct {
	Token  string `json:"token"`
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
}
