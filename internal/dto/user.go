package dto

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the access token issued by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}
