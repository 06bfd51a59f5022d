// AngelaMos | 2026
// dto.go

package auth

type SignupRequest struct {
	Username string `json:"username" validate:"required,username,max=150"`
	Email    string `json:"email"    validate:"required,email,max=254"`
}

type TokenRequest struct {
	Username         string `json:"username"          validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
