// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type CreateUserRequest struct {
	Username  string `json:"username"   validate:"required,username,max=150"`
	Email     string `json:"email"      validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       string `json:"bio"        validate:"omitempty,max=2000"`
	Role      string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio,omitempty"        validate:"omitempty,max=2000"`
	Role      *string `json:"role,omitempty"       validate:"omitempty,oneof=user moderator admin"`
}

// UpdateMeRequest deliberately has no role field: the profile endpoint
// never changes privileges, whatever the request body says.
type UpdateMeRequest struct {
	Email     *string `json:"email,omitempty"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio,omitempty"        validate:"omitempty,max=2000"`
}

type UserResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
