package dto

type RegisterDTO struct {
	FullName string `form:"fullName" json:"fullName" validate:"required,min=1,max=100"`
	Email    string `form:"email"    json:"email"    validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,strongpwd"`
	Username string `form:"username" json:"username" validate:"required,alphanum,min=3,max=20"`
}

// LoginDTO accepts username or email as the identifier; at least one
// must be present.
type LoginDTO struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email"    validate:"required_without=Username,omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthenticateDTO struct {
	AccessToken string `json:"accessToken" validate:"required"`
}
