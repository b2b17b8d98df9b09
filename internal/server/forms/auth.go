package forms

// Signup is the body of POST /api/auth/signup.
type Signup struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// Signin is the body of POST /api/auth/signin.
type Signin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token carries a refresh token for refresh and logout.
type Token struct {
	RefreshToken string `json:"refreshToken"`
}
