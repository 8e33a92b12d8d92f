package session

import "context"

// User es el usuario autenticado tal como lo devuelve la API.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Session es la foto de user + token. Ambos están o ninguno.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"-"`
}

// RegisterInput son los campos del alta de cuenta.
// ConfirmPassword solo se valida del lado cliente; no viaja al servidor.
type RegisterInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

// AuthResult es la respuesta de login/register: {user, token}.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// AuthAPI son las llamadas de auth contra el backend.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	Me(ctx context.Context, token string) (User, error)
}
