package service

// Credential is one way of proving who a caller is. The set is closed:
// PasswordCredential and TelegramCredential.
type Credential interface {
	method() string
}

// PasswordCredential is an email and password pair.
type PasswordCredential struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=1"`
}

// TelegramCredential is a raw WebApp initData string.
type TelegramCredential struct {
	InitData string `validate:"required"`
}

const (
	MethodPassword = "password"
	MethodTelegram = "telegram"
)

func (PasswordCredential) method() string { return MethodPassword }

func (TelegramCredential) method() string { return MethodTelegram }
