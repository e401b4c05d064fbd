package token

import "fmt"

// Префиксы ключей ephemeral-хранилища, по одному на назначение токена
const (
	PurposeReset          = "reset:"
	PurposeRegistration   = "register:"
	PurposeEmailChange    = "email-change:"
	PurposePasswordChange = "password-change:"
	PurposeAdminTransfer  = "admin:transfer:"
)

// ResetPayload : сброс пароля
type ResetPayload struct {
	UserID int64 `json:"userId"`
}

func (p ResetPayload) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("отсутствует userId")
	}
	return nil
}

// RegistrationPayload : подтверждение регистрации.
// Пароль хэшируется до записи в хранилище, открытый пароль туда не попадает.
type RegistrationPayload struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
}

func (p RegistrationPayload) Validate() error {
	if p.Email == "" || p.PasswordHash == "" {
		return fmt.Errorf("отсутствует email или password")
	}
	return nil
}

// EmailChangePayload : смена email
type EmailChangePayload struct {
	UserID   int64  `json:"userId"`
	NewEmail string `json:"newEmail"`
}

func (p EmailChangePayload) Validate() error {
	if p.UserID <= 0 || p.NewEmail == "" {
		return fmt.Errorf("отсутствует userId или newEmail")
	}
	return nil
}

// PasswordChangePayload : смена пароля авторизованным пользователем
type PasswordChangePayload struct {
	UserID int64 `json:"userId"`
}

func (p PasswordChangePayload) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("отсутствует userId")
	}
	return nil
}

// TransferPayload : передача прав администратора
type TransferPayload struct {
	FromID int64 `json:"fromId"`
	ToID   int64 `json:"toId"`
}

func (p TransferPayload) Validate() error {
	if p.FromID <= 0 || p.ToID <= 0 {
		return fmt.Errorf("отсутствует fromId или toId")
	}
	return nil
}
