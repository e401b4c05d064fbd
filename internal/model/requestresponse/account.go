package requestresponse

// RegisterRequest : запрос на начало регистрации
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// ConfirmTokenRequest : подтверждение операции одноразовым токеном
type ConfirmTokenRequest struct {
	Token string `json:"token" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
}

// PasswordResetRequest : запрос ссылки на сброс пароля
type PasswordResetRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// PasswordResetConfirmRequest : установка нового пароля по токену сброса
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	NewPassword string `json:"new_password" example:"N3wP@ssw0rd"`
}

// EmailChangeRequest : запрос на смену email
type EmailChangeRequest struct {
	NewEmail string `json:"new_email" example:"new@example.com"`
}

// PasswordChangeRequest : запрос токена смены пароля из активной сессии
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password" example:"P@ssw0rd123"`
}

// PasswordChangeTokenResponse : токен смены пароля
type PasswordChangeTokenResponse struct {
	Response struct {
		Token string `json:"token" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	} `json:"response"`
}

// PasswordChangeConfirmRequest : подтверждение смены пароля
type PasswordChangeConfirmRequest struct {
	Token       string `json:"token" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	NewPassword string `json:"new_password" example:"N3wP@ssw0rd"`
}

// AdminTransferRequest : запрос на передачу прав администратора
type AdminTransferRequest struct {
	TargetID int64 `json:"target_id" example:"42"`
}

// PhoneVerificationStartRequest : запрос на привязку номера телефона
type PhoneVerificationStartRequest struct {
	Phone string `json:"phone" example:"+79991234567"`
}

// PhoneVerificationStartResponse : окно верификации в секундах
type PhoneVerificationStartResponse struct {
	Response struct {
		TTL int `json:"ttl" example:"300"`
	} `json:"response"`
}

// PhoneVerificationConfirmRequest : подтверждение номера кодом
type PhoneVerificationConfirmRequest struct {
	Code string `json:"code" example:"123456"`
}

// BlockUserRequest : блокировка пользователя администратором
type BlockUserRequest struct {
	Reason string `json:"reason" example:"spam"`
}
