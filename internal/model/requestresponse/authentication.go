package requestresponse

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// TokensResponse : пара токенов со сроками действия
type TokensResponse struct {
	Response struct {
		AccessToken         string `json:"access_token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
		RefreshToken        string `json:"refresh_token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
		AccessTokenExpires  int64  `json:"access_token_expires" example:"1756500000"`
		RefreshTokenExpires int64  `json:"refresh_token_expires" example:"1757100000"`
	} `json:"response"`
}

// RefreshTokenRequest : запрос на обновление пары токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

// CurrentUserResponse : информация о текущем пользователе
type CurrentUserResponse struct {
	Response struct {
		UserID int64 `json:"user_id" example:"42"`
	} `json:"response"`
}

// MessageResponse : универсальный ответ без данных
type MessageResponse struct {
	Response struct {
		Message string `json:"message" example:"ok"`
	} `json:"response"`
}

// ErrorDetail : код и текст ошибки
type ErrorDetail struct {
	Code int    `json:"code" example:"400"`
	Text string `json:"text" example:"invalid request body"`
}

// ErrorResponse : ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
