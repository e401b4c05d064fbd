package model

import "time"

// TokensPair содержит пару access и refresh токенов
// вместе с unix-временем истечения каждого из них
type TokensPair struct {
	// Access токен (JWT, короткоживущий)
	AccessToken string `json:"access_token"`

	// Refresh токен (JWT, для получения новой пары)
	RefreshToken string `json:"refresh_token"`

	AccessTokenExpires  int64 `json:"access_token_expires"`
	RefreshTokenExpires int64 `json:"refresh_token_expires"`
}

// ActivityRecord : запись о последней активности пользователя,
// собранная из ephemeral-хранилища при периодическом сбросе
type ActivityRecord struct {
	UserID int64
	SeenAt time.Time
	Key    string
}
