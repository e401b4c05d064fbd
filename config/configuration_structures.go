package config

import "fmt"

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret    string `yaml:"access_secret"`
	RefreshSecret   string `yaml:"refresh_secret"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// TokenTTLConfig : сроки жизни одноразовых токенов, в секундах
type TokenTTLConfig struct {
	Reset          int `yaml:"reset"`
	Registration   int `yaml:"registration"`
	EmailChange    int `yaml:"email_change"`
	PasswordChange int `yaml:"password_change"`
	AdminTransfer  int `yaml:"admin_transfer"`
	Activity       int `yaml:"activity"`
}

type PhoneVerificationConfig struct {
	TTL         int `yaml:"ttl"`
	CodeLength  int `yaml:"code_length"`
	MaxAttempts int `yaml:"max_attempts"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Validate : проверяет обязательные секреты и TTL при старте приложения.
// Отсутствующий секрет или неположительный TTL — фатальная ошибка конфигурации,
// а не ошибка времени запроса.
func (cfg *AppConfig) Validate() error {
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return fmt.Errorf("не заданы секреты подписи JWT")
	}
	if cfg.JWT.AccessTokenTTL == "" || cfg.JWT.RefreshTokenTTL == "" {
		return fmt.Errorf("не заданы сроки жизни JWT")
	}

	ttls := map[string]int{
		"reset":           cfg.TokenTTL.Reset,
		"registration":    cfg.TokenTTL.Registration,
		"email_change":    cfg.TokenTTL.EmailChange,
		"password_change": cfg.TokenTTL.PasswordChange,
		"admin_transfer":  cfg.TokenTTL.AdminTransfer,
		"activity":        cfg.TokenTTL.Activity,
	}
	for name, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("TTL %q должен быть положительным числом секунд, получено %d", name, ttl)
		}
	}

	if cfg.PhoneVerification.TTL <= 0 || cfg.PhoneVerification.MaxAttempts <= 0 {
		return fmt.Errorf("некорректная конфигурация phone verification")
	}
	if cfg.PhoneVerification.CodeLength <= 0 {
		return fmt.Errorf("длина кода верификации должна быть положительной")
	}

	return nil
}
