package main

import (
	"account-server/config"
	"account-server/internal/handler"
	"account-server/internal/notifier"
	"account-server/internal/ports"
	"account-server/internal/repository"
	"account-server/internal/security"
	"account-server/internal/service"
	"account-server/internal/token"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const activityFlushInterval = time.Minute

// @title Account-server
// @version 1.0
// @description REST API управления аккаунтами: сессии, одноразовые токены, переходы состояний

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Shutdown(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Shutdown(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository()
	cacheRepo := repository.NewCacheRepository(redisClient)

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка создания JWT сервиса: %v", err)
	}

	mailer := notifier.NewSMTPMailer(&cfg.Mail)

	resetRegistry := token.NewRegistry[token.ResetPayload](cacheRepo, token.PurposeReset, time.Duration(cfg.TokenTTL.Reset)*time.Second)
	registrationRegistry := token.NewRegistry[token.RegistrationPayload](cacheRepo, token.PurposeRegistration, time.Duration(cfg.TokenTTL.Registration)*time.Second)
	emailChangeRegistry := token.NewRegistry[token.EmailChangePayload](cacheRepo, token.PurposeEmailChange, time.Duration(cfg.TokenTTL.EmailChange)*time.Second)
	passwordChangeRegistry := token.NewRegistry[token.PasswordChangePayload](cacheRepo, token.PurposePasswordChange, time.Duration(cfg.TokenTTL.PasswordChange)*time.Second)
	transferRegistry := token.NewRegistry[token.TransferPayload](cacheRepo, token.PurposeAdminTransfer, time.Duration(cfg.TokenTTL.AdminTransfer)*time.Second)

	blacklistService := service.NewBlacklistService(cacheRepo, jwtService)
	sessionService := service.NewSessionService(db, userRepo, jwtService, blacklistService)
	activityService := service.NewActivityService(db, userRepo, cacheRepo, cfg.TokenTTL.Activity)

	registrationService := service.NewRegistrationService(db, userRepo, sessionService, registrationRegistry, mailer, cfg.FrontendURL, cfg.TokenTTL.Registration)
	passwordResetService := service.NewPasswordResetService(db, userRepo, sessionService, resetRegistry, mailer, cfg.FrontendURL, cfg.TokenTTL.Reset)
	emailChangeService := service.NewEmailChangeService(db, userRepo, sessionService, emailChangeRegistry, mailer, cfg.FrontendURL, cfg.TokenTTL.EmailChange)
	passwordChangeService := service.NewPasswordChangeService(db, userRepo, sessionService, blacklistService, passwordChangeRegistry)
	adminTransferService := service.NewAdminTransferService(db, userRepo, sessionService, transferRegistry, mailer, cfg.FrontendURL, cfg.TokenTTL.AdminTransfer)
	phoneVerificationService := service.NewPhoneVerificationService(db, userRepo, cacheRepo, &cfg.PhoneVerification)
	adminService := service.NewAdminService(db, userRepo, cacheRepo, mailer)

	authHandler := handler.NewAuthenticationHandler(sessionService, jwtService)
	accountHandler := handler.NewAccountHandler(registrationService, passwordResetService, emailChangeService, passwordChangeService, phoneVerificationService)
	adminHandler := handler.NewAdminHandler(adminService, adminTransferService)

	authMiddleware := handler.AuthMiddleware(jwtService, blacklistService, activityService)
	adminMiddleware := handler.AdminMiddleware(db, userRepo)

	setupAuthRoutes(router, authHandler, authMiddleware)
	setupAccountRoutes(router, accountHandler, authMiddleware)
	setupAdminRoutes(router, adminHandler, authMiddleware, adminMiddleware)

	flushDone := runActivityFlusher(ctx, activityService)

	runServer(ctx, srv)

	cancel()
	<-flushDone
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, auth func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/", h.Login)
			r.Post("/refresh", h.RefreshToken)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/me", h.GetCurrentUser)
			r.Post("/logout", h.Logout)
		})
	})
}

func setupAccountRoutes(r chi.Router, h *handler.AccountHandler, auth func(http.Handler) http.Handler) {
	r.Route("/api/account", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/register/confirm", h.ConfirmRegistration)
			r.Post("/password-reset", h.RequestPasswordReset)
			r.Post("/password-reset/confirm", h.ConfirmPasswordReset)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/email", h.RequestEmailChange)
			r.Post("/email/confirm", h.ConfirmEmailChange)
			r.Post("/password", h.RequestPasswordChange)
			r.Post("/password/confirm", h.ConfirmPasswordChange)
			r.Post("/phone", h.StartPhoneVerification)
			r.Post("/phone/confirm", h.ConfirmPhoneVerification)
			r.Delete("/phone", h.CancelPhoneVerification)
		})
	})
}

func setupAdminRoutes(r chi.Router, h *handler.AdminHandler, auth func(http.Handler) http.Handler, admin func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Use(admin)
			r.Post("/transfer", h.RequestAdminTransfer)
			r.Post("/users/{id}/block", h.BlockUser)
			r.Delete("/users/{id}/block", h.UnblockUser)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth)
			// подтверждение выполняет получатель прав, ещё не администратор
			r.Post("/transfer/confirm", h.ConfirmAdminTransfer)
		})
	})
}

// runActivityFlusher периодически переносит накопленную активность в БД.
// Финальный flush выполняется при остановке, чтобы не потерять хвост.
func runActivityFlusher(ctx context.Context, activityService ports.ActivityTracker) <-chan struct{} {
	done := make(chan struct{})

	flush := func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		batch, err := activityService.Flush(flushCtx)
		if err != nil {
			log.Printf("ошибка выгрузки активности: %v", err)
			return
		}
		if len(batch) > 0 {
			activityService.Apply(flushCtx, batch)
		}
	}

	go func() {
		ticker := time.NewTicker(activityFlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				flush()
			case <-ctx.Done():
				flush()
				close(done)
				return
			}
		}
	}()

	return done
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
