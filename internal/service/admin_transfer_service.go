package service

import (
	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/ports"
	"account-server/internal/token"
	"account-server/internal/util"
	"context"
	"errors"
	"fmt"
)

// AdminTransferService — передача прав администратора другому пользователю.
// Request инициируется действующим администратором, confirm выполняет
// получатель: после подтверждения роли меняются атомарно в одной транзакции.
type AdminTransferService struct {
	db             *config.Database
	userRepository ports.UserRepository
	sessionService ports.SessionService
	registry       *token.Registry[token.TransferPayload]
	mailer         ports.Mailer
	frontendURL    string
	tokenTTLMin    int
}

func NewAdminTransferService(
	db *config.Database,
	userRepository ports.UserRepository,
	sessionService ports.SessionService,
	registry *token.Registry[token.TransferPayload],
	mailer ports.Mailer,
	frontendURL string,
	tokenTTLSeconds int,
) *AdminTransferService {
	return &AdminTransferService{
		db:             db,
		userRepository: userRepository,
		sessionService: sessionService,
		registry:       registry,
		mailer:         mailer,
		frontendURL:    frontendURL,
		tokenTTLMin:    tokenTTLSeconds / 60,
	}
}

// Request : проверяет, что инициатор — администратор, а получатель — активный
// обычный пользователь, и шлёт получателю ссылку подтверждения.
func (s *AdminTransferService) Request(ctx context.Context, adminID, targetID int64) error {
	if adminID == targetID {
		return apperr.ErrForbidden
	}

	admin, err := s.userRepository.FindByID(ctx, s.db, adminID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrInternal
	}
	if admin.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}

	target, err := s.userRepository.FindByID(ctx, s.db, targetID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrInternal
	}
	if target.Role == model.RoleAdmin || target.IsBlocked {
		return apperr.ErrInvalidState
	}

	tokenStr, err := s.registry.Issue(ctx, token.TransferPayload{
		FromID: adminID,
		ToID:   targetID,
	})
	if err != nil {
		return err
	}

	confirmURL := fmt.Sprintf("%s/confirm-admin-transfer?token=%s", s.frontendURL, tokenStr)
	text := fmt.Sprintf("Hi, this is an automated message, please do not reply! "+
		"You have been offered administrator rights. "+
		"You can accept them by clicking the link below (within %d min): %s",
		s.tokenTTLMin, confirmURL)
	html := fmt.Sprintf("<p>Hi, this is an automated message, please do not reply!</p>"+
		"<p>You have been offered administrator rights.</p>"+
		"<p>You can accept them by clicking the link below (within %d min):</p>"+
		"<p><a href=%q>%s</a></p>", s.tokenTTLMin, confirmURL, confirmURL)
	if err := s.mailer.Send(target.Email, "Administrator rights transfer", text, html); err != nil {
		return apperr.ErrInternal
	}

	return nil
}

// Confirm завершает передачу прав.
//
// Подтвердить может только получатель из payload — иначе apperr.ErrForbidden.
// Предусловия перепроверяются по свежим строкам внутри транзакции: если
// инициатор уже не администратор или получатель успел стать администратором,
// операция откатывается с apperr.ErrInvalidState, при этом токен остаётся
// в хранилище до истечения TTL. Обе роли меняются в одной транзакции.
func (s *AdminTransferService) Confirm(ctx context.Context, currentUserID int64, tokenStr string) (*model.TokensPair, error) {
	payload, err := s.registry.Consume(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if payload.ToID != currentUserID {
		return nil, apperr.ErrForbidden
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		util.LogError("[AdminTransferService] не удалось открыть транзакцию", err)
		return nil, apperr.ErrInternal
	}
	defer tx.Rollback()

	from, err := s.userRepository.FindByID(ctx, tx, payload.FromID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.ErrInternal
	}
	if from.Role != model.RoleAdmin {
		return nil, apperr.ErrInvalidState
	}

	to, err := s.userRepository.FindByID(ctx, tx, payload.ToID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.ErrInternal
	}
	if to.Role == model.RoleAdmin || to.IsBlocked {
		return nil, apperr.ErrInvalidState
	}

	if err := s.userRepository.UpdateRole(ctx, tx, payload.FromID, model.RoleUser); err != nil {
		return nil, apperr.ErrInternal
	}
	if err := s.userRepository.UpdateRole(ctx, tx, payload.ToID, model.RoleAdmin); err != nil {
		return nil, apperr.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		util.LogError("[AdminTransferService] ошибка коммита транзакции", err)
		return nil, apperr.ErrInternal
	}

	s.registry.Delete(ctx, tokenStr)

	text := fmt.Sprintf("Hi, this is an automated message, please do not reply! "+
		"Your administrator rights have been transferred to %s.", to.Email)
	html := fmt.Sprintf("<p>Hi, this is an automated message, please do not reply!</p>"+
		"<p>Your administrator rights have been transferred to <b>%s</b>.</p>", to.Email)
	if err := s.mailer.Send(from.Email, "Administrator rights transferred", text, html); err != nil {
		util.LogError("[AdminTransferService] не удалось отправить уведомление инициатору", err)
	}

	return s.sessionService.Login(ctx, currentUserID)
}
