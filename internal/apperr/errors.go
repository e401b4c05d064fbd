package apperr

import (
	"errors"

	"github.com/lib/pq"
)

// Виды ошибок подсистемы токенов и переходов состояний.
// Граница (handler) сопоставляет вид с HTTP-статусом, ядро различает их через errors.Is.
var (
	// ErrTokenNotDefined : в запросе отсутствует access токен
	ErrTokenNotDefined = errors.New("токен не передан")

	// ErrInvalidToken : подпись, срок действия, blacklist или несовпадение —
	// наружу не различаются намеренно
	ErrInvalidToken = errors.New("невалидный токен")

	// ErrNotFound : одноразовый токен или пользователь не найден/просрочен/повреждён
	ErrNotFound = errors.New("не найдено")

	// ErrConflict : нарушение уникальности email/nickname/phone
	ErrConflict = errors.New("конфликт уникальности")

	// ErrForbidden : нарушено условие роли или принадлежности токена
	ErrForbidden = errors.New("доступ запрещён")

	// ErrInvalidState : бизнес-предусловие не выполнено
	// (пользователь заблокирован, цель уже админ, новый пароль совпадает со старым)
	ErrInvalidState = errors.New("недопустимое состояние")

	// ErrInternal : хранилище недоступно, подпись не настроена, исчерпан лимит попыток
	ErrInternal = errors.New("внутренняя ошибка сервера")
)

const uniqueViolationCode = "23505"

// IsUniqueViolation : проверяет, является ли ошибка нарушением unique constraint Postgres
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}
