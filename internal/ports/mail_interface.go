package ports

// Mailer : внешний коллаборатор доставки уведомлений.
// Отправка после коммита — fire-and-forget, ядро не повторяет и не блокируется.
type Mailer interface {
	Send(toAddress, subject, textBody, htmlBody string) error
	// From возвращает служебный адрес отправителя —
	// request-операции отказывают, если он указан как целевой email
	From() string
}
