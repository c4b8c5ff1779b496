package domain

import "errors"

// Ошибки уровня данных.
var (
	// ErrValidation — входные данные не прошли локальную проверку.
	// Такие данные никогда не отправляются в каталог.
	ErrValidation = errors.New("validation failed")
)

// ErrorKind — классификация ошибки в отчётах.
//
// Kind позволяет вызывающему повторить ровно тот сабсет работы,
// который упал, не пересылая уже успешные операции.
type ErrorKind string

const (
	// KindValidation — некорректный вход, удалённый вызов не делался.
	KindValidation ErrorKind = "VALIDATION"

	// KindConflict — в каталоге уже есть запись с другими size/checksum.
	// Сигнал о нарушении целостности данных, никогда не ретраится.
	KindConflict ErrorKind = "CONFLICT"

	// KindNotFound — объект не найден в каталоге.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindNotRegistered — файл не зарегистрирован как реплика,
	// присоединять его к dataset'у нельзя.
	KindNotRegistered ErrorKind = "NOT_REGISTERED"

	// KindInvalidState — недопустимый переход состояния dataset'а.
	KindInvalidState ErrorKind = "INVALID_STATE"

	// KindTransient — сетевая/сервисная недоступность. Ретраится.
	KindTransient ErrorKind = "TRANSIENT"

	// KindPermanent — ошибка аутентификации/авторизации. Не ретраится.
	KindPermanent ErrorKind = "PERMANENT"

	// KindExhausted — бюджет повторных попыток исчерпан без успеха.
	KindExhausted ErrorKind = "EXHAUSTED"
)

// OutcomeError — структурированная ошибка per-file результата.
type OutcomeError struct {
	// Kind — классификация ошибки.
	Kind ErrorKind `json:"kind"`

	// Message — текст ошибки.
	Message string `json:"message"`
}

// Error реализует интерфейс error.
func (e *OutcomeError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// NewOutcomeError создаёт OutcomeError из kind и обычной ошибки.
func NewOutcomeError(kind ErrorKind, err error) *OutcomeError {
	return &OutcomeError{Kind: kind, Message: err.Error()}
}
