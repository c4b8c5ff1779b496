package catalog

import (
	"errors"

	"github.com/shaiso/Rucioflow/internal/domain"
	"github.com/shaiso/Rucioflow/internal/retry"
)

// Ошибки каталога — фиксированный набор tagged-вариантов.
//
// Каждый ответ каталога сводится к одному из них, поэтому
// классификация в retry и построение outcome'ов исчерпывающие.
var (
	// ErrAlreadyExists — идентичная запись уже есть в каталоге.
	// Для create-операций терминальна, но вызывающий трактует её
	// как эквивалент успеха (идемпотентный повтор).
	ErrAlreadyExists = errors.New("already exists in catalog")

	// ErrConflict — в каталоге есть запись с теми же (scope, lfn),
	// но другими size/checksum. Нарушение целостности, не ретраится
	// и никогда молча не перезаписывается.
	ErrConflict = errors.New("conflicting record in catalog")

	// ErrNotFound — объект не найден в каталоге.
	ErrNotFound = errors.New("not found in catalog")

	// ErrDenied — аутентификация/авторизация не прошла.
	// Повтор не исправит учётные данные.
	ErrDenied = errors.New("catalog access denied")

	// ErrTransient — сеть/таймаут/5xx. Ретраится.
	ErrTransient = errors.New("catalog temporarily unavailable")
)

// Classify — каноническая классификация ошибок каталога для retry.Do:
// транзиентные ошибки ретраятся, всё остальное терминально.
func Classify(err error) retry.Class {
	if errors.Is(err, ErrTransient) {
		return retry.Retryable
	}
	return retry.Terminal
}

// Kind сводит ошибку каталога к domain.ErrorKind для отчётов.
func Kind(err error) domain.ErrorKind {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return domain.KindValidation
	case errors.Is(err, ErrConflict):
		return domain.KindConflict
	case errors.Is(err, ErrNotFound):
		return domain.KindNotFound
	case errors.Is(err, ErrDenied):
		return domain.KindPermanent
	case errors.Is(err, retry.ErrExhausted):
		return domain.KindExhausted
	case errors.Is(err, ErrTransient):
		return domain.KindTransient
	default:
		return domain.KindTransient
	}
}
