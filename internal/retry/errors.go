package retry

import "errors"

// Ошибки исполнителя повторов.
var (
	// ErrExhausted — бюджет попыток исчерпан без успеха.
	// Оборачивает последнюю ошибку операции.
	ErrExhausted = errors.New("retry attempts exhausted")
)
