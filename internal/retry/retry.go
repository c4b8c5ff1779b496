package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Значения по умолчанию для Policy.
const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultMaxDelay    = 30 * time.Second
)

// Class — решение классификатора по ошибке.
type Class int

const (
	// Retryable — временная ошибка, попытку можно повторить.
	Retryable Class = iota

	// Terminal — повтор не поможет, останавливаемся сразу.
	Terminal
)

// Classifier решает, ретраить ли ошибку.
//
// Классификация — first-class значение: политика повторов задаётся
// явно и тестируется отдельно от кода, который её использует.
type Classifier func(error) Class

// Policy — политика повторных попыток.
type Policy struct {
	// MaxAttempts — максимальное количество попыток, включая первую.
	MaxAttempts int

	// BaseDelay — задержка перед второй попыткой.
	// Далее растёт экспоненциально: BaseDelay * 2^(attempt-1).
	BaseDelay time.Duration

	// MaxDelay — потолок задержки.
	MaxDelay time.Duration
}

// WithDefaults возвращает политику с заполненными значениями по умолчанию.
func (p Policy) WithDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	return p
}

// Do выполняет op с повторами согласно policy.
//
// После каждой неудачи classify решает: Retryable — ждём backoff и
// повторяем, Terminal — возвращаем ошибку как есть. Когда попытки
// исчерпаны, последняя ошибка оборачивается в ErrExhausted.
//
// Возвращает количество сделанных попыток. Do не мутирует никакое
// внешнее состояние — это забота вызывающего, после получения результата.
func Do(ctx context.Context, policy Policy, classify Classifier, op func(context.Context) error) (int, error) {
	policy = policy.WithDefaults()

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return attempt, nil
		}

		if classify(lastErr) == Terminal {
			return attempt, lastErr
		}

		if attempt >= policy.MaxAttempts {
			return attempt, fmt.Errorf("%w (%d attempts): %w", ErrExhausted, attempt, lastErr)
		}

		// Экспоненциальный backoff плюс jitter в [0, delay),
		// чтобы batch не ресинхронизировался в «толпу».
		delay := Backoff(attempt, policy)
		delay += rand.N(delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return attempt, ctx.Err()
		}
	}
}

// Backoff вычисляет задержку перед попыткой attempt+1 (без jitter):
// BaseDelay * 2^(attempt-1), не больше MaxDelay.
func Backoff(attempt int, policy Policy) time.Duration {
	delay := policy.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= policy.MaxDelay {
			return policy.MaxDelay
		}
	}
	if delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	return delay
}
