package domain

// OutcomeStatus — per-file результат batch-операции.
type OutcomeStatus string

const (
	// OutcomeRegistered — операция выполнена каталогом.
	OutcomeRegistered OutcomeStatus = "REGISTERED"

	// OutcomeAlreadyExists — идентичная запись уже была в каталоге.
	// Не ошибка: регистрация идемпотентна относительно повтора.
	OutcomeAlreadyExists OutcomeStatus = "ALREADY_EXISTS"

	// OutcomeFailed — операция не выполнена. Err обязателен.
	OutcomeFailed OutcomeStatus = "FAILED"
)

// RegistrationOutcome — результат операции над одним файлом.
type RegistrationOutcome struct {
	// File — файл, к которому относится результат.
	File FileInfo `json:"file"`

	// Status — итоговый статус.
	Status OutcomeStatus `json:"status"`

	// Err — ошибка. Присутствует тогда и только тогда, когда Status=FAILED.
	Err *OutcomeError `json:"error,omitempty"`

	// Attempts — сколько попыток было сделано.
	// 0 — до удалённого вызова не дошло (ошибка валидации).
	Attempts int `json:"attempts"`
}

// Succeeded возвращает true для REGISTERED и ALREADY_EXISTS.
func (o RegistrationOutcome) Succeeded() bool {
	return o.Status == OutcomeRegistered || o.Status == OutcomeAlreadyExists
}

// BatchResult — агрегированный результат batch-операции.
//
// Outcomes всегда той же длины и в том же порядке, что и входной
// список файлов, независимо от количества воркеров и ошибок:
// вызывающий сопоставляет входы и результаты позиционно.
type BatchResult struct {
	// Outcomes — по одному результату на каждый входной файл.
	Outcomes []RegistrationOutcome `json:"outcomes"`
}

// NewBatchResult создаёт результат на n файлов.
func NewBatchResult(n int) *BatchResult {
	return &BatchResult{Outcomes: make([]RegistrationOutcome, n)}
}

// Len возвращает количество результатов.
func (b *BatchResult) Len() int {
	return len(b.Outcomes)
}

// Registered возвращает количество результатов REGISTERED.
func (b *BatchResult) Registered() int {
	return b.count(OutcomeRegistered)
}

// AlreadyExists возвращает количество результатов ALREADY_EXISTS.
func (b *BatchResult) AlreadyExists() int {
	return b.count(OutcomeAlreadyExists)
}

// Failed возвращает количество результатов FAILED.
func (b *BatchResult) Failed() int {
	return b.count(OutcomeFailed)
}

// Succeeded возвращает количество успешных результатов
// (REGISTERED + ALREADY_EXISTS).
func (b *BatchResult) Succeeded() int {
	return b.Len() - b.Failed()
}

// SucceededFiles возвращает файлы с успешным результатом,
// в порядке входного списка.
func (b *BatchResult) SucceededFiles() []FileInfo {
	files := make([]FileInfo, 0, b.Len())
	for _, o := range b.Outcomes {
		if o.Succeeded() {
			files = append(files, o.File)
		}
	}
	return files
}

// FailedOutcomes возвращает результаты FAILED, в порядке входного списка.
func (b *BatchResult) FailedOutcomes() []RegistrationOutcome {
	failed := make([]RegistrationOutcome, 0)
	for _, o := range b.Outcomes {
		if o.Status == OutcomeFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

func (b *BatchResult) count(status OutcomeStatus) int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
