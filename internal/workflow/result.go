package workflow

import (
	"time"

	"github.com/shaiso/Rucioflow/internal/domain"
)

// Result — итог одного workflow-запуска.
//
// Result строится всегда, даже при частичном провале: вызывающий
// видит, какие фазы прошли и какие файлы требуют повторного прогона.
type Result struct {
	// Dataset — созданный или adopt'нутый dataset.
	Dataset *domain.Dataset `json:"dataset,omitempty"`

	// Registration — per-file результаты регистрации реплик.
	Registration *domain.BatchResult `json:"registration,omitempty"`

	// Attachment — per-file результаты присоединения к dataset'у.
	// Покрывает только файлы, успешно прошедшие регистрацию.
	Attachment *domain.BatchResult `json:"attachment,omitempty"`

	// Closed — dataset закрыт с подтверждением каталога.
	Closed bool `json:"closed"`

	// Errors — ошибки уровня workflow (не per-file): провал create,
	// провал close. Пустой список — все фазы отработали.
	Errors []string `json:"errors,omitempty"`

	// StartedAt, FinishedAt — границы запуска.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration возвращает длительность запуска.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Success — полный успех: dataset закрыт, каждый файл зарегистрирован
// и присоединён, ошибок уровня workflow нет.
func (r *Result) Success() bool {
	if r.Dataset == nil || !r.Closed || len(r.Errors) > 0 {
		return false
	}
	if r.Registration != nil && r.Registration.Failed() > 0 {
		return false
	}
	if r.Attachment != nil && r.Attachment.Failed() > 0 {
		return false
	}
	return true
}

// Status — итоговый статус запуска: success, partial или failed.
func (r *Result) Status() string {
	switch {
	case r.Success():
		return "success"
	case r.Dataset == nil:
		return "failed"
	default:
		return "partial"
	}
}

// FilesSucceeded возвращает количество файлов, прошедших обе фазы.
func (r *Result) FilesSucceeded() int {
	if r.Attachment == nil {
		return 0
	}
	return r.Attachment.Succeeded()
}
