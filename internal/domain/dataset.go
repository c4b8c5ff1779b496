package domain

import "time"

// DatasetState — состояние dataset'а в каталоге.
//
// Жизненный цикл:
//
//	OPEN → CLOSED (терминальное, без reopening)
type DatasetState string

const (
	// DatasetOpen — dataset открыт, можно присоединять файлы.
	DatasetOpen DatasetState = "OPEN"

	// DatasetClosed — dataset закрыт. Терминальное состояние.
	DatasetClosed DatasetState = "CLOSED"
)

// Dataset — именованная, scoped коллекция файлов в каталоге.
//
// Dataset создаётся операцией create и существует в каталоге —
// эта система его никогда не удаляет.
type Dataset struct {
	// Scope — namespace имени dataset'а.
	Scope string `json:"scope"`

	// Name — имя dataset'а, уникальное в рамках scope.
	Name string `json:"name"`

	// DUID — уникальный идентификатор, назначенный каталогом.
	// Устанавливается ровно один раз при создании и далее не меняется.
	DUID string `json:"duid"`

	// State — текущее состояние: OPEN или CLOSED.
	// Меняется только операцией close (OPEN → CLOSED).
	State DatasetState `json:"state"`

	// Metadata — пользовательские метаданные (ключ → значение).
	// При обновлении сливаются с существующими, не заменяют их.
	Metadata map[string]string `json:"metadata,omitempty"`

	// LifetimeDays — подсказка каталогу о времени жизни.
	// Локально не применяется. 0 — без ограничения.
	LifetimeDays int `json:"lifetime_days,omitempty"`

	// CreatedAt — время создания (момент успешного create).
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// DID возвращает полный идентификатор dataset'а в формате "scope:name".
func (d *Dataset) DID() string {
	return d.Scope + ":" + d.Name
}

// IsOpen возвращает true, если dataset открыт.
func (d *Dataset) IsOpen() bool {
	return d.State == DatasetOpen
}

// IsClosed возвращает true, если dataset закрыт.
func (d *Dataset) IsClosed() bool {
	return d.State == DatasetClosed
}

// MergeMetadata сливает метаданные: новые ключи добавляются,
// существующие перезаписываются, остальные сохраняются.
func (d *Dataset) MergeMetadata(meta map[string]string) {
	if len(meta) == 0 {
		return
	}
	if d.Metadata == nil {
		d.Metadata = make(map[string]string, len(meta))
	}
	for k, v := range meta {
		d.Metadata[k] = v
	}
}
