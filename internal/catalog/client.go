package catalog

import (
	"context"

	"github.com/shaiso/Rucioflow/internal/domain"
)

// Client — capability удалённого каталога.
//
// Каталог — авторитетное хранилище datasets и реплик. Эта система его
// не реализует, только вызывает. Все вызовы сетевые, атомарные на
// стороне сервера, но без кросс-вызовной транзакционности; сервис
// считается медленным и периодически недоступным.
//
// Ошибки — tagged-варианты из errors.go, проверяются через errors.Is.
type Client interface {
	// CreateDataset создаёт пустой OPEN dataset и возвращает его duid.
	// Если (scope, name) уже занят — ErrAlreadyExists.
	CreateDataset(ctx context.Context, scope, name string, meta map[string]string, lifetimeDays int) (string, error)

	// RegisterReplica регистрирует реплику файла на rse.
	// Идентичная запись уже есть — ErrAlreadyExists; запись с теми же
	// (scope, lfn), но другими size/checksum — ErrConflict.
	RegisterReplica(ctx context.Context, rse string, file domain.FileInfo) error

	// AttachFile присоединяет зарегистрированный файл к dataset'у.
	// Файл уже присоединён — ErrAlreadyExists; файл не зарегистрирован
	// как реплика — ErrNotFound.
	AttachFile(ctx context.Context, duid, scope, lfn string) error

	// CloseDataset закрывает dataset. Уже закрыт — ErrAlreadyExists.
	CloseDataset(ctx context.Context, duid string) error

	// GetDatasetMetadata возвращает текущее состояние dataset'а.
	GetDatasetMetadata(ctx context.Context, duid string) (*domain.Dataset, error)

	// ListDatasetFiles возвращает файлы dataset'а в порядке каталога.
	ListDatasetFiles(ctx context.Context, duid string) ([]domain.FileInfo, error)
}
