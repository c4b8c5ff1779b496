// Package catalogtest — in-memory заглушка каталога для тестов.
//
// Stub реализует catalog.Client с семантикой настоящего каталога
// (идемпотентность, конфликты, состояния dataset'ов), считает вызовы
// и позволяет скриптовать ошибки для отдельных операций.
package catalogtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shaiso/Rucioflow/internal/catalog"
	"github.com/shaiso/Rucioflow/internal/domain"
)

// Stub — потокобезопасная in-memory реализация catalog.Client.
type Stub struct {
	mu sync.Mutex

	datasets map[string]*domain.Dataset        // duid → dataset
	byDID    map[string]string                 // "scope:name" → duid
	replicas map[string]domain.FileInfo        // "scope:lfn" → file
	attached map[string][]string               // duid → DIDs в порядке attach
	member   map[string]map[string]bool        // duid → DID set
	calls    map[string]int                    // operation → count
	failures map[string][]error                // operation → scripted errors (FIFO)
}

// NewStub создаёт пустой каталог.
func NewStub() *Stub {
	return &Stub{
		datasets: make(map[string]*domain.Dataset),
		byDID:    make(map[string]string),
		replicas: make(map[string]domain.FileInfo),
		attached: make(map[string][]string),
		member:   make(map[string]map[string]bool),
		calls:    make(map[string]int),
		failures: make(map[string][]error),
	}
}

// FailWith ставит ошибки в очередь для операции: каждый следующий
// вызов операции возвращает очередную ошибку, пока очередь не пуста.
// Операции: create_dataset, register_replica, attach_file,
// close_dataset, get_metadata, list_files.
func (s *Stub) FailWith(operation string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[operation] = append(s.failures[operation], errs...)
}

// Calls возвращает число вызовов операции.
func (s *Stub) Calls(operation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[operation]
}

// TotalCalls возвращает суммарное число вызовов каталога.
func (s *Stub) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Replica возвращает зарегистрированную реплику, если она есть.
func (s *Stub) Replica(scope, lfn string) (domain.FileInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.replicas[scope+":"+lfn]
	return f, ok
}

// enter фиксирует вызов и отдаёт скриптованную ошибку, если есть.
// Вызывается под mu.
func (s *Stub) enter(ctx context.Context, operation string) error {
	s.calls[operation]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if q := s.failures[operation]; len(q) > 0 {
		err := q[0]
		s.failures[operation] = q[1:]
		return err
	}
	return nil
}

// CreateDataset создаёт OPEN dataset; повтор для занятого
// (scope, name) — catalog.ErrAlreadyExists.
func (s *Stub) CreateDataset(ctx context.Context, scope, name string, meta map[string]string, lifetimeDays int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enter(ctx, "create_dataset"); err != nil {
		return "", err
	}

	did := scope + ":" + name
	if _, ok := s.byDID[did]; ok {
		return "", fmt.Errorf("%w: dataset %s", catalog.ErrAlreadyExists, did)
	}

	duid := domain.DeriveDUID(scope, name)
	s.datasets[duid] = &domain.Dataset{
		Scope:        scope,
		Name:         name,
		DUID:         duid,
		State:        domain.DatasetOpen,
		Metadata:     meta,
		LifetimeDays: lifetimeDays,
		CreatedAt:    time.Now().UTC(),
	}
	s.byDID[did] = duid
	s.member[duid] = make(map[string]bool)
	return duid, nil
}

// RegisterReplica регистрирует реплику; идентичный повтор —
// ErrAlreadyExists, расхождение size/checksum — ErrConflict.
func (s *Stub) RegisterReplica(ctx context.Context, rse string, file domain.FileInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enter(ctx, "register_replica"); err != nil {
		return err
	}

	key := file.Scope + ":" + file.LFN
	if existing, ok := s.replicas[key]; ok {
		if existing.Size != file.Size || existing.Checksum != file.Checksum {
			return fmt.Errorf("%w: replica %s size/checksum mismatch", catalog.ErrConflict, key)
		}
		return fmt.Errorf("%w: replica %s", catalog.ErrAlreadyExists, key)
	}
	s.replicas[key] = file
	return nil
}

// AttachFile присоединяет файл; незарегистрированный файл или
// отсутствующий dataset — ErrNotFound, повтор — ErrAlreadyExists.
func (s *Stub) AttachFile(ctx context.Context, duid, scope, lfn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enter(ctx, "attach_file"); err != nil {
		return err
	}

	ds, ok := s.datasets[duid]
	if !ok {
		return fmt.Errorf("%w: dataset %s", catalog.ErrNotFound, duid)
	}
	if ds.IsClosed() {
		return fmt.Errorf("%w: dataset %s is closed", catalog.ErrConflict, ds.DID())
	}

	did := scope + ":" + lfn
	if _, ok := s.replicas[did]; !ok {
		return fmt.Errorf("%w: file %s is not registered", catalog.ErrNotFound, did)
	}
	if s.member[duid][did] {
		return fmt.Errorf("%w: file %s already attached", catalog.ErrAlreadyExists, did)
	}

	s.member[duid][did] = true
	s.attached[duid] = append(s.attached[duid], did)
	return nil
}

// CloseDataset переводит dataset в CLOSED; повторное закрытие —
// ErrAlreadyExists.
func (s *Stub) CloseDataset(ctx context.Context, duid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enter(ctx, "close_dataset"); err != nil {
		return err
	}

	ds, ok := s.datasets[duid]
	if !ok {
		return fmt.Errorf("%w: dataset %s", catalog.ErrNotFound, duid)
	}
	if ds.IsClosed() {
		return fmt.Errorf("%w: dataset %s is closed", catalog.ErrAlreadyExists, ds.DID())
	}
	ds.State = domain.DatasetClosed
	return nil
}

// GetDatasetMetadata возвращает копию dataset'а.
func (s *Stub) GetDatasetMetadata(ctx context.Context, duid string) (*domain.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enter(ctx, "get_metadata"); err != nil {
		return nil, err
	}

	ds, ok := s.datasets[duid]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %s", catalog.ErrNotFound, duid)
	}
	copied := *ds
	return &copied, nil
}

// ListDatasetFiles возвращает файлы dataset'а в порядке attach.
func (s *Stub) ListDatasetFiles(ctx context.Context, duid string) ([]domain.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enter(ctx, "list_files"); err != nil {
		return nil, err
	}

	if _, ok := s.datasets[duid]; !ok {
		return nil, fmt.Errorf("%w: dataset %s", catalog.ErrNotFound, duid)
	}

	files := make([]domain.FileInfo, 0, len(s.attached[duid]))
	for _, did := range s.attached[duid] {
		files = append(files, s.replicas[did])
	}
	return files, nil
}
