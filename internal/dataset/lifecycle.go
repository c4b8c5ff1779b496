package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Rucioflow/internal/catalog"
	"github.com/shaiso/Rucioflow/internal/domain"
	"github.com/shaiso/Rucioflow/internal/retry"
	"github.com/shaiso/Rucioflow/internal/telemetry"
)

// Количество параллельных attach по умолчанию.
const defaultWorkers = 8

// Config — конфигурация Lifecycle.
type Config struct {
	// Catalog — клиент каталога.
	Catalog catalog.Client

	// Policy — политика повторов для вызовов каталога.
	Policy retry.Policy

	// Workers — максимум одновременных attach-вызовов (default: 8).
	Workers int

	// Logger
	Logger *slog.Logger
}

// Lifecycle управляет dataset'ами каталога: create, attach, close.
type Lifecycle struct {
	catalog catalog.Client
	policy  retry.Policy
	workers int
	logger  *slog.Logger
}

// New создаёт Lifecycle.
func New(cfg Config) *Lifecycle {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Lifecycle{
		catalog: cfg.Catalog,
		policy:  cfg.Policy.WithDefaults(),
		workers: workers,
		logger:  logger,
	}
}

// CreateSpec — параметры создания dataset'а.
type CreateSpec struct {
	// Name — имя dataset'а. Если Scope пуст, scope извлекается
	// из имени (формат "scope:name" или dotted-имя).
	Name string

	// Scope — namespace. Опционален, см. Name.
	Scope string

	// Metadata — пользовательские метаданные.
	Metadata map[string]string

	// LifetimeDays — подсказка каталогу о времени жизни. 0 — без лимита.
	LifetimeDays int

	// AdoptExisting — если dataset уже есть и он OPEN, использовать
	// его вместо ошибки. CLOSED dataset не adopt'ится никогда.
	AdoptExisting bool
}

// Create создаёт в каталоге пустой OPEN dataset.
//
// Занятое (scope, name) — ошибка ErrExists, кроме случая
// AdoptExisting: существующий OPEN dataset возвращается как есть.
func (l *Lifecycle) Create(ctx context.Context, spec CreateSpec) (*domain.Dataset, error) {
	scope, name := spec.Scope, spec.Name
	if scope == "" {
		var err error
		scope, name, err = domain.ExtractScope(spec.Name)
		if err != nil {
			return nil, err
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty dataset name", domain.ErrValidation)
	}

	var duid string
	attempts, err := retry.Do(ctx, l.policy, catalog.Classify, func(ctx context.Context) error {
		var cerr error
		duid, cerr = l.catalog.CreateDataset(ctx, scope, name, spec.Metadata, spec.LifetimeDays)
		return cerr
	})
	if attempts > 1 {
		telemetry.RetryAttempts.WithLabelValues("create_dataset").Add(float64(attempts - 1))
	}

	switch {
	case err == nil:
		if duid == "" {
			// Каталог не вернул duid — выводим детерминированно
			duid = domain.DeriveDUID(scope, name)
		}
		ds := &domain.Dataset{
			Scope:        scope,
			Name:         name,
			DUID:         duid,
			State:        domain.DatasetOpen,
			Metadata:     spec.Metadata,
			LifetimeDays: spec.LifetimeDays,
			CreatedAt:    time.Now().UTC(),
		}
		l.logger.Info("dataset created", "did", ds.DID(), "duid", duid)
		return ds, nil

	case errors.Is(err, catalog.ErrAlreadyExists):
		if !spec.AdoptExisting {
			return nil, fmt.Errorf("%w: %s:%s", ErrExists, scope, name)
		}
		return l.adopt(ctx, scope, name, spec.Metadata)

	default:
		return nil, fmt.Errorf("create dataset %s:%s: %w", scope, name, err)
	}
}

// adopt загружает существующий dataset и принимает его, если он OPEN.
func (l *Lifecycle) adopt(ctx context.Context, scope, name string, meta map[string]string) (*domain.Dataset, error) {
	ds, err := l.GetMetadata(ctx, domain.DeriveDUID(scope, name))
	if err != nil {
		return nil, fmt.Errorf("adopt dataset %s:%s: %w", scope, name, err)
	}
	if !ds.IsOpen() {
		return nil, fmt.Errorf("%w: dataset %s is %s, cannot adopt", ErrInvalidState, ds.DID(), ds.State)
	}

	ds.MergeMetadata(meta)
	l.logger.Info("existing open dataset adopted", "did", ds.DID(), "duid", ds.DUID)
	return ds, nil
}

// Attach присоединяет файлы к открытому dataset'у.
//
// CLOSED dataset — ErrInvalidState без единого сетевого вызова.
// Файлы присоединяются параллельно, per-file retry; уже присоединённый
// файл — успех (ALREADY_EXISTS), незарегистрированный — FAILED с
// NOT_REGISTERED. Результаты в порядке входного списка.
func (l *Lifecycle) Attach(ctx context.Context, ds *domain.Dataset, files []domain.FileInfo) (*domain.BatchResult, error) {
	if !ds.IsOpen() {
		return nil, fmt.Errorf("%w: cannot attach to %s dataset %s", ErrInvalidState, ds.State, ds.DID())
	}

	result := domain.NewBatchResult(len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, file := range files {
		g.Go(func() error {
			result.Outcomes[i] = l.attachOne(gctx, ds, file)
			return nil
		})
	}
	g.Wait()

	for _, o := range result.Outcomes {
		telemetry.FileOutcomes.WithLabelValues("attach", string(o.Status)).Inc()
	}

	l.logger.Info("batch attach finished",
		"did", ds.DID(),
		"total", result.Len(),
		"attached", result.Registered(),
		"already_attached", result.AlreadyExists(),
		"failed", result.Failed(),
	)
	return result, nil
}

// attachOne присоединяет один файл с повторами и строит его outcome.
func (l *Lifecycle) attachOne(ctx context.Context, ds *domain.Dataset, file domain.FileInfo) domain.RegistrationOutcome {
	attempts, err := retry.Do(ctx, l.policy, catalog.Classify, func(ctx context.Context) error {
		return l.catalog.AttachFile(ctx, ds.DUID, file.Scope, file.LFN)
	})
	if attempts > 1 {
		telemetry.RetryAttempts.WithLabelValues("attach").Add(float64(attempts - 1))
	}

	outcome := domain.RegistrationOutcome{File: file, Attempts: attempts}
	switch {
	case err == nil:
		outcome.Status = domain.OutcomeRegistered
	case errors.Is(err, catalog.ErrAlreadyExists):
		outcome.Status = domain.OutcomeAlreadyExists
	case errors.Is(err, catalog.ErrNotFound):
		// Файл не зарегистрирован как реплика: attach невозможен
		outcome.Status = domain.OutcomeFailed
		outcome.Err = domain.NewOutcomeError(domain.KindNotRegistered, err)
	default:
		outcome.Status = domain.OutcomeFailed
		outcome.Err = domain.NewOutcomeError(catalog.Kind(err), err)
	}

	if outcome.Status == domain.OutcomeFailed {
		telemetry.WithFile(telemetry.WithDataset(l.logger, ds.DID()), file.DID()).Warn(
			"file attach failed", "attempts", attempts, "error", err)
	}
	return outcome
}

// Close закрывает dataset.
//
// Идемпотентна: локально CLOSED dataset — no-op без сетевых вызовов,
// ответ каталога «уже закрыт» — тоже успех. После успеха локальное
// состояние переводится в CLOSED.
func (l *Lifecycle) Close(ctx context.Context, ds *domain.Dataset) error {
	if ds.IsClosed() {
		return nil
	}

	attempts, err := retry.Do(ctx, l.policy, catalog.Classify, func(ctx context.Context) error {
		return l.catalog.CloseDataset(ctx, ds.DUID)
	})
	if attempts > 1 {
		telemetry.RetryAttempts.WithLabelValues("close_dataset").Add(float64(attempts - 1))
	}

	if err != nil && !errors.Is(err, catalog.ErrAlreadyExists) {
		return fmt.Errorf("close dataset %s: %w", ds.DID(), err)
	}

	ds.State = domain.DatasetClosed
	l.logger.Info("dataset closed", "did", ds.DID(), "duid", ds.DUID)
	return nil
}

// GetMetadata возвращает текущее состояние dataset'а из каталога.
func (l *Lifecycle) GetMetadata(ctx context.Context, duid string) (*domain.Dataset, error) {
	var ds *domain.Dataset
	_, err := retry.Do(ctx, l.policy, catalog.Classify, func(ctx context.Context) error {
		var cerr error
		ds, cerr = l.catalog.GetDatasetMetadata(ctx, duid)
		return cerr
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// ListFiles возвращает файлы dataset'а в порядке каталога.
func (l *Lifecycle) ListFiles(ctx context.Context, duid string) ([]domain.FileInfo, error) {
	var files []domain.FileInfo
	_, err := retry.Do(ctx, l.policy, catalog.Classify, func(ctx context.Context) error {
		var cerr error
		files, cerr = l.catalog.ListDatasetFiles(ctx, duid)
		return cerr
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
