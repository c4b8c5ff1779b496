package registrar

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Rucioflow/internal/catalog"
	"github.com/shaiso/Rucioflow/internal/domain"
	"github.com/shaiso/Rucioflow/internal/retry"
	"github.com/shaiso/Rucioflow/internal/telemetry"
)

// Количество параллельных регистраций по умолчанию.
const defaultWorkers = 8

// Config — конфигурация Registrar.
type Config struct {
	// Catalog — клиент каталога.
	Catalog catalog.Client

	// Policy — политика повторов для каждого файла.
	Policy retry.Policy

	// Workers — максимум одновременных вызовов каталога (default: 8).
	Workers int

	// Logger
	Logger *slog.Logger
}

// Registrar регистрирует batch'и файлов как реплики в каталоге.
//
// Batch обрабатывается параллельно, с повторами per-file; падение
// одного файла не прерывает остальные. Результаты всегда в порядке
// входного списка.
type Registrar struct {
	catalog catalog.Client
	policy  retry.Policy
	workers int
	logger  *slog.Logger
}

// New создаёт Registrar.
func New(cfg Config) *Registrar {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Registrar{
		catalog: cfg.Catalog,
		policy:  cfg.Policy.WithDefaults(),
		workers: workers,
		logger:  logger,
	}
}

// RegisterBatch регистрирует файлы как реплики на rse.
//
// Сначала все файлы проходят локальную валидацию: некорректный файл
// получает FAILED/VALIDATION c Attempts=0 и в каталог не отправляется.
// Валидные файлы регистрируются параллельно, каждый со своим retry.
//
// Результат покрывает каждый входной файл, в исходном порядке.
// Идентичный повтор (ErrAlreadyExists) считается успехом.
func (r *Registrar) RegisterBatch(ctx context.Context, files []domain.FileInfo, rse string) *domain.BatchResult {
	result := domain.NewBatchResult(len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, file := range files {
		// Валидация — до любого сетевого вызова
		if err := file.Validate(); err != nil {
			result.Outcomes[i] = domain.RegistrationOutcome{
				File:   file,
				Status: domain.OutcomeFailed,
				Err:    domain.NewOutcomeError(domain.KindValidation, err),
			}
			r.logger.Warn("file rejected by validation",
				"lfn", file.LFN, "error", err)
			continue
		}

		g.Go(func() error {
			result.Outcomes[i] = r.registerOne(gctx, file, rse)
			return nil
		})
	}
	g.Wait()

	for _, o := range result.Outcomes {
		telemetry.FileOutcomes.WithLabelValues("register", string(o.Status)).Inc()
	}

	r.logger.Info("batch registration finished",
		"rse", rse,
		"total", result.Len(),
		"registered", result.Registered(),
		"already_exists", result.AlreadyExists(),
		"failed", result.Failed(),
	)
	return result
}

// registerOne регистрирует один файл с повторами и строит его outcome.
func (r *Registrar) registerOne(ctx context.Context, file domain.FileInfo, rse string) domain.RegistrationOutcome {
	attempts, err := retry.Do(ctx, r.policy, catalog.Classify, func(ctx context.Context) error {
		return r.catalog.RegisterReplica(ctx, rse, file)
	})
	if attempts > 1 {
		telemetry.RetryAttempts.WithLabelValues("register").Add(float64(attempts - 1))
	}

	outcome := domain.RegistrationOutcome{File: file, Attempts: attempts}
	switch {
	case err == nil:
		outcome.Status = domain.OutcomeRegistered
	case errors.Is(err, catalog.ErrAlreadyExists):
		// Идемпотентный повтор — эквивалент успеха
		outcome.Status = domain.OutcomeAlreadyExists
	default:
		outcome.Status = domain.OutcomeFailed
		outcome.Err = domain.NewOutcomeError(catalog.Kind(err), err)
		telemetry.WithFile(telemetry.FromContext(ctx), file.DID()).Warn(
			"replica registration failed", "rse", rse, "attempts", attempts, "error", err)
	}
	return outcome
}
