package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Rucioflow/internal/dataset"
	"github.com/shaiso/Rucioflow/internal/domain"
	"github.com/shaiso/Rucioflow/internal/registrar"
	"github.com/shaiso/Rucioflow/internal/telemetry"
)

// Spec — описание одного workflow-запуска.
type Spec struct {
	// Dataset — параметры создания (или adopt'а) dataset'а.
	Dataset dataset.CreateSpec

	// RSE — storage element, на котором регистрируются реплики.
	RSE string

	// Files — файлы для регистрации и присоединения.
	Files []domain.FileInfo
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Registrar — batch-регистрация реплик.
	Registrar *registrar.Registrar

	// Datasets — жизненный цикл dataset'ов.
	Datasets *dataset.Lifecycle

	// Logger
	Logger *slog.Logger
}

// Orchestrator прогоняет полный workflow регистрации dataset'а.
type Orchestrator struct {
	registrar *registrar.Registrar
	datasets  *dataset.Lifecycle
	logger    *slog.Logger
}

// New создаёт Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registrar: cfg.Registrar,
		datasets:  cfg.Datasets,
		logger:    logger,
	}
}

// Run выполняет workflow: create → register → attach → close.
//
// Провал create прерывает запуск — error не nil, Result содержит
// причину. Дальше запуск не прерывается: файлы, упавшие на
// регистрации, не присоединяются, но остальные проходят обе фазы;
// провал close попадает в Result.Errors, сделанная работа не
// откатывается. Каталог никогда не приводится «назад».
func (o *Orchestrator) Run(ctx context.Context, spec Spec) (*Result, error) {
	result := &Result{StartedAt: time.Now().UTC()}
	defer func() {
		result.FinishedAt = time.Now().UTC()
		telemetry.WorkflowRuns.WithLabelValues(result.Status()).Inc()
	}()

	if spec.RSE == "" {
		err := fmt.Errorf("%w: empty rse", domain.ErrValidation)
		result.Errors = append(result.Errors, err.Error())
		return result, err
	}

	logger := telemetry.WithRSE(telemetry.WithDataset(o.logger, spec.Dataset.Name), spec.RSE)
	logger.Info("workflow started", "files", len(spec.Files))

	// Вложенные фазы логируют через контекст с привязкой к запуску
	ctx = telemetry.WithLogger(ctx, logger)

	// Фаза 1: dataset. Без dataset'а продолжать нечего.
	ds, err := o.datasets.Create(ctx, spec.Dataset)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("create dataset: %v", err))
		logger.Error("workflow aborted: dataset creation failed", "error", err)
		return result, fmt.Errorf("create dataset: %w", err)
	}
	result.Dataset = ds

	// Фаза 2: регистрация реплик. Частичный провал допустим.
	result.Registration = o.registrar.RegisterBatch(ctx, spec.Files, spec.RSE)

	// Фаза 3: attach только успешно зарегистрированных.
	succeeded := result.Registration.SucceededFiles()
	if len(succeeded) > 0 {
		attachment, err := o.datasets.Attach(ctx, ds, succeeded)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("attach files: %v", err))
			logger.Error("attach phase failed", "error", err)
		} else {
			result.Attachment = attachment
		}
	} else {
		result.Attachment = domain.NewBatchResult(0)
	}

	// Фаза 4: close. Провал фиксируется, но ничего не откатывает.
	if err := o.datasets.Close(ctx, ds); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("close dataset: %v", err))
		logger.Error("dataset close failed, registered files remain attached", "error", err)
	} else {
		result.Closed = true
	}

	logger.Info("workflow finished",
		"status", result.Status(),
		"files_total", len(spec.Files),
		"files_succeeded", result.FilesSucceeded(),
		"closed", result.Closed,
		"duration", result.Duration(),
	)
	return result, nil
}

// Verify сверяет результат запуска с фактическим состоянием каталога:
// dataset закрыт, каждый успешно обработанный файл присутствует.
func (o *Orchestrator) Verify(ctx context.Context, result *Result) error {
	if result.Dataset == nil {
		return fmt.Errorf("nothing to verify: dataset was not created")
	}

	ds, err := o.datasets.GetMetadata(ctx, result.Dataset.DUID)
	if err != nil {
		return fmt.Errorf("verify %s: %w", result.Dataset.DID(), err)
	}
	if !ds.IsClosed() {
		return fmt.Errorf("verify %s: dataset is %s, expected %s",
			ds.DID(), ds.State, domain.DatasetClosed)
	}

	files, err := o.datasets.ListFiles(ctx, ds.DUID)
	if err != nil {
		return fmt.Errorf("verify %s: %w", ds.DID(), err)
	}
	attached := make(map[string]bool, len(files))
	for _, f := range files {
		attached[f.DID()] = true
	}

	if result.Attachment != nil {
		for _, f := range result.Attachment.SucceededFiles() {
			if !attached[f.DID()] {
				return fmt.Errorf("verify %s: file %s is missing from the catalog",
					ds.DID(), f.DID())
			}
		}
	}
	return nil
}
