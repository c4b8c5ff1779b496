package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики оркестрации. Регистрируются в default registry,
// отдаются через promhttp когда процесс поднимает /metrics.
var (
	// CatalogRequests — количество вызовов каталога по операциям и результатам.
	// operation: create_dataset, register_replica, attach_file, close_dataset,
	// get_metadata, list_files. result: ok, already_exists, conflict, not_found,
	// denied, transient.
	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rucioflow_catalog_requests_total",
		Help: "Catalog calls by operation and result.",
	}, []string{"operation", "result"})

	// RetryAttempts — количество повторных попыток (без учёта первой).
	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rucioflow_retry_attempts_total",
		Help: "Retries performed against the catalog, by operation.",
	}, []string{"operation"})

	// FileOutcomes — per-file результаты batch-операций.
	// operation: register, attach. status: REGISTERED, ALREADY_EXISTS, FAILED.
	FileOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rucioflow_file_outcomes_total",
		Help: "Per-file batch outcomes by operation and status.",
	}, []string{"operation", "status"})

	// WorkflowRuns — завершённые workflow-запуски по итоговому статусу.
	WorkflowRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rucioflow_workflow_runs_total",
		Help: "Completed workflow runs by final status.",
	}, []string{"status"})
)
