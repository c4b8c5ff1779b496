package cli

import (
	"log/slog"

	"github.com/shaiso/Rucioflow/internal/catalog"
	"github.com/shaiso/Rucioflow/internal/config"
	"github.com/shaiso/Rucioflow/internal/dataset"
	"github.com/shaiso/Rucioflow/internal/registrar"
	"github.com/shaiso/Rucioflow/internal/workflow"
)

// App — собранный граф зависимостей команд.
//
// Строится лениво, только когда команда действительно обращается
// к каталогу: help и scan работают без конфигурации.
type App struct {
	Config       config.Config
	Catalog      catalog.Client
	Registrar    *registrar.Registrar
	Datasets     *dataset.Lifecycle
	Orchestrator *workflow.Orchestrator
}

// NewApp собирает компоненты поверх конфигурации.
func NewApp(cfg config.Config, logger *slog.Logger) *App {
	client := catalog.NewHTTPClient(catalog.HTTPConfig{
		BaseURL: cfg.CatalogURL,
		Account: cfg.Account,
		Token:   cfg.Token,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})

	reg := registrar.New(registrar.Config{
		Catalog: client,
		Policy:  cfg.Retry,
		Workers: cfg.Workers,
		Logger:  logger,
	})

	ds := dataset.New(dataset.Config{
		Catalog: client,
		Policy:  cfg.Retry,
		Workers: cfg.Workers,
		Logger:  logger,
	})

	return &App{
		Config:       cfg,
		Catalog:      client,
		Registrar:    reg,
		Datasets:     ds,
		Orchestrator: workflow.New(workflow.Config{
			Registrar: reg,
			Datasets:  ds,
			Logger:    logger,
		}),
	}
}
