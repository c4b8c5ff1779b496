// Rucioflow — инструмент командной строки для регистрации файлов
// и dataset'ов в удалённом каталоге.
//
// Использование:
//
//	rucioflow [--json] [--metrics-addr ADDR] <command> <subcommand> [flags]
//
// Команды:
//
//	workflow  End-to-end прогон: create → register → attach → close
//	dataset   Управление dataset'ами
//	files     Регистрация и присоединение файлов
//
// Подключение к каталогу настраивается через окружение (RUCIO_*),
// см. internal/config.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shaiso/Rucioflow/internal/cli"
	"github.com/shaiso/Rucioflow/internal/config"
	"github.com/shaiso/Rucioflow/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	logger := telemetry.SetupLogger()

	// graceful shutdown: длинные batch'и прерываются по сигналу
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var jsonOutput bool
	var metricsAddr string

	rootCmd := &cobra.Command{
		Use:           "rucioflow",
		Short:         "Rucioflow — dataset registration workflows for a Rucio-style catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address")

	appFn := func() (*cli.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return cli.NewApp(cfg, logger), nil
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewWorkflowCmd(appFn, outputFn),
		cli.NewDatasetCmd(appFn, outputFn),
		cli.NewFilesCmd(appFn, outputFn),
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if metricsAddr == "" {
			return
		}
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		go func() {
			logger.Info("metrics listening", "addr", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
