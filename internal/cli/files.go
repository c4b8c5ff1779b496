package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rucioflow/internal/domain"
)

// NewFilesCmd создаёт группу команд для работы с файлами.
func NewFilesCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Register and attach file replicas",
	}

	cmd.AddCommand(
		newFilesRegisterCmd(appFn, outputFn),
		newFilesAttachCmd(appFn, outputFn),
		newFilesScanCmd(appFn, outputFn),
	)

	return cmd
}

func newFilesRegisterCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	var (
		rse      string
		scope    string
		fileList string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register file replicas on an RSE",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn()
			if err != nil {
				return err
			}
			out := outputFn()

			if rse == "" {
				rse = app.Config.DefaultRSE
			}
			if rse == "" {
				return fmt.Errorf("no RSE: pass --rse or set RUCIO_DEFAULT_RSE")
			}
			files, err := ReadFileList(fileList, defaultScope(scope, app))
			if err != nil {
				return err
			}

			result := app.Registrar.RegisterBatch(cmd.Context(), files, rse)

			out.Success(batchSummary("registration", result))
			out.Print(outcomeHeaders, outcomeRows(result), result)

			if result.Failed() > 0 {
				return fmt.Errorf("%d of %d files failed", result.Failed(), result.Len())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rse, "rse", "", "Target RSE (default: RUCIO_DEFAULT_RSE)")
	cmd.Flags().StringVar(&scope, "scope", "", "Default scope for file list entries")
	cmd.Flags().StringVar(&fileList, "file-list", "", "JSON file list, \"-\" for stdin (required)")
	cmd.MarkFlagRequired("file-list")

	return cmd
}

func newFilesAttachCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	var (
		scope    string
		fileList string
	)

	cmd := &cobra.Command{
		Use:   "attach DUID",
		Short: "Attach registered files to an open dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn()
			if err != nil {
				return err
			}
			out := outputFn()

			files, err := ReadFileList(fileList, defaultScope(scope, app))
			if err != nil {
				return err
			}

			ds, err := app.Datasets.GetMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := app.Datasets.Attach(cmd.Context(), ds, files)
			if err != nil {
				return err
			}

			out.Success(batchSummary("attach", result))
			out.Print(outcomeHeaders, outcomeRows(result), result)

			if result.Failed() > 0 {
				return fmt.Errorf("%d of %d files failed", result.Failed(), result.Len())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Default scope for file list entries")
	cmd.Flags().StringVar(&fileList, "file-list", "", "JSON file list, \"-\" for stdin (required)")
	cmd.MarkFlagRequired("file-list")

	return cmd
}

func newFilesScanCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "scan PATH...",
		Short: "Build a file list from local files (size and adler32 computed)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			if scope == "" {
				// Scan не ходит в каталог, но scope нужен для DID
				if app, err := appFn(); err == nil {
					scope = app.Config.DefaultScope
				}
			}
			if scope == "" {
				return fmt.Errorf("no scope: pass --scope or set RUCIO_DEFAULT_SCOPE")
			}

			files := make([]domain.FileInfo, 0, len(args))
			for _, arg := range args {
				// PFN должен быть абсолютным
				pfn, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("scan %s: %w", arg, err)
				}
				f, err := domain.FileFromLocalPFN(pfn, "", scope)
				if err != nil {
					return fmt.Errorf("scan %s: %w", pfn, err)
				}
				files = append(files, f)
			}

			// Всегда JSON: вывод служит file-list'ом для register/attach
			out.JSON(files)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Scope for scanned files")

	return cmd
}
