package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rucioflow/internal/dataset"
)

// NewDatasetCmd создаёт группу команд для управления dataset'ами.
func NewDatasetCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage catalog datasets",
	}

	cmd.AddCommand(
		newDatasetCreateCmd(appFn, outputFn),
		newDatasetShowCmd(appFn, outputFn),
		newDatasetFilesCmd(appFn, outputFn),
		newDatasetCloseCmd(appFn, outputFn),
	)

	return cmd
}

func newDatasetCreateCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	var (
		scope        string
		metadata     []string
		lifetimeDays int
		adopt        bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty open dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn()
			if err != nil {
				return err
			}
			out := outputFn()

			meta, err := parseMetadata(metadata)
			if err != nil {
				return err
			}

			ds, err := app.Datasets.Create(cmd.Context(), dataset.CreateSpec{
				Name:          args[0],
				Scope:         scope,
				Metadata:      meta,
				LifetimeDays:  lifetimeDays,
				AdoptExisting: adopt,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Dataset created: %s", ds.DID()))
			out.Print(datasetHeaders, [][]string{datasetRow(ds)}, ds)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Dataset scope (default: derived from name)")
	cmd.Flags().StringArrayVar(&metadata, "metadata", nil, "Dataset metadata, key=value (repeatable)")
	cmd.Flags().IntVar(&lifetimeDays, "lifetime-days", 0, "Dataset lifetime hint in days")
	cmd.Flags().BoolVar(&adopt, "adopt", false, "Reuse an existing open dataset with the same name")

	return cmd
}

func newDatasetShowCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show DUID",
		Short: "Show dataset state and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn()
			if err != nil {
				return err
			}
			out := outputFn()

			ds, err := app.Datasets.GetMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out.Print(datasetHeaders, [][]string{datasetRow(ds)}, ds)
			return nil
		},
	}
}

func newDatasetFilesCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "files DUID",
		Short: "List files attached to a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn()
			if err != nil {
				return err
			}
			out := outputFn()

			files, err := app.Datasets.ListFiles(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out.Print(fileHeaders, fileRows(files), files)
			return nil
		},
	}
}

func newDatasetCloseCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "close DUID",
		Short: "Close a dataset (idempotent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn()
			if err != nil {
				return err
			}
			out := outputFn()

			ds, err := app.Datasets.GetMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.Datasets.Close(cmd.Context(), ds); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Dataset closed: %s", ds.DID()))
			out.Print(datasetHeaders, [][]string{datasetRow(ds)}, ds)
			return nil
		},
	}
}
