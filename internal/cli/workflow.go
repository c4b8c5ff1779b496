package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rucioflow/internal/dataset"
	"github.com/shaiso/Rucioflow/internal/workflow"
)

// NewWorkflowCmd создаёт группу команд workflow.
func NewWorkflowCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Run end-to-end dataset registration workflows",
	}

	cmd.AddCommand(newWorkflowRunCmd(appFn, outputFn))

	return cmd
}

func newWorkflowRunCmd(appFn func() (*App, error), outputFn func() *Output) *cobra.Command {
	var (
		name         string
		scope        string
		rse          string
		fileList     string
		metadata     []string
		lifetimeDays int
		adopt        bool
		verify       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create a dataset, register files and close it",
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

			if rse == "" {
				rse = app.Config.DefaultRSE
			}
			files, err := ReadFileList(fileList, defaultScope(scope, app))
			if err != nil {
				return err
			}

			result, err := app.Orchestrator.Run(cmd.Context(), workflow.Spec{
				Dataset: dataset.CreateSpec{
					Name:          name,
					Scope:         scope,
					Metadata:      meta,
					LifetimeDays:  lifetimeDays,
					AdoptExisting: adopt,
				},
				RSE:   rse,
				Files: files,
			})
			if err != nil {
				return err
			}

			if verify && result.Closed {
				if verr := app.Orchestrator.Verify(cmd.Context(), result); verr != nil {
					return fmt.Errorf("completion check: %w", verr)
				}
				out.Success("Catalog state verified")
			}

			out.Success(fmt.Sprintf("Workflow %s: dataset %s, %d/%d files done",
				result.Status(), result.Dataset.DID(), result.FilesSucceeded(), len(files)))
			if result.Registration != nil && result.Registration.Failed() > 0 {
				out.Success(batchSummary("registration", result.Registration))
			}

			out.Print(outcomeHeaders, workflowRows(result), result)

			if !result.Success() {
				return fmt.Errorf("workflow finished with status %q", result.Status())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Dataset name, \"scope:name\" or dotted (required)")
	cmd.Flags().StringVar(&scope, "scope", "", "Dataset scope (default: derived from name)")
	cmd.Flags().StringVar(&rse, "rse", "", "Target RSE (default: RUCIO_DEFAULT_RSE)")
	cmd.Flags().StringVar(&fileList, "file-list", "", "JSON file list, \"-\" for stdin (required)")
	cmd.Flags().StringArrayVar(&metadata, "metadata", nil, "Dataset metadata, key=value (repeatable)")
	cmd.Flags().IntVar(&lifetimeDays, "lifetime-days", 0, "Dataset lifetime hint in days")
	cmd.Flags().BoolVar(&adopt, "adopt", false, "Reuse an existing open dataset with the same name")
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify catalog state after the run")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("file-list")

	return cmd
}

// workflowRows сводит обе фазы в одну таблицу: для каждого файла
// берётся исход более поздней фазы.
func workflowRows(result *workflow.Result) [][]string {
	if result.Registration == nil {
		return nil
	}

	attach := make(map[string]int)
	if result.Attachment != nil {
		for i, o := range result.Attachment.Outcomes {
			attach[o.File.DID()] = i
		}
	}

	rows := make([][]string, 0, result.Registration.Len())
	for _, o := range result.Registration.Outcomes {
		phase := "register"
		if i, ok := attach[o.File.DID()]; ok && o.Succeeded() {
			phase = "attach"
			o = result.Attachment.Outcomes[i]
		}
		errMsg := ""
		if o.Err != nil {
			errMsg = o.Err.Error()
		}
		rows = append(rows, []string{o.File.LFN,
			phase + ":" + string(o.Status),
			fmt.Sprintf("%d", o.Attempts), errMsg})
	}
	return rows
}

// parseMetadata разбирает пары key=value.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q, expected key=value", p)
		}
		meta[k] = v
	}
	return meta, nil
}

// defaultScope — scope для записей file-list без собственного scope.
func defaultScope(scope string, app *App) string {
	if scope != "" {
		return scope
	}
	return app.Config.DefaultScope
}
