package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shaiso/Rucioflow/internal/domain"
)

// Output управляет форматированием вывода CLI.
//
// Данные идут в stdout (таблица или JSON), сообщения — в stderr,
// чтобы вывод можно было передавать по pipe.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        os.Stdout,
		errW:     os.Stderr,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}

// --- Общие табличные представления ---

var datasetHeaders = []string{"DID", "DUID", "STATE", "LIFETIME_DAYS", "CREATED"}

func datasetRow(ds *domain.Dataset) []string {
	created := ""
	if !ds.CreatedAt.IsZero() {
		created = ds.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return []string{ds.DID(), ds.DUID, string(ds.State),
		fmt.Sprintf("%d", ds.LifetimeDays), created}
}

var fileHeaders = []string{"DID", "SIZE", "CHECKSUM", "GUID"}

func fileRows(files []domain.FileInfo) [][]string {
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{f.DID(), fmt.Sprintf("%d", f.Size), f.Checksum, f.GUID}
	}
	return rows
}

var outcomeHeaders = []string{"LFN", "STATUS", "ATTEMPTS", "ERROR"}

func outcomeRows(result *domain.BatchResult) [][]string {
	rows := make([][]string, result.Len())
	for i, o := range result.Outcomes {
		errMsg := ""
		if o.Err != nil {
			errMsg = o.Err.Error()
		}
		rows[i] = []string{o.File.LFN, string(o.Status),
			fmt.Sprintf("%d", o.Attempts), errMsg}
	}
	return rows
}

// batchSummary — однострочная сводка batch-результата для stderr.
func batchSummary(operation string, result *domain.BatchResult) string {
	return fmt.Sprintf("%s: %d total, %d done, %d already existed, %d failed",
		operation, result.Len(), result.Registered(),
		result.AlreadyExists(), result.Failed())
}
