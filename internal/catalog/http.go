package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shaiso/Rucioflow/internal/domain"
	"github.com/shaiso/Rucioflow/internal/telemetry"
)

// Таймаут per-call по умолчанию.
const defaultTimeout = 30 * time.Second

// HTTPClient — реализация Client поверх REST API каталога.
type HTTPClient struct {
	baseURL    string
	account    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// HTTPConfig — конфигурация HTTP-клиента каталога.
type HTTPConfig struct {
	// BaseURL — адрес каталога (например, "https://catalog.example.org").
	BaseURL string

	// Account — учётная запись, от имени которой выполняются вызовы.
	Account string

	// Token — auth-токен. Получение токена — забота вызывающего.
	Token string

	// Timeout — таймаут одного запроса (default: 30s).
	Timeout time.Duration

	// Logger
	Logger *slog.Logger
}

// NewHTTPClient создаёт клиент каталога.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		account:    cfg.Account,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// --- Wire types ---

type createDatasetRequest struct {
	Scope        string            `json:"scope"`
	Name         string            `json:"name"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LifetimeDays int               `json:"lifetime_days,omitempty"`
}

type createDatasetResponse struct {
	DUID string `json:"duid"`
}

type registerReplicaRequest struct {
	Scope    string `json:"scope"`
	LFN      string `json:"lfn"`
	PFN      string `json:"pfn"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
	GUID     string `json:"guid,omitempty"`
}

type attachFileRequest struct {
	Scope string `json:"scope"`
	LFN   string `json:"lfn"`
}

type datasetResponse struct {
	Scope        string            `json:"scope"`
	Name         string            `json:"name"`
	DUID         string            `json:"duid"`
	State        string            `json:"state"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LifetimeDays int               `json:"lifetime_days,omitempty"`
}

type fileResponse struct {
	Scope    string `json:"scope"`
	LFN      string `json:"lfn"`
	PFN      string `json:"pfn,omitempty"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
	GUID     string `json:"guid,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client implementation ---

// CreateDataset создаёт пустой OPEN dataset.
func (c *HTTPClient) CreateDataset(ctx context.Context, scope, name string, meta map[string]string, lifetimeDays int) (string, error) {
	body := createDatasetRequest{
		Scope:        scope,
		Name:         name,
		Metadata:     meta,
		LifetimeDays: lifetimeDays,
	}

	var resp createDatasetResponse
	err := c.call(ctx, "create_dataset", http.MethodPost, "/api/v1/datasets", body, &resp)
	if err != nil {
		return "", err
	}
	return resp.DUID, nil
}

// RegisterReplica регистрирует реплику файла на rse.
func (c *HTTPClient) RegisterReplica(ctx context.Context, rse string, file domain.FileInfo) error {
	body := registerReplicaRequest{
		Scope:    file.Scope,
		LFN:      file.LFN,
		PFN:      file.PFN,
		Size:     file.Size,
		Checksum: file.Checksum,
		GUID:     file.GUID,
	}
	path := "/api/v1/rses/" + url.PathEscape(rse) + "/replicas"
	return c.call(ctx, "register_replica", http.MethodPost, path, body, nil)
}

// AttachFile присоединяет файл к dataset'у.
func (c *HTTPClient) AttachFile(ctx context.Context, duid, scope, lfn string) error {
	body := attachFileRequest{Scope: scope, LFN: lfn}
	path := "/api/v1/datasets/" + url.PathEscape(duid) + "/files"
	return c.call(ctx, "attach_file", http.MethodPost, path, body, nil)
}

// CloseDataset закрывает dataset.
func (c *HTTPClient) CloseDataset(ctx context.Context, duid string) error {
	path := "/api/v1/datasets/" + url.PathEscape(duid) + "/close"
	return c.call(ctx, "close_dataset", http.MethodPost, path, nil, nil)
}

// GetDatasetMetadata возвращает текущее состояние dataset'а.
func (c *HTTPClient) GetDatasetMetadata(ctx context.Context, duid string) (*domain.Dataset, error) {
	var resp datasetResponse
	path := "/api/v1/datasets/" + url.PathEscape(duid)
	if err := c.call(ctx, "get_metadata", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return &domain.Dataset{
		Scope:        resp.Scope,
		Name:         resp.Name,
		DUID:         resp.DUID,
		State:        domain.DatasetState(resp.State),
		Metadata:     resp.Metadata,
		LifetimeDays: resp.LifetimeDays,
	}, nil
}

// ListDatasetFiles возвращает файлы dataset'а.
func (c *HTTPClient) ListDatasetFiles(ctx context.Context, duid string) ([]domain.FileInfo, error) {
	var resp []fileResponse
	path := "/api/v1/datasets/" + url.PathEscape(duid) + "/files"
	if err := c.call(ctx, "list_files", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	files := make([]domain.FileInfo, len(resp))
	for i, f := range resp {
		files[i] = domain.FileInfo{
			Scope:    f.Scope,
			LFN:      f.LFN,
			PFN:      f.PFN,
			Size:     f.Size,
			Checksum: f.Checksum,
			GUID:     domain.FormatGUID(f.GUID),
		}
	}
	return files, nil
}

// --- HTTP plumbing ---

// call выполняет один запрос и разбирает ответ или ошибку.
func (c *HTTPClient) call(ctx context.Context, operation, method, path string, body, result any) error {
	err := c.do(ctx, method, path, body, result)
	telemetry.CatalogRequests.WithLabelValues(operation, resultLabel(err)).Inc()

	if err != nil {
		c.logger.Debug("catalog call failed",
			"operation", operation,
			"path", path,
			"error", err,
		)
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.account != "" {
		req.Header.Set("X-Catalog-Account", c.account)
	}
	if c.token != "" {
		req.Header.Set("X-Catalog-Auth-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Контекст вызывающего имеет приоритет над сетевой ошибкой
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkError сводит HTTP-статус и тело ошибки к tagged-варианту.
func (c *HTTPClient) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error.Message != "" {
		msg = er.Error.Code + ": " + er.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrDenied, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case resp.StatusCode == http.StatusConflict:
		if er.Error.Code == "ALREADY_EXISTS" {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, msg)
		}
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrTransient, msg)
	default:
		return errors.New(msg)
	}
}

// resultLabel — значение label'а result для метрики CatalogRequests.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDenied):
		return "denied"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "error"
	}
}
