package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nordvik/timeledger/internal/models"
)

// REST implements Store against the hosted record backend. Requests are
// plain JSON over HTTP with an API-key header; 429 and 5xx responses are
// retried with exponential backoff.
type REST struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

const restMaxRetries = 3

// NewREST creates a REST store client for the given base URL.
func NewREST(baseURL, apiKey string, logger *slog.Logger) *REST {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &REST{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (r *REST) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("store: marshal request: %w", err)
		}
		reqBody = data
	}

	start := time.Now()
	var resp *http.Response
	for attempt := 0; ; attempt++ {
		var rd io.Reader
		if reqBody != nil {
			rd = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, rd)
		if err != nil {
			return nil, fmt.Errorf("store: create request: %w", err)
		}
		req.Header.Set("X-Api-Key", r.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err = r.httpClient.Do(req)
		if err != nil {
			if attempt == restMaxRetries {
				return nil, fmt.Errorf("store: send request: %w", err)
			}
			r.logger.Debug("store request transport error, retrying",
				slog.String("method", method), slog.String("path", path), slog.Int("attempt", attempt+1))
			time.Sleep(backoff(attempt))
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == restMaxRetries {
				return nil, fmt.Errorf("store: status %d after %d retries", resp.StatusCode, restMaxRetries)
			}
			r.logger.Debug("store request retryable status",
				slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
			time.Sleep(backoff(attempt))
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("store: read response: %w", err)
	}

	r.logger.Debug("store response",
		slog.String("method", method), slog.String("path", path),
		slog.Int("status", resp.StatusCode), slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("store: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func getList[T any](ctx context.Context, r *REST, path string) ([]T, error) {
	data, err := r.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return out, nil
}

// ListTimeLogs reads the time-log collection ordered by point in time.
func (r *REST) ListTimeLogs(ctx context.Context) ([]models.TimeLogRecord, error) {
	return getList[models.TimeLogRecord](ctx, r, "/timelogs?"+url.Values{"order_by": {"point_in_time"}}.Encode())
}

// ListEmployees reads the employee collection, inactive employees included.
func (r *REST) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	return getList[models.Employee](ctx, r, "/employees")
}

// ListProjects reads the project collection, hidden projects included.
func (r *REST) ListProjects(ctx context.Context) ([]models.Project, error) {
	return getList[models.Project](ctx, r, "/projects")
}

// InsertTimeLog creates a record; the backend assigns id and created_at.
func (r *REST) InsertTimeLog(ctx context.Context, rec NewTimeLog) (models.TimeLogRecord, error) {
	data, err := r.doRequest(ctx, http.MethodPost, "/timelogs", rec)
	if err != nil {
		return models.TimeLogRecord{}, err
	}
	var stored models.TimeLogRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return models.TimeLogRecord{}, fmt.Errorf("store: decode inserted record: %w", err)
	}
	return stored, nil
}

// UpdateTimeLog patches the record by id and returns the updated row.
func (r *REST) UpdateTimeLog(ctx context.Context, id string, patch TimeLogPatch) (models.TimeLogRecord, error) {
	data, err := r.doRequest(ctx, http.MethodPatch, "/timelogs/"+url.PathEscape(id), patch)
	if err != nil {
		return models.TimeLogRecord{}, err
	}
	var updated models.TimeLogRecord
	if err := json.Unmarshal(data, &updated); err != nil {
		return models.TimeLogRecord{}, fmt.Errorf("store: decode updated record: %w", err)
	}
	return updated, nil
}

// DeleteTimeLog removes the record by id.
func (r *REST) DeleteTimeLog(ctx context.Context, id string) error {
	_, err := r.doRequest(ctx, http.MethodDelete, "/timelogs/"+url.PathEscape(id), nil)
	return err
}
