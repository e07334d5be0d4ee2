package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xela07ax/emergency-console/internal/domain"
	"github.com/xela07ax/emergency-console/internal/infra"
)

const maxErrorBody = 512

// HTTPClient совпадает с сигнатурой net/http.Client Do, удобно подменять в тестах.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPBackend — сырой клиент к сервису классификации. Ошибки не глотает,
// решение о подстановке дефолтов принимают уровни выше.
type HTTPBackend struct {
	baseURL string
	client  HTTPClient
}

// NewHTTPBackend создает экземпляр клиента. Таймауты задаются через контекст вызова.
func NewHTTPBackend(baseURL string, client HTTPClient) *HTTPBackend {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPBackend{baseURL: baseURL, client: client}
}

// GetStats — GET /stats.
func (b *HTTPBackend) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats *domain.DashboardStats
	if err := b.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, fmt.Errorf("/stats: %w", ErrEmptyPayload)
	}
	stats.Normalize()
	return stats, nil
}

// GetHistory — GET /history?limit=N.
func (b *HTTPBackend) GetHistory(ctx context.Context, limit int) ([]domain.ClassifiedCall, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var calls []domain.ClassifiedCall
	if err := b.do(ctx, http.MethodGet, "/history?"+q.Encode(), nil, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

// Classify — POST /classify {text}.
func (b *HTTPBackend) Classify(ctx context.Context, text string) (*domain.ClassificationResponse, error) {
	var resp *domain.ClassificationResponse
	if err := b.do(ctx, http.MethodPost, "/classify", domain.ClassifyRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("/classify: %w", ErrEmptyPayload)
	}
	return resp, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if traceID := infra.TraceID(ctx); traceID != "" {
		req.Header.Set(infra.TraceHeader, traceID)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		sErr := &StatusError{Endpoint: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(excerpt))}
		if resp.StatusCode == http.StatusTooManyRequests {
			return &ThrottleError{
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
				Cause:      sErr,
			}
		}
		return sErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%s: %w", path, ErrEmptyPayload)
		}
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}
