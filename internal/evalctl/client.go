package evalctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/rubric"
	"github.com/okian/breedgrade/internal/domain/validation"
)

// ErrUnexpectedStatus marks any non-success response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// APIError is a non-success response decoded from the service.
type APIError struct {
	Status     int                    `json:"-"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return ErrUnexpectedStatus }

// Rubric is the body of GET /api/rubric.
type Rubric struct {
	Traits        []rubric.Trait `json:"traits"`
	MinTraitScore int            `json:"min_trait_score"`
	MaxTraitScore int            `json:"max_trait_score"`
	MaxScore      int            `json:"max_score"`
}

// Client talks to the evaluation API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks GET /api/health.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, http.StatusOK, &out); err != nil {
		return err
	}
	if out.Status != "healthy" {
		return fmt.Errorf("service reports status %q", out.Status)
	}
	return nil
}

// Rubric fetches the scoring traits.
func (c *Client) Rubric(ctx context.Context) (Rubric, error) {
	var out Rubric
	err := c.do(ctx, http.MethodGet, "/api/rubric", nil, http.StatusOK, &out)
	return out, err
}

// Submit posts one evaluation.
func (c *Client) Submit(ctx context.Context, in model.Input) (model.Evaluation, error) {
	var out model.Evaluation
	err := c.do(ctx, http.MethodPost, "/api/evaluations", in, http.StatusCreated, &out)
	return out, err
}

// List fetches up to limit evaluations, newest first. limit <= 0 uses the server default.
func (c *Client) List(ctx context.Context, limit int) ([]model.Evaluation, error) {
	path := "/api/evaluations"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []model.Evaluation
	err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out)
	return out, err
}

// Get fetches one evaluation.
func (c *Client) Get(ctx context.Context, id string) (model.Evaluation, error) {
	var out model.Evaluation
	err := c.do(ctx, http.MethodGet, "/api/evaluations/"+url.PathEscape(id), nil, http.StatusOK, &out)
	return out, err
}

// Stats fetches the evaluation summary.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	err := c.do(ctx, http.MethodGet, "/api/evaluations/stats", nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode != want {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = "unexpected_status"
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
