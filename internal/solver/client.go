package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

// Client talks to the external constraint solver over HTTP. One request per
// solve, no retries: a failed call surfaces to the caller verbatim.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a solver client. The HTTP timeout bounds the whole
// round trip and exceeds the time budget embedded in the input document.
func NewClient(cfg config.SolverConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Solve posts the input document and decodes the solver's result. Transport
// failures and non-2xx statuses return ErrSolverUnavailable with the
// underlying cause preserved.
func (c *Client) Solve(ctx context.Context, input *dto.SolveInput) (*dto.SolveResult, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal solve input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build solver request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("solver request failed", zap.String("url", c.baseURL), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrSolverUnavailable.Code, appErrors.ErrSolverUnavailable.Status, appErrors.ErrSolverUnavailable.Message)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSolverUnavailable.Code, appErrors.ErrSolverUnavailable.Status, appErrors.ErrSolverUnavailable.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("solver returned error status", zap.Int("status", resp.StatusCode), zap.ByteString("body", truncate(body, 512)))
		err := fmt.Errorf("solver status %d: %s", resp.StatusCode, truncate(body, 512))
		return nil, appErrors.Wrap(err, appErrors.ErrSolverUnavailable.Code, appErrors.ErrSolverUnavailable.Status, appErrors.ErrSolverUnavailable.Message)
	}

	var result dto.SolveResult
	if err := json.Unmarshal(body, &result); err != nil {
		err = fmt.Errorf("decode solver response: %w", err)
		return nil, appErrors.Wrap(err, appErrors.ErrSolverUnavailable.Code, appErrors.ErrSolverUnavailable.Status, appErrors.ErrSolverUnavailable.Message)
	}

	return &result, nil
}

func truncate(b []byte, max int) []byte {
	if len(b) <= max {
		return b
	}
	return b[:max]
}
