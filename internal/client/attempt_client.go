package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/services"
	"github.com/SAP-F-2025/attempt-service/internal/session"
)

const (
	userIDHeader   = "X-User-ID"
	defaultTimeout = 15 * time.Second

	codeAttemptTerminal = "attempt_terminal"
)

// APIError is a non-2xx response from the attempt service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("attempt service: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("attempt service: %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match a closed attempt with session.ErrAttemptTerminal.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusConflict && e.Code == codeAttemptTerminal {
		return session.ErrAttemptTerminal
	}
	return nil
}

// AttemptClient talks to the attempt HTTP API on behalf of one student and
// implements session.Persistence.
type AttemptClient struct {
	BaseURL   string
	StudentID uint
	HTTP      *http.Client
	Logger    *slog.Logger
}

func NewAttemptClient(baseURL string, studentID uint, logger *slog.Logger) *AttemptClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		StudentID: studentID,
		HTTP:      &http.Client{Timeout: defaultTimeout},
		Logger:    logger.With("component", "attempt_client", "student_id", studentID),
	}
}

var _ session.Persistence = (*AttemptClient)(nil)

// StartAttempt starts a new attempt on the test or resumes the active one.
func (c *AttemptClient) StartAttempt(ctx context.Context, testID uint) (*services.AttemptResponse, error) {
	var out services.AttemptResponse
	req := services.StartAttemptRequest{TestID: testID}
	if err := c.do(ctx, http.MethodPost, "/api/v1/attempts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AttemptClient) SaveAttemptSnapshot(ctx context.Context, attemptID uint, snapshot *models.LedgerSnapshot) error {
	return c.do(ctx, http.MethodPut, attemptPath(attemptID, "autosave"), snapshot, nil)
}

func (c *AttemptClient) SubmitAttempt(ctx context.Context, attemptID uint, payload *models.SubmissionPayload) (*models.ScoreResult, error) {
	var out services.SubmitResponse
	if err := c.do(ctx, http.MethodPost, attemptPath(attemptID, "submit"), payload, &out); err != nil {
		return nil, err
	}
	if out.Result == nil {
		return nil, errors.New("attempt service returned no result")
	}
	return out.Result, nil
}

func (c *AttemptClient) GetTimeRemaining(ctx context.Context, attemptID uint) (*services.TimeRemainingResponse, error) {
	var out services.TimeRemainingResponse
	if err := c.do(ctx, http.MethodGet, attemptPath(attemptID, "time-remaining"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AttemptClient) GetResult(ctx context.Context, attemptID uint) (*services.ResultResponse, error) {
	var out services.ResultResponse
	if err := c.do(ctx, http.MethodGet, attemptPath(attemptID, "result"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenSession starts or resumes an attempt and returns a running session
// anchored to the server deadline.
func (c *AttemptClient) OpenSession(ctx context.Context, testID uint, autoSaveInterval time.Duration) (*session.Session, error) {
	resp, err := c.StartAttempt(ctx, testID)
	if err != nil {
		return nil, err
	}
	if resp.Attempt == nil || resp.Test == nil {
		return nil, errors.New("attempt service returned an incomplete attempt")
	}

	s, err := session.New(session.Config{
		AttemptID:        resp.Attempt.ID,
		Questions:        resp.Test.Questions,
		Duration:         time.Duration(resp.Test.Duration) * time.Minute,
		Deadline:         resp.Attempt.Deadline,
		AutoSaveInterval: autoSaveInterval,
		Logger:           c.Logger,
	}, c)
	if err != nil {
		return nil, err
	}

	if resp.Resumed {
		c.Logger.Info("Resuming attempt", "attempt_id", resp.Attempt.ID, "has_snapshot", resp.Snapshot != nil)
		err = s.Resume(ctx, resp.Snapshot)
	} else {
		err = s.Start(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *AttemptClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(userIDHeader, strconv.FormatUint(uint64(c.StudentID), 10))
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
		apiErr.Code = payload.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func attemptPath(attemptID uint, action string) string {
	return fmt.Sprintf("/api/v1/attempts/%d/%s", attemptID, action)
}
