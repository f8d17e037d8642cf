// Package notify posts scheduler status to the supervisor endpoint. Delivery
// is best-effort: the cash cut result is already durable before any post is
// attempted, so a dead supervisor only delays visibility, never loses data.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resty.dev/v3"

	"coworkpos-backend/internal/domain"
)

type Status string

const (
	StatusSuccess     Status = "SUCCESS"
	StatusError       Status = "ERROR"
	StatusHealthCheck Status = "HEALTH_CHECK"
)

// Payload is the wire format expected by the supervisor.
type Payload struct {
	Source    string         `json:"source"`
	Status    Status         `json:"status"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

type Supervisor struct {
	client  *resty.Client
	url     string
	source  string
	agentID string
	logger  *slog.Logger
}

// NewSupervisor builds a client for the configured endpoint. An empty url
// disables reporting; Report becomes a no-op.
func NewSupervisor(url, source, agentID string, logger *slog.Logger) *Supervisor {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Agent-ID", agentID)
	return &Supervisor{
		client:  client,
		url:     url,
		source:  source,
		agentID: agentID,
		logger:  logger,
	}
}

// Report posts one status payload. Failures are returned wrapped in
// domain.ErrNotification for metrics, but callers only ever log them.
func (s *Supervisor) Report(ctx context.Context, status Status, message string, data map[string]any) error {
	if s.url == "" {
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}
	payload := Payload{
		Source:    s.source,
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	res, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(s.url)
	if err != nil {
		s.logger.Warn("supervisor unreachable", "status", string(status), "err", err)
		return fmt.Errorf("%w: %v", domain.ErrNotification, err)
	}
	if !res.IsSuccess() {
		s.logger.Warn("supervisor rejected report", "status", string(status), "http_status", res.StatusCode())
		return fmt.Errorf("%w: supervisor returned %d", domain.ErrNotification, res.StatusCode())
	}
	return nil
}
