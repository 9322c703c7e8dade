package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// DefaultDelay is the simulated round trip used when no endpoint is set.
const DefaultDelay = 2 * time.Second

// Payload is what a Sender delivers.
type Payload struct {
	FormID      string            `json:"formId"`
	Language    model.Language    `json:"language"`
	Values      map[string]string `json:"values"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// Sender delivers a completed form.
type Sender interface {
	Send(ctx context.Context, payload Payload) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(ctx context.Context, payload Payload) error

func (f SenderFunc) Send(ctx context.Context, payload Payload) error {
	return f(ctx, payload)
}

// SimulatedSender waits Delay and reports success. It stands in for a backend
// during demos and local runs.
type SimulatedSender struct {
	Delay time.Duration
}

func (s SimulatedSender) Send(ctx context.Context, _ Payload) error {
	delay := s.Delay
	if delay < 0 {
		delay = 0
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RemoteError is returned by HTTPSender for non-2xx responses. Fields holds
// messages mapped onto form field names.
type RemoteError struct {
	Status int
	Fields map[string][]string
	Form   []string
}

func (e *RemoteError) Error() string {
	if len(e.Form) > 0 {
		return fmt.Sprintf("submit: remote status %d: %s", e.Status, strings.Join(e.Form, "; "))
	}
	return fmt.Sprintf("submit: remote status %d", e.Status)
}

// HTTPSender posts the payload as JSON to Endpoint.
type HTTPSender struct {
	Endpoint string
	Method   string
	Client   *http.Client
	// Form resolves error paths in the response onto field names.
	Form model.FormModel
}

type remoteErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (s HTTPSender) Send(ctx context.Context, payload Payload) error {
	if strings.TrimSpace(s.Endpoint) == "" {
		return fmt.Errorf("submit: endpoint is required")
	}
	method := strings.ToUpper(strings.TrimSpace(s.Method))
	if method == "" {
		method = http.MethodPost
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("submit: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if payload.Language != "" {
		req.Header.Set("Accept-Language", string(payload.Language))
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("submit: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	remote := &RemoteError{Status: resp.StatusCode}
	var decoded remoteErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if len(raw) > 0 && json.Unmarshal(raw, &decoded) == nil {
		mapped := validation.MapErrorPayload(s.Form, decoded.Errors)
		remote.Fields = mapped.Fields
		remote.Form = validation.MergeFormErrors(mapped.Form, decoded.Message)
	}
	return remote
}
