// Package collab talks to the external collaborators: the simulation
// service, the generative-text assistant and the route advisor.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/breach-planner/internal/logger"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// ErrMalformedResponse is wrapped by every decode or validation failure of
// a collaborator response.
var ErrMalformedResponse = errors.New("malformed collaborator response")

// StatusError is a non-2xx reply. Message is the server's "error" field
// when it sent one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("collaborator returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("collaborator returned %d: %s", e.Code, e.Message)
}

type client struct {
	base string
	hc   *http.Client
}

// newClient builds a JSON client rooted at base. A zero timeout means none.
func newClient(base string, timeout time.Duration) client {
	return client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
	}
}

// postJSON sends in to base+path and decodes a 2xx body into out. There is
// no retry.
func (c client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("collab: encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("collab: %w", err)
	}
	id := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, id)

	log := logger.Component("collab").WithFields(logrus.Fields{"path": path, "request_id": id})
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return fmt.Errorf("collab: POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "elapsed": time.Since(start).Round(time.Millisecond)})

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("collab: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		log.Warn("collaborator rejected request")
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.WithError(err).Warn("undecodable response")
		return fmt.Errorf("collab: decode %s: %v: %w", path, err, ErrMalformedResponse)
	}
	log.Debug("collaborator replied")
	return nil
}
