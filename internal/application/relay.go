package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var ErrRelayRejected = errors.New("form endpoint rejected the submission")

// shared HTTP client for form submissions
var relayHTTPClient = &http.Client{
	Timeout: 20 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// Relay posts applications to the Google Form on the applicant's behalf.
type Relay struct {
	fields     *FieldMap
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewRelay(fields *FieldMap) *Relay {
	return &Relay{
		fields:     fields,
		httpClient: relayHTTPClient,
		limiter:    rate.NewLimiter(5, 10), // stay well inside the form's anonymous submit quota
	}
}

// WithHTTPClient replaces the client, used to point at a test server
func (r *Relay) WithHTTPClient(client *http.Client) *Relay {
	r.httpClient = client
	return r
}

// submits form with its verification token
func (r *Relay) Submit(ctx context.Context, form *Form, token string) error {
	body := r.fields.Encode(form, token).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.fields.FormURL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send submission: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrRelayRejected, resp.StatusCode)
	}

	return nil
}
