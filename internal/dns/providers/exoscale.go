package providers

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

	"github.com/go-logr/logr"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
	credentials "nathanbeddoewebdev/exosync/internal/platform/providers"
	"nathanbeddoewebdev/exosync/internal/retry"
	"nathanbeddoewebdev/exosync/internal/services/auth"
)

const (
	exoscaleBaseURLFormat    = "https://api-%s.exoscale.com/v2"
	exoscaleTimeout          = 30 * time.Second
	exoscaleSignatureTTL     = 10 * time.Minute
	exoscalePollInterval     = time.Second
	exoscaleOperationTimeout = 2 * time.Minute
	exoscaleMaxBody          = 10 << 20
)

// Operation states reported by the Exoscale API.
const (
	operationPending = "pending"
	operationSuccess = "success"
	operationFailure = "failure"
	operationTimeout = "timeout"
)

// Compile-time check that ExoscaleProvider satisfies domain.Client.
var _ domain.Client = (*ExoscaleProvider)(nil)

// ExoscaleProvider implements domain.Client using the Exoscale API v2.
// Record JSON is read and written through the configured Dialect's field
// names. Mutations are asynchronous on the provider side; CreateRecord and
// DeleteRecord poll the returned operation until it settles.
type ExoscaleProvider struct {
	apiKey    string
	apiSecret string
	baseURL   string
	dialect   domain.Dialect
	client    *http.Client
	log       logr.Logger

	retry        retry.Config
	pollInterval time.Duration
	now          func() time.Time
}

// NewExoscaleProvider creates an ExoscaleProvider for the given credentials
// and options. An empty region selects ch-gva-2.
func NewExoscaleProvider(apiKey, apiSecret string, opts Options) *ExoscaleProvider {
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = DefaultRegion
	}
	dialect := opts.Dialect
	if dialect.Name == "" {
		dialect = domain.DialectV2
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	return &ExoscaleProvider{
		apiKey:       apiKey,
		apiSecret:    apiSecret,
		baseURL:      fmt.Sprintf(exoscaleBaseURLFormat, region),
		dialect:      dialect,
		client:       &http.Client{Timeout: exoscaleTimeout},
		log:          log.WithName("exoscale"),
		retry:        retry.DefaultConfig(),
		pollInterval: exoscalePollInterval,
		now:          time.Now,
	}
}

// RegisterExoscale registers the Exoscale client factory with the DNS
// registry. Credentials come from EXOSCALE_API_KEY / EXOSCALE_API_SECRET or
// the keychain entries exoscale-apikey / exoscale-apisecret.
func RegisterExoscale() {
	Register("exoscale", func(store auth.Store, opts Options) (domain.Client, error) {
		spec := credentials.Lookup("exoscale")
		if spec == nil {
			return nil, errors.New("exoscale auth: no credential spec registered")
		}

		values := make([]string, len(spec.Keys))
		for i, k := range spec.Keys {
			v, _, err := spec.Resolve(store, k)
			if err != nil {
				return nil, fmt.Errorf("exoscale auth: %w (run 'exosync auth login')", err)
			}
			values[i] = v
		}
		return NewExoscaleProvider(values[0], values[1], opts), nil
	})
}

// GetDisplayName returns the human-readable provider name.
func (p *ExoscaleProvider) GetDisplayName() string {
	return "Exoscale"
}

// --- API request/response types ---

type exoDomain struct {
	ID          string `json:"id"`
	UnicodeName string `json:"unicode-name"`
}

type exoReference struct {
	ID      string `json:"id"`
	Link    string `json:"link,omitempty"`
	Command string `json:"command,omitempty"`
}

type exoOperation struct {
	ID        string        `json:"id"`
	State     string        `json:"state"`
	Reason    string        `json:"reason,omitempty"`
	Message   string        `json:"message,omitempty"`
	Reference *exoReference `json:"reference,omitempty"`
}

func (op exoOperation) referenceID() string {
	if op.Reference == nil {
		return ""
	}
	return op.Reference.ID
}

// APIError is a non-2xx response from the Exoscale API. It unwraps to the
// matching domain sentinel when the status has one.
type APIError struct {
	StatusCode int
	Message    string

	sentinel   error
	retryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.sentinel != nil {
		return fmt.Sprintf("exoscale: %v (HTTP %d): %s", e.sentinel, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("exoscale: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.sentinel }

// RetryAfter returns the wait requested by the server, if any.
func (e *APIError) RetryAfter() time.Duration { return e.retryAfter }

// mapAPIError converts an HTTP error response to an *APIError.
func mapAPIError(resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
		retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.sentinel = domain.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		apiErr.sentinel = domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		apiErr.sentinel = domain.ErrConflict
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.sentinel = domain.ErrRateLimited
	case resp.StatusCode >= 500:
		apiErr.sentinel = domain.ErrUnavailable
	}
	return apiErr
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// parseRetryAfter accepts both the delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// --- HTTP helpers ---

// do sends a signed request and decodes a JSON response into out. Reads are
// retried on any transient failure; mutations only when the API throttled
// the request, since a timed-out POST may already have been applied.
func (p *ExoscaleProvider) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("exoscale: failed to encode request: %w", err)
		}
		payload = data
	}

	shouldRetry := retry.IsRetryable
	if method != http.MethodGet {
		shouldRetry = func(err error) bool { return errors.Is(err, domain.ErrRateLimited) }
	}

	cfg := p.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		p.log.V(1).Info("retrying request", "method", method, "path", path, "attempt", attempt, "delay", delay, "error", err.Error())
	}

	return retry.Do(ctx, cfg, shouldRetry, func() error {
		return p.doOnce(ctx, method, path, payload, out)
	})
}

func (p *ExoscaleProvider) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("exoscale: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	signRequest(req, payload, p.apiKey, p.apiSecret, p.now().Add(exoscaleSignatureTTL))

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("exoscale: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, exoscaleMaxBody))
	if err != nil {
		return fmt.Errorf("exoscale: failed to read response: %w", err)
	}
	p.log.V(1).Info("api call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapAPIError(resp, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("exoscale: failed to decode response: %w", err)
	}
	return nil
}

// wait polls op until it leaves the pending state.
func (p *ExoscaleProvider) wait(ctx context.Context, op exoOperation) (exoOperation, error) {
	ctx, cancel := context.WithTimeout(ctx, exoscaleOperationTimeout)
	defer cancel()

	for op.State == operationPending || op.State == "" {
		if op.ID == "" {
			return op, errors.New("exoscale: pending operation without id")
		}

		timer := time.NewTimer(p.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return op, fmt.Errorf("exoscale: waiting for operation %s: %w", op.ID, ctx.Err())
		case <-timer.C:
		}

		var next exoOperation
		if err := p.do(ctx, http.MethodGet, "/operation/"+url.PathEscape(op.ID), nil, &next); err != nil {
			return op, fmt.Errorf("exoscale: polling operation %s: %w", op.ID, err)
		}
		op = next
	}

	switch op.State {
	case operationSuccess:
		return op, nil
	case operationFailure, operationTimeout:
		detail := op.Message
		if detail == "" {
			detail = op.Reason
		}
		return op, fmt.Errorf("exoscale: operation %s ended in %s: %s", op.ID, op.State, detail)
	default:
		return op, fmt.Errorf("exoscale: operation %s in unexpected state %q", op.ID, op.State)
	}
}

// --- Record field mapping ---

// recordFromJSON converts one API record object to a RawRecord, reading the
// dialect's field names first and the other dialect's as a fallback.
func (p *ExoscaleProvider) recordFromJSON(obj map[string]any) domain.RawRecord {
	rec := domain.RawRecord{
		ID:      stringField(obj, "id"),
		Name:    stringField(obj, p.dialect.NameField, "name", "source"),
		Type:    domain.RecordType(strings.ToUpper(stringField(obj, "type", "record_type"))),
		Content: stringField(obj, p.dialect.ContentField, "content", "target"),
	}
	if ttl := intField(obj, "ttl"); ttl != nil {
		rec.TTL = *ttl
	}
	if !p.dialect.PriorityEmbedded && p.dialect.PriorityField != "" {
		rec.Priority = intField(obj, p.dialect.PriorityField)
	}
	return rec
}

// recordToJSON builds the create request body for opts.
func (p *ExoscaleProvider) recordToJSON(opts domain.CreateRecordOpts) map[string]any {
	body := map[string]any{
		p.dialect.NameField:    opts.Name,
		"type":                 string(opts.Type),
		p.dialect.ContentField: opts.Content,
	}
	if opts.TTL > 0 {
		body["ttl"] = opts.TTL
	}
	if opts.Priority != nil && !p.dialect.PriorityEmbedded && p.dialect.PriorityField != "" {
		body[p.dialect.PriorityField] = *opts.Priority
	}
	return body
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if k == "" {
			continue
		}
		switch v := obj[k].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func intField(obj map[string]any, key string) *int {
	switch v := obj[key].(type) {
	case float64:
		n := int(v)
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

// --- Client implementation ---

// ListDomains returns all DNS domains in the account.
func (p *ExoscaleProvider) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	var out struct {
		Domains []exoDomain `json:"dns-domains"`
	}
	if err := p.do(ctx, http.MethodGet, "/dns-domain", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	domains := make([]domain.Domain, 0, len(out.Domains))
	for _, d := range out.Domains {
		domains = append(domains, domain.Domain{ID: d.ID, Name: d.UnicodeName})
	}
	return domains, nil
}

// ListRecords returns all raw records of the zone with the given ID, in API
// order.
func (p *ExoscaleProvider) ListRecords(ctx context.Context, zoneID string) ([]domain.RawRecord, error) {
	var out struct {
		Records []map[string]any `json:"dns-domain-records"`
	}
	path := "/dns-domain/" + url.PathEscape(zoneID) + "/record"
	if err := p.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list records for zone %s: %w", zoneID, err)
	}

	records := make([]domain.RawRecord, 0, len(out.Records))
	for _, obj := range out.Records {
		records = append(records, p.recordFromJSON(obj))
	}
	return records, nil
}

// CreateRecord creates one raw record and waits for the operation to
// complete. It returns the ID of the new record.
func (p *ExoscaleProvider) CreateRecord(ctx context.Context, zoneID string, opts domain.CreateRecordOpts) (string, error) {
	if opts.Type == "" {
		return "", errors.New("record type is required")
	}

	var op exoOperation
	path := "/dns-domain/" + url.PathEscape(zoneID) + "/record"
	if err := p.do(ctx, http.MethodPost, path, p.recordToJSON(opts), &op); err != nil {
		return "", fmt.Errorf("failed to create %s record %q: %w", opts.Type, opts.Name, err)
	}

	op, err := p.wait(ctx, op)
	if err != nil {
		return "", fmt.Errorf("failed to create %s record %q: %w", opts.Type, opts.Name, err)
	}
	return op.referenceID(), nil
}

// DeleteRecord deletes a raw record by ID and waits for the operation to
// complete.
func (p *ExoscaleProvider) DeleteRecord(ctx context.Context, zoneID string, id string) error {
	var op exoOperation
	path := "/dns-domain/" + url.PathEscape(zoneID) + "/record/" + url.PathEscape(id)
	if err := p.do(ctx, http.MethodDelete, path, nil, &op); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	if _, err := p.wait(ctx, op); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}
