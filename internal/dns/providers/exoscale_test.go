package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
	"nathanbeddoewebdev/exosync/internal/retry"
	"nathanbeddoewebdev/exosync/internal/services/auth"
)

// --- Test helpers ---

const (
	testAPIKey    = "EXOtestkey"
	testAPISecret = "test-secret"
	testNow       = 1700000000
)

// newTestExoscaleProvider creates an ExoscaleProvider pointed at the given
// test server, with fast retries and polling.
func newTestExoscaleProvider(t *testing.T, serverURL string, dialect domain.Dialect) *ExoscaleProvider {
	t.Helper()
	p := NewExoscaleProvider(testAPIKey, testAPISecret, Options{Dialect: dialect, Logger: testr.New(t)})
	p.baseURL = serverURL + "/v2"
	p.retry = retry.Config{MaxAttempts: 3}
	p.pollInterval = time.Millisecond
	p.now = func() time.Time { return time.Unix(testNow, 0) }
	return p
}

// newExoRouter creates a httptest.Server that routes requests on
// "METHOD /path" and rejects requests whose signature does not verify.
func newExoRouter(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := verifySignature(r); err != nil {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{"message": err.Error()})
			return
		}

		handler, ok := handlers[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": fmt.Sprintf("no handler for %s %s", r.Method, r.URL.Path)})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// verifySignature recomputes the request signature from the header fields
// and compares it with the one sent.
func verifySignature(r *http.Request) error {
	header := r.Header.Get("Authorization")
	rest, ok := strings.CutPrefix(header, "EXO2-HMAC-SHA256 ")
	if !ok {
		return fmt.Errorf("bad scheme in %q", header)
	}

	params := map[string]string{}
	for _, kv := range strings.Split(rest, ",") {
		k, v, _ := strings.Cut(kv, "=")
		params[k] = v
	}
	if params["credential"] != testAPIKey {
		return fmt.Errorf("credential = %q", params["credential"])
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))

	var queryValues string
	if names := params["signed-query-args"]; names != "" {
		for _, name := range strings.Split(names, ";") {
			queryValues += r.URL.Query().Get(name)
		}
	}

	msg := r.Method + " " + r.URL.EscapedPath() + "\n" + string(body) + "\n" + queryValues + "\n\n" + params["expires"]
	mac := hmac.New(sha256.New, []byte(testAPISecret))
	mac.Write([]byte(msg))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if params["signature"] != want {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func intPtr(v int) *int { return &v }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func testOperation(id, state, refID string) map[string]any {
	op := map[string]any{"id": id, "state": state}
	if refID != "" {
		op["reference"] = map[string]any{"id": refID, "link": "/v2/dns-domain/z1/record/" + refID}
	}
	return op
}

// --- ListDomains tests ---

func TestExoscale_ListDomains_HappyPath(t *testing.T) {
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"GET /v2/dns-domain": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"dns-domains": []any{
					map[string]any{"id": "z1", "unicode-name": "example.com", "created-at": "2024-01-01T00:00:00Z"},
					map[string]any{"id": "z2", "unicode-name": "bücher.example"},
				},
			})
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	domains, err := p.ListDomains(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []domain.Domain{
		{ID: "z1", Name: "example.com"},
		{ID: "z2", Name: "bücher.example"},
	}
	if diff := cmp.Diff(want, domains); diff != "" {
		t.Errorf("ListDomains mismatch (-want +got):\n%s", diff)
	}
}

func TestExoscale_ListDomains_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"GET /v2/dns-domain": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusForbidden, map[string]any{"message": "invalid API key"})
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	_, err := p.ListDomains(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
	if !strings.Contains(err.Error(), "invalid API key") {
		t.Errorf("expected API message in error, got: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestExoscale_ListDomains_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"GET /v2/dns-domain": func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "try again"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"dns-domains": []any{}})
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	domains, err := p.ListDomains(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(domains) != 0 {
		t.Errorf("expected 0 domains, got %d", len(domains))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

// --- ListRecords tests ---

func TestExoscale_ListRecords_V2(t *testing.T) {
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"GET /v2/dns-domain/z1/record": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"dns-domain-records": []any{
					map[string]any{"id": "r1", "name": "", "type": "MX", "content": "mx1.example.com.", "ttl": 3600, "priority": 10},
					map[string]any{"id": "r2", "name": "www", "type": "A", "content": "192.0.2.1", "ttl": 300},
					map[string]any{"id": "r3", "name": "txt", "type": "TXT", "content": "a;b", "ttl": 60, "system-record": false},
				},
			})
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	records, err := p.ListRecords(context.Background(), "z1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []domain.RawRecord{
		{ID: "r1", Name: "", Type: domain.RecordTypeMX, TTL: 3600, Content: "mx1.example.com.", Priority: intPtr(10)},
		{ID: "r2", Name: "www", Type: domain.RecordTypeA, TTL: 300, Content: "192.0.2.1"},
		{ID: "r3", Name: "txt", Type: domain.RecordTypeTXT, TTL: 60, Content: "a;b"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("ListRecords mismatch (-want +got):\n%s", diff)
	}
}

func TestExoscale_ListRecords_Legacy(t *testing.T) {
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"GET /v2/dns-domain/z1/record": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"dns-domain-records": []any{
					map[string]any{"id": "r1", "source": ".", "type": "MX", "target": "10 mx1.example.com.", "ttl": 3600, "priority": 99},
				},
			})
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectLegacy)

	records, err := p.ListRecords(context.Background(), "z1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []domain.RawRecord{
		{ID: "r1", Name: ".", Type: domain.RecordTypeMX, TTL: 3600, Content: "10 mx1.example.com."},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("ListRecords mismatch (-want +got):\n%s", diff)
	}
}

func TestExoscale_ListRecords_FallsBackToOtherFieldNames(t *testing.T) {
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"GET /v2/dns-domain/z1/record": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"dns-domain-records": []any{
					map[string]any{"id": "r1", "source": "www", "type": "cname", "target": "example.com.", "ttl": "300"},
				},
			})
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	records, err := p.ListRecords(context.Background(), "z1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []domain.RawRecord{
		{ID: "r1", Name: "www", Type: domain.RecordTypeCNAME, TTL: 300, Content: "example.com."},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("ListRecords mismatch (-want +got):\n%s", diff)
	}
}

func TestExoscale_ListRecords_ZoneNotFound(t *testing.T) {
	srv := newExoRouter(t, map[string]http.HandlerFunc{})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	_, err := p.ListRecords(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// --- CreateRecord tests ---

func TestExoscale_CreateRecord_V2PollsOperation(t *testing.T) {
	var body map[string]any
	var polls atomic.Int32
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"POST /v2/dns-domain/z1/record": func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			writeJSON(w, http.StatusOK, testOperation("op-1", "pending", ""))
		},
		"GET /v2/operation/op-1": func(w http.ResponseWriter, r *http.Request) {
			if polls.Add(1) < 2 {
				writeJSON(w, http.StatusOK, testOperation("op-1", "pending", ""))
				return
			}
			writeJSON(w, http.StatusOK, testOperation("op-1", "success", "rec-9"))
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	id, err := p.CreateRecord(context.Background(), "z1", domain.CreateRecordOpts{
		Name:     "",
		Type:     domain.RecordTypeMX,
		TTL:      3600,
		Content:  "mx1.example.com.",
		Priority: intPtr(10),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "rec-9" {
		t.Errorf("id = %q, want %q", id, "rec-9")
	}
	if polls.Load() != 2 {
		t.Errorf("expected 2 polls, got %d", polls.Load())
	}

	want := map[string]any{
		"name":     "",
		"type":     "MX",
		"content":  "mx1.example.com.",
		"ttl":      float64(3600),
		"priority": float64(10),
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestExoscale_CreateRecord_LegacyFieldNames(t *testing.T) {
	var body map[string]any
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"POST /v2/dns-domain/z1/record": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusOK, testOperation("op-1", "success", "rec-1"))
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectLegacy)

	_, err := p.CreateRecord(context.Background(), "z1", domain.CreateRecordOpts{
		Name:     "mail",
		Type:     domain.RecordTypeMX,
		TTL:      300,
		Content:  "10 mx1.example.com.",
		Priority: intPtr(10),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := map[string]any{
		"source": "mail",
		"type":   "MX",
		"target": "10 mx1.example.com.",
		"ttl":    float64(300),
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestExoscale_CreateRecord_NotRetriedOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"POST /v2/dns-domain/z1/record": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusBadGateway, map[string]any{"message": "upstream"})
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	_, err := p.CreateRecord(context.Background(), "z1", domain.CreateRecordOpts{Name: "www", Type: domain.RecordTypeA, Content: "192.0.2.1"})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestExoscale_CreateRecord_RetriedWhenThrottled(t *testing.T) {
	var calls atomic.Int32
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"POST /v2/dns-domain/z1/record": func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, map[string]any{"message": "slow down"})
				return
			}
			writeJSON(w, http.StatusOK, testOperation("op-1", "success", "rec-1"))
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)
	p.retry.MaxDelay = 5 * time.Millisecond

	id, err := p.CreateRecord(context.Background(), "z1", domain.CreateRecordOpts{Name: "www", Type: domain.RecordTypeA, Content: "192.0.2.1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "rec-1" {
		t.Errorf("id = %q, want %q", id, "rec-1")
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestExoscale_CreateRecord_OperationFailure(t *testing.T) {
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"POST /v2/dns-domain/z1/record": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, testOperation("op-1", "pending", ""))
		},
		"GET /v2/operation/op-1": func(w http.ResponseWriter, r *http.Request) {
			op := testOperation("op-1", "failure", "")
			op["message"] = "record already exists"
			writeJSON(w, http.StatusOK, op)
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	_, err := p.CreateRecord(context.Background(), "z1", domain.CreateRecordOpts{Name: "www", Type: domain.RecordTypeA, Content: "192.0.2.1"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "record already exists") {
		t.Errorf("expected operation message in error, got: %v", err)
	}
}

func TestExoscale_CreateRecord_MissingType(t *testing.T) {
	p := newTestExoscaleProvider(t, "http://127.0.0.1:0", domain.DialectV2)

	if _, err := p.CreateRecord(context.Background(), "z1", domain.CreateRecordOpts{Name: "www"}); err == nil {
		t.Fatal("expected error for missing type, got nil")
	}
}

// --- DeleteRecord tests ---

func TestExoscale_DeleteRecord_HappyPath(t *testing.T) {
	var deleted bool
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"DELETE /v2/dns-domain/z1/record/r1": func(w http.ResponseWriter, r *http.Request) {
			deleted = true
			writeJSON(w, http.StatusOK, testOperation("op-2", "success", "r1"))
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	if err := p.DeleteRecord(context.Background(), "z1", "r1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !deleted {
		t.Error("expected DELETE to reach the server")
	}
}

func TestExoscale_DeleteRecord_NotFound(t *testing.T) {
	srv := newExoRouter(t, map[string]http.HandlerFunc{
		"DELETE /v2/dns-domain/z1/record/r1": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "record not found"})
		},
	})

	p := newTestExoscaleProvider(t, srv.URL, domain.DialectV2)

	err := p.DeleteRecord(context.Background(), "z1", "r1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// --- Signature tests ---

func TestSignatureMessage_SortsQueryArgs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://api-ch-gva-2.exoscale.com/v2/dns-domain?zeta=2&alpha=1", nil)

	msg, names := signatureMessage(req, nil, time.Unix(testNow, 0))

	if diff := cmp.Diff([]string{"alpha", "zeta"}, names); diff != "" {
		t.Errorf("query names mismatch (-want +got):\n%s", diff)
	}
	want := "GET /v2/dns-domain\n\n12\n\n1700000000"
	if msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}
}

func TestSignRequest_HeaderLayout(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "https://api-ch-gva-2.exoscale.com/v2/dns-domain/z1/record?x=1", nil)

	signRequest(req, []byte(`{}`), "KEY", "SECRET", time.Unix(testNow, 0))

	header := req.Header.Get("Authorization")
	for _, part := range []string{
		"EXO2-HMAC-SHA256 credential=KEY",
		",signed-query-args=x",
		",expires=1700000000",
		",signature=",
	} {
		if !strings.Contains(header, part) {
			t.Errorf("Authorization %q missing %q", header, part)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"soon", 0},
	}
	for _, c := range cases {
		if got := parseRetryAfter(c.in); got != c.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNewExoscaleProvider_RegionEndpoint(t *testing.T) {
	p := NewExoscaleProvider("k", "s", Options{})
	if p.baseURL != "https://api-ch-gva-2.exoscale.com/v2" {
		t.Errorf("baseURL = %q", p.baseURL)
	}
	if p.dialect.Name != domain.DialectV2.Name {
		t.Errorf("dialect = %q, want v2", p.dialect.Name)
	}

	p = NewExoscaleProvider("k", "s", Options{Region: "de-fra-1"})
	if p.baseURL != "https://api-de-fra-1.exoscale.com/v2" {
		t.Errorf("baseURL = %q", p.baseURL)
	}
}

// --- Registry tests ---

func TestExoscale_Registry_RegisterAndGet(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("EXOSCALE_API_KEY", "")
	t.Setenv("EXOSCALE_API_SECRET", "")

	store := auth.NewMockStore()
	store.SetToken("exoscale-apikey", "ak")
	store.SetToken("exoscale-apisecret", "sk")

	RegisterExoscale()

	c, err := Get("Exoscale", store, Options{Dialect: domain.DialectLegacy})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.GetDisplayName() != "Exoscale" {
		t.Errorf("GetDisplayName = %q, want %q", c.GetDisplayName(), "Exoscale")
	}
	p := c.(*ExoscaleProvider)
	if p.apiKey != "ak" || p.apiSecret != "sk" {
		t.Errorf("credentials = %q/%q, want ak/sk", p.apiKey, p.apiSecret)
	}
	if p.dialect.Name != "legacy" {
		t.Errorf("dialect = %q, want legacy", p.dialect.Name)
	}
}

func TestExoscale_Registry_EnvOverridesKeychain(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("EXOSCALE_API_KEY", "env-key")
	t.Setenv("EXOSCALE_API_SECRET", "env-secret")

	RegisterExoscale()

	c, err := Get("exoscale", auth.NewMockStore(), Options{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	p := c.(*ExoscaleProvider)
	if p.apiKey != "env-key" || p.apiSecret != "env-secret" {
		t.Errorf("credentials = %q/%q, want env-key/env-secret", p.apiKey, p.apiSecret)
	}
}

func TestExoscale_Registry_MissingSecret(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("EXOSCALE_API_KEY", "")
	t.Setenv("EXOSCALE_API_SECRET", "")

	store := auth.NewMockStore()
	// Only the key, no secret.
	store.SetToken("exoscale-apikey", "ak")

	RegisterExoscale()

	_, err := Get("exoscale", store, Options{})
	if !errors.Is(err, auth.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	_, err := Get("nonexistent", auth.NewMockStore(), Options{})
	if err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	RegisterExoscale()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	RegisterExoscale()
}
