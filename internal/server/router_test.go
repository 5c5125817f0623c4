package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	oldLogger := observability.Logger
	observability.Logger = zap.NewNop()
	t.Cleanup(func() { observability.Logger = oldLogger })

	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	store := calculator.NewStore(calculator.StoreOptions{})
	return NewRouter(calculator.NewHandler(store))
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterCalculatorSessionSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	state, ok := payload["state"].(map[string]any)
	if !ok {
		t.Fatalf("expected state object, got %#v", payload["state"])
	}
	for _, field := range []string{"current_operand", "previous_operand", "operator"} {
		if v, ok := state[field]; !ok || v != nil {
			t.Fatalf("expected %s to be null in a fresh session, got %#v", field, v)
		}
	}
}

func TestNewRouterChainedKeyPresses(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, rr.Code)

	var created calculator.SessionResponse
	testutil.DecodeJSONBody(t, rr.Body, &created)

	var last calculator.SessionResponse
	for _, key := range []string{"5", "+", "3", "*", "2", "="} {
		path := "/calculator/sessions/" + created.ID + "/keys/" + key
		rr := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, path, nil), router)
		testutil.CheckResponseCode(t, http.StatusOK, rr.Code)
		testutil.DecodeJSONBody(t, rr.Body, &last)
	}

	if got := last.State.Current.String(); got != "16" {
		t.Fatalf("expected current operand %q, got %q", "16", got)
	}
	if !last.State.Overwrite {
		t.Fatal("expected overwrite flag after evaluation")
	}
}

func TestNewRouterDivideKeyMustBeEscaped(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	var created calculator.SessionResponse
	testutil.DecodeJSONBody(t, rr.Body, &created)

	base := "/calculator/sessions/" + created.ID
	for _, path := range []string{base + "/keys/6", base + "/keys/%2F", base + "/keys/0", base + "/keys/="} {
		rr := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, path, nil), router)
		testutil.CheckResponseCode(t, http.StatusOK, rr.Code)
	}

	rr = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, base, nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	var got calculator.SessionResponse
	testutil.DecodeJSONBody(t, rr.Body, &got)
	if cur := got.State.Current.String(); cur != "Infinity" {
		t.Fatalf("expected %q, got %q", "Infinity", cur)
	}
}

func TestNewRouterActionOnUnknownSession(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewJSONRequest(http.MethodPost, "/calculator/sessions/"+uuid.New().String()+"/actions", `{"type":"digit","value":"7"}`)
	rr := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusNotFound, rr.Code)

	var payload map[string]string
	testutil.DecodeJSONBody(t, rr.Body, &payload)
	if payload["error"] == "" {
		t.Fatal("expected error message in body")
	}
}
