package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/procura/internal/common"
)

// newTestMux builds a registry with an echo tool and mounts the transport
// handler the same way the server routes do.
func newTestMux(t *testing.T) (*http.ServeMux, *Registry) {
	t.Helper()

	reg := NewRegistry()
	_, err := reg.Register(ToolSpec{
		Name:        "echo",
		Description: "Echo the x parameter",
		Params:      []ParamSpec{{Name: "x", Type: TypeString, Required: true}},
		Handler: func(ctx context.Context, args Args) (any, error) {
			return map[string]any{"x": args.GetString("x", "")}, nil
		},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err = reg.Register(ToolSpec{
		Name: "flaky",
		Handler: func(ctx context.Context, args Args) (any, error) {
			return nil, Errorf(http.StatusServiceUnavailable, "upstream unavailable, status 503")
		},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	logger := common.NewSilentLogger()
	h := NewHandler("/mcp", reg, NewDispatcher(reg, false, logger), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp/tools", h.HandleDiscovery)
	mux.HandleFunc("/mcp/tools/", h.HandleInvoke)
	return mux, reg
}

func postTool(mux *http.ServeMux, name, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/mcp/tools/"+name, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandler_Discovery(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest("GET", "/mcp/tools", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var payload struct {
		Tools []struct {
			Name        string      `json:"name"`
			Description string      `json:"description"`
			InputSchema InputSchema `json:"input_schema"`
			Endpoint    string      `json:"endpoint"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to unmarshal discovery payload: %v", err)
	}

	if len(payload.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(payload.Tools))
	}
	echo := payload.Tools[0]
	if echo.Name != "echo" {
		t.Errorf("expected first tool echo (registration order), got %s", echo.Name)
	}
	if echo.Endpoint != "/mcp/tools/echo" {
		t.Errorf("expected endpoint /mcp/tools/echo, got %s", echo.Endpoint)
	}
	if echo.InputSchema.Type != "object" {
		t.Errorf("expected input_schema.type object, got %s", echo.InputSchema.Type)
	}
	if len(echo.InputSchema.Required) != 1 || echo.InputSchema.Required[0] != "x" {
		t.Errorf("expected required [x], got %v", echo.InputSchema.Required)
	}
}

func TestHandler_DiscoveryIdempotent(t *testing.T) {
	mux, _ := newTestMux(t)

	get := func() []byte {
		req := httptest.NewRequest("GET", "/mcp/tools", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w.Body.Bytes()
	}

	first := get()
	second := get()
	if !bytes.Equal(first, second) {
		t.Error("expected byte-identical discovery payloads with no intervening registration")
	}
}

func TestHandler_InvokeSuccess(t *testing.T) {
	mux, _ := newTestMux(t)

	w := postTool(mux, "echo", `{"x":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["x"] != "hi" {
		t.Errorf("expected x=hi, got %v", body)
	}
}

func TestHandler_InvokeExtraFieldIgnored(t *testing.T) {
	mux, _ := newTestMux(t)

	w := postTool(mux, "echo", `{"x":"hi","y":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(body) != 1 || body["x"] != "hi" {
		t.Errorf("expected {x: hi}, got %v", body)
	}
}

func TestHandler_InvokeMissingRequired(t *testing.T) {
	mux, _ := newTestMux(t)

	w := postTool(mux, "echo", `{}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if !strings.Contains(body["detail"], `"x"`) {
		t.Errorf("expected detail to name missing field x, got %q", body["detail"])
	}
}

func TestHandler_InvokeUnknownTool(t *testing.T) {
	mux, _ := newTestMux(t)

	w := postTool(mux, "nope", `{}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandler_InvokeMalformedBody(t *testing.T) {
	mux, _ := newTestMux(t)

	for _, body := range []string{`{`, `[1,2]`, `"str"`} {
		w := postTool(mux, "echo", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected status 400, got %d", body, w.Code)
		}
	}
}

func TestHandler_InvokeEmptyBodyTreatedAsEmptyObject(t *testing.T) {
	mux, _ := newTestMux(t)

	// flaky has no parameters, so an empty body dispatches fine and the
	// handler's structured error comes back unchanged.
	w := postTool(mux, "flaky", ``)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["detail"] != "upstream unavailable, status 503" {
		t.Errorf("expected handler detail passed through, got %q", body["detail"])
	}
}

func TestHandler_InvokeMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest("GET", "/mcp/tools/echo", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestHandler_InternalErrorHidesDetail(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(ToolSpec{
		Name: "broken",
		Handler: func(ctx context.Context, args Args) (any, error) {
			return nil, errors.New("secret connection string leaked")
		},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	logger := common.NewSilentLogger()
	h := NewHandler("/mcp", reg, NewDispatcher(reg, false, logger), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp/tools/", h.HandleInvoke)

	w := postTool(mux, "broken", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Error("expected internal error detail to be hidden from the caller")
	}
}

func TestNewHandler_BasePathDefaults(t *testing.T) {
	logger := common.NewSilentLogger()
	reg := NewRegistry()
	d := NewDispatcher(reg, false, logger)

	if h := NewHandler("", reg, d, logger); h.BasePath() != "/mcp" {
		t.Errorf("expected default base path /mcp, got %s", h.BasePath())
	}
	if h := NewHandler("/tools/v1/", reg, d, logger); h.BasePath() != "/tools/v1" {
		t.Errorf("expected trailing slash stripped, got %s", h.BasePath())
	}
}
