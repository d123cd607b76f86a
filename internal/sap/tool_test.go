package sap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/procura/internal/common"
	"github.com/bobmcallan/procura/internal/config"
	"github.com/bobmcallan/procura/internal/mcp"
)

// newToolDispatcher registers the SAP tools against a fake upstream and
// returns a dispatcher plus the query log.
func newToolDispatcher(t *testing.T) (*mcp.Dispatcher, *[]string) {
	t.Helper()

	var tops []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tops = append(tops, r.URL.Query().Get("$top"))
		w.Write([]byte(`{"value":[{"PurchaseRequisition":"10000001"}]}`))
	}))
	t.Cleanup(ts.Close)
	t.Setenv(APIKeyEnvVar, "test-key")

	logger := common.NewSilentLogger()
	client := NewClient(config.SAPConfig{BaseURL: ts.URL, Timeout: "5s"}, logger)

	reg := mcp.NewRegistry()
	if err := RegisterTools(reg, client); err != nil {
		t.Fatalf("RegisterTools failed: %v", err)
	}
	return mcp.NewDispatcher(reg, false, logger), &tops
}

func TestRegisterTools_Schema(t *testing.T) {
	t.Setenv(APIKeyEnvVar, "test-key")
	reg := mcp.NewRegistry()
	client := NewClient(config.SAPConfig{Timeout: "5s"}, common.NewSilentLogger())

	if err := RegisterTools(reg, client); err != nil {
		t.Fatalf("RegisterTools failed: %v", err)
	}

	tool, ok := reg.Get(ToolName)
	if !ok {
		t.Fatal("expected list_purchase_requisitions registered")
	}
	if len(tool.Schema.Required) != 0 {
		t.Errorf("expected no required parameters, got %v", tool.Schema.Required)
	}
	for _, name := range []string{"top", "select", "filter"} {
		if _, ok := tool.Schema.Properties[name]; !ok {
			t.Errorf("expected property %s in schema", name)
		}
	}
	if tool.Schema.Properties["top"].Default != DefaultTop {
		t.Errorf("expected top default %d, got %v", DefaultTop, tool.Schema.Properties["top"].Default)
	}
}

func TestListTool_DefaultsApply(t *testing.T) {
	d, tops := newToolDispatcher(t)

	if _, err := d.Invoke(context.Background(), ToolName, map[string]any{}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if len(*tops) != 1 || (*tops)[0] != "50" {
		t.Errorf("expected default $top=50, got %v", *tops)
	}

	if _, err := d.Invoke(context.Background(), ToolName, map[string]any{"top": float64(5)}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if (*tops)[1] != "5" {
		t.Errorf("expected $top=5 override, got %v", (*tops)[1])
	}
}

func TestListTool_Envelope(t *testing.T) {
	d, _ := newToolDispatcher(t)

	result, err := d.Invoke(context.Background(), ToolName, map[string]any{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected map result, got %T", result)
	}
	content, ok := m["content"].([]map[string]any)
	if !ok || len(content) != 1 {
		t.Fatalf("expected single content entry, got %v", m["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("expected text content, got %v", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if !strings.Contains(text, "10000001") {
		t.Errorf("expected requisition data in text content, got %q", text)
	}
}

func TestListTool_TopBounds(t *testing.T) {
	d, tops := newToolDispatcher(t)

	for _, top := range []float64{0, -1, 201} {
		_, err := d.Invoke(context.Background(), ToolName, map[string]any{"top": top})
		var te *mcp.ToolError
		if !errors.As(err, &te) {
			t.Fatalf("top=%v: expected ToolError, got %v", top, err)
		}
		if te.Status != http.StatusBadRequest {
			t.Errorf("top=%v: expected status 400, got %d", top, te.Status)
		}
	}
	if len(*tops) != 0 {
		t.Errorf("expected no upstream calls for out-of-range top, got %d", len(*tops))
	}
}
