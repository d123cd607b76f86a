package sap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bobmcallan/procura/internal/mcp"
)

// ToolName is the registered name of the purchase requisition lookup tool.
const ToolName = "list_purchase_requisitions"

// Bounds for the $top parameter on the sandbox tenant.
const (
	DefaultTop = 50
	MaxTop     = 200
)

// RegisterTools registers the SAP purchase requisition tools with the registry.
func RegisterTools(reg *mcp.Registry, client *Client) error {
	_, err := reg.Register(mcp.ToolSpec{
		Name: ToolName,
		Description: "Retrieve purchase requisitions from the SAP sandbox OData endpoint. " +
			"Supports optional $select and $filter expressions to trim the payload.",
		Params: []mcp.ParamSpec{
			{Name: "top", Type: mcp.TypeInteger, Description: "Maximum number of requisitions to return (1-200)", Default: DefaultTop},
			{Name: "select", Type: mcp.TypeString, Description: "OData $select expression"},
			{Name: "filter", Type: mcp.TypeString, Description: "OData $filter expression"},
		},
		Handler: listHandler(client),
	})
	return err
}

// listHandler builds the tool handler for purchase requisition lookups.
func listHandler(client *Client) mcp.HandlerFunc {
	return func(ctx context.Context, args mcp.Args) (any, error) {
		top := args.GetInt("top", DefaultTop)
		if top <= 0 || top > MaxTop {
			return nil, mcp.Errorf(http.StatusBadRequest,
				"parameter 'top' must be between 1 and %d for sandbox usage", MaxTop)
		}

		data, err := client.ListPurchaseRequisitions(ctx, ListOptions{
			Top:    top,
			Select: args.GetString("select", ""),
			Filter: args.GetString("filter", ""),
		})
		if err != nil {
			return nil, err
		}

		return textContent(data)
	}
}

// textContent wraps a JSON-serializable value in the MCP text content
// envelope used by tool responses.
func textContent(data any) (any, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SAP response: %w", err)
	}
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(out)},
		},
	}, nil
}
