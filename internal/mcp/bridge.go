package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bobmcallan/procura/internal/common"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Bridge exposes the registry's tools over the MCP streamable HTTP protocol
// (JSON-RPC) so Claude-style MCP clients can use the same tools the plain
// JSON routes serve. It wraps mcp-go's StreamableHTTPServer and delegates
// each tool call to the dispatcher.
type Bridge struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewBridge builds an MCP server from the registered tools. Registration is
// expected to be complete before the bridge is constructed.
func NewBridge(name, version string, registry *Registry, dispatcher *Dispatcher, logger *common.Logger) *Bridge {
	srv := mcpserver.NewMCPServer(
		name,
		version,
		mcpserver.WithToolCapabilities(true),
	)

	tools := registry.List()
	for _, t := range tools {
		srv.AddTool(bridgeTool(t), bridgeHandler(dispatcher, t.Name))
	}

	streamable := mcpserver.NewStreamableHTTPServer(srv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().Int("tools", len(tools)).Msg("MCP bridge initialized")

	return &Bridge{
		streamable: streamable,
		logger:     logger,
	}
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.streamable.ServeHTTP(w, r)
}

// bridgeTool converts a registered tool into an mcp-go tool definition.
func bridgeTool(t *Tool) mcpgo.Tool {
	opts := []mcpgo.ToolOption{mcpgo.WithDescription(t.Description)}
	for _, p := range t.Params {
		opts = append(opts, paramOption(p))
	}
	return mcpgo.NewTool(t.Name, opts...)
}

// paramOption maps a ParamSpec to the appropriate mcp-go tool option.
func paramOption(p ParamSpec) mcpgo.ToolOption {
	var opts []mcpgo.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcpgo.Description(p.Description))
	}
	if p.Required && p.Default == nil {
		opts = append(opts, mcpgo.Required())
	}

	switch p.Type {
	case TypeInteger, TypeNumber:
		return mcpgo.WithNumber(p.Name, opts...)
	case TypeBoolean:
		return mcpgo.WithBoolean(p.Name, opts...)
	case TypeArray:
		opts = append([]mcpgo.PropertyOption{mcpgo.WithStringItems()}, opts...)
		return mcpgo.WithArray(p.Name, opts...)
	case TypeObject:
		return mcpgo.WithObject(p.Name, opts...)
	default:
		return mcpgo.WithString(p.Name, opts...)
	}
}

// bridgeHandler routes an MCP tool call through the dispatcher and wraps
// the result as text content.
func bridgeHandler(d *Dispatcher, name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, r mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		result, err := d.Invoke(ctx, name, r.GetArguments())
		if err != nil {
			return errorResult(err.Error()), nil
		}

		out, err := json.Marshal(result)
		if err != nil {
			return errorResult("failed to marshal tool result"), nil
		}
		return &mcpgo.CallToolResult{
			Content: []mcpgo.Content{mcpgo.NewTextContent(string(out))},
		}, nil
	}
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcpgo.CallToolResult {
	return &mcpgo.CallToolResult{
		Content: []mcpgo.Content{
			mcpgo.NewTextContent(message),
		},
		IsError: true,
	}
}
