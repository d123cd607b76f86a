package mcp

import (
	"context"

	"github.com/bobmcallan/procura/internal/config"
)

// RegisterVersionTool registers the get_version connectivity-check tool.
func RegisterVersionTool(reg *Registry) error {
	_, err := reg.Register(ToolSpec{
		Name:        "get_version",
		Description: "Get procura gateway version and status. Use this to verify connectivity.",
		Handler: func(ctx context.Context, args Args) (any, error) {
			return map[string]string{
				"service": "procura",
				"version": config.GetVersion(),
				"build":   config.GetBuild(),
				"commit":  config.GetGitCommit(),
			}, nil
		},
	})
	return err
}
