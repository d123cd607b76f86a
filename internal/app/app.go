package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/bobmcallan/procura/internal/common"
	"github.com/bobmcallan/procura/internal/config"
	"github.com/bobmcallan/procura/internal/handlers"
	"github.com/bobmcallan/procura/internal/mcp"
	"github.com/bobmcallan/procura/internal/sap"
)

// App holds all application components and dependencies. The tool registry
// is owned here and passed explicitly into the transport layers.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Registry   *mcp.Registry
	Dispatcher *mcp.Dispatcher

	// HTTP handlers
	RootHandler    *handlers.RootHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	MCPHandler     *mcp.Handler
	Bridge         *mcp.Bridge
}

// New initializes the application with all dependencies. Tool registration
// completes before any transport is constructed, so traffic never observes
// a partially-populated registry.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	a.Registry = mcp.NewRegistry()
	a.Dispatcher = mcp.NewDispatcher(a.Registry, cfg.MCP.StrictPayload, logger)

	sapClient := sap.NewClient(cfg.SAP, logger)
	if err := sap.RegisterTools(a.Registry, sapClient); err != nil {
		return nil, fmt.Errorf("failed to register SAP tools: %w", err)
	}
	if err := mcp.RegisterVersionTool(a.Registry); err != nil {
		return nil, fmt.Errorf("failed to register version tool: %w", err)
	}

	if os.Getenv(sap.APIKeyEnvVar) == "" && cfg.SAP.APIKey == "" {
		logger.Warn().
			Str("env_var", sap.APIKeyEnvVar).
			Msg("SAP API key not configured, purchase requisition lookups will fail")
	}

	a.initHandlers()

	logger.Info().
		Int("tools", a.Registry.Len()).
		Str("base_path", a.MCPHandler.BasePath()).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.RootHandler = handlers.NewRootHandler(a.Logger)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)

	a.MCPHandler = mcp.NewHandler(a.Config.MCP.BasePath, a.Registry, a.Dispatcher, a.Logger)
	a.Bridge = mcp.NewBridge("procura", config.GetVersion(), a.Registry, a.Dispatcher, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
