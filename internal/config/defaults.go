package config

// DefaultSAPBaseURL is the S/4HANA sandbox purchase requisition OData v4
// service root.
const DefaultSAPBaseURL = "https://sandbox.api.sap.com/s4hanacloud/sap/opu/odata4/sap/api_purchaserequisition_2/srvd_a2x/sap/purchaserequisition/0001"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 8000,
			Host: "0.0.0.0",
		},
		MCP: MCPConfig{
			BasePath:      "/mcp",
			StrictPayload: false,
		},
		SAP: SAPConfig{
			BaseURL:  DefaultSAPBaseURL,
			Timeout:  "30s",
			CacheTTL: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console", "file"},
		},
	}
}
