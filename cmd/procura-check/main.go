// procura-check is a smoke-test client for a running procura gateway:
// it probes the health endpoint, lists the discovered tools, and invokes
// the purchase requisition lookup.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	top     int
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "procura-check",
	Short: "Verify a procura MCP gateway is reachable and working",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return run(ctx, strings.TrimRight(baseURL, "/"), top)
	},
	SilenceUsage: true,
}

func init() {
	defaultURL := os.Getenv("MCP_SERVER_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8000"
	}
	rootCmd.Flags().StringVar(&baseURL, "base-url", defaultURL,
		"Root URL of the gateway (default: http://localhost:8000 or MCP_SERVER_URL env)")
	rootCmd.Flags().IntVar(&top, "top", 5, "Number of purchase requisitions to request")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Overall timeout for the check")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
		os.Exit(1)
	}
}

// discovery mirrors the shape of the GET {prefix}/tools response.
type discovery struct {
	Tools []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Endpoint    string `json:"endpoint"`
	} `json:"tools"`
}

func run(ctx context.Context, baseURL string, top int) error {
	client := &http.Client{}
	fmt.Printf("Checking MCP gateway at %s ...\n\n", baseURL)

	// 1. Health check
	health, err := getJSON(ctx, client, baseURL+"/")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Println("Health endpoint (/):")
	printJSON(health)

	// 2. Discover tools
	raw, err := getJSON(ctx, client, baseURL+"/mcp/tools")
	if err != nil {
		return fmt.Errorf("tool discovery failed: %w", err)
	}
	fmt.Println("Discovered tools:")
	printJSON(raw)

	var disc discovery
	if err := json.Unmarshal(raw, &disc); err != nil {
		return fmt.Errorf("failed to parse discovery payload: %w", err)
	}
	if len(disc.Tools) == 0 {
		return fmt.Errorf("no tools were returned; check the server logs")
	}

	// 3. Call the purchase requisition tool
	endpoint := baseURL + "/mcp/tools/list_purchase_requisitions"
	fmt.Printf("Calling list_purchase_requisitions (top=%d) ...\n\n", top)
	result, err := postJSON(ctx, client, endpoint, map[string]any{"top": top})
	if err != nil {
		return fmt.Errorf("tool invocation failed: %w", err)
	}

	fmt.Println("Tool response:")
	printJSON(result)
	fmt.Println("Done.")
	return nil
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return do(client, req)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(client, req)
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s returned %d: %s", req.Method, req.URL, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// printJSON re-indents and prints a JSON payload, falling back to raw output.
func printJSON(data []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Println(string(data))
	} else {
		fmt.Println(buf.String())
	}
	fmt.Println()
}
