// Package sap calls the SAP S/4HANA sandbox purchase requisition OData API
// and exposes it as registered tools.
package sap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/procura/internal/cache"
	"github.com/bobmcallan/procura/internal/common"
	"github.com/bobmcallan/procura/internal/config"
	"github.com/bobmcallan/procura/internal/mcp"
)

// APIKeyEnvVar names the environment variable holding the sandbox API key.
// It takes priority over the api_key config value.
const APIKeyEnvVar = "SAP_API_KEY"

// requisitionEntity is the OData entity set appended to the service root.
const requisitionEntity = "/PurchaseReqn"

// maxResponseSize caps upstream response bodies to prevent OOM from
// unexpectedly large responses.
const maxResponseSize = 10 << 20 // 10MB

// cacheMaxEntries bounds the response cache.
const cacheMaxEntries = 128

// Client calls the SAP sandbox purchase requisition API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *cache.ResponseCache
	logger     *common.Logger
}

// NewClient creates a client from SAP config. A non-zero cache TTL enables
// response caching for identical queries.
func NewClient(cfg config.SAPConfig, logger *common.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultSAPBaseURL
	}

	var respCache *cache.ResponseCache
	if ttl := cfg.GetCacheTTL(); ttl > 0 {
		respCache = cache.New(ttl, cacheMaxEntries)
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		cache:  respCache,
		logger: logger,
	}
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListOptions narrows a purchase requisition query.
type ListOptions struct {
	Top    int
	Select string
	Filter string
}

// ListPurchaseRequisitions fetches purchase requisition data from the SAP
// sandbox API. Upstream failures propagate with the upstream status so the
// caller sees the real cause, not a generic 500.
func (c *Client) ListPurchaseRequisitions(ctx context.Context, opts ListOptions) (map[string]any, error) {
	apiKey, err := c.resolveAPIKey()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("$top", strconv.Itoa(opts.Top))
	if opts.Select != "" {
		params.Set("$select", opts.Select)
	}
	if opts.Filter != "" {
		params.Set("$filter", opts.Filter)
	}
	requestURL := c.baseURL + requisitionEntity + "?" + params.Encode()

	body, err := c.get(ctx, requestURL, apiKey)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, mcp.Errorf(http.StatusBadGateway, "SAP API returned invalid JSON")
	}
	return data, nil
}

// resolveAPIKey returns the API key from the environment or config.
func (c *Client) resolveAPIKey() (string, error) {
	if key := os.Getenv(APIKeyEnvVar); key != "" {
		return key, nil
	}
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	return "", mcp.Errorf(http.StatusInternalServerError,
		"the SAP API key is not configured; set the environment variable %s before calling this tool", APIKeyEnvVar)
}

// get performs a GET request against the sandbox API, consulting the
// response cache when enabled.
func (c *Client) get(ctx context.Context, requestURL, apiKey string) ([]byte, error) {
	cacheKey := cache.MakeKey(http.MethodGet, requestURL)
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			c.logger.Debug().Str("url", requestURL).Msg("SAP response served from cache")
			return cached.Body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build SAP request: %w", err)
	}
	req.Header.Set("APIKey", apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")

	c.logger.Debug().Str("url", requestURL).Msg("SAP request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error().Str("url", requestURL).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("SAP request failed")
		return nil, fmt.Errorf("SAP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read SAP response: %w", err)
	}

	c.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("SAP response")

	if resp.StatusCode >= 400 {
		return nil, &mcp.ToolError{
			Status: resp.StatusCode,
			Detail: fmt.Sprintf("SAP API request failed: %s", strings.TrimSpace(string(body))),
		}
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, &cache.CachedResponse{StatusCode: resp.StatusCode, Body: body})
	}
	return body, nil
}
