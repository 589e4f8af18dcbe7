package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"visualizer/internal/domain"
)

// Options configures the image-edit client. Only APIKey is required.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	AttemptTimeout time.Duration
	FetchTimeout   time.Duration
	OutputSize     string
}

const (
	defaultAttemptTimeout = 110 * time.Second
	defaultFetchTimeout   = 30 * time.Second
	defaultOutputSize     = "1024x1024"
	maxDiagnosticLen      = 200
)

// Client calls the OpenAI image-edit endpoint. It performs at most two
// attempts per request, retrying only transient failures, and reduces both
// legal success shapes (inline base64 or a fetchable URL) to raw bytes.
type Client struct {
	apiKey         string
	baseURL        string
	client         *http.Client
	attemptTimeout time.Duration
	fetchTimeout   time.Duration
	outputSize     string
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		// No client-level timeout; each attempt carries its own context
		// deadline so a timed-out attempt aborts the in-flight call.
		client = &http.Client{}
	}
	attemptTimeout := opts.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	outputSize := strings.TrimSpace(opts.OutputSize)
	if outputSize == "" {
		outputSize = defaultOutputSize
	}
	return &Client{
		apiKey:         strings.TrimSpace(opts.APIKey),
		baseURL:        baseURL,
		client:         client,
		attemptTimeout: attemptTimeout,
		fetchTimeout:   fetchTimeout,
		outputSize:     outputSize,
	}, nil
}

// EditRequest describes one generation call: the instruction text plus the
// normalized source image. Immutable once constructed.
type EditRequest struct {
	Prompt    string
	ImageData []byte
	ImageMIME string
}

// Edit performs the generation call and returns the final image bytes. A
// first attempt that fails transiently (HTTP 429, any 5xx, or a network or
// timeout error) is retried exactly once; the second outcome is final.
func (c *Client) Edit(ctx context.Context, req EditRequest) ([]byte, error) {
	body, contentType, err := buildEditForm(req, c.outputSize)
	if err != nil {
		return nil, domain.E(domain.KindInternal, "could not encode upstream request", err)
	}

	resp, transient, err := c.attempt(ctx, body, contentType)
	if err != nil && transient {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, domain.E(domain.KindTimeout, "generation cancelled", ctxErr)
		}
		resp, _, err = c.attempt(ctx, body, contentType)
	}
	if err != nil {
		return nil, err
	}
	return c.resolveImage(ctx, resp)
}

// attempt performs one upstream call under its own timeout. The second
// return value reports whether a failure is transient and therefore
// retry-eligible.
func (c *Client) attempt(ctx context.Context, body []byte, contentType string) (*editResponse, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+"/images/edits", bytes.NewReader(body))
	if err != nil {
		return nil, false, domain.E(domain.KindInternal, "could not build upstream request", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if attemptCtx.Err() != nil {
			return nil, true, domain.E(domain.KindTimeout, "upstream attempt timed out", err)
		}
		return nil, true, domain.E(domain.KindUpstream, "upstream request failed", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	if httpResp.StatusCode != http.StatusOK {
		diag := readDiagnostic(httpResp.Body)
		transient := httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500
		return nil, transient, domain.E(domain.KindUpstream, fmt.Sprintf("upstream returned %d: %s", httpResp.StatusCode, diag), nil)
	}

	var out editResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, false, domain.E(domain.KindProtocol, "could not decode upstream response", err)
	}
	return &out, false, nil
}

// readDiagnostic extracts a short, secret-free excerpt of an upstream error
// body for surfacing to the caller.
func readDiagnostic(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	diag := strings.TrimSpace(string(raw))
	diag = strings.Join(strings.Fields(diag), " ")
	if diag == "" {
		return "no diagnostic body"
	}
	if len(diag) > maxDiagnosticLen {
		diag = diag[:maxDiagnosticLen]
	}
	return diag
}
