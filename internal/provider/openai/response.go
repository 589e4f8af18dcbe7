package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"visualizer/internal/domain"
)

type editResponse struct {
	Data []editDatum `json:"data"`
}

// editDatum is the upstream result variant: inline base64 bytes or a
// fetchable URL, never both on a well-behaved response.
type editDatum struct {
	B64JSON string `json:"b64_json"`
	URL     string `json:"url"`
}

// resolveImage reduces the two legal success shapes to one byte buffer.
// Inline bytes win when present; otherwise the remote URL is dereferenced
// once under a bounded timeout. A response with neither field violates the
// upstream contract.
func (c *Client) resolveImage(ctx context.Context, resp *editResponse) ([]byte, error) {
	if resp == nil || len(resp.Data) == 0 {
		return nil, domain.E(domain.KindProtocol, "upstream response carries no image", nil)
	}
	first := resp.Data[0]
	if first.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return nil, domain.E(domain.KindProtocol, "upstream inline image is not valid base64", err)
		}
		return data, nil
	}
	if first.URL != "" {
		return c.fetchRemote(ctx, first.URL)
	}
	return nil, domain.E(domain.KindProtocol, "upstream response carries no image", nil)
}

func (c *Client) fetchRemote(ctx context.Context, rawURL string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.E(domain.KindInternal, "could not build result fetch request", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if fetchCtx.Err() != nil {
			return nil, domain.E(domain.KindTimeout, "result fetch timed out", err)
		}
		return nil, domain.E(domain.KindUpstream, "result fetch failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.E(domain.KindUpstream, fmt.Sprintf("result fetch returned %d", resp.StatusCode), nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.E(domain.KindUpstream, "could not read fetched result", err)
	}
	if len(data) == 0 {
		return nil, domain.E(domain.KindProtocol, "result fetch returned an empty body", nil)
	}
	return data, nil
}
