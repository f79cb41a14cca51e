package bucket

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// Client fetches bucket streams from other slaves' (or the master's)
// bucket.Server endpoints, translating transport-level 404/410 into the
// same ErrUnknownBucket/ErrBucketDeleted a local Store.Open would return,
// so a reducer's merge step treats a local and a remote producer
// identically.
type Client struct {
	http *http.Client
}

// NewClient builds a fetch client using http.
func NewClient(http *http.Client) *Client {
	return &Client{http: http}
}

// Fetch issues GET url?gen=ref.Generation and returns the decoded frame
// stream. url is the bucket URL a producer advertised at ReportDone; ref
// carries the generation the consumer expects to see.
func (c *Client) Fetch(ctx context.Context, url string, ref Ref) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bucket: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("gen", strconv.Itoa(ref.Generation))
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bucket: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Decode(resp.Body)
	case http.StatusNotFound:
		return nil, ErrUnknownBucket
	case http.StatusGone:
		return nil, ErrBucketDeleted
	default:
		return nil, fmt.Errorf("bucket: fetch %s: unexpected status %d", url, resp.StatusCode)
	}
}
