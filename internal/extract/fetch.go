package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrFetch means a remote resume reference could not be retrieved.
var ErrFetch = errors.New("resume fetch failed")

const maxRemoteSize = 20 << 20 // 20MB

// FetchRemote downloads a remote resume reference and returns its bytes and
// declared content type. Any non-success status is fatal for the attempt.
func FetchRemote(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
