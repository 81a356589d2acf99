package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxBodyBytes = 4 << 20

// StatusError is a non-success HTTP answer.
type StatusError struct {
	Source string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: HTTP %d", e.Source, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Fetcher is the HTTP transport shared by the plain HTTP sources.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

func (f Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

// do issues a GET and returns the (size limited) body together with the
// status code. Only transport failures are errors. Error messages name the
// source, never the URL, since some APIs want their key in the query.
func (f Fetcher) do(ctx context.Context, source, rawURL string, header http.Header) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: creating request: %w", source, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, fmt.Errorf("%s: request failed: %s", source, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s: reading response: %w", source, err)
	}
	return body, resp.StatusCode, nil
}

// get is do with any non-200 status turned into a *StatusError.
func (f Fetcher) get(ctx context.Context, source, rawURL string, header http.Header) ([]byte, error) {
	body, code, err := f.do(ctx, source, rawURL, header)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, &StatusError{Source: source, Code: code, Body: snippet(body)}
	}
	return body, nil
}

func decodeJSON(source string, body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%s: decoding response: %w", source, err)
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// redact drops the URL from *url.Error messages.
func redact(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}
