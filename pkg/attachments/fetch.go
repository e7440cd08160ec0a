package attachments

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"
)

// Fetcher downloads attachment content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchError reports a failed attachment download.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (fetchError *FetchError) Error() string {
	if fetchError.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", fetchError.URL, fetchError.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", fetchError.URL, fetchError.Err)
}

func (fetchError *FetchError) Unwrap() error {
	return fetchError.Err
}

// HTTPFetcher performs unauthenticated GET requests against attachment URLs.
type HTTPFetcher struct {
	HTTPClient *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client falls back to http.DefaultClient.
func NewHTTPFetcher(httpClient *http.Client) *HTTPFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPFetcher{HTTPClient: httpClient}
}

// Fetch buffers the whole response body in memory.
func (fetcherInstance *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	requestInstance, requestError := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if requestError != nil {
		return nil, &FetchError{URL: url, Err: requestError}
	}

	responseInstance, responseError := fetcherInstance.HTTPClient.Do(requestInstance)
	if responseError != nil {
		return nil, &FetchError{URL: url, Err: responseError}
	}
	defer responseInstance.Body.Close()

	if responseInstance.StatusCode < 200 || responseInstance.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, responseInstance.Body)
		return nil, &FetchError{URL: url, StatusCode: responseInstance.StatusCode}
	}

	responseBody, readError := io.ReadAll(responseInstance.Body)
	if readError != nil {
		return nil, &FetchError{URL: url, Err: readError}
	}
	return responseBody, nil
}

// FileFetcher reads attachments from the local filesystem; the URL is a path.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: path, Err: err}
	}
	content, readError := os.ReadFile(path)
	if readError != nil {
		return nil, &FetchError{URL: path, Err: readError}
	}
	return content, nil
}

// DecodeText converts downloaded bytes into text, replacing invalid UTF-8.
func DecodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	return strings.ToValidUTF8(string(content), string(utf8.RuneError))
}
