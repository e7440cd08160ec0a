package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tyemirov/pastebot/pkg/model"
)

const maxErrorBodyBytes = 512

// Uploader defines the behavior of a paste-hosting backend.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, request model.UploadRequest) (model.UploadResponse, error)
}

// Clock returns the current time; tests substitute a fixed clock.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func readErrorBody(body io.Reader) string {
	limited, _ := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	return strings.TrimSpace(string(limited))
}

func isSuccessStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
