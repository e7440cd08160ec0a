package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tyemirov/pastebot/pkg/model"
)

const (
	PastesDevServiceName      = "pastes.dev"
	DefaultPastesDevAPIURL    = "https://api.pastes.dev/post"
	DefaultPastesDevBaseURL   = "https://pastes.dev/"
	DefaultPastesDevRetention = 90 * 24 * time.Hour
)

// PastesDevUploader implements Uploader using the pastes.dev bytebin API.
// Retention is an estimate; the service does not accept an expiry.
type PastesDevUploader struct {
	APIURL     string
	BaseURL    string
	Retention  time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Now        Clock
}

// NewPastesDevUploader creates a PastesDevUploader, filling empty settings with defaults.
func NewPastesDevUploader(apiURL string, baseURL string, retention time.Duration, httpClient *http.Client, logger *slog.Logger) *PastesDevUploader {
	if apiURL == "" {
		apiURL = DefaultPastesDevAPIURL
	}
	if baseURL == "" {
		baseURL = DefaultPastesDevBaseURL
	}
	if retention <= 0 {
		retention = DefaultPastesDevRetention
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PastesDevUploader{
		APIURL:     apiURL,
		BaseURL:    baseURL,
		Retention:  retention,
		HTTPClient: httpClient,
		Logger:     logger,
		Now:        systemClock,
	}
}

func (uploaderInstance *PastesDevUploader) Name() string {
	return PastesDevServiceName
}

// Upload posts raw text as text/log; the paste key arrives in the Location header.
func (uploaderInstance *PastesDevUploader) Upload(ctx context.Context, request model.UploadRequest) (model.UploadResponse, error) {
	requestInstance, requestError := http.NewRequestWithContext(ctx, http.MethodPost, uploaderInstance.APIURL, strings.NewReader(request.Content))
	if requestError != nil {
		return model.UploadResponse{}, &UploadError{Service: PastesDevServiceName, Err: requestError}
	}
	requestInstance.Header.Set("Content-Type", "text/log")

	responseInstance, responseError := uploaderInstance.HTTPClient.Do(requestInstance)
	if responseError != nil {
		uploaderInstance.Logger.Error("Pastes.dev request error", "error", responseError)
		return model.UploadResponse{}, &UploadError{Service: PastesDevServiceName, Err: responseError}
	}
	defer responseInstance.Body.Close()

	if !isSuccessStatus(responseInstance.StatusCode) {
		responseBody := readErrorBody(responseInstance.Body)
		uploaderInstance.Logger.Error("Pastes.dev API returned error", "status", responseInstance.StatusCode, "body", responseBody)
		return model.UploadResponse{}, &UploadError{Service: PastesDevServiceName, StatusCode: responseInstance.StatusCode, Body: responseBody}
	}
	_, _ = io.Copy(io.Discard, responseInstance.Body)

	location := strings.TrimSpace(responseInstance.Header.Get("Location"))
	if location == "" {
		uploaderInstance.Logger.Error("Pastes.dev response missing Location header", "status", responseInstance.StatusCode)
		return model.UploadResponse{}, &UploadError{Service: PastesDevServiceName, Err: ErrMissingLocation}
	}

	return model.UploadResponse{
		Link:      joinLink(uploaderInstance.BaseURL, location),
		Service:   PastesDevServiceName,
		ExpiresAt: uploaderInstance.Now().Add(uploaderInstance.Retention),
	}, nil
}
