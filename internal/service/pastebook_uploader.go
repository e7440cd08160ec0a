package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tyemirov/pastebot/pkg/model"
)

const (
	PastebookServiceName      = "pastebook.dev"
	DefaultPastebookAPIURL    = "https://api.pastebook.dev/upload"
	DefaultPastebookBaseURL   = "https://pastebook.dev/p/"
	DefaultPastebookRetention = 30 * 24 * time.Hour
)

// PastebookUploader implements Uploader using the pastebook.dev upload API.
type PastebookUploader struct {
	APIURL     string
	BaseURL    string
	Retention  time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Now        Clock
}

// NewPastebookUploader creates a PastebookUploader, filling empty settings with defaults.
func NewPastebookUploader(apiURL string, baseURL string, retention time.Duration, httpClient *http.Client, logger *slog.Logger) *PastebookUploader {
	if apiURL == "" {
		apiURL = DefaultPastebookAPIURL
	}
	if baseURL == "" {
		baseURL = DefaultPastebookBaseURL
	}
	if retention <= 0 {
		retention = DefaultPastebookRetention
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PastebookUploader{
		APIURL:     apiURL,
		BaseURL:    baseURL,
		Retention:  retention,
		HTTPClient: httpClient,
		Logger:     logger,
		Now:        systemClock,
	}
}

func (uploaderInstance *PastebookUploader) Name() string {
	return PastebookServiceName
}

// Upload posts raw text; the response body is the paste id.
func (uploaderInstance *PastebookUploader) Upload(ctx context.Context, request model.UploadRequest) (model.UploadResponse, error) {
	requestInstance, requestError := http.NewRequestWithContext(ctx, http.MethodPost, uploaderInstance.APIURL, strings.NewReader(request.Content))
	if requestError != nil {
		return model.UploadResponse{}, &UploadError{Service: PastebookServiceName, Err: requestError}
	}
	requestInstance.Header.Set("title", request.Title())
	requestInstance.Header.Set("expires", strconv.FormatInt(uploaderInstance.Retention.Milliseconds(), 10))
	requestInstance.Header.Set("Content-Type", "text/plain")

	responseInstance, responseError := uploaderInstance.HTTPClient.Do(requestInstance)
	if responseError != nil {
		uploaderInstance.Logger.Error("Pastebook request error", "error", responseError)
		return model.UploadResponse{}, &UploadError{Service: PastebookServiceName, Err: responseError}
	}
	defer responseInstance.Body.Close()

	if !isSuccessStatus(responseInstance.StatusCode) {
		responseBody := readErrorBody(responseInstance.Body)
		uploaderInstance.Logger.Error("Pastebook API returned error", "status", responseInstance.StatusCode, "body", responseBody)
		return model.UploadResponse{}, &UploadError{Service: PastebookServiceName, StatusCode: responseInstance.StatusCode, Body: responseBody}
	}

	responseBody, readError := io.ReadAll(responseInstance.Body)
	if readError != nil {
		return model.UploadResponse{}, &UploadError{Service: PastebookServiceName, Err: readError}
	}
	pasteID := strings.TrimSpace(string(responseBody))
	if pasteID == "" {
		return model.UploadResponse{}, &UploadError{Service: PastebookServiceName, Err: ErrEmptyPasteID}
	}

	return model.UploadResponse{
		Link:      joinLink(uploaderInstance.BaseURL, pasteID),
		Service:   PastebookServiceName,
		ExpiresAt: uploaderInstance.Now().Add(uploaderInstance.Retention),
	}, nil
}

func joinLink(baseURL string, pasteKey string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(pasteKey, "/")
}
