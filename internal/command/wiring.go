package command

import (
	"log/slog"
	"net/http"

	"github.com/tyemirov/pastebot/internal/config"
	"github.com/tyemirov/pastebot/internal/service"
	"github.com/tyemirov/pastebot/pkg/attachments"
	"github.com/tyemirov/pastebot/pkg/model"
)

// buildUploadService routes text to pastebook.dev and logs to pastes.dev.
func buildUploadService(configuration config.Config, fetcher attachments.Fetcher, httpClient *http.Client, logger *slog.Logger, metrics *service.Metrics) (service.UploadService, error) {
	pastebook := service.NewPastebookUploader(
		configuration.Pastebook.APIURL,
		configuration.Pastebook.BaseURL,
		configuration.Pastebook.Retention(),
		httpClient,
		logger,
	)
	pastesDev := service.NewPastesDevUploader(
		configuration.PastesDev.APIURL,
		configuration.PastesDev.BaseURL,
		configuration.PastesDev.Retention(),
		httpClient,
		logger,
	)
	return service.NewUploadService(service.UploadServiceConfig{
		Fetcher: fetcher,
		Uploaders: map[model.ContentKind]service.Uploader{
			model.KindText: pastebook,
			model.KindLog:  pastesDev,
		},
		Logger:        logger,
		Metrics:       metrics,
		MaxConcurrent: configuration.MaxConcurrentUploads,
	})
}
