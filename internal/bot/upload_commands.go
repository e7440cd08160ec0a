package bot

import (
	"context"
	"log/slog"

	"github.com/tyemirov/pastebot/internal/reply"
	"github.com/tyemirov/pastebot/internal/service"
)

const (
	// UploadCommandName replies privately.
	UploadCommandName = "Upload"
	// UploadAndDisplayCommandName replies publicly.
	UploadAndDisplayCommandName = "Upload and Display"
)

// UploadCommands builds the two message commands sharing one upload pipeline;
// they differ only in reply visibility.
func UploadCommands(uploadService service.UploadService, logger *slog.Logger) []Command {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return []Command{
		{Name: UploadCommandName, Ephemeral: true, Handler: uploadHandler(uploadService, logger, false)},
		{Name: UploadAndDisplayCommandName, Ephemeral: false, Handler: uploadHandler(uploadService, logger, true)},
	}
}

func uploadHandler(uploadService service.UploadService, logger *slog.Logger, display bool) Handler {
	return func(ctx context.Context, invocation Invocation) error {
		result, processErr := uploadService.Process(ctx, invocation.Attachments, invocation.Author)
		if notice, isNotice := service.NoticeMessage(processErr); isNotice {
			logger.Info("upload_notice", "invocation_id", invocation.ID, "notice", notice)
			return invocation.Responder.Send(ctx, Reply{Content: notice, Ephemeral: true})
		}
		if processErr != nil {
			return processErr
		}

		skippedNotice := reply.SkippedNotice(result.Skipped)
		for batchIndex, embedBatch := range reply.Batches(reply.Embeds(result.Entries)) {
			message := Reply{Embeds: embedBatch, Ephemeral: !display}
			if batchIndex == 0 {
				message.Content = skippedNotice
			}
			if sendErr := invocation.Responder.Send(ctx, message); sendErr != nil {
				return sendErr
			}
		}
		return nil
	}
}
