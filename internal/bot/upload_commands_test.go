package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tyemirov/pastebot/internal/service"
	"github.com/tyemirov/pastebot/pkg/logging"
	"github.com/tyemirov/pastebot/pkg/model"
)

type stubUploadService struct {
	result        model.Result
	err           error
	gotAuthor     string
	gotAttachment []model.Attachment
}

func (stub *stubUploadService) Process(_ context.Context, attachmentList []model.Attachment, author string) (model.Result, error) {
	stub.gotAuthor = author
	stub.gotAttachment = attachmentList
	return stub.result, stub.err
}

func newUploadRegistry(t *testing.T, uploadService service.UploadService) *Registry {
	t.Helper()
	registry := NewRegistry(logging.Discard(), nil)
	require.NoError(t, registry.Register(UploadCommands(uploadService, logging.Discard())...))
	return registry
}

func sampleEntry(filename string) model.ReplyEntry {
	return model.NewReplyEntry(
		model.UploadRequest{Filename: filename, Kind: model.KindText, HumanSize: "12 bytes", Author: "Ada"},
		model.UploadResponse{Link: "https://pastebook.dev/p/" + filename, Service: "pastebook.dev", ExpiresAt: time.Unix(1_700_000_000, 0)},
	)
}

func TestUploadRepliesPrivately(t *testing.T) {
	t.Helper()

	uploadService := &stubUploadService{result: model.Result{Entries: []model.ReplyEntry{sampleEntry("readme.txt")}}}
	registry := newUploadRegistry(t, uploadService)
	attachmentList := []model.Attachment{{URL: "https://cdn/readme.txt", Filename: "readme.txt", ContentType: "text/plain", Size: 12}}

	responder := &recordingResponder{}
	require.NoError(t, registry.Dispatch(context.Background(), UploadCommandName, NewInvocation("Ada", attachmentList, responder)))

	require.Equal(t, "Ada", uploadService.gotAuthor)
	require.Equal(t, attachmentList, uploadService.gotAttachment)

	calls := responder.Calls()
	require.Len(t, calls, 2)
	require.True(t, calls[0].Ephemeral)
	require.True(t, calls[1].Reply.Ephemeral)
	require.Len(t, calls[1].Reply.Embeds, 1)
	require.Equal(t, "pastebook.dev", calls[1].Reply.Embeds[0].Title)
	require.Empty(t, calls[1].Reply.Content)
}

func TestUploadAndDisplayRepliesPubliclyWithSkippedNotice(t *testing.T) {
	t.Helper()

	uploadService := &stubUploadService{result: model.Result{
		Entries: []model.ReplyEntry{sampleEntry("trace.log"), sampleEntry("readme.txt")},
		Skipped: []string{"photo.png"},
	}}
	registry := newUploadRegistry(t, uploadService)

	responder := &recordingResponder{}
	require.NoError(t, registry.Dispatch(context.Background(), UploadAndDisplayCommandName, NewInvocation("Ada", nil, responder)))

	calls := responder.Calls()
	require.Len(t, calls, 2)
	require.False(t, calls[0].Ephemeral)
	sent := calls[1].Reply
	require.False(t, sent.Ephemeral)
	require.Len(t, sent.Embeds, 2)
	require.Equal(t, "https://pastebook.dev/p/trace.log", sent.Embeds[0].URL)
	require.Equal(t, "https://pastebook.dev/p/readme.txt", sent.Embeds[1].URL)
	require.Equal(t, "Skipped unsupported files: `photo.png`", sent.Content)
}

func TestUploadSplitsLargeRepliesIntoBatches(t *testing.T) {
	t.Helper()

	var entries []model.ReplyEntry
	for index := 0; index < 12; index++ {
		entries = append(entries, sampleEntry(fmt.Sprintf("file-%02d.txt", index)))
	}
	uploadService := &stubUploadService{result: model.Result{Entries: entries, Skipped: []string{"a.png"}}}
	registry := newUploadRegistry(t, uploadService)

	responder := &recordingResponder{}
	require.NoError(t, registry.Dispatch(context.Background(), UploadAndDisplayCommandName, NewInvocation("Ada", nil, responder)))

	replies := responder.Sends()
	require.Len(t, replies, 2)
	require.Len(t, replies[0].Embeds, 10)
	require.Len(t, replies[1].Embeds, 2)
	require.NotEmpty(t, replies[0].Content)
	require.Empty(t, replies[1].Content)
	require.Equal(t, "https://pastebook.dev/p/file-10.txt", replies[1].Embeds[0].URL)
}

func TestUploadNoticesArePrivateEvenWhenDisplaying(t *testing.T) {
	t.Helper()

	testCases := []struct {
		name    string
		err     error
		message string
	}{
		{name: "no attachment", err: service.ErrNoAttachment, message: "No file attached."},
		{name: "unsupported", err: service.ErrUnsupportedType, message: "Unsupported file type."},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			registry := newUploadRegistry(t, &stubUploadService{err: testCase.err})
			responder := &recordingResponder{}
			require.NoError(t, registry.Dispatch(context.Background(), UploadAndDisplayCommandName, NewInvocation("Ada", nil, responder)))

			replies := responder.Sends()
			require.Len(t, replies, 1)
			require.True(t, replies[0].Ephemeral)
			require.Equal(t, testCase.message, replies[0].Content)
		})
	}
}

func TestUploadFailureSendsNoEntries(t *testing.T) {
	t.Helper()

	uploadErr := fmt.Errorf("readme.txt: %w", &service.UploadError{Service: "pastebook.dev", StatusCode: 500})
	registry := newUploadRegistry(t, &stubUploadService{err: uploadErr})

	responder := &recordingResponder{}
	err := registry.Dispatch(context.Background(), UploadAndDisplayCommandName, NewInvocation("Ada", nil, responder))
	require.ErrorIs(t, err, uploadErr)

	replies := responder.Sends()
	require.Len(t, replies, 1)
	require.True(t, replies[0].Ephemeral)
	require.Empty(t, replies[0].Embeds)
	require.Equal(t, "readme.txt: pastebook.dev upload failed with status 500", replies[0].Content)
}
