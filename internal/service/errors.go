package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAttachment is a user-facing notice for messages without files.
	ErrNoAttachment = errors.New("no file attached")
	// ErrUnsupportedType is a user-facing notice when no attachment can be uploaded.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrMissingLocation indicates pastes.dev accepted a paste without returning its Location.
	ErrMissingLocation = errors.New("paste service response is missing the Location header")
	// ErrEmptyPasteID indicates pastebook.dev returned an empty paste identifier.
	ErrEmptyPasteID = errors.New("paste service returned an empty paste id")
	// ErrNoUploader indicates no uploader is registered for a content kind.
	ErrNoUploader = errors.New("no uploader registered for content kind")
)

// UploadError reports a failed paste submission.
type UploadError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (uploadError *UploadError) Error() string {
	switch {
	case uploadError.StatusCode != 0 && uploadError.Body != "":
		return fmt.Sprintf("%s upload failed with status %d: %s", uploadError.Service, uploadError.StatusCode, uploadError.Body)
	case uploadError.StatusCode != 0:
		return fmt.Sprintf("%s upload failed with status %d", uploadError.Service, uploadError.StatusCode)
	default:
		return fmt.Sprintf("%s upload failed: %v", uploadError.Service, uploadError.Err)
	}
}

func (uploadError *UploadError) Unwrap() error {
	return uploadError.Err
}

// NoticeMessage returns the reply text for user-facing notices. The boolean is
// false for real failures.
func NoticeMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrNoAttachment):
		return "No file attached.", true
	case errors.Is(err, ErrUnsupportedType):
		return "Unsupported file type.", true
	default:
		return "", false
	}
}
