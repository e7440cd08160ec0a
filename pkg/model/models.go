package model

import (
	"fmt"
	"time"
)

// DefaultAuthor names pastes whose author is unknown.
const DefaultAuthor = "pastebot"

// ContentKind enumerations: "text" or "log".
type ContentKind string

const (
	KindText ContentKind = "text"
	KindLog  ContentKind = "log"
)

// Attachment is a file attached to a chat message. ContentType is empty when
// the platform did not declare one.
type Attachment struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
}

// UploadRequest carries a single attachment's content to exactly one uploader.
type UploadRequest struct {
	Content   string      `json:"-"`
	Filename  string      `json:"filename"`
	Kind      ContentKind `json:"kind"`
	HumanSize string      `json:"human_size"`
	Author    string      `json:"author"`
}

// Title is the paste title shown by services that support one.
func (request UploadRequest) Title() string {
	return fmt.Sprintf("%s by %s", request.Filename, request.Author)
}

// UploadResponse is the outcome of a successful upload. ExpiresAt is a
// client-side estimate; the paste service decides actual retention.
type UploadResponse struct {
	Link      string    `json:"link"`
	Service   string    `json:"service"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReplyEntry pairs an upload request with its response for rendering.
type ReplyEntry struct {
	Request  UploadRequest  `json:"request"`
	Response UploadResponse `json:"response"`
}

// Result is the aggregated outcome of one command invocation. Entries keep the
// order of the original attachment list.
type Result struct {
	Entries []ReplyEntry `json:"entries"`
	Skipped []string     `json:"skipped,omitempty"`
}

// NewReplyEntry builds a ReplyEntry from its parts.
func NewReplyEntry(request UploadRequest, response UploadResponse) ReplyEntry {
	return ReplyEntry{Request: request, Response: response}
}
