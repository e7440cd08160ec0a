package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tyemirov/pastebot/pkg/attachments"
	"github.com/tyemirov/pastebot/pkg/model"
	"golang.org/x/sync/errgroup"
)

// UploadService defines the external interface for processing message attachments.
type UploadService interface {
	// Process uploads every supported attachment and returns one entry per
	// upload in attachment order. Any failure aborts the whole batch.
	Process(ctx context.Context, attachmentList []model.Attachment, author string) (model.Result, error)
}

// UploadServiceConfig wires the collaborators of an UploadService.
type UploadServiceConfig struct {
	Fetcher       attachments.Fetcher
	Uploaders     map[model.ContentKind]Uploader
	Logger        *slog.Logger
	Metrics       *Metrics
	MaxConcurrent int
}

type uploadServiceImpl struct {
	fetcher       attachments.Fetcher
	uploaders     map[model.ContentKind]Uploader
	logger        *slog.Logger
	metrics       *Metrics
	maxConcurrent int
}

// NewUploadService creates a new UploadService instance.
func NewUploadService(cfg UploadServiceConfig) (UploadService, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("service: fetcher is required")
	}
	if len(cfg.Uploaders) == 0 {
		return nil, errors.New("service: at least one uploader is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	uploaders := make(map[model.ContentKind]Uploader, len(cfg.Uploaders))
	for kind, uploader := range cfg.Uploaders {
		if uploader == nil {
			return nil, fmt.Errorf("service: uploader for %s is nil", kind)
		}
		uploaders[kind] = uploader
	}
	return &uploadServiceImpl{
		fetcher:       cfg.Fetcher,
		uploaders:     uploaders,
		logger:        logger,
		metrics:       cfg.Metrics,
		maxConcurrent: cfg.MaxConcurrent,
	}, nil
}

type uploadJob struct {
	attachment model.Attachment
	kind       model.ContentKind
}

func (serviceInstance *uploadServiceImpl) Process(ctx context.Context, attachmentList []model.Attachment, author string) (model.Result, error) {
	if len(attachmentList) == 0 {
		return model.Result{}, ErrNoAttachment
	}
	if strings.TrimSpace(author) == "" {
		author = model.DefaultAuthor
	}

	var jobs []uploadJob
	var skipped []string
	for _, attachment := range attachmentList {
		kind, supported := attachments.Classify(attachment.Filename, attachment.ContentType)
		if !supported {
			serviceInstance.logger.Debug("attachment_skipped", "filename", attachment.Filename, "content_type", attachment.ContentType)
			skipped = append(skipped, attachment.Filename)
			continue
		}
		jobs = append(jobs, uploadJob{attachment: attachment, kind: kind})
	}
	serviceInstance.metrics.observeSkipped(len(skipped))

	if len(jobs) == 0 {
		return model.Result{Skipped: skipped}, ErrUnsupportedType
	}

	entries := make([]model.ReplyEntry, len(jobs))
	completed := make([]bool, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	if serviceInstance.maxConcurrent > 0 {
		group.SetLimit(serviceInstance.maxConcurrent)
	}
	for jobIndex, job := range jobs {
		group.Go(func() error {
			entry, err := serviceInstance.processAttachment(groupCtx, job, author)
			if err != nil {
				return fmt.Errorf("%s: %w", job.attachment.Filename, err)
			}
			entries[jobIndex] = entry
			completed[jobIndex] = true
			return nil
		})
	}

	if waitErr := group.Wait(); waitErr != nil {
		orphaned := 0
		for jobIndex, done := range completed {
			if !done {
				continue
			}
			orphaned++
			serviceInstance.logger.Warn(
				"orphaned_paste",
				"filename", entries[jobIndex].Request.Filename,
				"service", entries[jobIndex].Response.Service,
				"link", entries[jobIndex].Response.Link,
			)
		}
		serviceInstance.metrics.observeOrphaned(orphaned)
		return model.Result{}, waitErr
	}

	return model.Result{Entries: entries, Skipped: skipped}, nil
}

func (serviceInstance *uploadServiceImpl) processAttachment(ctx context.Context, job uploadJob, author string) (entry model.ReplyEntry, err error) {
	started := time.Now()
	defer func() {
		serviceInstance.metrics.observeAttachment(job.kind, started, err)
	}()

	uploader, registered := serviceInstance.uploaders[job.kind]
	if !registered {
		return model.ReplyEntry{}, fmt.Errorf("%w: %s", ErrNoUploader, job.kind)
	}

	content, fetchErr := serviceInstance.fetcher.Fetch(ctx, job.attachment.URL)
	if fetchErr != nil {
		serviceInstance.logger.Error("Attachment fetch failed", "filename", job.attachment.Filename, "error", fetchErr)
		return model.ReplyEntry{}, fetchErr
	}
	serviceInstance.metrics.observeFetched(len(content))

	request := model.UploadRequest{
		Content:   attachments.DecodeText(content),
		Filename:  job.attachment.Filename,
		Kind:      job.kind,
		HumanSize: attachments.HumanSize(len(content)),
		Author:    author,
	}
	response, uploadErr := uploader.Upload(ctx, request)
	if uploadErr != nil {
		serviceInstance.logger.Error("Attachment upload failed", "filename", request.Filename, "service", uploader.Name(), "error", uploadErr)
		return model.ReplyEntry{}, uploadErr
	}
	response.Service = uploader.Name()

	serviceInstance.logger.Info(
		"attachment_uploaded",
		"filename", request.Filename,
		"kind", request.Kind,
		"size", request.HumanSize,
		"service", response.Service,
		"link", response.Link,
	)
	return model.NewReplyEntry(request, response), nil
}
