package attachments

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tyemirov/pastebot/pkg/model"
)

const specifierSeparator = "::"

// ErrMissingPath indicates an empty file specifier.
var ErrMissingPath = errors.New("attachments: missing file path")

// Load converts CLI specifiers ("path" or "path :: content/type") into
// attachments whose URL is the local path. Content types are sniffed from the
// file when not given explicitly.
func Load(specifiers []string) ([]model.Attachment, error) {
	loaded := make([]model.Attachment, 0, len(specifiers))
	for _, specifier := range specifiers {
		path, contentType := splitInput(specifier)
		if path == "" {
			return nil, ErrMissingPath
		}
		fileInfo, statErr := os.Stat(path)
		if statErr != nil {
			return nil, fmt.Errorf("attachments: stat %s: %w", path, statErr)
		}
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("attachments: %s is a directory", path)
		}
		if contentType == "" {
			detected, detectErr := mimetype.DetectFile(path)
			if detectErr != nil {
				return nil, fmt.Errorf("attachments: detect content type of %s: %w", path, detectErr)
			}
			contentType = detected.String()
		}
		loaded = append(loaded, model.Attachment{
			URL:         path,
			Filename:    filepath.Base(path),
			ContentType: contentType,
			Size:        int(fileInfo.Size()),
		})
	}
	return loaded, nil
}

func splitInput(specifier string) (string, string) {
	pathPart, contentTypePart, found := strings.Cut(specifier, specifierSeparator)
	if !found {
		return strings.TrimSpace(specifier), ""
	}
	return strings.TrimSpace(pathPart), strings.TrimSpace(contentTypePart)
}
