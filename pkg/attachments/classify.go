package attachments

import (
	"strings"

	"github.com/tyemirov/pastebot/pkg/model"
)

const (
	logFileSuffix   = ".log"
	textMediaPrefix = "text/"
)

// Classify picks the content kind for an attachment. A ".log" filename wins
// over any declared content type; otherwise a declared text/* type selects
// KindText. The boolean is false when the attachment is not uploadable.
func Classify(filename string, contentType string) (model.ContentKind, bool) {
	if strings.HasSuffix(filename, logFileSuffix) {
		return model.KindLog, true
	}
	if contentType != "" && strings.Contains(contentType, textMediaPrefix) {
		return model.KindText, true
	}
	return "", false
}
