package attachments

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tyemirov/pastebot/pkg/model"
)

func TestSplitInput(t *testing.T) {
	t.Parallel()

	path, contentType := splitInput(" /tmp/file.txt :: text/plain ")
	require.Equal(t, "/tmp/file.txt", path)
	require.Equal(t, "text/plain", contentType)

	path, contentType = splitInput("file.bin")
	require.Equal(t, "file.bin", path)
	require.Empty(t, contentType)
}

func TestLoadInfersContentType(t *testing.T) {
	t.Parallel()

	tempFile := filepath.Join(t.TempDir(), "payload.txt")
	require.NoError(t, os.WriteFile(tempFile, []byte("hello"), 0o600))

	loaded, err := Load([]string{tempFile})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "payload.txt", loaded[0].Filename)
	require.Equal(t, tempFile, loaded[0].URL)
	require.Equal(t, 5, loaded[0].Size)
	require.True(t, strings.HasPrefix(loaded[0].ContentType, "text/plain"), loaded[0].ContentType)
}

func TestLoadKeepsExplicitContentType(t *testing.T) {
	t.Parallel()

	tempFile := filepath.Join(t.TempDir(), "server.out")
	require.NoError(t, os.WriteFile(tempFile, []byte{0x00, 0x01}, 0o600))

	loaded, err := Load([]string{tempFile + " :: text/x-log"})
	require.NoError(t, err)
	require.Equal(t, "text/x-log", loaded[0].ContentType)
}

func TestLoadRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Load([]string{"   "})
	require.ErrorIs(t, err, ErrMissingPath)
}

func TestLoadRejectsDirectories(t *testing.T) {
	t.Parallel()

	_, err := Load([]string{t.TempDir()})
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		filename    string
		contentType string
		expectKind  model.ContentKind
		expectOK    bool
	}{
		{name: "log without content type", filename: "trace.log", expectKind: model.KindLog, expectOK: true},
		{name: "log with binary content type", filename: "server.log", contentType: "application/octet-stream", expectKind: model.KindLog, expectOK: true},
		{name: "log with text content type", filename: "server.log", contentType: "text/plain", expectKind: model.KindLog, expectOK: true},
		{name: "plain text", filename: "readme.txt", contentType: "text/plain; charset=utf-8", expectKind: model.KindText, expectOK: true},
		{name: "markdown", filename: "notes.md", contentType: "text/markdown", expectKind: model.KindText, expectOK: true},
		{name: "image", filename: "photo.png", contentType: "image/png"},
		{name: "missing content type", filename: "blob"},
		{name: "uppercase suffix is not a log", filename: "TRACE.LOG"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			kind, ok := Classify(testCase.filename, testCase.contentType)
			require.Equal(t, testCase.expectOK, ok)
			require.Equal(t, testCase.expectKind, kind)
		})
	}
}

func TestHumanSize(t *testing.T) {
	t.Parallel()

	testCases := map[int]string{
		0:             "0 bytes",
		1023:          "1023 bytes",
		2048:          "2.00 KB",
		1536:          "1.50 KB",
		5_242_880:     "5.00 MB",
		1_073_741_824: "1.00 GB",
	}
	for byteCount, expected := range testCases {
		require.Equal(t, expected, HumanSize(byteCount), "size %d", byteCount)
	}
}

func TestDecodeTextReplacesInvalidSequences(t *testing.T) {
	t.Parallel()

	require.Equal(t, "plain", DecodeText([]byte("plain")))
	require.Equal(t, "a�b", DecodeText([]byte{'a', 0xff, 'b'}))
}
