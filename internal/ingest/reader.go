package ingest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	kberrors "github.com/opskb/opskb/internal/errors"
)

// supportedExtensions lists the plain-text formats the pipeline ingests.
// Everything else is reported as skipped.
var supportedExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".rst":  {},
	".json": {},
	".yaml": {},
	".yml":  {},
	".ini":  {},
	".cfg":  {},
	".csv":  {},
	".tsv":  {},
	".log":  {},
}

// SupportedExtension reports whether the path's extension is ingestable.
func SupportedExtension(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// readDocument loads a file as text. Bytes that are not valid UTF-8 are
// retried as GBK, the common encoding of legacy ops manuals. JSON documents
// that parse are normalized to indented form so re-exports with different
// whitespace hash identically.
func readDocument(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", kberrors.Wrap(kberrors.ErrCodeFileUnreadable, "read document", err).
			WithDetail("path", path)
	}

	text, err := decodeText(raw)
	if err != nil {
		return "", kberrors.Wrap(kberrors.ErrCodeFileUnreadable, "decode document", err).
			WithDetail("path", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		text = normalizeJSON(text)
	}
	return text, nil
}

func decodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// normalizeJSON pretty-prints objects and arrays with two-space indent and
// no HTML escaping. Text that does not parse is returned untouched.
func normalizeJSON(text string) string {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return text
	}
	switch value.(type) {
	case map[string]any, []any:
	default:
		return text
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return text
	}
	// Encode appends a trailing newline.
	return strings.TrimSuffix(buf.String(), "\n")
}
