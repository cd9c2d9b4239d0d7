package ingest

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileBytes is the upload ceiling. Files larger than this are rejected
// before any network call happens.
const MaxFileBytes = 10 << 20 // 10 MiB

// Validation rules, referenced by ValidationError.Rule so callers can tell
// the user exactly what was wrong with the file.
const (
	RuleMIMEType = "mime_type"
	RuleSize     = "size"
)

// allowedMIMETypes lists the document and image types the extraction
// service accepts.
var allowedMIMETypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
}

// ValidationError reports a file that failed ingestion checks. Rule is one
// of RuleMIMEType or RuleSize.
type ValidationError struct {
	Rule   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ingest: validation failed (%s): %s", e.Rule, e.Detail)
}

// Payload is a transport-ready encoding of an uploaded file: the raw bytes
// base64-encoded and paired with the original MIME type. It is the only
// shape the extractor accepts; raw byte framing never crosses this boundary.
type Payload struct {
	Filename  string `json:"filename"`
	MIMEType  string `json:"mime_type"`
	Data      string `json:"-"` // base64 (standard encoding) of the file bytes
	SizeBytes int64  `json:"size_bytes"`
}

// Bytes decodes the payload back into the original file bytes.
func (p *Payload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("ingest: decode payload for %s: %w", p.Filename, err)
	}
	return data, nil
}

// Encode validates and encodes a user-supplied file. The MIME type must be
// an accepted document or image type and the content must not exceed
// MaxFileBytes; violations return a *ValidationError naming the broken rule
// and nothing is read beyond the ceiling. Read failures surface immediately,
// there is no retry.
func Encode(filename, mimeType string, r io.Reader) (*Payload, error) {
	if !allowedMIMETypes[normalizeMIME(mimeType)] {
		return nil, &ValidationError{
			Rule:   RuleMIMEType,
			Detail: fmt.Sprintf("unsupported file type %q, want PDF or PNG/JPEG/WEBP image", mimeType),
		}
	}

	// Read one byte past the ceiling so oversized files are detected
	// without buffering arbitrarily large input.
	data, err := io.ReadAll(io.LimitReader(r, MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", filename, err)
	}
	if int64(len(data)) > MaxFileBytes {
		return nil, &ValidationError{
			Rule:   RuleSize,
			Detail: fmt.Sprintf("file exceeds the %d MiB limit", MaxFileBytes>>20),
		}
	}

	return &Payload{
		Filename:  filename,
		MIMEType:  normalizeMIME(mimeType),
		Data:      base64.StdEncoding.EncodeToString(data),
		SizeBytes: int64(len(data)),
	}, nil
}

// EncodeFile reads a local file, detecting the MIME type from its extension.
func EncodeFile(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	return Encode(filepath.Base(path), DetectMIME(path), f)
}

// DetectMIME guesses a MIME type from the file extension. Unknown
// extensions return an empty string, which Encode rejects.
func DetectMIME(path string) string {
	return normalizeMIME(mime.TypeByExtension(filepath.Ext(path)))
}

// normalizeMIME strips parameters like "; charset=utf-8" and lowercases the
// media type so lookups against allowedMIMETypes are exact.
func normalizeMIME(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
