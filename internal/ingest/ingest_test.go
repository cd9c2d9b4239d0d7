package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncode_RejectsUnsupportedMIMETypes(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
	}{
		{"plain text", "text/plain"},
		{"html", "text/html"},
		{"gif image", "image/gif"},
		{"zip archive", "application/zip"},
		{"empty type", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode("statement.bin", tt.mimeType, strings.NewReader("data"))

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Encode() error = %v, want *ValidationError", err)
			}
			if verr.Rule != RuleMIMEType {
				t.Errorf("ValidationError.Rule = %q, want %q", verr.Rule, RuleMIMEType)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		content  []byte
	}{
		{"pdf", "application/pdf", []byte("%PDF-1.7 fake statement body")},
		{"png", "image/png", []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF, 0x10}},
		{"jpeg with parameters", "image/jpeg; charset=binary", bytes.Repeat([]byte{0xAB}, 4096)},
		{"empty file", "image/webp", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Encode("statement", tt.mimeType, bytes.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			decoded, err := payload.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if !bytes.Equal(decoded, tt.content) {
				t.Errorf("decoded bytes differ from original: got %d bytes, want %d", len(decoded), len(tt.content))
			}
			if payload.SizeBytes != int64(len(tt.content)) {
				t.Errorf("SizeBytes = %d, want %d", payload.SizeBytes, len(tt.content))
			}
		})
	}
}

func TestEncode_RejectsOversizedFiles(t *testing.T) {
	oversized := bytes.NewReader(make([]byte, MaxFileBytes+1))

	_, err := Encode("huge.pdf", "application/pdf", oversized)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Encode() error = %v, want *ValidationError", err)
	}
	if verr.Rule != RuleSize {
		t.Errorf("ValidationError.Rule = %q, want %q", verr.Rule, RuleSize)
	}
}

func TestEncode_AcceptsFileAtExactCeiling(t *testing.T) {
	exact := bytes.NewReader(make([]byte, MaxFileBytes))

	payload, err := Encode("exact.pdf", "application/pdf", exact)
	if err != nil {
		t.Fatalf("Encode() error = %v, want success at exactly %d bytes", err, MaxFileBytes)
	}
	if payload.SizeBytes != MaxFileBytes {
		t.Errorf("SizeBytes = %d, want %d", payload.SizeBytes, MaxFileBytes)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestEncode_PropagatesReadErrors(t *testing.T) {
	_, err := Encode("statement.pdf", "application/pdf", failingReader{})
	if err == nil {
		t.Fatal("Encode() expected read error, got nil")
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Errorf("read failure should not be a ValidationError, got rule %q", verr.Rule)
	}
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"statement.pdf", "application/pdf"},
		{"scan.png", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"photo.webp", "image/webp"},
		{"notes.txt", "text/plain"},
		{"noextension", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectMIME(tt.path); got != tt.want {
				t.Errorf("DetectMIME(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestSplitGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://bucket/statements/jan.pdf", "bucket", "statements/jan.pdf", false},
		{"gs://bucket/file.pdf", "bucket", "file.pdf", false},
		{"gs://bucket", "", "", true},
		{"https://example.com/file.pdf", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := splitGCSURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitGCSURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("splitGCSURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}
