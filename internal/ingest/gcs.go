package ingest

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// FetchGCS downloads a statement object from Google Cloud Storage and runs
// it through the same validation and encoding as a local upload.
// gcsURI should look like "gs://bucket/path/to/statement.pdf".
func FetchGCS(ctx context.Context, gcsURI string, opts ...option.ClientOption) (*Payload, error) {
	bucket, object, err := splitGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ingest: create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", gcsURI, err)
	}
	defer r.Close()

	mimeType := r.Attrs.ContentType
	if mimeType == "" {
		mimeType = DetectMIME(object)
	}

	return Encode(path.Base(object), mimeType, r)
}

// splitGCSURI splits "gs://bucket/folder/file.pdf" into bucket and object.
func splitGCSURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	if trimmed == uri {
		return "", "", fmt.Errorf("ingest: not a GCS URI: %q", uri)
	}

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("ingest: malformed GCS URI: %q", uri)
	}

	return parts[0], parts[1], nil
}
