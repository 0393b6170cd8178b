// Package gcsuploader archives statement PDFs in Cloud Storage and reads
// them back from gs:// URIs.
package gcsuploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finsight/internal/logger"
)

const (
	uriScheme     = "gs://"
	uploadTimeout = 2 * time.Minute
	pdfMIMEType   = "application/pdf"
)

// Uploader reads and writes objects with one storage client.
type Uploader struct {
	client *storage.Client
}

// NewUploader creates a storage client using Application Default
// Credentials (or GOOGLE_APPLICATION_CREDENTIALS).
func NewUploader(ctx context.Context) (*Uploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewUploader: create storage client: %w", err)
	}
	return &Uploader{client: client}, nil
}

// NewUploaderWithClient shares an existing client. Close will close it.
func NewUploaderWithClient(client *storage.Client) *Uploader {
	return &Uploader{client: client}
}

// Client returns the underlying storage client.
func (u *Uploader) Client() *storage.Client {
	return u.client
}

// Close releases the storage client.
func (u *Uploader) Close() error {
	return u.client.Close()
}

// UploadFile uploads a local file to a GCS bucket under the given object name.
func (u *Uploader) UploadFile(ctx context.Context, bucketName, objectName, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("UploadFile: open file %q: %w", filePath, err)
	}
	defer f.Close()

	return u.upload(ctx, bucketName, objectName, f)
}

// UploadBytes uploads data to a GCS bucket under the given object name and
// returns the object's gs:// URI.
func (u *Uploader) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte) (string, error) {
	return u.upload(ctx, bucketName, objectName, bytes.NewReader(data))
}

func (u *Uploader) upload(ctx context.Context, bucketName, objectName string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := u.client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = pdfMIMEType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload: copy to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload: finalize %s/%s: %w", bucketName, objectName, err)
	}

	uri := BuildGCSURI(bucketName, objectName)
	log := logger.FromContext(ctx)
	log.Info().Str("gcs_uri", uri).Msg("Uploaded statement")
	return uri, nil
}

// FetchFromGCS downloads the file bytes from the given GCS URI.
func (u *Uploader) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseGCSURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: %w", err)
	}

	rc, err := u.client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchFromGCS: reading bytes: %w", err)
	}

	return data, nil
}

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object path.
func ParseGCSURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, uriScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	parts := strings.SplitN(strings.TrimPrefix(gcsURI, uriScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// IsGCSURI reports whether s looks like a gs:// URI.
func IsGCSURI(s string) bool {
	return strings.HasPrefix(s, uriScheme)
}

// BuildGCSURI joins a bucket and object name into a gs:// URI.
func BuildGCSURI(bucket, object string) string {
	return uriScheme + bucket + "/" + object
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func ExtractFilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, uriScheme)

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}

// ArchiveObjectName is where an uploaded statement is archived:
// statements/<account>/<yyyy>/<mm>/<unix>_<file>.
func ArchiveObjectName(accountID, fileName string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "statement.pdf"
	}
	now = now.UTC()
	return fmt.Sprintf("statements/%s/%04d/%02d/%d_%s", accountID, now.Year(), int(now.Month()), now.Unix(), base)
}
