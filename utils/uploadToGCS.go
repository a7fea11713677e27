package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (service account / GOOGLE_APPLICATION_CREDENTIALS).
	// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// ArtifactObjectName maps a local artifact path to <prefix>/<run dir>/<file>.
func ArtifactObjectName(prefix string, localPath string) string {
	dir := filepath.Base(filepath.Dir(localPath))
	return path.Join(strings.Trim(prefix, "/"), dir, filepath.Base(localPath))
}

func ArtifactContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return xlsxContentType
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// UploadRunArtifacts copies every local artifact into bucketName and returns
// the object names written. It stops at the first failed upload.
func UploadRunArtifacts(ctx context.Context, bucketName string, prefix string, paths []string) ([]string, error) {
	if bucketName == "" {
		return nil, errors.New("OUTPUT_GCS_BUCKET is required")
	}
	if len(paths) == 0 {
		return nil, ErrorNoArtifacts
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	bucket := client.Bucket(bucketName)
	if _, err := bucket.Attrs(ctx); err != nil {
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %v", bucketName, err)
	}

	var uploaded []string
	for _, p := range paths {
		objectName := ArtifactObjectName(prefix, p)
		if err := uploadFile(ctx, bucket.Object(objectName), p); err != nil {
			return uploaded, fmt.Errorf("upload %s: %w", objectName, err)
		}
		uploaded = append(uploaded, objectName)
	}
	return uploaded, nil
}

func uploadFile(ctx context.Context, obj *storage.ObjectHandle, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	wc := obj.NewWriter(ctx)
	wc.ContentType = ArtifactContentType(localPath)
	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return fmt.Errorf("failed to upload file to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}
	return nil
}
