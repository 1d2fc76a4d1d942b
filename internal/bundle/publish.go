package bundle

import (
	"context"
	"fmt"
	"io"
	"os"

	"gocloud.dev/blob"
)

// Publish copies a finished archive to object storage. The bucket URL uses
// gocloud.dev/blob schemes (s3://, gs://, file://); the required driver
// must be linked into the binary.
func Publish(ctx context.Context, bucketURL, key, archivePath string) error {
	bkt, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return fmt.Errorf("bundle: open bucket: %w", err)
	}
	defer bkt.Close()

	return publishTo(ctx, bkt, key, archivePath)
}

// publishTo uploads the archive to an already-open bucket.
func publishTo(ctx context.Context, bkt *blob.Bucket, key, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("bundle: open archive: %w", err)
	}
	defer f.Close()

	w, err := bkt.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return fmt.Errorf("bundle: create object %s: %w", key, err)
	}

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("bundle: upload archive: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("bundle: finalize object %s: %w", key, err)
	}
	return nil
}
