//go:build integration

package main

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "gocloud.dev/blob/s3blob"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/testutils"
)

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	t.Log("Starting tile test server...")
	server := testutils.StartTileServer(t)

	t.Log("Starting Minio container...")
	minio := testutils.StartMinioContainer(t, ctx, "cli-test-bucket")
	defer func() {
		if err := minio.Close(ctx); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	}()

	cacheDir := filepath.Join(t.TempDir(), "cache")
	archivePath := filepath.Join(t.TempDir(), "bundle.zip")
	objectKey := "bundles/world.zip"

	// World zoom 0-2 is 1 + 4 + 16 tiles.
	const expectedTiles = 21

	t.Run("download", func(t *testing.T) {
		exitCode := runDownload([]string{
			"-url", server.Template(),
			"-cache", cacheDir,
			"-minzoom", "0",
			"-maxzoom", "2",
			"-workers", "4",
		})
		if exitCode != ExitSuccess {
			t.Fatalf("download failed with exit code %d", exitCode)
		}
		if got := server.Requests(); got != expectedTiles {
			t.Errorf("tile requests = %d, want %d", got, expectedTiles)
		}
		if _, err := os.Stat(filepath.Join(cacheDir, "world", "2", "3", "3.png")); err != nil {
			t.Errorf("expected cached tile: %v", err)
		}
	})

	t.Run("download_cache_hit", func(t *testing.T) {
		exitCode := runDownload([]string{
			"-url", server.Template(),
			"-cache", cacheDir,
			"-minzoom", "0",
			"-maxzoom", "2",
		})
		if exitCode != ExitSuccess {
			t.Fatalf("download failed with exit code %d", exitCode)
		}
		if got := server.Requests(); got != expectedTiles {
			t.Errorf("tile requests after rerun = %d, want %d (cache should serve all)", got, expectedTiles)
		}
	})

	t.Run("verify", func(t *testing.T) {
		exitCode := runVerify([]string{
			"-cache", cacheDir,
			"-minzoom", "0",
			"-maxzoom", "2",
		})
		if exitCode != ExitSuccess {
			t.Fatalf("verify failed with exit code %d", exitCode)
		}
	})

	t.Run("bundle_and_publish", func(t *testing.T) {
		exitCode := runBundle([]string{
			"-cache", cacheDir,
			"-minzoom", "0",
			"-maxzoom", "2",
			"-output", archivePath,
			"-bucket", minio.BucketURL,
			"-object", objectKey,
		})
		if exitCode != ExitSuccess {
			t.Fatalf("bundle failed with exit code %d", exitCode)
		}

		zr, err := zip.OpenReader(archivePath)
		if err != nil {
			t.Fatalf("open archive: %v", err)
		}
		defer zr.Close()
		if len(zr.File) != expectedTiles {
			t.Errorf("archive entries = %d, want %d", len(zr.File), expectedTiles)
		}

		bucket, err := minio.OpenBucket(ctx)
		if err != nil {
			t.Fatalf("open bucket: %v", err)
		}
		defer bucket.Close()

		exists, err := bucket.Exists(ctx, objectKey)
		if err != nil {
			t.Fatalf("check published object: %v", err)
		}
		if !exists {
			t.Fatal("published archive not found in bucket")
		}
	})

	t.Run("verify_missing", func(t *testing.T) {
		if err := os.Remove(filepath.Join(cacheDir, "world", "1", "0", "0.png")); err != nil {
			t.Fatalf("remove cached tile: %v", err)
		}

		exitCode := runVerify([]string{
			"-cache", cacheDir,
			"-minzoom", "0",
			"-maxzoom", "2",
		})
		if exitCode != ExitIncomplete {
			t.Fatalf("verify exit code = %d, want %d", exitCode, ExitIncomplete)
		}
	})
}
