package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/pestilab/pkg/lifecycle"
	"github.com/JaimeStill/pestilab/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func drivers(t *testing.T) map[string]storage.System {
	t.Helper()

	fsCfg := &storage.Config{Driver: storage.DriverFilesystem, Root: t.TempDir()}
	fsSys, err := storage.New(context.Background(), fsCfg, discard())
	if err != nil {
		t.Fatalf("New(filesystem) error = %v", err)
	}

	lc := lifecycle.New()
	if err := fsSys.Start(lc); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	lc.WaitForStartup()

	return map[string]storage.System{
		"memory":     storage.NewMemory(discard()),
		"filesystem": fsSys,
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, sys := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			key := "exports/abc/PestiLab_Labels_2026-10-18.csv"
			body := []byte("DATE,LABEL CODE\n")

			if err := sys.Upload(ctx, key, bytes.NewReader(body), "text/csv"); err != nil {
				t.Fatalf("Upload error = %v", err)
			}

			ok, err := sys.Exists(ctx, key)
			if err != nil || !ok {
				t.Fatalf("Exists = %v, %v; want true", ok, err)
			}

			rc, err := sys.Download(ctx, key)
			if err != nil {
				t.Fatalf("Download error = %v", err)
			}
			got, _ := io.ReadAll(rc)
			rc.Close()
			if !bytes.Equal(got, body) {
				t.Errorf("Download = %q, want %q", got, body)
			}

			if err := sys.Delete(ctx, key); err != nil {
				t.Fatalf("Delete error = %v", err)
			}
			if ok, _ := sys.Exists(ctx, key); ok {
				t.Error("Exists after delete = true")
			}
			if err := sys.Delete(ctx, key); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("second Delete = %v, want ErrNotFound", err)
			}
			if _, err := sys.Download(ctx, key); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Download missing = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestKeyValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"empty", "", storage.ErrEmptyKey},
		{"traversal", "exports/../../etc/passwd", storage.ErrInvalidKey},
		{"absolute", "/etc/passwd", storage.ErrInvalidKey},
	}

	for name, sys := range drivers(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "text/plain")
				if !errors.Is(err, tt.want) {
					t.Errorf("Upload(%q) = %v, want %v", tt.key, err, tt.want)
				}
			})
		}
	}
}

func TestNewAzure(t *testing.T) {
	cfg := &storage.Config{Driver: storage.DriverAzure, ContainerName: "exports", ConnectionString: azuriteConnString}
	sys, err := storage.New(context.Background(), cfg, discard())
	if err != nil || sys == nil {
		t.Fatalf("New(azure) = %v, %v", sys, err)
	}

	cfg.ConnectionString = "not-a-connection-string"
	if _, err := storage.New(context.Background(), cfg, discard()); err == nil {
		t.Error("expected error for invalid connection string")
	}
}

func TestNewS3(t *testing.T) {
	cfg := &storage.Config{
		Driver:          storage.DriverS3,
		Bucket:          "pestilab-exports",
		Region:          "eu-central-1",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		PathStyle:       true,
	}
	sys, err := storage.New(context.Background(), cfg, discard())
	if err != nil || sys == nil {
		t.Fatalf("New(s3) = %v, %v", sys, err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
