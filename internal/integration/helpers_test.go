package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/sir_venger/rangeserve/internal/app/mediahttp"
	"github.com/sir_venger/rangeserve/internal/storage"
	"github.com/sir_venger/rangeserve/internal/usecase/mediasvc"
)

type env struct {
	root  string
	files *mediasvc.Files
	srv   *httptest.Server
}

// newEnv поднимает сервер над временным каталогом на настоящей ФС.
func newEnv(t *testing.T, followSymlinks bool, maxUpload int64) *env {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "static")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "secret.txt"), []byte("TOP SECRET"), 0o600); err != nil {
		t.Fatal(err)
	}

	files := mediasvc.New(mediasvc.Deps{
		Store:         storage.New(afero.NewOsFs(), root, followSymlinks),
		ChunkSize:     4096,
		MaxUploadSize: maxUpload,
	})
	srv := httptest.NewServer(mediahttp.New(mediahttp.Options{Files: files, Workers: 8, GCTTL: 24 * time.Hour}))
	t.Cleanup(srv.Close)

	return &env{root: root, files: files, srv: srv}
}

func (e *env) put(t *testing.T, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.root, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *env) get(t *testing.T, path, rng string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rng != "" {
		req.Header.Set("Range", rng)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp, body
}
