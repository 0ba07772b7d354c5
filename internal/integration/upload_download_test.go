package integration

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sir_venger/rangeserve/pkg/mediaclient"
)

func Test_UploadDownload_Integrity(t *testing.T) {
	e := newEnv(t, false, 8<<20)
	cli := mediaclient.New(mediaclient.WithHTTPClient(e.srv.Client()))
	ctx := context.Background()

	payload := bytes.Repeat([]byte{0xA1, 0xB2, 0xC3, 0xD4}, 1<<18) // ~1MB
	want := sha256.Sum256(payload)

	res, err := cli.Upload(ctx, e.srv.URL, mediaclient.UploadRequest{Name: "blob.bin", Body: bytes.NewReader(payload), Size: int64(len(payload))})
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "blob.bin" || res.Size != int64(len(payload)) {
		t.Fatalf("unexpected result %+v", res)
	}

	// окна разного размера в сумме должны собирать файл целиком
	for _, chunk := range []int64{4096, 65537, 1 << 20, 4 << 20} {
		var got bytes.Buffer
		n, err := cli.Download(ctx, e.srv.URL, "blob.bin", chunk, &got)
		if err != nil {
			t.Fatalf("chunk %d: %v", chunk, err)
		}
		gh := sha256.Sum256(got.Bytes())
		if n != int64(len(payload)) || hex.EncodeToString(gh[:]) != hex.EncodeToString(want[:]) {
			t.Fatalf("chunk %d: sha mismatch (n=%d)", chunk, n)
		}
	}
}

func Test_BrowserMultipartUpload(t *testing.T) {
	e := newEnv(t, false, 8<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "holiday.mp4")
	if err != nil {
		t.Fatal(err)
	}
	video := []byte("\x00\x00\x00\x18ftypmp42 binary \r\n\r\n tail")
	_, _ = part.Write(video)
	_ = mw.Close()

	client := *e.srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Post(e.srv.URL+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("upload: %s location=%q", resp.Status, resp.Header.Get("Location"))
	}

	stored, err := os.ReadFile(filepath.Join(e.root, "holiday.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	// тело после заголовков пишется как есть, включая закрывающую границу
	if !bytes.HasPrefix(stored, video) {
		t.Fatalf("payload mismatch: %q", stored)
	}
	if !strings.Contains(string(stored[len(video):]), mw.Boundary()) {
		t.Fatalf("expected trailing boundary in stored file")
	}

	_, page := e.get(t, "/", "")
	if !bytes.Contains(page, []byte("holiday.mp4")) {
		t.Fatalf("index does not list uploaded file")
	}
}

func Test_UploadLimits(t *testing.T) {
	e := newEnv(t, false, 16)

	resp, err := http.Post(e.srv.URL+"/upload", "application/octet-stream", strings.NewReader(strings.Repeat("x", 17)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized upload: %s", resp.Status)
	}

	entries, err := os.ReadDir(e.root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload left %d entries", len(entries))
	}
}
