package mediasvc

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/rangeserve/internal/byterange"
	"github.com/sir_venger/rangeserve/internal/models"
	"github.com/sir_venger/rangeserve/internal/storage"
)

const root = "/srv/media"

func newService(t *testing.T, maxUpload int64) (*Files, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	st := storage.New(fs, root, false)
	require.NoError(t, st.EnsureRoot())

	return New(Deps{
		Store:         st,
		ChunkSize:     4096,
		MaxUploadSize: maxUpload,
		Now:           func() time.Time { return time.UnixMilli(1700000000000) },
	}), fs
}

func TestOpenAndStream(t *testing.T) {
	svc, fs := newService(t, 1<<20)
	data := bytes.Repeat([]byte("0123456789"), 100)
	require.NoError(t, afero.WriteFile(fs, root+"/clip.mp4", data, 0o644))
	ctx := context.Background()

	m, err := svc.Open(ctx, "/clip.mp4")
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, "clip.mp4", m.Name)
	assert.Equal(t, int64(1000), m.Size)
	assert.Equal(t, "video/mp4", m.ContentType)

	o := byterange.Parse("bytes=500-", m.Size)
	var out bytes.Buffer
	n, err := svc.Stream(ctx, m, o.Range, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)
	assert.Equal(t, data[500:], out.Bytes())

	_, err = svc.Open(ctx, "/../secret.txt")
	assert.ErrorIs(t, err, models.ErrPathTraversal)
	_, err = svc.Open(ctx, "/nope.mp4")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpload_FileNameHeader(t *testing.T) {
	svc, fs := newService(t, 1<<20)

	res, err := svc.Upload(context.Background(), UploadRequest{
		Body:          strings.NewReader("hello"),
		ContentLength: 5,
		ContentType:   "application/octet-stream",
		FileName:      "my%20notes.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UploadResult{Name: "my notes.txt", Size: 5}, res)

	b, err := afero.ReadFile(fs, root+"/my notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestUpload_MultipartFilename(t *testing.T) {
	svc, fs := newService(t, 1<<20)
	head := "------B\r\nContent-Disposition: form-data; name=\"file\"; filename=\"clip.mp4\"\r\nContent-Type: video/mp4\r\n\r\n"
	binary := []byte{0, 1, 2, 3, '\r', '\n', 0xFE}

	res, err := svc.Upload(context.Background(), UploadRequest{
		Body:          bytes.NewReader(append([]byte(head), binary...)),
		ContentLength: int64(len(head) + len(binary)),
		ContentType:   "multipart/form-data; boundary=----B",
	})
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", res.Name)
	assert.False(t, res.Generated)
	assert.Equal(t, int64(len(binary)), res.Size)

	b, err := afero.ReadFile(fs, root+"/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, binary, b)
}

func TestUpload_GeneratedNames(t *testing.T) {
	svc, _ := newService(t, 1<<20)
	ctx := context.Background()

	raw, err := svc.Upload(ctx, UploadRequest{Body: strings.NewReader("x"), ContentLength: -1})
	require.NoError(t, err)
	assert.True(t, raw.Generated)
	assert.Regexp(t, regexp.MustCompile(`^uploaded_file_1700000000000_[0-9a-f]{8}\.dat$`), raw.Name)

	mp, err := svc.Upload(ctx, UploadRequest{
		Body:          strings.NewReader("name=\"file\"\r\n\r\nPAYLOAD"),
		ContentLength: -1,
		ContentType:   "multipart/form-data; boundary=x",
	})
	require.NoError(t, err)
	assert.True(t, mp.Generated)
	assert.Regexp(t, regexp.MustCompile(`^video_1700000000000_[0-9a-f]{8}\.mp4$`), mp.Name)
	assert.Equal(t, int64(len("PAYLOAD")), mp.Size)

	assert.NotEqual(t, DefaultName(models.UploadRaw, time.Unix(0, 0)), DefaultName(models.UploadRaw, time.Unix(0, 0)))
}

func TestUpload_TooLarge(t *testing.T) {
	svc, fs := newService(t, 10)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadRequest{Body: strings.NewReader(strings.Repeat("x", 11)), ContentLength: 11, FileName: "a.bin"})
	require.ErrorIs(t, err, models.ErrTooLarge)

	// длина неизвестна: лимит срабатывает во время записи
	_, err = svc.Upload(ctx, UploadRequest{Body: strings.NewReader(strings.Repeat("x", 11)), ContentLength: -1, FileName: "b.bin"})
	require.ErrorIs(t, err, models.ErrTooLarge)

	exists, err := afero.Exists(fs, root+"/b.bin")
	require.NoError(t, err)
	assert.False(t, exists)

	res, err := svc.Upload(ctx, UploadRequest{Body: strings.NewReader(strings.Repeat("x", 10)), ContentLength: -1, FileName: "c.bin"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Size)
}

func TestUpload_InvalidNames(t *testing.T) {
	svc, _ := newService(t, 1<<20)

	for _, name := range []string{"..", "../../etc/passwd", "..%2F..%2Fetc%2Fpasswd", "a/b.txt", `a\b.txt`, ".", ".upload-x.txt", "%2Eupload-notes.txt"} {
		_, err := svc.Upload(context.Background(), UploadRequest{Body: strings.NewReader("x"), ContentLength: 1, FileName: name})
		assert.ErrorIs(t, err, models.ErrInvalidName, name)
	}
}

func TestUpload_ReservedNameNotStored(t *testing.T) {
	svc, fs := newService(t, 1<<20)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadRequest{Body: strings.NewReader("my notes"), ContentLength: 8, FileName: ".upload-notes.txt"})
	require.ErrorIs(t, err, models.ErrInvalidName)

	exists, err := afero.Exists(fs, root+"/.upload-notes.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// имя из multipart проходит ту же проверку
	head := "--B\r\nContent-Disposition: form-data; name=\"file\"; filename=\".upload-clip.mp4\"\r\n\r\n"
	_, err = svc.Upload(ctx, UploadRequest{Body: strings.NewReader(head + "DATA"), ContentLength: -1, ContentType: "multipart/form-data; boundary=B"})
	require.ErrorIs(t, err, models.ErrInvalidName)

	u, err := svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, Usage{}, u)
}

func TestListAndUsage(t *testing.T) {
	svc, fs := newService(t, 1<<20)
	svc.ListExtensions = []string{".mp4"}
	require.NoError(t, afero.WriteFile(fs, root+"/a.mp4", []byte("12345"), 0o644))
	require.NoError(t, afero.WriteFile(fs, root+"/b.txt", []byte("1"), 0o644))
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a.mp4", list[0].Name)

	u, err := svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, Usage{TotalBytes: 6, Files: 2}, u)
}
