package streamer

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/rangeserve/internal/byterange"
	"github.com/sir_venger/rangeserve/internal/models"
)

// countingSource считает прочитанные байты, чтобы убедиться, что до start мы не читаем, а перематываем.
type countingSource struct {
	*bytes.Reader
	read int64
}

func (c *countingSource) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.read += int64(n)
	return n, err
}

// chunkRecorder запоминает размеры отдельных Write.
type chunkRecorder struct {
	bytes.Buffer
	sizes []int
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.sizes = append(c.sizes, len(p))
	return c.Buffer.Write(p)
}

type failingWriter struct {
	after int
	n     int
}

var errClientGone = errors.New("client gone")

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n >= f.after {
		return 0, errClientGone
	}
	f.n++
	return len(p), nil
}

func payload(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(b)
	return b
}

func TestStream_OpenEndedRange(t *testing.T) {
	data := payload(1000)
	src := &countingSource{Reader: bytes.NewReader(data)}
	var out bytes.Buffer

	r := byterange.Parse("bytes=500-", int64(len(data))).Range
	n, err := Stream(src, r, &out, MinChunkSize)
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)
	assert.Equal(t, data[500:], out.Bytes())
	assert.Equal(t, int64(500), src.read, "bytes before start must be skipped, not read")
}

func TestStream_ChunksAreBounded(t *testing.T) {
	data := payload(50_000)
	rec := &chunkRecorder{}

	n, err := Stream(bytes.NewReader(data), byterange.Whole(int64(len(data))), rec, MinChunkSize)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, data, rec.Bytes())
	for _, s := range rec.sizes {
		assert.LessOrEqual(t, s, MinChunkSize)
	}
}

// Последовательные непересекающиеся диапазоны, покрывающие [0, N), дают исходный файл.
func TestStream_Reconstruction(t *testing.T) {
	data := payload(123_457)
	total := int64(len(data))
	src := bytes.NewReader(data)

	var out bytes.Buffer
	for _, step := range []int64{1, 7, 4096, 65_536, 100_000} {
		out.Reset()
		for start := int64(0); start < total; start += step {
			r := byterange.ByteRange{Start: start, End: min(start+step, total) - 1, Total: total}
			n, err := Stream(src, r, &out, DefaultChunkSize)
			require.NoError(t, err)
			require.Equal(t, r.Length(), n)
		}
		require.Equal(t, data, out.Bytes(), "step %d", step)
	}
}

func TestStream_TruncatedSource(t *testing.T) {
	data := payload(100)
	var out bytes.Buffer

	// файл "урезали" после того, как размер уже был отдан в заголовках
	r := byterange.ByteRange{Start: 50, End: 199, Total: 200}
	n, err := Stream(bytes.NewReader(data), r, &out, MinChunkSize)
	require.ErrorIs(t, err, models.ErrTruncatedSource)
	assert.Equal(t, int64(50), n)
	assert.Equal(t, data[50:], out.Bytes())
}

func TestStream_WriteErrorStopsImmediately(t *testing.T) {
	data := payload(64 << 10)
	w := &failingWriter{after: 2}

	n, err := Stream(bytes.NewReader(data), byterange.Whole(int64(len(data))), w, MinChunkSize)
	require.ErrorIs(t, err, models.ErrIO)
	require.ErrorIs(t, err, errClientGone)
	assert.Equal(t, int64(2*MinChunkSize), n)
	assert.Equal(t, 2, w.n, "no writes after the failing one")
}

func TestStream_EmptyRange(t *testing.T) {
	var out bytes.Buffer
	n, err := Stream(bytes.NewReader(nil), byterange.Whole(0), &out, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, out.Len())
}

type seekFail struct{ io.Reader }

func (seekFail) Seek(int64, int) (int64, error) { return 0, errors.New("bad seek") }

func TestStream_SeekError(t *testing.T) {
	_, err := Stream(seekFail{bytes.NewReader([]byte("abc"))}, byterange.ByteRange{Start: 1, End: 2, Total: 3}, io.Discard, 0)
	require.ErrorIs(t, err, models.ErrIO)
}

func TestClampChunkSize(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, ClampChunkSize(0))
	assert.Equal(t, DefaultChunkSize, ClampChunkSize(-1))
	assert.Equal(t, MinChunkSize, ClampChunkSize(1))
	assert.Equal(t, MaxChunkSize, ClampChunkSize(128<<20))
	assert.Equal(t, 256<<10, ClampChunkSize(256<<10))
}
