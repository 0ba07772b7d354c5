// Package uploadname достаёт имя файла из начала тела загрузки.
//
// Это узкая эвристика, а не парсер multipart/form-data: считается, что тело
// содержит одно поле с одним вхождением filename="...". Граница, Content-Type
// части и последующие части не разбираются. Всё после первой пустой строки
// (CRLFCRLF) считается сырым содержимым файла, включая хвостовую границу, если она есть.
package uploadname

import (
	"io"
	"strings"
)

// MaxHeaderBytes ограничивает объём заголовка, который мы готовы накопить.
const MaxHeaderBytes = 64 << 10

const (
	terminator    = 0x0D0A0D0A
	filenameToken = `filename="`
)

// Result содержит то, что удалось прочитать до начала полезной нагрузки.
type Result struct {
	// HeaderText хранит все прочитанные байты, включая CRLFCRLF.
	HeaderText string
	Filename   string
	Found      bool
	// Terminated сообщает, был ли найден CRLFCRLF.
	Terminated bool
}

// Extract читает src побайтно до CRLFCRLF и не трогает байты после него,
// так что следующее чтение из src начинается ровно с содержимого файла.
// Функция не возвращает ошибок: при обрыве потока результат просто неполный.
func Extract(src io.Reader) Result {
	br, ok := src.(io.ByteReader)
	if !ok {
		br = &oneByteReader{r: src}
	}

	var (
		header strings.Builder
		window uint32
		res    Result
	)
	for header.Len() < MaxHeaderBytes {
		b, err := br.ReadByte()
		if err != nil {
			break
		}
		header.WriteByte(b)
		window = window<<8 | uint32(b)
		if window == terminator {
			res.Terminated = true
			break
		}
	}

	res.HeaderText = header.String()
	res.Filename, res.Found = filenameFrom(res.HeaderText)

	return res
}

func filenameFrom(header string) (string, bool) {
	_, rest, ok := strings.Cut(header, filenameToken)
	if !ok {
		return "", false
	}
	name, _, ok := strings.Cut(rest, `"`)
	if !ok {
		return "", false
	}
	return name, true
}

// oneByteReader читает по одному байту, чтобы не забрать из потока лишнее.
type oneByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (o *oneByteReader) ReadByte() (byte, error) {
	for {
		n, err := o.r.Read(o.buf[:])
		if n == 1 {
			return o.buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}
