// Package mediatype определяет Content-Type отдаваемого файла.
package mediatype

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Default отдаётся, когда тип определить не удалось.
const Default = "application/octet-stream"

// sniffLimit ограничивает, сколько байт читаем с начала файла для определения типа по содержимому.
const sniffLimit = 3072

// Системные mime-таблицы бывают неполными, поэтому медиа-типы продублированы.
var fallback = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".txt":  "text/plain; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

// ByName определяет тип по расширению. Пустая строка значит, что не удалось.
func ByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if ct, ok := fallback[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

// Detect определяет тип по имени, а если не вышло, то по первым байтам содержимого.
// После чтения src перематывается в начало.
func Detect(name string, src io.ReadSeeker) string {
	if ct := ByName(name); ct != "" {
		return ct
	}
	if src == nil {
		return Default
	}

	mt, err := mimetype.DetectReader(io.LimitReader(src, sniffLimit))
	if _, serr := src.Seek(0, io.SeekStart); serr != nil || err != nil || mt == nil {
		return Default
	}

	return mt.String()
}
