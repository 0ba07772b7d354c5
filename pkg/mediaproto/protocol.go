// Package mediaproto описывает HTTP-протокол сервера: маршруты и служебные заголовки.
package mediaproto

// Маршруты и заголовки, общие для сервера и клиента.
const (
	FilesPathFormat  = "%s/files/%s"
	UploadPathFormat = "%s/upload"

	HeaderFileName     = "File-Name"
	HeaderRange        = "Range"
	HeaderContentRange = "Content-Range"
	HeaderAcceptRanges = "Accept-Ranges"
)
