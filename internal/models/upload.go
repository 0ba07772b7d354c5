package models

// UploadKind определяет, как имя файла пришло вместе с телом запроса.
type UploadKind int

const (
	// UploadRaw: тело целиком является файлом, имя (если есть) в заголовке File-Name.
	UploadRaw UploadKind = iota
	// UploadMultipart: имя зашито в псевдо-multipart заголовок тела.
	UploadMultipart
)

// UploadResult возвращается после успешной загрузки.
type UploadResult struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	// Generated выставляется, если имя не пришло от клиента и было синтезировано.
	Generated bool `json:"generated"`
}
