package mediahttp

import (
	"encoding/json"
	"net/http"

	"github.com/sir_venger/rangeserve/internal/usecase/mediasvc"
	"github.com/sir_venger/rangeserve/pkg/httperrors"
	"github.com/sir_venger/rangeserve/pkg/mediaproto"
)

// upload принимает тело запроса как файл и перенаправляет браузер обратно на индекс.
// В теле 303 лежит JSON с итоговым именем для неинтерактивных клиентов.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	res, err := s.files.Upload(r.Context(), mediasvc.UploadRequest{
		Body:          r.Body,
		ContentLength: r.ContentLength,
		ContentType:   r.Header.Get("Content-Type"),
		FileName:      r.Header.Get(mediaproto.HeaderFileName),
	})
	if err != nil {
		s.logger.Warn("upload rejected", "err", err)
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Location", "/")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusSeeOther)
	_ = json.NewEncoder(w).Encode(res)
}
