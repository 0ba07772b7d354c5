package mediahttp

import (
	"encoding/json"
	"net/http"
)

// healthStats это payload ответа /health.
type healthStats struct {
	OK         bool  `json:"ok"`
	TotalBytes int64 `json:"total_bytes"`
	Files      int   `json:"files"`
}

// health возвращает агрегированную статистику по корню.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	u, err := s.files.Usage(r.Context())
	if err != nil {
		s.logger.Error("usage failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(healthStats{
		OK:         true,
		TotalBytes: u.TotalBytes,
		Files:      u.Files,
	})
	if err != nil {
		s.logger.Warn("health write failed", "err", err)
	}
}
