package models

import "time"

// Entry описывает один файл в корне для индексной страницы и health.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}
