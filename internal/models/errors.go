package models

import "errors"

// Ошибки протокола и хранилища. HTTP-слой сопоставляет их со статусами в pkg/httperrors.
var (
	ErrMalformedRange     = errors.New("malformed range")
	ErrUnsatisfiableRange = errors.New("range not satisfiable")
	ErrPathTraversal      = errors.New("path outside root")
	ErrNotFound           = errors.New("file not found")
	ErrIsDirectory        = errors.New("is a directory")
	ErrIO                 = errors.New("i/o failure")
	ErrTruncatedSource    = errors.New("source truncated")
	ErrTooLarge           = errors.New("upload too large")
	ErrInvalidName        = errors.New("invalid file name")
)
