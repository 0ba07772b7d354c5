// Package byterange разбирает заголовок Range для одного диапазона и
// решает, каким статусом и заголовками отвечать.
//
// Поддерживается только форма "bytes=<start>-<end>" с необязательным end.
// Мульти-диапазоны и suffix-диапазоны ("bytes=-500") считаются некорректными.
package byterange

import (
	"fmt"
	"strconv"
	"strings"
)

const unitPrefix = "bytes="

// ByteRange задаёт закрытый интервал [Start, End] файла размером Total.
// Для непустого файла 0 <= Start <= End < Total.
type ByteRange struct {
	Start int64
	End   int64
	Total int64
}

// Whole возвращает диапазон на весь файл. Для пустого файла End == -1 и Length() == 0.
func Whole(total int64) ByteRange {
	return ByteRange{Start: 0, End: total - 1, Total: total}
}

// Length возвращает количество байт в диапазоне (оно же Content-Length).
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange форматирует значение заголовка Content-Range.
func (r ByteRange) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Total)
}

// Kind различает варианты результата разбора.
type Kind int

const (
	NoRange Kind = iota
	Satisfiable
	Unsatisfiable
	Malformed
)

func (k Kind) String() string {
	switch k {
	case NoRange:
		return "none"
	case Satisfiable:
		return "satisfiable"
	case Unsatisfiable:
		return "unsatisfiable"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Outcome возвращается из Parse. Range заполнен только для Satisfiable,
// Total известен для всех вариантов кроме Malformed.
type Outcome struct {
	Kind  Kind
	Range ByteRange
	Total int64
}

// Parse разбирает значение заголовка Range относительно размера файла total.
// Пустая строка означает отсутствие заголовка. Функция не делает ввода-вывода и не паникует.
func Parse(header string, total int64) Outcome {
	if header == "" {
		return Outcome{Kind: NoRange, Total: total}
	}
	malformed := Outcome{Kind: Malformed}

	spec, ok := strings.CutPrefix(header, unitPrefix)
	if !ok || strings.Contains(spec, ",") {
		return malformed
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return malformed
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	// suffix-диапазоны не поддерживаются
	start, ok := parseOffset(startStr)
	if !ok {
		return malformed
	}

	if start >= total {
		return Outcome{Kind: Unsatisfiable, Total: total}
	}

	end := total - 1
	if endStr != "" {
		e, ok := parseOffset(endStr)
		if !ok {
			return malformed
		}
		end = min(e, total-1)
	}
	if end < start {
		return malformed
	}

	return Outcome{
		Kind:  Satisfiable,
		Range: ByteRange{Start: start, End: end, Total: total},
		Total: total,
	}
}

// parseOffset принимает только десятичные цифры: знаки и пробелы внутри числа отвергаются.
func parseOffset(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
