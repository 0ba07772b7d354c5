package byterange

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Plan описывает ответ: статус с заголовками и отдаваемый интервал.
// Body == nil означает, что тело отправлять нельзя.
type Plan struct {
	Status int
	Header http.Header
	Body   *ByteRange
}

// PlanResponse выбирает статус и заголовки по результату Parse.
// Content-Length выставляет вызывающий по Body.Length().
func PlanResponse(o Outcome) Plan {
	h := http.Header{}

	switch o.Kind {
	case NoRange:
		whole := Whole(o.Total)
		h.Set("Accept-Ranges", "bytes")
		return Plan{Status: http.StatusOK, Header: h, Body: &whole}
	case Satisfiable:
		r := o.Range
		h.Set("Accept-Ranges", "bytes")
		h.Set("Content-Range", r.ContentRange())
		return Plan{Status: http.StatusPartialContent, Header: h, Body: &r}
	case Unsatisfiable:
		// Accept-Ranges для 416 намеренно не отдаём.
		h.Set("Content-Range", "bytes */"+strconv.FormatInt(o.Total, 10))
		return Plan{Status: http.StatusRequestedRangeNotSatisfiable, Header: h}
	default:
		return Plan{Status: http.StatusBadRequest, Header: h}
	}
}

var errBadContentRange = errors.New("invalid Content-Range")

// ParseContentRange разбирает ответный заголовок Content-Range:
// "bytes <start>-<end>/<total>" или "bytes */<total>" (тогда ok == false).
func ParseContentRange(v string) (r ByteRange, ok bool, err error) {
	spec, found := strings.CutPrefix(strings.TrimSpace(v), "bytes ")
	if !found {
		return ByteRange{}, false, errBadContentRange
	}
	rng, totalStr, found := strings.Cut(spec, "/")
	if !found {
		return ByteRange{}, false, errBadContentRange
	}
	total, good := parseOffset(totalStr)
	if !good {
		return ByteRange{}, false, errBadContentRange
	}
	if rng == "*" {
		return ByteRange{Total: total}, false, nil
	}

	startStr, endStr, found := strings.Cut(rng, "-")
	if !found {
		return ByteRange{}, false, errBadContentRange
	}
	start, good1 := parseOffset(startStr)
	end, good2 := parseOffset(endStr)
	if !good1 || !good2 || end < start || end >= total {
		return ByteRange{}, false, errBadContentRange
	}

	return ByteRange{Start: start, End: end, Total: total}, true, nil
}
