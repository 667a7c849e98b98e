package shared

import (
	"net/http"
	"strconv"

	"staffleave/internal/domain/apperr"
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset from the query. A limit above
// maxLimit is clamped; non-numeric or negative values are rejected.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) (Pagination, error) {
	p := Pagination{Limit: defaultLimit}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Pagination{}, apperr.Validation("limit", "limit must be a positive integer")
		}
		p.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Pagination{}, apperr.Validation("offset", "offset must be zero or a positive integer")
		}
		p.Offset = n
	}
	p.Limit = min(p.Limit, maxLimit)
	return p, nil
}
