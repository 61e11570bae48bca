package pagination

import (
	"strconv"

	svcErr "github.com/trailnet/trailnet-backend/internal/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Params is the validated pagination state for offset-based listings.
// Limit 0 is a sentinel meaning "no pagination, return everything".
type Params struct {
	Page  int
	Limit int
}

// Parse validates raw page/limit query values. Empty strings fall back
// to the defaults; anything that is not an integer is an invalid query.
func Parse(pageStr, limitStr string) (Params, error) {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}

	if pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return Params{}, svcErr.ErrInvalidQuery
		}
		p.Page = page
	}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return Params{}, svcErr.ErrInvalidQuery
		}
		p.Limit = limit
	}

	return p, nil
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Unpaginated reports whether the limit-0 sentinel is in effect.
func (p Params) Unpaginated() bool {
	return p.Limit == 0
}

// TotalPages computes the page count for a result set. An empty result
// set still has one (empty) page so that page 1 never overflows.
func (p Params) TotalPages(total int64) int {
	if p.Unpaginated() || total == 0 {
		return 1
	}
	pages := int(total) / p.Limit
	if int(total)%p.Limit != 0 {
		pages++
	}
	return pages
}
