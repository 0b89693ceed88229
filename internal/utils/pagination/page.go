package pagination

import "strconv"

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params is offset pagination state for the feed. Limit is always clamped
// server-side to [1, MaxLimit] regardless of client input.
type Params struct {
	Page  int
	Limit int
}

// Parse builds Params from raw query values, falling back to page 1 /
// DefaultLimit on anything unparseable.
func Parse(pageStr, limitStr string) Params {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}.Clamp()
}

// Clamp enforces the server-side bounds.
func (p Params) Clamp() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}
