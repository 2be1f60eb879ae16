package pagination

// Params is a 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// Meta is the pagination envelope returned with every listing.
type Meta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

const maxLimit = 100

// New normalises page and limit, falling back to defaultLimit.
func New(page, limit, defaultLimit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset is the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta builds the envelope for total matching rows.
func (p Params) Meta(total int64) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     p.Page < totalPages,
		HasPrev:     p.Page > 1,
	}
}
