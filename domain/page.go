package domain

// Pagination describes one page of an ordered result set. It holds no items,
// callers pair it with whatever slice they fetched using Offset and PerPage.
type Pagination struct {
	Number   int
	PerPage  int
	Total    int
	NumPages int
}

// Paginate computes page metadata. The first page always exists, even for an
// empty result. Numbers below 1 are clamped to 1; numbers past the last page
// are kept so the caller fetches nothing.
func Paginate(total, number, perPage int) Pagination {
	if perPage < 1 {
		perPage = 1
	}
	if number < 1 {
		number = 1
	}
	if total < 0 {
		total = 0
	}
	numPages := (total + perPage - 1) / perPage
	if numPages < 1 {
		numPages = 1
	}
	return Pagination{
		Number:   number,
		PerPage:  perPage,
		Total:    total,
		NumPages: numPages,
	}
}

func (p Pagination) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// InRange reports whether the page can hold any items.
func (p Pagination) InRange() bool {
	return p.Offset() < p.Total
}

func (p Pagination) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Pagination) HasPrevious() bool {
	return p.Number > 1
}

func (p Pagination) NextNumber() int {
	if !p.HasNext() {
		return 0
	}
	return p.Number + 1
}

func (p Pagination) PreviousNumber() int {
	if !p.HasPrevious() {
		return 0
	}
	if p.Number > p.NumPages {
		return p.NumPages
	}
	return p.Number - 1
}
