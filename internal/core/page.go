// AngelaMos | 2026
// page.go

package core

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request. Use PageFromQuery or Clamp before
// handing it to a query.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

func PageFromQuery(r *http.Request) Page {
	return Page{
		Number: queryInt(r, "page"),
		Size:   queryInt(r, "page_size"),
	}.Clamp()
}

// queryInt is 0 when the parameter is absent or not a number.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func (p Page) Clamp() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	switch {
	case p.Size < 1:
		p.Size = DefaultPageSize
	case p.Size > MaxPageSize:
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
