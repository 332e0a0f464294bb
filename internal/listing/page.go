// Package listing turns untrusted query parameters into bounded, deterministic
// listing queries and the pagination envelope returned with their results.
package listing

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	// MaxLimit applies when the caller passes a non-positive cap.
	MaxLimit = 100
)

// Page is a bounded pagination window. Page >= 1 and Limit > 0 always hold.
type Page struct {
	Page  int
	Limit int
}

// Skip is the number of rows preceding the window.
func (p Page) Skip() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads page/limit query values. Absent, malformed or non-positive
// values fall back to the defaults; limit is clamped to maxLimit and page to
// the largest value whose Skip does not overflow.
func ParsePage(rawPage, rawLimit string, maxLimit int) Page {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	p := Page{
		Page:  positiveIntOr(rawPage, DefaultPage),
		Limit: positiveIntOr(rawLimit, DefaultLimit),
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	// Keep Skip representable for absurd page numbers.
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

func positiveIntOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Envelope is the pagination block of a listing response.
type Envelope struct {
	Current int  `json:"current"`
	Limit   int  `json:"limit"`
	Items   int  `json:"items"`
	Pages   int  `json:"pages"`
	Prev    *int `json:"prev"`
	Next    *int `json:"next"`
}

// NewEnvelope derives the envelope for a page given the total match count.
// Prev is set iff Current > 1, Next iff Current < Pages.
func NewEnvelope(p Page, total int) Envelope {
	pages := 0
	if total > 0 && p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	env := Envelope{
		Current: p.Page,
		Limit:   p.Limit,
		Items:   total,
		Pages:   pages,
	}
	if p.Page > 1 {
		prev := p.Page - 1
		env.Prev = &prev
	}
	if p.Page < pages {
		next := p.Page + 1
		env.Next = &next
	}
	return env
}

// Result pairs a page of items with its envelope.
type Result[T any] struct {
	Data       []T      `json:"data"`
	Pagination Envelope `json:"pagination"`
}

func NewResult[T any](items []T, p Page, total int) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Data: items, Pagination: NewEnvelope(p, total)}
}
