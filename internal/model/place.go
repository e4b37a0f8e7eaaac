package model

import "net/url"

// DomainStatus : status field reported by the places API inside a 200 response
type DomainStatus string

const (
	StatusOK          DomainStatus = "OK"
	StatusZeroResults DomainStatus = "ZERO_RESULTS"
)

// Acceptable : only OK and ZERO_RESULTS keep an aggregation alive
func (s DomainStatus) Acceptable() bool {
	return s == StatusOK || s == StatusZeroResults
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place : deduplicated unit of aggregation, keyed by PlaceID
type Place struct {
	PlaceID    string   `json:"place_id"`
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	Location   Location `json:"location"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceLevel *int     `json:"price_level,omitempty"`
	Address    string   `json:"address,omitempty"`
}

// PageRequest : one upstream query plus an optional continuation cursor.
// Query never carries credentials, the fetcher adds them.
type PageRequest struct {
	Query  url.Values
	Cursor string
}

// WithCursor : follow-up request reusing the original query
func (p PageRequest) WithCursor(cursor string) PageRequest {
	query := make(url.Values, len(p.Query))
	for k, v := range p.Query {
		query[k] = append([]string(nil), v...)
	}
	return PageRequest{Query: query, Cursor: cursor}
}

// Page : normalized shape of one upstream response
type Page struct {
	HTTPStatus int
	Status     DomainStatus
	Places     []Place
	NextCursor string
}

// AggregateResult : places in first-seen order and their count
type AggregateResult struct {
	Places []Place `json:"places"`
	Size   int     `json:"size"`
}
