package ports

import (
	"context"

	"odyssey/internal/model"
)

// PageFetcher : one GET against the paginated search API
type PageFetcher interface {
	Fetch(ctx context.Context, request model.PageRequest) (*model.Page, error)
}

// Aggregator : deduplicated result of a set of paginated searches
type Aggregator interface {
	Aggregate(ctx context.Context, requests []model.PageRequest) (*model.AggregateResult, error)
}
