package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"odyssey/internal/metrics"
	"odyssey/internal/model"
	"odyssey/internal/ports"

	"golang.org/x/sync/errgroup"
)

// AggregatorService : breadth-first, depth-bounded pagination over a page fetcher.
// Every round is a concurrent batch, the first failing fetch cancels the rest
// of the round and fails the whole call.
type AggregatorService struct {
	fetcher   ports.PageFetcher
	maxDepth  int
	pageDelay time.Duration
	metrics   *metrics.Metrics
}

func NewAggregatorService(fetcher ports.PageFetcher, maxDepth int, pageDelay time.Duration, m *metrics.Metrics) *AggregatorService {
	return &AggregatorService{
		fetcher:   fetcher,
		maxDepth:  maxDepth,
		pageDelay: pageDelay,
		metrics:   m,
	}
}

// Aggregate : follows continuation cursors for at most maxDepth extra rounds and
// returns the places deduplicated by PlaceID in first-seen order
func (s *AggregatorService) Aggregate(ctx context.Context, requests []model.PageRequest) (*model.AggregateResult, error) {
	if s.maxDepth < 0 || s.maxDepth > model.MaxPageChain {
		return nil, fmt.Errorf("[Aggregator] %w: depth %d outside [0, %d]", model.ErrUnsafeDepth, s.maxDepth, model.MaxPageChain)
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("[Aggregator] %w", model.ErrNoPageRequests)
	}

	seen := make(map[string]struct{})
	places := make([]model.Place, 0)

	round := requests
	rounds := 0
	for depth := s.maxDepth; ; depth-- {
		if rounds > 0 && s.pageDelay > 0 {
			if err := sleepContext(ctx, s.pageDelay); err != nil {
				s.metrics.Aggregation("canceled", rounds)
				return nil, fmt.Errorf("[Aggregator] wait for next page: %w", err)
			}
		}

		pages, err := s.fetchRound(ctx, round)
		rounds++
		if err != nil {
			s.metrics.Aggregation("failed", rounds)
			return nil, err
		}

		next := make([]model.PageRequest, 0)
		for i, page := range pages {
			if page.Status != model.StatusOK {
				continue
			}
			for _, place := range page.Places {
				if _, ok := seen[place.PlaceID]; ok {
					continue
				}
				seen[place.PlaceID] = struct{}{}
				places = append(places, place)
			}
			if page.NextCursor != "" {
				next = append(next, round[i].WithCursor(page.NextCursor))
			}
		}

		if depth == 0 || len(next) == 0 {
			break
		}
		round = next
	}

	slog.Debug("aggregation finished", slog.Int("rounds", rounds), slog.Int("places", len(places)))
	s.metrics.Aggregation("ok", rounds)
	return &model.AggregateResult{Places: places, Size: len(places)}, nil
}

// fetchRound : fan-out/fan-in barrier, pages are indexed like requests
func (s *AggregatorService) fetchRound(ctx context.Context, requests []model.PageRequest) ([]*model.Page, error) {
	pages := make([]*model.Page, len(requests))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, request := range requests {
		group.Go(func() error {
			page, err := s.fetcher.Fetch(groupCtx, request)
			if err != nil {
				if errors.Is(err, context.Canceled) && groupCtx.Err() != nil && ctx.Err() == nil {
					s.metrics.Fetch("canceled")
				} else {
					s.metrics.Fetch("error")
				}
				return fmt.Errorf("[Aggregator] %w: %w", model.ErrUpstreamFailure, err)
			}
			if page.HTTPStatus != http.StatusOK {
				s.metrics.Fetch("bad_status")
				return fmt.Errorf("[Aggregator] %w: http status %d", model.ErrUpstreamFailure, page.HTTPStatus)
			}
			if !page.Status.Acceptable() {
				s.metrics.Fetch("bad_domain_status")
				return fmt.Errorf("[Aggregator] %w: status %q", model.ErrUpstreamFailure, page.Status)
			}

			s.metrics.Fetch("ok")
			pages[i] = page
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
