package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"odyssey/internal/model"
	"odyssey/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func facet(placeType string) model.PageRequest {
	return model.PageRequest{Query: url.Values{"type": {placeType}}}
}

func requestFor(placeType, cursor string) interface{} {
	return mock.MatchedBy(func(r model.PageRequest) bool {
		return r.Query.Get("type") == placeType && r.Cursor == cursor
	})
}

func place(id, name string) model.Place {
	return model.Place{PlaceID: id, Name: name}
}

func page(status model.DomainStatus, cursor string, places ...model.Place) *model.Page {
	return &model.Page{HTTPStatus: http.StatusOK, Status: status, NextCursor: cursor, Places: places}
}

func placeIDs(places []model.Place) []string {
	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.PlaceID)
	}
	return ids
}

func TestAggregatorService_FollowsCursorsUntilExhausted(t *testing.T) {
	fetcher := new(MockPageFetcher)
	fetcher.On("Fetch", mock.Anything, requestFor("restaurant", "")).
		Return(page(model.StatusOK, "c1", place("p1", "Diner"), place("p2", "Bistro")), nil).Once()
	fetcher.On("Fetch", mock.Anything, requestFor("museum", "")).
		Return(page(model.StatusZeroResults, ""), nil).Once()
	fetcher.On("Fetch", mock.Anything, requestFor("restaurant", "c1")).
		Return(page(model.StatusOK, "", place("p3", "Cafe")), nil).Once()

	aggregator := service.NewAggregatorService(fetcher, 2, 0, nil)

	result, err := aggregator.Aggregate(context.Background(), []model.PageRequest{facet("restaurant"), facet("museum")})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Size)
	assert.Equal(t, []string{"p1", "p2", "p3"}, placeIDs(result.Places))

	fetcher.AssertNumberOfCalls(t, "Fetch", 3)
	fetcher.AssertExpectations(t)
}

func TestAggregatorService_DeduplicatesAcrossFacets(t *testing.T) {
	fetcher := new(MockPageFetcher)
	fetcher.On("Fetch", mock.Anything, requestFor("restaurant", "")).
		Return(page(model.StatusOK, "", place("X", "first"), place("p1", "Diner")), nil)
	fetcher.On("Fetch", mock.Anything, requestFor("bar", "")).
		Return(page(model.StatusOK, "", place("p2", "Pub"), place("X", "second")), nil)

	aggregator := service.NewAggregatorService(fetcher, 3, 0, nil)

	result, err := aggregator.Aggregate(context.Background(), []model.PageRequest{facet("restaurant"), facet("bar")})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "p1", "p2"}, placeIDs(result.Places))
	assert.Equal(t, "first", result.Places[0].Name)
	assert.Equal(t, 3, result.Size)
}

func TestAggregatorService_ZeroDepthNeverFollowsCursor(t *testing.T) {
	fetcher := new(MockPageFetcher)
	fetcher.On("Fetch", mock.Anything, requestFor("park", "")).
		Return(page(model.StatusOK, "more", place("p1", "Green")), nil).Once()

	aggregator := service.NewAggregatorService(fetcher, 0, 0, nil)

	result, err := aggregator.Aggregate(context.Background(), []model.PageRequest{facet("park")})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Size)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestAggregatorService_StopsAtDepth(t *testing.T) {
	fetcher := new(MockPageFetcher)
	fetcher.On("Fetch", mock.Anything, requestFor("park", "")).
		Return(page(model.StatusOK, "c1", place("p1", "A")), nil).Once()
	fetcher.On("Fetch", mock.Anything, requestFor("park", "c1")).
		Return(page(model.StatusOK, "c2", place("p2", "B")), nil).Once()

	aggregator := service.NewAggregatorService(fetcher, 1, 0, nil)

	result, err := aggregator.Aggregate(context.Background(), []model.PageRequest{facet("park")})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, placeIDs(result.Places))
	fetcher.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestAggregatorService_AbortsWholeAggregation(t *testing.T) {
	tests := []struct {
		name   string
		second *model.Page
		err    error
	}{
		{
			name:   "domain status outside OK and ZERO_RESULTS",
			second: page("INVALID_REQUEST", ""),
		},
		{
			name:   "non-200 http status",
			second: &model.Page{HTTPStatus: http.StatusBadGateway},
		},
		{
			name: "transport error",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(MockPageFetcher)
			fetcher.On("Fetch", mock.Anything, requestFor("restaurant", "")).
				Return(page(model.StatusOK, "c1", place("p1", "Diner")), nil)
			fetcher.On("Fetch", mock.Anything, requestFor("museum", "")).
				Return(page(model.StatusOK, "", place("p2", "Louvre")), nil)
			fetcher.On("Fetch", mock.Anything, requestFor("restaurant", "c1")).
				Return(tt.second, tt.err)

			aggregator := service.NewAggregatorService(fetcher, 3, 0, nil)

			result, err := aggregator.Aggregate(context.Background(), []model.PageRequest{facet("restaurant"), facet("museum")})
			assert.ErrorIs(t, err, model.ErrUpstreamFailure)
			assert.Nil(t, result)
		})
	}
}

func TestAggregatorService_RejectsUnsafeInput(t *testing.T) {
	for _, depth := range []int{-1, model.MaxPageChain + 1, 100} {
		fetcher := new(MockPageFetcher)
		aggregator := service.NewAggregatorService(fetcher, depth, 0, nil)

		result, err := aggregator.Aggregate(context.Background(), []model.PageRequest{facet("park")})
		assert.ErrorIs(t, err, model.ErrUnsafeDepth, "depth %d", depth)
		assert.Nil(t, result)
		fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	}

	fetcher := new(MockPageFetcher)
	_, err := service.NewAggregatorService(fetcher, 2, 0, nil).Aggregate(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrNoPageRequests)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

// funcFetcher : page fetcher backed by a function, for tests that need to block
type funcFetcher func(ctx context.Context, request model.PageRequest) (*model.Page, error)

func (f funcFetcher) Fetch(ctx context.Context, request model.PageRequest) (*model.Page, error) {
	return f(ctx, request)
}

func TestAggregatorService_FailureCancelsRound(t *testing.T) {
	var canceled atomic.Bool

	fetcher := funcFetcher(func(ctx context.Context, request model.PageRequest) (*model.Page, error) {
		if request.Query.Get("type") == "broken" {
			return page("OVER_QUERY_LIMIT", ""), nil
		}
		select {
		case <-ctx.Done():
			canceled.Store(true)
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return page(model.StatusOK, ""), nil
		}
	})

	aggregator := service.NewAggregatorService(fetcher, 1, 0, nil)

	start := time.Now()
	_, err := aggregator.Aggregate(context.Background(), []model.PageRequest{facet("slow"), facet("broken")})
	assert.ErrorIs(t, err, model.ErrUpstreamFailure)
	assert.True(t, canceled.Load(), "in-flight fetch must observe cancellation")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAggregatorService_PageDelayRespectsContext(t *testing.T) {
	fetcher := new(MockPageFetcher)
	fetcher.On("Fetch", mock.Anything, requestFor("park", "")).
		Return(page(model.StatusOK, "c1", place("p1", "A")), nil).Once()

	aggregator := service.NewAggregatorService(fetcher, 2, time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := aggregator.Aggregate(ctx, []model.PageRequest{facet("park")})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, result)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}
