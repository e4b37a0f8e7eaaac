package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"odyssey/config"
	"odyssey/internal/model"
)

// PlacesClient : page fetcher for the Google Places nearby search
type PlacesClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewPlacesClient(cfg *config.PlacesConfig) *PlacesClient {
	return &PlacesClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

type placesResponse struct {
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
	NextPageToken string        `json:"next_page_token"`
	Results       []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Types    []string `json:"types"`
	Vicinity string   `json:"vicinity"`
	Geometry struct {
		Location model.Location `json:"location"`
	} `json:"geometry"`
	Rating     *float64 `json:"rating"`
	PriceLevel *int     `json:"price_level"`
}

// Fetch : one GET for the request. A non-200 answer is returned as a page
// with its HTTPStatus set, only transport and decode failures are errors.
func (c *PlacesClient) Fetch(ctx context.Context, request model.PageRequest) (*model.Page, error) {
	query := url.Values{}
	for k, v := range request.Query {
		query[k] = v
	}
	if request.Cursor != "" {
		query.Set("pagetoken", request.Cursor)
	}
	query.Set("key", c.apiKey)

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("[PlacesClient] build request: %w", err)
	}

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("[PlacesClient] request failed: %w", redactKey(err))
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, response.Body)
		return &model.Page{HTTPStatus: response.StatusCode}, nil
	}

	var body placesResponse
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("[PlacesClient] decode response: %w", err)
	}

	page := &model.Page{
		HTTPStatus: response.StatusCode,
		Status:     model.DomainStatus(body.Status),
		NextCursor: body.NextPageToken,
		Places:     make([]model.Place, 0, len(body.Results)),
	}
	for _, result := range body.Results {
		page.Places = append(page.Places, model.Place{
			PlaceID:    result.PlaceID,
			Name:       result.Name,
			Types:      result.Types,
			Location:   result.Geometry.Location,
			Rating:     result.Rating,
			PriceLevel: result.PriceLevel,
			Address:    result.Vicinity,
		})
	}

	return page, nil
}

// redactKey : url errors carry the full request URL, the api key must not reach the logs
func redactKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
			q := u.Query()
			if q.Has("key") {
				q.Set("key", "REDACTED")
				u.RawQuery = q.Encode()
			}
			return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
		}
	}
	return err
}

// NearbyQuery : query of one nearby search facet. radius is in miles and is
// clamped to the largest radius the search accepts. Coordinates must be finite.
func NearbyQuery(placeType string, lat, lng, radiusMiles float64, keyword string) url.Values {
	meters := radiusMiles * metersPerMile
	if !(meters <= maxRadiusMeters) {
		meters = maxRadiusMeters
	}

	query := url.Values{}
	query.Set("location", fmt.Sprintf("%g,%g", lat, lng))
	query.Set("radius", fmt.Sprintf("%d", int(meters)))
	query.Set("type", placeType)
	if keyword != "" {
		query.Set("keyword", keyword)
	}
	return query
}

const (
	metersPerMile   = 1609.344
	maxRadiusMeters = 50000
)
