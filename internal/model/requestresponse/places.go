package requestresponse

import "odyssey/internal/model"

// NearbyPlacesResponse : deduplicated search result
type NearbyPlacesResponse struct {
	Places []model.Place `json:"places"`
	Size   int           `json:"size" example:"3"`
}
