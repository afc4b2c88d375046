package allegro

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// maxWaybillsPerRequest is the API limit for one tracking query.
const maxWaybillsPerRequest = 20

// WaybillTracking is the event history of one parcel.
type WaybillTracking struct {
	Waybill string `json:"waybill"`
	Events  []struct {
		Type       string    `json:"type"`
		OccurredAt time.Time `json:"occurredAt"`
	} `json:"events"`
}

// ParcelTracking is the response of a carrier tracking query.
type ParcelTracking struct {
	CarrierID string            `json:"carrierId"`
	Waybills  []WaybillTracking `json:"waybills"`
}

// FetchParcelTracking returns tracking events for up to 20 waybills of one
// carrier. An empty waybill list short-circuits without an API call.
func (c *Client) FetchParcelTracking(ctx context.Context, carrierID string, waybills []string) (*ParcelTracking, error) {
	if len(waybills) > maxWaybillsPerRequest {
		return nil, fmt.Errorf("allegro: at most %d waybills per tracking request", maxWaybillsPerRequest)
	}
	if len(waybills) == 0 {
		return &ParcelTracking{CarrierID: carrierID}, nil
	}

	params := url.Values{"waybill": waybills}

	var tracking ParcelTracking
	err := c.get(ctx, "parcel_tracking", "/order/carriers/"+carrierID+"/tracking", params, &tracking)
	if err != nil {
		return nil, err
	}
	return &tracking, nil
}
