package allegro

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Offer is a seller's offer as returned by /sale/offers. Only the fields the
// sync service consumes are mapped; the rest of the payload is ignored.
type Offer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	External struct {
		ID string `json:"id"`
	} `json:"external"`
	SellingMode struct {
		Price Money `json:"price"`
	} `json:"sellingMode"`
	Stock struct {
		Available int    `json:"available"`
		Unit      string `json:"unit"`
	} `json:"stock"`
	Publication struct {
		Status string `json:"status"`
	} `json:"publication"`
}

// Money is Allegro's amount/currency pair. Amount stays a string; callers
// that do arithmetic parse it into their own fixed-point type.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// OfferPage is one page of the seller's offers.
type OfferPage struct {
	Offers     []Offer `json:"offers"`
	Count      int     `json:"count"`
	TotalCount int     `json:"totalCount"`
}

// OfferQuery selects which offers to fetch.
type OfferQuery struct {
	Offset int
	Limit  int // defaults to 100, the API maximum

	// PublicationStatus filters by publication.status (ACTIVE, ENDED, ...).
	PublicationStatus string
}

// FetchOffers returns one page of the seller's offers.
func (c *Client) FetchOffers(ctx context.Context, q OfferQuery) (*OfferPage, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	params := url.Values{
		"offset": {strconv.Itoa(q.Offset)},
		"limit":  {strconv.Itoa(q.Limit)},
	}
	if q.PublicationStatus != "" {
		params.Set("publication.status", q.PublicationStatus)
	}

	var page OfferPage
	if err := c.get(ctx, "offers", "/sale/offers", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchAllOffers pages through the whole offer list.
func (c *Client) FetchAllOffers(ctx context.Context, q OfferQuery) ([]Offer, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}

	var all []Offer
	for {
		page, err := c.FetchOffers(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Offers...)
		if len(page.Offers) < q.Limit {
			return all, nil
		}
		q.Offset += q.Limit
	}
}

// ListingPage is one page of the public marketplace listing for a product
// search, used to monitor competing offers.
type ListingPage struct {
	Items struct {
		Promoted []ListingOffer `json:"promoted"`
		Regular  []ListingOffer `json:"regular"`
	} `json:"items"`
	SearchMeta struct {
		AvailableCount int `json:"availableCount"`
	} `json:"searchMeta"`
}

// ListingOffer is a competitor's offer in the public listing.
type ListingOffer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Seller       struct{ ID string } `json:"seller"`
	SellingMode  struct{ Price Money } `json:"sellingMode"`
	Vendor       struct{ ID string } `json:"vendor"`
	DeliveryInfo struct {
		LowestPrice Money `json:"lowestPrice"`
	} `json:"delivery"`
}

// FetchProductListing searches the public listing by EAN (preferred) or
// free-text phrase.
func (c *Client) FetchProductListing(ctx context.Context, ean, phrase string, page int) (*ListingPage, error) {
	if ean == "" && phrase == "" {
		return nil, fmt.Errorf("allegro: listing query needs an ean or a phrase")
	}
	if page <= 0 {
		page = 1
	}
	params := url.Values{"page": {strconv.Itoa(page)}}
	if ean != "" {
		params.Set("ean", ean)
	} else {
		params.Set("phrase", phrase)
	}

	var listing ListingPage
	if err := c.get(ctx, "listing", "/offers/listing", params, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetOfferDetails fetches one product-offer in full.
func (c *Client) GetOfferDetails(ctx context.Context, offerID string) (map[string]any, error) {
	var details map[string]any
	if err := c.get(ctx, "offer_details", "/sale/product-offers/"+offerID, nil, &details); err != nil {
		return nil, err
	}
	return details, nil
}
