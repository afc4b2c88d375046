package allegro

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Checkout form (order) statuses used when polling for new orders.
const (
	OrderStatusBoughtDirectly = "BOUGHT"
	OrderStatusFilledIn       = "FILLED_IN"
	OrderStatusReadyForProc   = "READY_FOR_PROCESSING"
	OrderStatusCancelled      = "CANCELLED"
)

// Order is an Allegro checkout form.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Buyer  struct {
		ID    string `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	} `json:"buyer"`
	Fulfillment struct {
		Status string `json:"status"`
	} `json:"fulfillment"`
	LineItems []OrderLineItem `json:"lineItems"`
	Summary   struct {
		TotalToPay Money `json:"totalToPay"`
	} `json:"summary"`
	Delivery struct {
		Method struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"method"`
		Cost Money `json:"cost"`
	} `json:"delivery"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderLineItem is one purchased offer within an order.
type OrderLineItem struct {
	ID    string `json:"id"`
	Offer struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		External struct {
			ID string `json:"id"`
		} `json:"external"`
	} `json:"offer"`
	Quantity int       `json:"quantity"`
	Price    Money     `json:"price"`
	BoughtAt time.Time `json:"boughtAt"`
}

// OrderPage is one page of checkout forms.
type OrderPage struct {
	CheckoutForms []Order `json:"checkoutForms"`
	Count         int     `json:"count"`
	TotalCount    int     `json:"totalCount"`
}

// OrderQuery filters the checkout-forms listing.
type OrderQuery struct {
	Offset int
	Limit  int // defaults to 100, the API maximum

	Status            string
	FulfillmentStatus string
	UpdatedAfter      time.Time
	UpdatedBefore     time.Time
	BoughtAfter       time.Time
	BoughtBefore      time.Time
}

func (q OrderQuery) params() url.Values {
	params := url.Values{
		"offset": {strconv.Itoa(q.Offset)},
		"limit":  {strconv.Itoa(q.Limit)},
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.FulfillmentStatus != "" {
		params.Set("fulfillment.status", q.FulfillmentStatus)
	}
	if !q.BoughtAfter.IsZero() {
		params.Set("lineItems.boughtAt.gte", q.BoughtAfter.UTC().Format(time.RFC3339))
	}
	if !q.BoughtBefore.IsZero() {
		params.Set("lineItems.boughtAt.lte", q.BoughtBefore.UTC().Format(time.RFC3339))
	}
	if !q.UpdatedAfter.IsZero() {
		params.Set("updatedAt.gte", q.UpdatedAfter.UTC().Format(time.RFC3339))
	}
	if !q.UpdatedBefore.IsZero() {
		params.Set("updatedAt.lte", q.UpdatedBefore.UTC().Format(time.RFC3339))
	}
	return params
}

// FetchOrders returns one page of the seller's checkout forms.
func (c *Client) FetchOrders(ctx context.Context, q OrderQuery) (*OrderPage, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	var page OrderPage
	if err := c.get(ctx, "orders", "/order/checkout-forms", q.params(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchAllOrders pages through every checkout form matching the query.
func (c *Client) FetchAllOrders(ctx context.Context, q OrderQuery) ([]Order, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}

	var all []Order
	for {
		page, err := c.FetchOrders(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.CheckoutForms...)
		if len(page.CheckoutForms) < q.Limit {
			return all, nil
		}
		q.Offset += q.Limit
	}
}

// FetchOrderDetails returns a single checkout form in full.
func (c *Client) FetchOrderDetails(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.get(ctx, "order_details", "/order/checkout-forms/"+orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
