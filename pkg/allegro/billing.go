package allegro

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// BillingEntry is one ledger line from /billing/billing-entries: a sale
// commission, a listing fee, a refund of either, and so on.
type BillingEntry struct {
	ID   string `json:"id"`
	Type struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"type"`
	Offer struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"offer"`
	Order struct {
		ID string `json:"id"`
	} `json:"order"`
	Value      Money     `json:"value"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BillingType describes one fee category.
type BillingType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BillingQuery filters billing entries.
type BillingQuery struct {
	Offset int
	Limit  int // defaults to 100, the API maximum

	OrderID       string
	TypeIDs       []string
	OccurredAfter time.Time
}

// FetchBillingEntries returns one page of billing entries, newest first.
func (c *Client) FetchBillingEntries(ctx context.Context, q BillingQuery) ([]BillingEntry, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	params := url.Values{
		"offset": {strconv.Itoa(q.Offset)},
		"limit":  {strconv.Itoa(q.Limit)},
	}
	if q.OrderID != "" {
		params.Set("order.id", q.OrderID)
	}
	for _, id := range q.TypeIDs {
		params.Add("type.id", id)
	}
	if !q.OccurredAfter.IsZero() {
		params.Set("occurredAt.gte", q.OccurredAfter.UTC().Format(time.RFC3339))
	}

	var page struct {
		BillingEntries []BillingEntry `json:"billingEntries"`
	}
	if err := c.get(ctx, "billing_entries", "/billing/billing-entries", params, &page); err != nil {
		return nil, err
	}
	return page.BillingEntries, nil
}

// FetchBillingTypes returns the fee catalogue.
func (c *Client) FetchBillingTypes(ctx context.Context) ([]BillingType, error) {
	var types []BillingType
	if err := c.get(ctx, "billing_types", "/billing/billing-types", nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// OrderBillingSummary aggregates the billing entries of one order by type.
type OrderBillingSummary struct {
	OrderID string
	Entries []BillingEntry

	// TotalByType maps the fee type id to the summed amount in grosz
	// (1/100 PLN). Negative values are charges, positive are refunds.
	TotalByType map[string]int64
}

// GetOrderBillingSummary fetches and aggregates all billing entries for one
// order.
func (c *Client) GetOrderBillingSummary(ctx context.Context, orderID string) (*OrderBillingSummary, error) {
	entries, err := c.FetchBillingEntries(ctx, BillingQuery{OrderID: orderID})
	if err != nil {
		return nil, err
	}

	summary := &OrderBillingSummary{
		OrderID:     orderID,
		Entries:     entries,
		TotalByType: make(map[string]int64),
	}
	for _, entry := range entries {
		summary.TotalByType[entry.Type.ID] += parseGrosz(entry.Value.Amount)
	}
	return summary, nil
}

// parseGrosz converts a decimal amount string ("-12.34") into grosz. Parse
// failures count as zero; the summary is informational, not accounting.
func parseGrosz(amount string) int64 {
	negative := false
	if len(amount) > 0 && amount[0] == '-' {
		negative = true
		amount = amount[1:]
	}

	var zloty, grosz int64
	seen := 0
	frac := false
	for _, r := range amount {
		switch {
		case r >= '0' && r <= '9':
			if frac {
				if seen < 2 {
					grosz = grosz*10 + int64(r-'0')
					seen++
				}
			} else {
				zloty = zloty*10 + int64(r-'0')
			}
		case r == '.' && !frac:
			frac = true
		default:
			return 0
		}
	}
	if frac && seen == 1 {
		grosz *= 10
	}

	total := zloty*100 + grosz
	if negative {
		total = -total
	}
	return total
}
