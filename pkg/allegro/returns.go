package allegro

import (
	"context"
	"fmt"
	"time"
)

// Customer return statuses relevant to refunding.
const (
	ReturnStatusDelivered          = "PARCEL_DELIVERED"
	ReturnStatusAccepted           = "ACCEPTED"
	ReturnStatusCommissionRefunded = "COMMISSION_REFUNDED"
	ReturnStatusFinished           = "FINISHED"
)

// refundableStatuses are the return states in which a payment refund may be
// initiated.
var refundableStatuses = map[string]bool{
	ReturnStatusDelivered: true,
	ReturnStatusAccepted:  true,
}

// CustomerReturn is a buyer's parcel return.
type CustomerReturn struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Items     []struct {
		OfferID  string `json:"offerId"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Refund struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"refund"`
}

// GetCustomerReturn fetches one customer return by id.
func (c *Client) GetCustomerReturn(ctx context.Context, returnID string) (*CustomerReturn, error) {
	var ret CustomerReturn
	if err := c.get(ctx, "customer_returns", "/order/customer-returns/"+returnID, nil, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// ValidateReturnForRefund reports whether a refund may be initiated for the
// return, with a reason when it may not.
func ValidateReturnForRefund(ret *CustomerReturn) (bool, string) {
	switch {
	case ret == nil:
		return false, "return not loaded"
	case ret.Status == ReturnStatusCommissionRefunded || ret.Status == ReturnStatusFinished:
		return false, "return already refunded"
	case !refundableStatuses[ret.Status]:
		return false, fmt.Sprintf("return status %q is not refundable", ret.Status)
	default:
		return true, ""
	}
}

// RefundStatus is the state of an initiated refund.
type RefundStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Value  Money  `json:"value"`
}

// InitiateRefund starts a payment refund for a delivered customer return.
// The return must pass ValidateReturnForRefund first; the server enforces
// the same rule and answers 422 otherwise.
func (c *Client) InitiateRefund(ctx context.Context, returnID string) (*RefundStatus, error) {
	var refund RefundStatus
	err := c.post(ctx, "refund", "/order/customer-returns/"+returnID+"/refund", map[string]any{}, &refund)
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// GetRefundStatus reads back the refund state of a customer return.
func (c *Client) GetRefundStatus(ctx context.Context, returnID string) (*RefundStatus, error) {
	ret, err := c.GetCustomerReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Refund.ID == "" {
		return nil, fmt.Errorf("allegro: return %s has no refund", returnID)
	}
	return &RefundStatus{ID: ret.Refund.ID, Status: ret.Refund.Status}, nil
}
