package domain

import (
	"encoding/json"
	"fmt"
)

// OrderStatus is the order state reported by the server. Values outside the
// known set are kept verbatim.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

// Known reports whether s is one of the statuses the server's order model defines.
func (s OrderStatus) Known() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// NotificationEvent is an immutable order-status fact pushed by the server.
type NotificationEvent struct {
	OrderID int64       `json:"order_id"`
	Status  OrderStatus `json:"status"`
}

type wireNotification struct {
	OrderID *int64  `json:"order_id"`
	Status  *string `json:"status"`
}

// DecodeNotification parses a push payload. Payloads that are not JSON objects
// or lack order_id or status yield ErrMalformedPayload.
func DecodeNotification(payload []byte) (NotificationEvent, error) {
	var w wireNotification
	if err := json.Unmarshal(payload, &w); err != nil {
		return NotificationEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if w.OrderID == nil {
		return NotificationEvent{}, fmt.Errorf("%w: missing order_id", ErrMalformedPayload)
	}
	if w.Status == nil || *w.Status == "" {
		return NotificationEvent{}, fmt.Errorf("%w: missing status", ErrMalformedPayload)
	}
	return NotificationEvent{OrderID: *w.OrderID, Status: OrderStatus(*w.Status)}, nil
}
