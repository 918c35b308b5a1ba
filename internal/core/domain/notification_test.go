package domain

import (
	"errors"
	"testing"
)

func TestDecodeNotification(t *testing.T) {
	ev, err := DecodeNotification([]byte(`{"order_id": 42, "status": "shipped"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.OrderID != 42 || ev.Status != OrderShipped {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if !ev.Status.Known() {
		t.Fatalf("shipped must be a known status")
	}
}

func TestDecodeNotification_UnknownStatusKept(t *testing.T) {
	ev, err := DecodeNotification([]byte(`{"order_id": 1, "status": "returned"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Status != "returned" || ev.Status.Known() {
		t.Fatalf("unexpected status handling: %+v", ev)
	}
}

func TestDecodeNotification_Malformed(t *testing.T) {
	payloads := []string{
		`not-json`,
		`[]`,
		`{"status": "shipped"}`,
		`{"order_id": 3}`,
		`{"order_id": 3, "status": ""}`,
		`{"order_id": "abc", "status": "shipped"}`,
	}
	for _, p := range payloads {
		if _, err := DecodeNotification([]byte(p)); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("payload %q: expected ErrMalformedPayload, got %v", p, err)
		}
	}
}
