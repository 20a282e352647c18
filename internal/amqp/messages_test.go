package amqp

import "testing"

func TestTransactionEventRoundTrip(t *testing.T) {
	event := NewDeletedEvent("tx-1", "u1", "2025-08-01", "Coffee", -450)

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Event != EventDeleted || got.ID != "tx-1" || got.UserID != "u1" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.AmountCents != -450 || got.Date != "2025-08-01" {
		t.Fatalf("payload fields lost: %+v", got)
	}
}

func TestTransactionEventFromJSONInvalid(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
