package models

import "testing"

func TestOrderStatusTransitionTable(t *testing.T) {
	allowed := map[[2]OrderStatus]bool{
		{OrderStatusPending, OrderStatusProcessing}:   true,
		{OrderStatusPending, OrderStatusCancelled}:    true,
		{OrderStatusProcessing, OrderStatusShipped}:   true,
		{OrderStatusProcessing, OrderStatusCancelled}: true,
		{OrderStatusShipped, OrderStatusDelivered}:    true,
	}

	all := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]OrderStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Fatalf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestOrderStatusCancelOnlyOnce(t *testing.T) {
	status := OrderStatusPending
	for _, next := range []OrderStatus{OrderStatusProcessing, OrderStatusCancelled} {
		if !status.CanTransitionTo(next) {
			t.Fatalf("expected %s -> %s to be allowed", status, next)
		}
		status = next
	}

	if status.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("expected a second cancellation to be rejected")
	}
	for _, next := range []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered} {
		if status.CanTransitionTo(next) {
			t.Fatalf("expected cancelled -> %s to be rejected", next)
		}
	}
}

func TestOrderStatusTerminalStates(t *testing.T) {
	if !OrderStatusDelivered.IsTerminal() {
		t.Fatal("expected delivered to be terminal")
	}
	if !OrderStatusCancelled.IsTerminal() {
		t.Fatal("expected cancelled to be terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Fatal("expected pending not to be terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, ok := ParseOrderStatus("shipped")
	if !ok || status != OrderStatusShipped {
		t.Fatalf("expected shipped, got %q ok=%v", status, ok)
	}

	if _, ok := ParseOrderStatus("refunded"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, ok := ParseOrderStatus(""); ok {
		t.Fatal("expected empty status to be rejected")
	}
}
