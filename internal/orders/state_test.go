package orders

import (
	"testing"
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

func TestCanTransitionMatrix(t *testing.T) {
	all := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusApproved,
		enums.OrderStatusOrdered,
		enums.OrderStatusReceived,
		enums.OrderStatusCancelled,
	}

	allowed := map[[2]enums.OrderStatus]bool{
		{enums.OrderStatusPending, enums.OrderStatusApproved}:   true,
		{enums.OrderStatusPending, enums.OrderStatusCancelled}:  true,
		{enums.OrderStatusApproved, enums.OrderStatusOrdered}:   true,
		{enums.OrderStatusApproved, enums.OrderStatusCancelled}: true,
		{enums.OrderStatusOrdered, enums.OrderStatusReceived}:   true,
		{enums.OrderStatusOrdered, enums.OrderStatusCancelled}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			want := from == to || allowed[[2]enums.OrderStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTransitionChangesStampDates(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	order := &models.Order{Status: enums.OrderStatusApproved}

	changes := transitionChanges(order, enums.OrderStatusOrdered, now)
	if changes["status"] != enums.OrderStatusOrdered {
		t.Fatalf("expected status change, got %v", changes["status"])
	}
	if changes["ordered_date"] != now {
		t.Fatalf("expected ordered_date stamped, got %v", changes["ordered_date"])
	}
}

func TestTransitionChangesKeepExistingDate(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	order := &models.Order{Status: enums.OrderStatusOrdered, OrderedDate: &earlier}

	changes := transitionChanges(order, enums.OrderStatusOrdered, time.Now())
	if _, present := changes["ordered_date"]; present {
		t.Fatal("expected existing ordered_date to be preserved")
	}
}
