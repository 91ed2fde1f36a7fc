package domain

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
	StatusPickedUp   OrderStatus = "Picked Up"
)

// AllStatus is the pseudo status used for the unfiltered tab and its count.
const AllStatus = "All Status"

// Statuses lists the settable statuses in the order the admin filter tabs show them.
var Statuses = []OrderStatus{
	StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusPending, StatusPickedUp,
}

// transitions declares which moves are allowed. Every status may currently be
// set to every other one; tighten a row here to restrict the workflow.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    Statuses,
	StatusProcessing: Statuses,
	StatusShipped:    Statuses,
	StatusDelivered:  Statuses,
	StatusCancelled:  Statuses,
	StatusPickedUp:   Statuses,
}

func ParseStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// ValidateTransition is the single place that decides whether an order may
// move from one status to another.
func ValidateTransition(from, to OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown order status %q", to)
	}
	// Orders created by older backends may carry a status we do not know; let the admin fix them.
	allowed, ok := transitions[from]
	if !ok {
		return nil
	}
	for _, st := range allowed {
		if st == to {
			return nil
		}
	}
	return fmt.Errorf("order status cannot change from %q to %q", from, to)
}
