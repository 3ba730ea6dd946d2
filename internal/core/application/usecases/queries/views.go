// Package queries contains read operations for retrieving order state.
// Implements the Query side of the CQRS split: handlers run raw SQL over a
// plain database connection and return read models, never domain aggregates.
package queries

import (
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
)

// OrderView is the read model of one order as exposed to clients.
type OrderView struct {
	ID                  kernel.UUID
	CustomerID          string
	RestaurantID        string
	Status              string
	Items               []OrderItemView
	Address             AddressView
	PaymentMethod       string
	DeliveryFee         float64
	Tax                 float64
	Tip                 float64
	TotalAmount         float64
	EstimatedDeliveryAt time.Time
	ActualDeliveryAt    *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OrderItemView is one order line in the read model.
type OrderItemView struct {
	MenuItemID   string
	Name         string
	Quantity     int
	Price        float64
	Subtotal     float64
	Instructions string
}

// AddressView is the delivery address in the read model. Lat and Lng are nil
// when the client did not supply coordinates.
type AddressView struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Lat     *float64
	Lng     *float64
}

// HistoryEntryView is one entry of an order's status log, oldest first.
type HistoryEntryView struct {
	Status string
	At     time.Time
	Note   string
}
