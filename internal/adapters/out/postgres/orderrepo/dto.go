// Package orderrepo persists order aggregates with GORM. It maps the
// aggregate to three tables: orders, order_items and order_history, and
// reconstructs aggregates through order.RestoreOrder so invariants are
// revalidated on every read.
package orderrepo

import (
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the database row for the order aggregate root.
type OrderDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID          string    `gorm:"index"`
	RestaurantID        string    `gorm:"index"`
	Status              int       `gorm:"index"`
	PaymentMethod       string
	DeliveryFee         float64
	Tax                 float64
	Tip                 float64
	TotalAmount         float64
	Address             AddressDTO `gorm:"embedded;embeddedPrefix:address_"`
	EstimatedDeliveryAt time.Time
	ActualDeliveryAt    *time.Time
	CreatedAt           time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime:false"`

	Items   []ItemDTO    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []HistoryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO is the delivery address embedded in the orders table.
// Coordinates are nullable because clients may omit them.
type AddressDTO struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Lat     *float64
	Lng     *float64
}

// ItemDTO is one order line. Lines are immutable after the order is created,
// so they are only ever inserted together with the parent row.
type ItemDTO struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	OrderID      uuid.UUID `gorm:"type:uuid;index"`
	MenuItemID   string
	Name         string
	Quantity     int
	Price        float64
	Instructions string
}

// TableName specifies the database table name for order lines.
func (ItemDTO) TableName() string {
	return "order_items"
}

// HistoryDTO is one entry of the append-only status log. Seq is the position
// of the entry within its order; the unique index on (order_id, seq) lets
// updates upsert the whole log idempotently without ever rewriting old rows.
type HistoryDTO struct {
	ID      uint      `gorm:"primaryKey;autoIncrement"`
	OrderID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_order_history_order_seq"`
	Seq     int       `gorm:"uniqueIndex:idx_order_history_order_seq"`
	Status  int
	At      time.Time
	Note    string
}

// TableName specifies the database table name for status history.
func (HistoryDTO) TableName() string {
	return "order_history"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	id := aggregate.ID().Bytes()

	addr := aggregate.Address()
	addressDTO := AddressDTO{
		Street:  addr.Street(),
		City:    addr.City(),
		State:   addr.State(),
		ZipCode: addr.ZipCode(),
	}
	if geo := addr.Geo(); geo != nil {
		lat, lng := geo.Latitude, geo.Longitude
		addressDTO.Lat = &lat
		addressDTO.Lng = &lng
	}

	items := aggregate.Items()
	itemDTOs := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		itemDTOs = append(itemDTOs, ItemDTO{
			OrderID:      id,
			MenuItemID:   item.MenuItemID(),
			Name:         item.Name(),
			Quantity:     item.Quantity(),
			Price:        item.Price(),
			Instructions: item.Instructions(),
		})
	}

	history := aggregate.History()
	historyDTOs := make([]HistoryDTO, 0, len(history))
	for seq, entry := range history {
		historyDTOs = append(historyDTOs, HistoryDTO{
			OrderID: id,
			Seq:     seq,
			Status:  int(entry.Status),
			At:      entry.At,
			Note:    entry.Note,
		})
	}

	charges := aggregate.Charges()

	return OrderDTO{
		ID:                  id,
		CustomerID:          aggregate.CustomerID(),
		RestaurantID:        aggregate.RestaurantID(),
		Status:              int(aggregate.Status()),
		PaymentMethod:       string(aggregate.PaymentMethod()),
		DeliveryFee:         charges.DeliveryFee,
		Tax:                 charges.Tax,
		Tip:                 charges.Tip,
		TotalAmount:         aggregate.TotalAmount(),
		Address:             addressDTO,
		EstimatedDeliveryAt: aggregate.EstimatedDeliveryAt(),
		ActualDeliveryAt:    aggregate.ActualDeliveryAt(),
		CreatedAt:           aggregate.CreatedAt(),
		UpdatedAt:           aggregate.UpdatedAt(),
		Items:               itemDTOs,
		History:             historyDTOs,
	}
}

// toDomain converts database rows back into an order aggregate.
// History rows must already be sorted by seq.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var geo *kernel.GeoPoint
	if dto.Address.Lat != nil && dto.Address.Lng != nil {
		geo = &kernel.GeoPoint{Latitude: *dto.Address.Lat, Longitude: *dto.Address.Lng}
	}
	address, err := kernel.NewAddress(
		dto.Address.Street, dto.Address.City, dto.Address.State, dto.Address.ZipCode, geo,
	)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := order.NewItem(
			itemDTO.MenuItemID, itemDTO.Name, itemDTO.Quantity, itemDTO.Price, itemDTO.Instructions,
		)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	history := make([]order.HistoryEntry, 0, len(dto.History))
	for _, entry := range dto.History {
		history = append(history, order.HistoryEntry{
			Status: order.Status(entry.Status),
			At:     entry.At,
			Note:   entry.Note,
		})
	}

	return order.RestoreOrder(order.Snapshot{
		ID:            id,
		CustomerID:    dto.CustomerID,
		RestaurantID:  dto.RestaurantID,
		Items:         items,
		Address:       address,
		PaymentMethod: order.PaymentMethod(dto.PaymentMethod),
		Charges: order.Charges{
			DeliveryFee: dto.DeliveryFee,
			Tax:         dto.Tax,
			Tip:         dto.Tip,
		},
		Status:              order.Status(dto.Status),
		History:             history,
		EstimatedDeliveryAt: dto.EstimatedDeliveryAt,
		ActualDeliveryAt:    dto.ActualDeliveryAt,
		CreatedAt:           dto.CreatedAt,
		UpdatedAt:           dto.UpdatedAt,
	})
}
