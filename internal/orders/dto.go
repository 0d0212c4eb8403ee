package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// orderNumberFormat yields labels like PO-2026-0042.
const orderNumberFormat = "PO-%d-%04d"

// FormatOrderNumber renders the year-scoped human identifier.
func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf(orderNumberFormat, year, seq)
}

// OrderDTO is the transport shape for a purchase order.
type OrderDTO struct {
	ID           int64             `json:"id"`
	OrderNumber  string            `json:"order_number"`
	Status       enums.OrderStatus `json:"status"`
	CreatedDate  time.Time         `json:"created_date"`
	OrderedDate  *time.Time        `json:"ordered_date,omitempty"`
	ReceivedDate *time.Time        `json:"received_date,omitempty"`
	CancelledAt  *time.Time        `json:"cancelled_at,omitempty"`
	CreatedBy    int64             `json:"created_by"`
	Supplier     *string           `json:"supplier,omitempty"`
	TotalAmount  *decimal.Decimal  `json:"total_amount,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	Items        []OrderItemDTO    `json:"items"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// OrderItemDTO is a line on a purchase order.
type OrderItemDTO struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	PartID    int64           `json:"part_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, *itemFromModel(&o.Items[i]))
	}
	return &OrderDTO{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		Status:       o.Status,
		CreatedDate:  o.CreatedDate,
		OrderedDate:  o.OrderedDate,
		ReceivedDate: o.ReceivedDate,
		CancelledAt:  o.CancelledAt,
		CreatedBy:    o.CreatedBy,
		Supplier:     o.Supplier,
		TotalAmount:  o.TotalAmount,
		Notes:        o.Notes,
		Items:        items,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func FromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func itemFromModel(item *models.OrderItem) *OrderItemDTO {
	if item == nil {
		return nil
	}
	return &OrderItemDTO{
		ID:        item.ID,
		OrderID:   item.OrderID,
		PartID:    item.PartID,
		Quantity:  item.Quantity,
		Price:     item.Price,
		LineTotal: item.LineTotal(),
	}
}

func itemsFromModels(rows []models.OrderItem) []OrderItemDTO {
	out := make([]OrderItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *itemFromModel(&rows[i]))
	}
	return out
}
