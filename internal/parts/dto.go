package parts

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

// PartDTO is the transport shape for an inventory part. LowStock is
// computed from the model predicate at serialization time.
type PartDTO struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	SKU                string           `json:"sku"`
	Description        *string          `json:"description,omitempty"`
	Category           string           `json:"category"`
	Quantity           int              `json:"quantity"`
	MinimumStock       int              `json:"minimum_stock"`
	Price              decimal.Decimal  `json:"price"`
	Supplier           *string          `json:"supplier,omitempty"`
	Location           *string          `json:"location,omitempty"`
	CompatibleVehicles types.StringList `json:"compatible_vehicles"`
	LastRestocked      *time.Time       `json:"last_restocked,omitempty"`
	IsStandard         bool             `json:"is_standard"`
	LowStock           bool             `json:"low_stock"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// CreatePartDTO holds the data required by the repo to persist a part.
type CreatePartDTO struct {
	Name               string
	SKU                string
	Description        *string
	Category           string
	Quantity           int
	MinimumStock       int
	Price              decimal.Decimal
	Supplier           *string
	Location           *string
	CompatibleVehicles types.StringList
	IsStandard         *bool
}

// UpdatePartDTO carries the explicit set of mutable fields.
type UpdatePartDTO struct {
	Name               *string
	Description        *string
	Category           *string
	Quantity           *int
	MinimumStock       *int
	Price              *decimal.Decimal
	Supplier           *string
	Location           *string
	CompatibleVehicles *types.StringList
	IsStandard         *bool
}

func FromModel(p *models.Part) *PartDTO {
	if p == nil {
		return nil
	}
	return &PartDTO{
		ID:                 p.ID,
		Name:               p.Name,
		SKU:                p.SKU,
		Description:        p.Description,
		Category:           p.Category,
		Quantity:           p.Quantity,
		MinimumStock:       p.MinimumStock,
		Price:              p.Price,
		Supplier:           p.Supplier,
		Location:           p.Location,
		CompatibleVehicles: p.CompatibleVehicles,
		LastRestocked:      p.LastRestocked,
		IsStandard:         p.IsStandard,
		LowStock:           p.IsLowStock(),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func FromModels(rows []models.Part) []PartDTO {
	out := make([]PartDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreatePartDTO) ToModel() *models.Part {
	isStandard := true
	if c.IsStandard != nil {
		isStandard = *c.IsStandard
	}
	compatible := c.CompatibleVehicles
	if compatible == nil {
		compatible = types.StringList{}
	}
	return &models.Part{
		Name:               c.Name,
		SKU:                c.SKU,
		Description:        c.Description,
		Category:           c.Category,
		Quantity:           c.Quantity,
		MinimumStock:       c.MinimumStock,
		Price:              c.Price,
		Supplier:           c.Supplier,
		Location:           c.Location,
		CompatibleVehicles: compatible,
		IsStandard:         isStandard,
	}
}

func (u UpdatePartDTO) changes() map[string]any {
	changes := map[string]any{}
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.Category != nil {
		changes["category"] = *u.Category
	}
	if u.Quantity != nil {
		changes["quantity"] = *u.Quantity
	}
	if u.MinimumStock != nil {
		changes["minimum_stock"] = *u.MinimumStock
	}
	if u.Price != nil {
		changes["price"] = *u.Price
	}
	if u.Supplier != nil {
		changes["supplier"] = *u.Supplier
	}
	if u.Location != nil {
		changes["location"] = *u.Location
	}
	if u.CompatibleVehicles != nil {
		changes["compatible_vehicles"] = *u.CompatibleVehicles
	}
	if u.IsStandard != nil {
		changes["is_standard"] = *u.IsStandard
	}
	return changes
}
