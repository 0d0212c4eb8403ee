package types

// PartUsage records a part consumed while completing a maintenance task.
// Stock decrement is not derived from these rows automatically; they are a
// record of consumption attached by the caller.
type PartUsage struct {
	PartID   int64 `json:"part_id"`
	Quantity int   `json:"quantity"`
}

// PartsUsedList is stored as a typed JSON column on maintenance rows.
// GORM's json serializer round-trips it; a malformed stored value surfaces
// as a scan error instead of silently becoming null.
type PartsUsedList []PartUsage

// TotalQuantity sums the quantities across all usages.
func (l PartsUsedList) TotalQuantity() int {
	total := 0
	for _, usage := range l {
		total += usage.Quantity
	}
	return total
}
