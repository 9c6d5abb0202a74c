package model

// Table status constants.
const (
	TableFree     = "free"
	TableOccupied = "occupied"
	TableReserved = "reserved"
)

// TableStatuses lists every valid table status in display order.
var TableStatuses = []string{TableFree, TableOccupied, TableReserved}

// ValidTableStatus reports whether s is a known table status.
func ValidTableStatus(s string) bool {
	for _, v := range TableStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Price change reasons.
const (
	ReasonManual = "manual"
	ReasonBulk   = "bulk"
	ReasonReset  = "reset"
	ReasonBounds = "bounds"
)
