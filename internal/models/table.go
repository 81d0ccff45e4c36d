package models

import "time"

// TableStatus is the seating state of a table
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Valid reports whether s is a known table status.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

// Locations are the floor areas a table can be placed in.
var Locations = []string{"Ground Floor", "1st Floor Indoor", "1st Floor Outdoor"}

// ValidLocation reports whether loc is one of Locations.
func ValidLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// Position is a floor-plan coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Table represents a physical seating unit
type Table struct {
	ID             string      `json:"id"`
	TableNumber    string      `json:"tableNumber"`
	Seats          int         `json:"seats"`
	Location       string      `json:"location"`
	Status         TableStatus `json:"status"`
	AssignedWaiter *string     `json:"assignedWaiter,omitempty"`
	Position       Position    `json:"position"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// TableFilter narrows table listings
type TableFilter struct {
	Status TableStatus
}
