package dto

import (
	"time"

	domainvisits "iasrentals/internal/domain/visits"
)

type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type AvailableSlots struct {
	PropertyID string `json:"property_id"`
	Date       string `json:"date"`
	Slots      []Slot `json:"slots"`
}

// Visit is a visit enriched with display fields looked up at read time.
type Visit struct {
	ID              string    `json:"id"`
	PropertyID      string    `json:"property_id"`
	BuyerID         string    `json:"buyer_id"`
	OwnerID         string    `json:"owner_id,omitempty"`
	VisitDate       string    `json:"visit_date"`
	VisitTime       string    `json:"visit_time"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	PropertyTitle   string    `json:"property_title,omitempty"`
	PropertyAddress string    `json:"property_address,omitempty"`
	BuyerName       string    `json:"buyer_name,omitempty"`
}

// VisitDisplay carries the joined fields for MapVisit.
type VisitDisplay struct {
	OwnerID         string
	PropertyTitle   string
	PropertyAddress string
	BuyerName       string
}

func MapSlots(slots []domainvisits.Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, Slot{Time: s.Time, Available: s.Available})
	}
	return out
}

func MapVisit(visit *domainvisits.Visit, display VisitDisplay) Visit {
	if visit == nil {
		return Visit{}
	}
	return Visit{
		ID:              string(visit.ID),
		PropertyID:      string(visit.PropertyID),
		BuyerID:         string(visit.BuyerID),
		OwnerID:         display.OwnerID,
		VisitDate:       visit.Date,
		VisitTime:       visit.Time,
		Status:          string(visit.Status),
		Notes:           visit.Notes,
		CreatedAt:       visit.CreatedAt,
		PropertyTitle:   display.PropertyTitle,
		PropertyAddress: display.PropertyAddress,
		BuyerName:       display.BuyerName,
	}
}
