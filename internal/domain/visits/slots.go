package visits

import "fmt"

const (
	firstSlotHour = 9
	lastSlotHour  = 15
	slotMinutes   = 30
)

// Slot is one cell of the daily viewing grid.
type Slot struct {
	Time      string
	Available bool
}

var slotGrid = buildSlotGrid()

func buildSlotGrid() []string {
	grid := make([]string, 0, (lastSlotHour-firstSlotHour+1)*(60/slotMinutes))
	for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
		for minute := 0; minute < 60; minute += slotMinutes {
			grid = append(grid, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return grid
}

// SlotGrid returns the fixed daily grid: 09:00 through 15:30 every 30 minutes.
func SlotGrid() []string {
	return append([]string(nil), slotGrid...)
}

// OnGrid reports whether t is one of the grid times.
func OnGrid(t string) bool {
	for _, slot := range slotGrid {
		if slot == t {
			return true
		}
	}
	return false
}

// AvailableSlots marks every grid slot free unless its time is in booked.
// The result always has one entry per grid slot, in grid order.
func AvailableSlots(booked map[string]struct{}) []Slot {
	out := make([]Slot, 0, len(slotGrid))
	for _, t := range slotGrid {
		_, taken := booked[t]
		out = append(out, Slot{Time: t, Available: !taken})
	}
	return out
}

// BookedTimes collects the times of scheduled visits.
func BookedTimes(visits []*Visit) map[string]struct{} {
	booked := make(map[string]struct{}, len(visits))
	for _, v := range visits {
		if v != nil && v.Status == StatusScheduled {
			booked[v.Time] = struct{}{}
		}
	}
	return booked
}
