package service

import (
	"math"

	"github.com/Eursukkul/bus-booking/internal/models"
)

// Placeholder fleet. Real assignment belongs to a scheduling system that does not exist yet.
var (
	busNumbers  = []string{"BUS-001", "BUS-002", "BUS-003", "BUS-004", "BUS-005"}
	driverNames = []string{"John Smith", "Sarah Johnson", "Mike Wilson", "Lisa Brown", "David Lee"}
)

const (
	basePrice        = 3.50
	perPassengerRate = 0.5
)

func assignVehicle(p Picker, b *models.Booking) {
	b.BusNumber = busNumbers[p.Pick(len(busNumbers))]
	b.DriverName = driverNames[p.Pick(len(driverNames))]
}

// calculatePrice is 3.50 + 0.50 per passenger, rounded to cents.
func calculatePrice(passengers int) float64 {
	return math.Round((basePrice+perPassengerRate*float64(passengers))*100) / 100
}
