package collections

import (
	"fmt"

	"github.com/JonMunkholm/hostledger/internal/core"
)

func init() {
	registerTrips()
	registerMaintenance()
}

func registerTrips() {
	core.Register(core.CollectionDefinition{
		Name:  core.CollectionTrips,
		Label: "Trips",
		Columns: []string{
			"id", "trip_id", "guest_name", "vehicle", "start_date", "end_date",
			"total_amount", "source", "status", "created_at",
		},
		Row: func(rec core.Record) ([]any, error) {
			t, ok := rec.(*core.TripRecord)
			if !ok {
				return nil, unexpected(core.CollectionTrips, rec)
			}
			return []any{
				core.ToPgUUID(t.ID),
				core.ToPgText(t.TripID),
				core.ToPgText(t.GuestName),
				core.ToPgText(t.Vehicle),
				core.ToPgTimestamptz(t.StartDate),
				core.ToPgTimestamptz(t.EndDate),
				core.ToPgNumeric(t.TotalAmount),
				core.ToPgText(t.Source),
				core.ToPgText(t.Status),
				core.ToPgTimestamptz(t.CreatedAt),
			}, nil
		},
	})
}

func registerMaintenance() {
	core.Register(core.CollectionDefinition{
		Name:  core.CollectionMaintenance,
		Label: "Maintenance",
		Columns: []string{
			"id", "vehicle", "service_type", "service_date", "cost", "mileage",
			"vendor", "notes", "created_at",
		},
		Row: func(rec core.Record) ([]any, error) {
			m, ok := rec.(*core.MaintenanceRecord)
			if !ok {
				return nil, unexpected(core.CollectionMaintenance, rec)
			}
			return []any{
				core.ToPgUUID(m.ID),
				core.ToPgText(m.Vehicle),
				core.ToPgText(m.ServiceType),
				core.ToPgDate(m.ServiceDate),
				core.ToPgNumeric(m.Cost),
				core.ToPgInt4(m.Mileage),
				core.ToPgText(m.Vendor),
				core.ToPgText(m.Notes),
				core.ToPgTimestamptz(m.CreatedAt),
			}, nil
		},
	})
}

// unexpected reports a record handed to the wrong collection.
func unexpected(c core.Collection, rec core.Record) error {
	return fmt.Errorf("collection %s: unexpected record type %T", c, rec)
}
