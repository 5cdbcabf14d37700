package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Defaults for fields an email did not carry.
const (
	unknownGuest       = "Unknown"
	unknownVehicle     = "Unknown"
	defaultServiceType = "General service"
	defaultTripStatus  = "confirmed"
	emailIDPrefix      = "EMAIL-"
)

// Normalizer converts extracted email fields into typed records.
// It never rejects input: every missing or malformed value gets a default.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer. A nil clock uses time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize builds the record for collection from fields. sender is the
// message's From header, used when no vendor or source was extracted.
// The only error is an unrecognized collection.
func (n *Normalizer) Normalize(fields ExtractedFields, collection Collection, sender string) (Record, error) {
	now := n.now()

	switch collection {
	case CollectionTrips:
		return &TripRecord{
			ID:          uuid.NewString(),
			TripID:      identifier(fields["tripId"], now),
			GuestName:   orDefault(fields["guest"], unknownGuest),
			Vehicle:     orDefault(fields["vehicle"], unknownVehicle),
			StartDate:   CoerceDate(fields["startDate"], now),
			EndDate:     CoerceDate(fields["endDate"], now),
			TotalAmount: CoerceAmount(fields["total"]),
			Source:      vendor(fields["source"], sender),
			Status:      defaultTripStatus,
			CreatedAt:   now,
		}, nil

	case CollectionEarnings:
		return &EarningRecord{
			ID:          uuid.NewString(),
			PaymentID:   identifier(fields["paymentId"], now),
			Date:        CoerceDate(fields["date"], now),
			Amount:      CoerceAmount(fields["amount"]),
			Source:      vendor(fields["source"], sender),
			Description: earningDescription(fields),
			Notes:       fields["notes"],
			CreatedAt:   now,
		}, nil

	case CollectionMaintenance:
		return &MaintenanceRecord{
			ID:          uuid.NewString(),
			Vehicle:     orDefault(fields["vehicle"], unknownVehicle),
			ServiceType: orDefault(fields["serviceType"], defaultServiceType),
			ServiceDate: CoerceDate(fields["date"], now),
			Cost:        CoerceAmount(fields["cost"]),
			Mileage:     CoerceCount(fields["mileage"]),
			Vendor:      vendor(fields["vendor"], sender),
			Notes:       fields["notes"],
			CreatedAt:   now,
		}, nil

	case CollectionExpenses:
		return &ExpenseRecord{
			ID:          uuid.NewString(),
			Reference:   identifier(fields["orderId"], now),
			Date:        CoerceDate(fields["date"], now),
			Amount:      CoerceAmount(fields["total"]),
			Recipient:   vendor(fields["vendor"], sender),
			Category:    fields["category"],
			Description: orDefault(fields["item"], "Email receipt"),
			CreatedAt:   now,
		}, nil
	}

	return nil, fmt.Errorf("normalize: unknown collection %q", collection)
}

// identifier returns v, or a reference derived from now when v is empty.
func identifier(v string, now time.Time) string {
	if v != "" {
		return v
	}
	return emailIDPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// vendor returns v, or the sender's domain when v is empty.
func vendor(v, sender string) string {
	if v != "" {
		return v
	}
	if d := SenderDomain(sender); d != "" {
		return d
	}
	return "unknown"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func earningDescription(fields ExtractedFields) string {
	if d := fields["description"]; d != "" {
		return d
	}
	if trip := fields["tripId"]; trip != "" {
		return "Payout for trip " + trip
	}
	return "Payment received"
}
