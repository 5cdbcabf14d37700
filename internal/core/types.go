package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Collection names a storage destination for records.
type Collection string

const (
	CollectionTrips       Collection = "trips"
	CollectionEarnings    Collection = "earnings"
	CollectionMaintenance Collection = "maintenance_records"
	CollectionExpenses    Collection = "expenses"
)

// KnownCollection reports whether c is one of the collections records can be routed to.
func KnownCollection(c Collection) bool {
	switch c {
	case CollectionTrips, CollectionEarnings, CollectionMaintenance, CollectionExpenses:
		return true
	}
	return false
}

// ImportType identifies the source of an ingestion attempt in the audit log.
type ImportType string

const (
	ImportEarnings ImportType = "earnings"
	ImportExpenses ImportType = "expenses"
	ImportEmail    ImportType = "email"
)

// RawMessage is an inbound email as delivered by the webhook.
type RawMessage struct {
	From       string            `json:"from"`
	Subject    string            `json:"subject"`
	Text       string            `json:"text"`
	HTML       string            `json:"html"`
	ReceivedAt time.Time         `json:"receivedAt"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Body returns the plain-text body, falling back to the HTML body rendered as text.
func (m RawMessage) Body() string {
	if strings.TrimSpace(m.Text) != "" {
		return m.Text
	}
	if m.HTML == "" {
		return ""
	}
	return HTMLToText(m.HTML)
}

// Record is a normalized domain record bound to exactly one collection.
type Record interface {
	Collection() Collection
}

// TripRecord is a confirmed rental booking.
type TripRecord struct {
	ID          string          `json:"id"`
	TripID      string          `json:"tripId"`
	GuestName   string          `json:"guestName"`
	Vehicle     string          `json:"vehicle"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Source      string          `json:"source"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (*TripRecord) Collection() Collection { return CollectionTrips }

// EarningRecord is a payment received from a platform or customer.
type EarningRecord struct {
	ID          string          `json:"id"`
	PaymentID   string          `json:"paymentId,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Description string          `json:"description"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (*EarningRecord) Collection() Collection { return CollectionEarnings }

// MaintenanceRecord is a completed vehicle service.
type MaintenanceRecord struct {
	ID          string          `json:"id"`
	Vehicle     string          `json:"vehicle"`
	ServiceType string          `json:"serviceType"`
	ServiceDate time.Time       `json:"serviceDate"`
	Cost        decimal.Decimal `json:"cost"`
	Mileage     int             `json:"mileage"`
	Vendor      string          `json:"vendor"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (*MaintenanceRecord) Collection() Collection { return CollectionMaintenance }

// ExpenseRecord is money spent. Category holds the name the record was
// classified or imported with; CategoryID is the resolved reference id.
type ExpenseRecord struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Recipient   string          `json:"recipient"`
	CategoryID  string          `json:"categoryId,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (*ExpenseRecord) Collection() Collection { return CollectionExpenses }

// Category is an entry of the expense category reference set.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AcceptedRow is a tabular row that passed every check.
type AcceptedRow struct {
	Row    int
	Record Record
}

// RejectedRow is a tabular row with at least one failing check.
// Row is the 1-based line number counting the header as line 1.
type RejectedRow struct {
	Row    int      `json:"row"`
	Data   string   `json:"data"`
	Errors []string `json:"errors"`
}

// ImportResult summarizes a tabular ingestion attempt.
type ImportResult struct {
	ImportType   ImportType    `json:"importType"`
	FileName     string        `json:"fileName,omitempty"`
	TotalRows    int           `json:"totalRows"`
	ValidRows    int           `json:"validRows"`
	ErrorRows    int           `json:"errorRows"`
	ErrorRecords []RejectedRow `json:"errorRecords"`
	Duration     time.Duration `json:"-"`
}

// EmailOutcome summarizes an email ingestion attempt.
type EmailOutcome struct {
	Success    bool            `json:"success"`
	RuleName   string          `json:"ruleName,omitempty"`
	Collection Collection      `json:"collection,omitempty"`
	Fields     ExtractedFields `json:"fields,omitempty"`
	Record     Record          `json:"record,omitempty"`
	Message    string          `json:"message,omitempty"`
}
