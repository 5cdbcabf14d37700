package collections

import "github.com/JonMunkholm/hostledger/internal/core"

func init() {
	registerEarnings()
	registerExpenses()
}

func registerEarnings() {
	core.Register(core.CollectionDefinition{
		Name:  core.CollectionEarnings,
		Label: "Earnings",
		Columns: []string{
			"id", "payment_id", "date", "amount", "source", "description", "notes", "created_at",
		},
		Row: func(rec core.Record) ([]any, error) {
			e, ok := rec.(*core.EarningRecord)
			if !ok {
				return nil, unexpected(core.CollectionEarnings, rec)
			}
			return []any{
				core.ToPgUUID(e.ID),
				core.ToPgText(e.PaymentID),
				core.ToPgDate(e.Date),
				core.ToPgNumeric(e.Amount),
				core.ToPgText(e.Source),
				core.ToPgText(e.Description),
				core.ToPgText(e.Notes),
				core.ToPgTimestamptz(e.CreatedAt),
			}, nil
		},
	})
}

func registerExpenses() {
	core.Register(core.CollectionDefinition{
		Name:  core.CollectionExpenses,
		Label: "Expenses",
		Columns: []string{
			"id", "reference", "date", "amount", "recipient", "category_id",
			"category", "description", "notes", "created_at",
		},
		Row: func(rec core.Record) ([]any, error) {
			e, ok := rec.(*core.ExpenseRecord)
			if !ok {
				return nil, unexpected(core.CollectionExpenses, rec)
			}
			return []any{
				core.ToPgUUID(e.ID),
				core.ToPgText(e.Reference),
				core.ToPgDate(e.Date),
				core.ToPgNumeric(e.Amount),
				core.ToPgText(e.Recipient),
				core.ToPgUUID(e.CategoryID),
				core.ToPgText(e.Category),
				core.ToPgText(e.Description),
				core.ToPgText(e.Notes),
				core.ToPgTimestamptz(e.CreatedAt),
			}, nil
		},
	})
}
