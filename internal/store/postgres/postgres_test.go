package postgres

import (
	"strconv"
	"strings"
	"testing"

	"github.com/JonMunkholm/hostledger/internal/core"
	_ "github.com/JonMunkholm/hostledger/internal/core/collections"
)

func TestInsertSQL(t *testing.T) {
	def, ok := core.Get(core.CollectionEarnings)
	if !ok {
		t.Fatal("earnings not registered")
	}

	got := insertSQL(def)
	want := `INSERT INTO "earnings" ("id", "payment_id", "date", "amount", "source", "description", "notes", "created_at") ` +
		`VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if got != want {
		t.Errorf("insertSQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestInsertSQL_EveryCollection(t *testing.T) {
	for _, def := range core.All() {
		t.Run(string(def.Name), func(t *testing.T) {
			sql := insertSQL(def)
			if want := `"` + string(def.Name) + `"`; !strings.Contains(sql, want) {
				t.Errorf("insertSQL() = %q, want table %s", sql, want)
			}
			if !strings.HasSuffix(sql, "$"+strconv.Itoa(len(def.Columns))+")") {
				t.Errorf("insertSQL() = %q, want %d parameters", sql, len(def.Columns))
			}
		})
	}
}

func TestDefinition_Unregistered(t *testing.T) {
	if _, err := definition("invoices"); err == nil {
		t.Error("definition(invoices) error = nil, want error")
	}
}

func TestDecodeErrors(t *testing.T) {
	var e core.AuditEntry
	if err := decodeErrors([]byte(`[{"message":"bad","data":{"row":2}}]`), &e); err != nil {
		t.Fatalf("decodeErrors() error: %v", err)
	}
	if len(e.Errors) != 1 || e.Errors[0].Message != "bad" {
		t.Errorf("Errors = %+v", e.Errors)
	}

	if err := decodeErrors(nil, &e); err != nil || e.Errors == nil || len(e.Errors) != 0 {
		t.Errorf("decodeErrors(nil) = %+v, %v; want empty non-nil", e.Errors, err)
	}
}
