package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/hostledger/internal/logging"
)

// ServiceConfig holds pipeline settings. Zero values get defaults.
type ServiceConfig struct {
	StoreTimeout    time.Duration    // Bound on each store write (default: DefaultStoreTimeout)
	ValidateWorkers int              // Rows validated concurrently (default: GOMAXPROCS)
	Split           SplitMode        // Cell splitting for tabular imports
	Now             func() time.Time // Clock for defaults and timestamps (default: time.Now)
}

// Service runs ingestion attempts end to end.
// Attempts are independent and share only the store.
type Service struct {
	store      Store
	classifier *Classifier
	normalizer *Normalizer
	validator  *TabularValidator
	router     *Router
	audit      *AuditService
}

// NewService wires the pipeline. rules is the ordered classification table.
func NewService(store Store, auditStore AuditStore, rules []ClassificationRule, cfg ServiceConfig) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:      store,
		classifier: NewClassifier(rules),
		normalizer: NewNormalizer(cfg.Now),
		validator: NewTabularValidator(TabularConfig{
			Workers: cfg.ValidateWorkers,
			Split:   cfg.Split,
			Now:     cfg.Now,
		}),
		router: NewRouter(store, cfg.StoreTimeout),
		audit:  NewAuditService(auditStore, cfg.Now),
	}
}

// Classifier returns the service's classifier.
func (s *Service) Classifier() *Classifier { return s.classifier }

// Audit returns the service's audit logger.
func (s *Service) Audit() *AuditService { return s.audit }

// Ping reports store health when the store supports it.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// IngestEmail classifies msg, normalizes the extracted fields, and stores the
// record. A message no rule accepts is not an error: the outcome reports
// NoMatchMessage and nothing is stored. A failed write returns the outcome
// along with a *StorageError. Every call writes exactly one audit entry.
func (s *Service) IngestEmail(ctx context.Context, msg RawMessage) (*EmailOutcome, error) {
	log := logging.WithFields(ctx, "attempt", "email", "from", msg.From, "subject", msg.Subject)

	entry := AuditEntry{ImportType: ImportEmail, FileName: msg.Subject, TotalRecords: 1}
	defer func() { s.audit.LogImport(ctx, entry) }()

	cls, ok := s.classifier.Classify(msg)
	if !ok {
		log.Info("email not classified")
		entry.FailedRecords = 1
		entry.Errors = []AuditError{{
			Message: NoMatchMessage,
			Data:    map[string]any{"from": msg.From, "subject": msg.Subject},
		}}
		return &EmailOutcome{Message: NoMatchMessage}, nil
	}

	out := &EmailOutcome{
		RuleName:   cls.RuleName,
		Collection: cls.Collection,
		Fields:     cls.Fields,
	}
	log = log.With("rule", cls.RuleName, "collection", cls.Collection)

	rec, err := s.normalizer.Normalize(cls.Fields, cls.Collection, msg.From)
	if err != nil {
		log.Error("failed to normalize email", "error", err)
		entry.FailedRecords = 1
		entry.Errors = []AuditError{{Message: err.Error(), Data: map[string]any{"rule": cls.RuleName}}}
		out.Message = err.Error()
		return out, err
	}
	out.Record = rec

	if err := s.router.Route(ctx, rec); err != nil {
		log.Error("failed to store email record", "error", err)
		entry.FailedRecords = 1
		entry.Errors = []AuditError{{
			Message: err.Error(),
			Data:    map[string]any{"rule": cls.RuleName, "collection": string(cls.Collection)},
		}}
		out.Message = err.Error()
		return out, err
	}

	entry.SuccessfulRecords = 1
	out.Success = true
	log.Info("email ingested", "fields", len(cls.Fields))
	return out, nil
}

// ImportEarnings validates and stores an earnings CSV.
func (s *Service) ImportEarnings(ctx context.Context, fileName, text string) (*ImportResult, error) {
	return s.importTabular(ctx, EarningsColumns, fileName, text, nil)
}

// ImportExpenses validates and stores an expense CSV against the category reference set.
func (s *Service) ImportExpenses(ctx context.Context, fileName, text string, categories []Category) (*ImportResult, error) {
	return s.importTabular(ctx, ExpenseColumns, fileName, text, categories)
}

// Import sanitizes uploaded bytes and runs the import for importType,
// fetching the category reference set for expense imports.
func (s *Service) Import(ctx context.Context, importType ImportType, fileName string, data []byte) (*ImportResult, error) {
	spec, err := ColumnSpecFor(importType)
	if err != nil {
		return nil, err
	}
	text := SanitizeText(data)

	if spec.ImportType != ImportExpenses {
		return s.ImportEarnings(ctx, fileName, text)
	}

	catCtx, cancel := context.WithTimeout(ctx, s.router.timeout)
	categories, err := s.store.Categories(catCtx)
	cancel()
	if err != nil {
		serr := &StorageError{Collection: CollectionExpenses, Op: "load categories", Err: err}
		rows := dataRowCount(text)
		s.audit.LogImport(ctx, AuditEntry{
			ImportType:    ImportExpenses,
			FileName:      fileName,
			TotalRecords:  rows,
			FailedRecords: rows,
			Errors:        []AuditError{{Message: serr.Error()}},
		})
		return nil, serr
	}
	return s.ImportExpenses(ctx, fileName, text, categories)
}

// importTabular validates text against spec and stores the accepted rows in
// one batch. Row problems are reported in the result; a *StructuralError or
// *StorageError fails the attempt.
func (s *Service) importTabular(ctx context.Context, spec ColumnSpec, fileName, text string, categories []Category) (*ImportResult, error) {
	start := time.Now()
	log := logging.WithFields(ctx, "attempt", "tabular", "import_type", spec.ImportType, "filename", fileName)

	entry := AuditEntry{ImportType: spec.ImportType, FileName: fileName}
	defer func() { s.audit.LogImport(ctx, entry) }()

	res, err := s.validator.Validate(text, spec, categories)
	if err != nil {
		log.Warn("batch rejected", "error", err)
		rows := dataRowCount(text)
		entry.TotalRecords = rows
		entry.FailedRecords = rows
		entry.Errors = []AuditError{{Message: err.Error()}}
		return nil, err
	}

	result := &ImportResult{
		ImportType:   spec.ImportType,
		FileName:     fileName,
		TotalRows:    res.Total,
		ErrorRows:    len(res.Rejected),
		ErrorRecords: res.Rejected,
	}
	if result.ErrorRecords == nil {
		result.ErrorRecords = []RejectedRow{}
	}
	entry.TotalRecords = res.Total
	entry.Errors = rejectedRowErrors(res.Rejected)

	recs := make([]Record, len(res.Accepted))
	for i, row := range res.Accepted {
		recs[i] = row.Record
	}

	if err := s.router.RouteBatch(ctx, spec.Collection, recs); err != nil {
		log.Error("failed to store batch", "rows", len(recs), "error", err)
		entry.FailedRecords = res.Total
		entry.Errors = append(entry.Errors, AuditError{Message: err.Error()})
		result.Duration = time.Since(start)
		return result, err
	}

	result.ValidRows = len(recs)
	result.Duration = time.Since(start)
	entry.SuccessfulRecords = result.ValidRows
	entry.FailedRecords = result.ErrorRows

	log.Info("batch imported",
		"total", result.TotalRows,
		"valid", result.ValidRows,
		"rejected", result.ErrorRows,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// ImportLogs lists recent audit entries.
func (s *Service) ImportLogs(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	return s.audit.List(ctx, filter)
}

// dataRowCount is the number of non-blank lines after the header.
func dataRowCount(text string) int {
	n := len(nonBlankLines(text)) - 1
	if n < 0 {
		return 0
	}
	return n
}
