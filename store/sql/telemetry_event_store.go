package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultTelemetryPerPage = 25

type TelemetryEventStore struct {
	db   *bun.DB
	repo repository.Repository[*telemetryEventRecord]
	now  func() time.Time
}

func NewTelemetryEventStore(db *bun.DB) (*TelemetryEventStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*telemetryEventRecord](db, telemetryEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid telemetry event repository wiring: %w", err)
		}
	}
	return &TelemetryEventStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

// Write inserts events, skipping ids that are already stored. Events without
// an id get one.
func (s *TelemetryEventStore) Write(ctx context.Context, events []core.TelemetryEvent) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: telemetry event store is not configured")
	}
	if len(events) == 0 {
		return nil
	}
	now := s.now()
	records := make([]*telemetryEventRecord, 0, len(events))
	for _, event := range events {
		record := newTelemetryEventRecord(event, now)
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if record.ButtonSessionID == "" {
			return fmt.Errorf("sqlstore: telemetry event %q requires button_session_id", record.ID)
		}
		records = append(records, record)
	}

	_, err := s.db.NewInsert().
		Model(&records).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *TelemetryEventStore) List(ctx context.Context, filter core.TelemetryEventFilter) (core.TelemetryEventPage, error) {
	if s == nil || s.repo == nil {
		return core.TelemetryEventPage{}, fmt.Errorf("sqlstore: telemetry event store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultTelemetryPerPage
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("occurred_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if sessionID := strings.TrimSpace(filter.ButtonSessionID); sessionID != "" {
		selectors = append(selectors, repository.SelectBy("button_session_id", "=", sessionID))
	}
	if contextID := strings.TrimSpace(filter.ContextID); contextID != "" {
		selectors = append(selectors, repository.SelectBy("context_id", "=", contextID))
	}
	if filter.From != nil {
		selectors = append(selectors, repository.SelectByTimetz("occurred_at", ">=", filter.From.UTC()))
	}
	if filter.To != nil {
		selectors = append(selectors, repository.SelectByTimetz("occurred_at", "<=", filter.To.UTC()))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.TelemetryEventPage{}, err
	}
	items := make([]core.TelemetryEvent, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	hasNext := offset+len(items) < total
	nextCursor := ""
	if hasNext {
		nextCursor = strconv.Itoa(offset + len(items))
	}
	return core.TelemetryEventPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextCursor,
	}, nil
}

// Prune deletes events that occurred before cutoff.
func (s *TelemetryEventStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: telemetry event store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*telemetryEventRecord)(nil)).
		Where("occurred_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res, "prune telemetry events")
}

func rowsAffected(res sql.Result, operation string) (int, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlstore: %s: rows affected: %w", operation, err)
	}
	return int(affected), nil
}
