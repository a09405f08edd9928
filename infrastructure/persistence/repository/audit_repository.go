package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// auditReportMaxPages bounds the cross-table report scan per request.
const auditReportMaxPages = 10

// AuditRepository records admin actions and security events. Audit records
// are append-only; nothing here updates or deletes them.
type AuditRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewAuditRepository creates an audit repository.
func NewAuditRepository(st store.Store, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{store: st, logger: logger}
}

// Record appends one audit action under the acting admin's partition.
func (r *AuditRepository) Record(ctx context.Context, action *domain.AdminAction) error {
	if action.ActionID == "" {
		action.ActionID = uuid.NewString()
	}
	if action.Timestamp == "" {
		action.Timestamp = schema.FormatTime(time.Now())
	}

	item, err := marshalEntity(action, schema.EntityAdminAction)
	if err != nil {
		return apperrors.NewDatabaseError("audit.record", err)
	}
	item[schema.AttrPK] = s(schema.AuditPK(action.AdminID))
	item[schema.AttrSK] = s(schema.AuditSK(action.Timestamp, action.ActionID))
	item[schema.AttrGSI8PK] = s(schema.AuditGSI8PK(action.AdminID))
	item[schema.AttrGSI8SK] = s(schema.AuditSK(action.Timestamp, action.ActionID))

	if err := r.store.Put(ctx, item, false); err != nil {
		return apperrors.NewDatabaseError("audit.record", err)
	}
	return nil
}

// AuditRange bounds a listing or report to [Start, End] timestamps; empty
// bounds are open.
type AuditRange struct {
	Start string
	End   string
}

// AuditPage is one page of audit actions plus the resume key.
type AuditPage struct {
	Actions []*domain.AdminAction
	LastKey store.Item
}

// ListByAdmin returns one admin's actions newest first off GSI8, optionally
// bounded to a timestamp range.
func (r *AuditRepository) ListByAdmin(ctx context.Context, adminID string, rng AuditRange, limit int32, startKey store.Item) (*AuditPage, error) {
	in := store.QueryInput{
		PK:        schema.AuditGSI8PK(adminID),
		IndexName: schema.IndexGSI8,
		Forward:   false,
		Limit:     limit,
		StartKey:  startKey,
	}
	if rng.Start != "" || rng.End != "" {
		start, end := rng.Start, rng.End
		if start == "" {
			start = "0000"
		}
		if end == "" {
			end = "9999"
		}
		in.SKStart = schema.AuditPrefix() + start
		in.SKEnd = schema.AuditPrefix() + end + "￿"
	} else {
		in.SKPrefix = schema.AuditPrefix()
	}

	out, err := r.store.Query(ctx, in)
	if err != nil {
		return nil, apperrors.NewDatabaseError("audit.listByAdmin", err)
	}

	page := &AuditPage{LastKey: out.LastKey}
	for _, item := range out.Items {
		var action domain.AdminAction
		if err := unmarshalEntity(item, &action); err != nil {
			r.logger.Warn("skipping unparsable audit item", zap.Error(err))
			continue
		}
		page.Actions = append(page.Actions, &action)
	}
	return page, nil
}

// ReportQuery filters the cross-admin audit report.
type ReportQuery struct {
	Range  AuditRange
	Action string // exact match when set
	Limit  int32
}

// Report scans the whole table for audit actions in the window, across all
// admins. The scan is bounded; LastKey in the returned page resumes it.
func (r *AuditRepository) Report(ctx context.Context, q ReportQuery, startKey store.Item) (*AuditPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	filter := store.ScanFilter{EntityType: schema.EntityAdminAction}
	if q.Action != "" {
		filter.Equals = map[string]string{"action": q.Action}
	}
	if q.Range.Start != "" || q.Range.End != "" {
		start, end := q.Range.Start, q.Range.End
		if start == "" {
			start = "0000"
		}
		if end == "" {
			end = "9999"
		}
		filter.Between = &store.BetweenClause{Attr: "timestamp", Start: start, End: end + "￿"}
	}

	page := &AuditPage{}
	for pages := 0; pages < auditReportMaxPages; pages++ {
		out, err := r.store.Scan(ctx, store.ScanInput{Filter: filter, Limit: 5 * limit, StartKey: startKey})
		if err != nil {
			return nil, apperrors.NewDatabaseError("audit.report", err)
		}
		for _, item := range out.Items {
			var action domain.AdminAction
			if err := unmarshalEntity(item, &action); err != nil {
				r.logger.Warn("skipping unparsable audit item", zap.Error(err))
				continue
			}
			page.Actions = append(page.Actions, &action)
			if int32(len(page.Actions)) >= limit {
				page.LastKey = out.LastKey
				return page, nil
			}
		}
		if out.LastKey == nil {
			return page, nil
		}
		startKey = out.LastKey
	}
	page.LastKey = startKey
	return page, nil
}

// RecordSecurityEvent appends one security event under its type partition.
func (r *AuditRepository) RecordSecurityEvent(ctx context.Context, event *domain.SecurityEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp == "" {
		event.Timestamp = schema.FormatTime(time.Now())
	}

	item, err := marshalEntity(event, schema.EntitySecurityEvent)
	if err != nil {
		return apperrors.NewDatabaseError("audit.recordSecurityEvent", err)
	}
	item[schema.AttrPK] = s(schema.SecurityEventPK(event.Type))
	item[schema.AttrSK] = s(schema.SecurityEventSK(event.Timestamp, event.ID))

	if err := r.store.Put(ctx, item, false); err != nil {
		return apperrors.NewDatabaseError("audit.recordSecurityEvent", err)
	}
	return nil
}

// SecurityEventPage is one page of security events plus the resume key.
type SecurityEventPage struct {
	Events  []*domain.SecurityEvent
	LastKey store.Item
}

// ListSecurityEvents returns one event type's stream newest first.
func (r *AuditRepository) ListSecurityEvents(ctx context.Context, eventType string, limit int32, startKey store.Item) (*SecurityEventPage, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:       schema.SecurityEventPK(eventType),
		SKPrefix: schema.SecurityEventPrefix(),
		Forward:  false,
		Limit:    limit,
		StartKey: startKey,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("audit.listSecurityEvents", err)
	}

	page := &SecurityEventPage{LastKey: out.LastKey}
	for _, item := range out.Items {
		var event domain.SecurityEvent
		if err := unmarshalEntity(item, &event); err != nil {
			r.logger.Warn("skipping unparsable security event", zap.Error(err))
			continue
		}
		page.Events = append(page.Events, &event)
	}
	return page, nil
}
