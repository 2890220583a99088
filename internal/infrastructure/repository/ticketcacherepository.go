package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/infrastructure/persistence/mappers"
	"sdbridge/internal/infrastructure/persistence/models"
	"sdbridge/internal/shared/logger"
)

// ticketRefreshColumns are the columns overwritten when an existing active
// row is refreshed. last_notified_status is deliberately absent: it is seeded
// on insert and advanced only by AcknowledgeNotified.
var ticketRefreshColumns = []string{
	"viewpoint", "executor_id",
	"status", "sla", "title", "description",
	"created_ts", "estimated_ts", "closed_ts", "last_updated_ts",
	"executor_name", "author_name", "address", "category", "service",
	"raw_json", "updated_at",
}

// TicketCacheRepository implements ticket.Cache on the two-table sqlite
// store. Each method is a single atomic unit; Archive is a read-then-write
// pair whose staleness is tolerated because the remote source is the
// fallback of truth and every worker converges on the next tick.
type TicketCacheRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMapper
	logger logger.Interface
}

// NewTicketCacheRepository creates a new TicketCacheRepository
func NewTicketCacheRepository(db *gorm.DB, log logger.Interface) *TicketCacheRepository {
	return &TicketCacheRepository{
		db:     db,
		mapper: mappers.NewTicketMapper(),
		logger: log,
	}
}

// UpsertActive inserts or refreshes an active record
func (r *TicketCacheRepository) UpsertActive(ctx context.Context, rec *ticket.Record) error {
	model := r.mapper.ToActiveModel(rec)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "ticket_id"}},
		DoUpdates: clause.AssignmentColumns(ticketRefreshColumns),
	}).Create(model).Error
}

// Exists reports whether an active record exists for the key
func (r *TicketCacheRepository) Exists(ctx context.Context, userID int64, ticketID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TicketActiveModel{}).
		Where("user_id = ? AND ticket_id = ?", userID, ticketID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AcknowledgeNotified sets last_notified_status after a notification send
func (r *TicketCacheRepository) AcknowledgeNotified(ctx context.Context, userID int64, ticketID int, status ticket.Status) error {
	return r.db.WithContext(ctx).Model(&models.TicketActiveModel{}).
		Where("user_id = ? AND ticket_id = ?", userID, ticketID).
		Update("last_notified_status", status.String()).Error
}

// Archive moves an active record into the archived table. Archiving a key
// with no active row is a no-op, which makes repeated archival idempotent.
func (r *TicketCacheRepository) Archive(ctx context.Context, userID int64, ticketID int) error {
	var active models.TicketActiveModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ticket_id = ?", userID, ticketID).
		First(&active).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	archived := r.mapper.ToArchivedModel(&active)
	archived.ArchivedAt = time.Now()

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "ticket_id"}},
		UpdateAll: true,
	}).Create(archived).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Where("user_id = ? AND ticket_id = ?", userID, ticketID).
		Delete(&models.TicketActiveModel{}).Error
}

// PruneActiveNotIn deletes active records for (user, viewpoint) outside keepIDs
func (r *TicketCacheRepository) PruneActiveNotIn(ctx context.Context, userID int64, viewpoint ticket.Viewpoint, keepIDs []int) (int64, error) {
	query := r.scopeViewpoint(r.db.WithContext(ctx).Where("user_id = ?", userID), viewpoint)
	if len(keepIDs) > 0 {
		query = query.Where("ticket_id NOT IN ?", keepIDs)
	}
	result := query.Delete(&models.TicketActiveModel{})
	return result.RowsAffected, result.Error
}

// ListActive returns active records for display, most recently refreshed first
func (r *TicketCacheRepository) ListActive(ctx context.Context, userID int64, viewpoint ticket.Viewpoint) ([]*ticket.Record, error) {
	var rows []models.TicketActiveModel
	err := r.scopeViewpoint(r.db.WithContext(ctx).Where("user_id = ?", userID), viewpoint).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]*ticket.Record, 0, len(rows))
	for i := range rows {
		records = append(records, r.mapper.ActiveToDomain(&rows[i]))
	}
	return records, nil
}

// ListArchived returns archived records for display, most recently archived first
func (r *TicketCacheRepository) ListArchived(ctx context.Context, userID int64, viewpoint ticket.Viewpoint) ([]*ticket.Record, error) {
	var rows []models.TicketArchivedModel
	err := r.scopeViewpoint(r.db.WithContext(ctx).Where("user_id = ?", userID), viewpoint).
		Order("archived_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]*ticket.Record, 0, len(rows))
	for i := range rows {
		records = append(records, r.mapper.ArchivedToDomain(&rows[i]))
	}
	return records, nil
}

// GetActive returns the active record for the key
func (r *TicketCacheRepository) GetActive(ctx context.Context, userID int64, ticketID int) (*ticket.Record, error) {
	var model models.TicketActiveModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ticket_id = ?", userID, ticketID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ticket.ErrRecordNotFound
		}
		return nil, err
	}
	return r.mapper.ActiveToDomain(&model), nil
}

// WatchPairs returns every tracked (user, ticket) pair across all users
func (r *TicketCacheRepository) WatchPairs(ctx context.Context) ([]ticket.WatchPair, error) {
	var rows []models.TicketActiveModel
	err := r.db.WithContext(ctx).
		Select("user_id", "ticket_id", "viewpoint", "last_notified_status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	pairs := make([]ticket.WatchPair, 0, len(rows))
	for i := range rows {
		pairs = append(pairs, ticket.WatchPair{
			UserID:             rows[i].UserID,
			TicketID:           rows[i].TicketID,
			Viewpoint:          ticket.NormalizeViewpoint(rows[i].Viewpoint),
			LastNotifiedStatus: ticket.NormalizeStatus(rows[i].LastNotifiedStatus),
		})
	}
	return pairs, nil
}

// DeleteArchivedBefore deletes archived records older than cutoff
func (r *TicketCacheRepository) DeleteArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("archived_at < ?", cutoff).
		Delete(&models.TicketArchivedModel{})
	return result.RowsAffected, result.Error
}

// scopeViewpoint filters by viewpoint tag. Blank tags predate viewpoint
// tracking and are treated as USER.
func (r *TicketCacheRepository) scopeViewpoint(query *gorm.DB, viewpoint ticket.Viewpoint) *gorm.DB {
	if viewpoint == ticket.ViewpointUser {
		return query.Where("(viewpoint IS NULL OR viewpoint = '' OR viewpoint = ?)", ticket.ViewpointUser.String())
	}
	return query.Where("viewpoint = ?", viewpoint.String())
}
