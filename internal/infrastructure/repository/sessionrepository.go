package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sdbridge/internal/domain/session"
	"sdbridge/internal/infrastructure/persistence/models"
	"sdbridge/internal/shared/logger"
)

// SessionRepository implements session.Repository on sqlite.
type SessionRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB, log logger.Interface) *SessionRepository {
	return &SessionRepository{db: db, logger: log}
}

// Upsert creates or replaces the session for a user
func (r *SessionRepository) Upsert(ctx context.Context, s *session.Session) error {
	model := &models.SessionModel{
		UserID: s.UserID,
		State:  s.State,
		Data:   s.Data,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "data_json", "updated_at"}),
	}).Create(model).Error
}

// Get returns the session for a user
func (r *SessionRepository) Get(ctx context.Context, userID int64) (*session.Session, error) {
	var model models.SessionModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	return &session.Session{
		UserID:    model.UserID,
		State:     model.State,
		Data:      model.Data,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Delete removes the session for a user
func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SessionModel{}).Error
}

// DeleteExpired removes sessions not updated within ttl
func (r *SessionRepository) DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	result := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&models.SessionModel{})
	return result.RowsAffected, result.Error
}
