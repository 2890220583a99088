package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/infrastructure/persistence/mappers"
	"sdbridge/internal/infrastructure/persistence/models"
	"sdbridge/internal/shared/logger"
)

// CredentialRepository implements credential.Repository on sqlite.
type CredentialRepository struct {
	db     *gorm.DB
	mapper mappers.CredentialMapper
	logger logger.Interface
}

// NewCredentialRepository creates a new CredentialRepository
func NewCredentialRepository(db *gorm.DB, log logger.Interface) *CredentialRepository {
	return &CredentialRepository{
		db:     db,
		mapper: mappers.NewCredentialMapper(),
		logger: log,
	}
}

// Upsert creates or replaces the credential for a user. An empty secret on
// update keeps the previously saved one, so re-linking without a password
// does not destroy the silent-refresh capability.
func (r *CredentialRepository) Upsert(ctx context.Context, cred *credential.Credential) error {
	model := r.mapper.ToModel(cred)
	model.TokenUpdatedAt = time.Now()

	assignments := map[string]interface{}{
		"remote_id":        model.RemoteID,
		"username":         model.Username,
		"role":             model.Role,
		"token":            model.Token,
		"token_updated_at": model.TokenUpdatedAt,
	}
	if model.Secret != "" {
		assignments["secret"] = model.Secret
	}
	if model.ChatID != 0 {
		assignments["chat_id"] = model.ChatID
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(model).Error
}

// Get returns the credential for the user
func (r *CredentialRepository) Get(ctx context.Context, userID int64) (*credential.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, credential.ErrCredentialNotFound
		}
		return nil, err
	}
	return r.mapper.ToDomain(&model), nil
}

// UpdateToken overwrites the session token
func (r *CredentialRepository) UpdateToken(ctx context.Context, userID int64, token string) error {
	return r.db.WithContext(ctx).Model(&models.CredentialModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"token":            token,
			"token_updated_at": time.Now(),
		}).Error
}

// ClearToken empties the session token, leaving the saved secret intact
func (r *CredentialRepository) ClearToken(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&models.CredentialModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"token":            "",
			"token_updated_at": time.Now(),
		}).Error
}

// ClearSecret removes the saved secret and token (explicit unlink)
func (r *CredentialRepository) ClearSecret(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&models.CredentialModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"secret":           "",
			"token":            "",
			"token_updated_at": time.Now(),
		}).Error
}

// SetChatID records the chat channel used for notifications
func (r *CredentialRepository) SetChatID(ctx context.Context, userID int64, chatID int64) error {
	return r.db.WithContext(ctx).Model(&models.CredentialModel{}).
		Where("user_id = ?", userID).
		Update("chat_id", chatID).Error
}

// SetLocation stores the lazily resolved region/location/address
func (r *CredentialRepository) SetLocation(ctx context.Context, userID int64, region, location, fullAddress string, addressID *int) error {
	return r.db.WithContext(ctx).Model(&models.CredentialModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"region":       region,
			"location":     location,
			"full_address": fullAddress,
			"address_id":   addressID,
		}).Error
}

// ListEligibleByRole returns credentials with the role, a token, and a chat id
func (r *CredentialRepository) ListEligibleByRole(ctx context.Context, role credential.Role) ([]*credential.Credential, error) {
	var rows []models.CredentialModel
	err := r.db.WithContext(ctx).
		Where("role = ? AND token <> '' AND chat_id <> 0", role.String()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(rows), nil
}

// ListWithSecret returns credentials with a saved username+secret and a chat id
func (r *CredentialRepository) ListWithSecret(ctx context.Context) ([]*credential.Credential, error) {
	var rows []models.CredentialModel
	err := r.db.WithContext(ctx).
		Where("username <> '' AND secret <> '' AND chat_id <> 0").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainList(rows), nil
}

func (r *CredentialRepository) toDomainList(rows []models.CredentialModel) []*credential.Credential {
	creds := make([]*credential.Credential, 0, len(rows))
	for i := range rows {
		creds = append(creds, r.mapper.ToDomain(&rows[i]))
	}
	return creds
}
