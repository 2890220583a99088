package mappers

import (
	"sdbridge/internal/domain/credential"
	"sdbridge/internal/infrastructure/persistence/models"
)

// CredentialMapper handles conversion between Credential domain and model.
type CredentialMapper interface {
	ToModel(cred *credential.Credential) *models.CredentialModel
	ToDomain(model *models.CredentialModel) *credential.Credential
}

// CredentialMapperImpl is the concrete implementation of CredentialMapper.
type CredentialMapperImpl struct{}

// NewCredentialMapper creates a new CredentialMapper.
func NewCredentialMapper() CredentialMapper {
	return &CredentialMapperImpl{}
}

// ToModel converts domain entity to GORM model
func (m *CredentialMapperImpl) ToModel(cred *credential.Credential) *models.CredentialModel {
	return &models.CredentialModel{
		UserID:         cred.UserID,
		RemoteID:       cred.RemoteID,
		Username:       cred.Username,
		Role:           cred.Role.String(),
		Secret:         cred.Secret,
		Token:          cred.Token,
		ChatID:         cred.ChatID,
		Region:         cred.Region,
		Location:       cred.Location,
		FullAddress:    cred.FullAddress,
		AddressID:      cred.AddressID,
		TokenUpdatedAt: cred.TokenUpdatedAt,
		LinkedAt:       cred.LinkedAt,
	}
}

// ToDomain converts GORM model to domain entity
func (m *CredentialMapperImpl) ToDomain(model *models.CredentialModel) *credential.Credential {
	return &credential.Credential{
		UserID:         model.UserID,
		RemoteID:       model.RemoteID,
		Username:       model.Username,
		Role:           credential.NormalizeRole(model.Role),
		Secret:         model.Secret,
		Token:          model.Token,
		ChatID:         model.ChatID,
		Region:         model.Region,
		Location:       model.Location,
		FullAddress:    model.FullAddress,
		AddressID:      model.AddressID,
		TokenUpdatedAt: model.TokenUpdatedAt,
		LinkedAt:       model.LinkedAt,
	}
}
