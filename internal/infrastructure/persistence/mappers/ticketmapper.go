package mappers

import (
	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/infrastructure/persistence/models"
)

// TicketMapper handles conversion between ticket records and GORM models for
// both the active and archived tables.
type TicketMapper interface {
	// ToActiveModel converts a record to an active-table model.
	ToActiveModel(rec *ticket.Record) *models.TicketActiveModel

	// ToArchivedModel converts an active-table model into an archived-table
	// model, dropping last_notified_status.
	ToArchivedModel(model *models.TicketActiveModel) *models.TicketArchivedModel

	// ActiveToDomain converts an active-table model to a record.
	ActiveToDomain(model *models.TicketActiveModel) *ticket.Record

	// ArchivedToDomain converts an archived-table model to a record.
	ArchivedToDomain(model *models.TicketArchivedModel) *ticket.Record
}

// TicketMapperImpl is the concrete implementation of TicketMapper.
type TicketMapperImpl struct{}

// NewTicketMapper creates a new TicketMapper.
func NewTicketMapper() TicketMapper {
	return &TicketMapperImpl{}
}

// ToActiveModel converts a record to an active-table model
func (m *TicketMapperImpl) ToActiveModel(rec *ticket.Record) *models.TicketActiveModel {
	return &models.TicketActiveModel{
		UserID:             rec.UserID,
		TicketID:           rec.TicketID,
		Viewpoint:          rec.Viewpoint.String(),
		ExecutorID:         rec.ExecutorID,
		Status:             rec.Status.String(),
		SLA:                rec.SLA,
		Title:              rec.Title,
		Description:        rec.Description,
		CreatedTS:          rec.CreatedTS,
		EstimatedTS:        rec.EstimatedTS,
		ClosedTS:           rec.ClosedTS,
		LastUpdatedTS:      rec.LastUpdatedTS,
		ExecutorName:       rec.ExecutorName,
		AuthorName:         rec.AuthorName,
		Address:            rec.Address,
		Category:           rec.Category,
		Service:            rec.Service,
		Raw:                rec.Raw,
		LastNotifiedStatus: rec.Status.String(),
	}
}

// ToArchivedModel converts an active-table model into an archived-table model
func (m *TicketMapperImpl) ToArchivedModel(model *models.TicketActiveModel) *models.TicketArchivedModel {
	return &models.TicketArchivedModel{
		UserID:        model.UserID,
		TicketID:      model.TicketID,
		Viewpoint:     model.Viewpoint,
		ExecutorID:    model.ExecutorID,
		Status:        model.Status,
		SLA:           model.SLA,
		Title:         model.Title,
		Description:   model.Description,
		CreatedTS:     model.CreatedTS,
		EstimatedTS:   model.EstimatedTS,
		ClosedTS:      model.ClosedTS,
		LastUpdatedTS: model.LastUpdatedTS,
		ExecutorName:  model.ExecutorName,
		AuthorName:    model.AuthorName,
		Address:       model.Address,
		Category:      model.Category,
		Service:       model.Service,
		Raw:           model.Raw,
	}
}

// ActiveToDomain converts an active-table model to a record
func (m *TicketMapperImpl) ActiveToDomain(model *models.TicketActiveModel) *ticket.Record {
	return &ticket.Record{
		UserID:             model.UserID,
		TicketID:           model.TicketID,
		Viewpoint:          ticket.NormalizeViewpoint(model.Viewpoint),
		ExecutorID:         model.ExecutorID,
		Status:             ticket.NormalizeStatus(model.Status),
		SLA:                model.SLA,
		Title:              model.Title,
		Description:        model.Description,
		CreatedTS:          model.CreatedTS,
		EstimatedTS:        model.EstimatedTS,
		ClosedTS:           model.ClosedTS,
		LastUpdatedTS:      model.LastUpdatedTS,
		ExecutorName:       model.ExecutorName,
		AuthorName:         model.AuthorName,
		Address:            model.Address,
		Category:           model.Category,
		Service:            model.Service,
		Raw:                model.Raw,
		LastNotifiedStatus: ticket.NormalizeStatus(model.LastNotifiedStatus),
		UpdatedAt:          model.UpdatedAt,
	}
}

// ArchivedToDomain converts an archived-table model to a record
func (m *TicketMapperImpl) ArchivedToDomain(model *models.TicketArchivedModel) *ticket.Record {
	return &ticket.Record{
		UserID:        model.UserID,
		TicketID:      model.TicketID,
		Viewpoint:     ticket.NormalizeViewpoint(model.Viewpoint),
		ExecutorID:    model.ExecutorID,
		Status:        ticket.NormalizeStatus(model.Status),
		SLA:           model.SLA,
		Title:         model.Title,
		Description:   model.Description,
		CreatedTS:     model.CreatedTS,
		EstimatedTS:   model.EstimatedTS,
		ClosedTS:      model.ClosedTS,
		LastUpdatedTS: model.LastUpdatedTS,
		ExecutorName:  model.ExecutorName,
		AuthorName:    model.AuthorName,
		Address:       model.Address,
		Category:      model.Category,
		Service:       model.Service,
		Raw:           model.Raw,
		ArchivedAt:    model.ArchivedAt,
	}
}
