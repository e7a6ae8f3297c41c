package disputes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/pkg/db/models"
)

// Repository defines persistence operations for dispute resolution.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindResolutionByOrder(ctx context.Context, orderID uuid.UUID) (*models.ResolutionRequest, error)
	CreateResolution(ctx context.Context, resolution *models.ResolutionRequest) error
	UpdateResolution(ctx context.Context, resolutionID uuid.UUID, updates map[string]any) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	// NextTicketNumber atomically bumps the resolution counter and returns
	// the new value.
	NextTicketNumber(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a disputes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindResolutionByOrder(ctx context.Context, orderID uuid.UUID) (*models.ResolutionRequest, error) {
	var resolution models.ResolutionRequest
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&resolution).Error
	if err != nil {
		return nil, err
	}
	return &resolution, nil
}

func (r *repository) CreateResolution(ctx context.Context, resolution *models.ResolutionRequest) error {
	return r.db.WithContext(ctx).Create(resolution).Error
}

func (r *repository) UpdateResolution(ctx context.Context, resolutionID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ResolutionRequest{}).
		Where("id = ?", resolutionID).
		Updates(updates).Error
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) NextTicketNumber(ctx context.Context) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		UPDATE ticket_counters
		SET value = value + 1
		WHERE name = 'resolution'
		RETURNING value
	`).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
