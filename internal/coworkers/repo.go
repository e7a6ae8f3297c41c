package coworkers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/pkg/db/models"
)

// Repository defines persistence operations for coworker invitations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindCoworker(ctx context.Context, orderID, sellerID uuid.UUID) (*models.OrderCoworker, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderCoworker, error)
	Create(ctx context.Context, coworker *models.OrderCoworker) error
	Update(ctx context.Context, coworkerID uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coworkers repository bound to the provided DB.
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

func (r *repository) FindCoworker(ctx context.Context, orderID, sellerID uuid.UUID) (*models.OrderCoworker, error) {
	var coworker models.OrderCoworker
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND seller_id = ?", orderID, sellerID).
		First(&coworker).Error
	if err != nil {
		return nil, err
	}
	return &coworker, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderCoworker, error) {
	var coworkers []models.OrderCoworker
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("invited_at ASC").
		Find(&coworkers).Error
	if err != nil {
		return nil, err
	}
	return coworkers, nil
}

func (r *repository) Create(ctx context.Context, coworker *models.OrderCoworker) error {
	return r.db.WithContext(ctx).Create(coworker).Error
}

func (r *repository) Update(ctx context.Context, coworkerID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderCoworker{}).
		Where("id = ?", coworkerID).
		Updates(updates).Error
}
