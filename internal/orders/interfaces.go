package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/pagination"
)

// Repository defines persistence operations for the order aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderFiles(ctx context.Context, files []models.OrderFile) error
	CreateDelivery(ctx context.Context, delivery *models.OrderDelivery) error
	CreateRevisionRequest(ctx context.Context, request *models.OrderRevisionRequest) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindGig(ctx context.Context, gigID uuid.UUID) (*models.Gig, error)
	CountRevisionRequests(ctx context.Context, orderID uuid.UUID) (int64, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	// CompleteDelivered applies updates only while the order is still
	// delivered and not yet completed. Returns false when another writer
	// (manual approval or the sweep) won the race.
	CompleteDelivered(ctx context.Context, orderID uuid.UUID, updates map[string]any) (bool, error)
	ListOrders(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error)
	FindStaleDeliveredOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type listOrdersParams struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   string
	Limit    int
	Cursor   *pagination.Cursor
}
