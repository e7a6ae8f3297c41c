package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giglane/giglane-backend/pkg/enums"
)

// FileRef points at an uploaded attachment in object storage.
type FileRef struct {
	URL       string
	StorageID string
}

// CustomPackage carries the inline offer details a custom order requires.
type CustomPackage struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	DeliveryDays int
}

// CreateInput captures everything the order-creation transition needs.
type CreateInput struct {
	GigID         uuid.UUID
	BuyerID       uuid.UUID
	PackageType   enums.PackageType
	Requirements  string
	PaymentMethod enums.PaymentMethod
	Files         []FileRef
	Custom        *CustomPackage
}

// DeliverInput records a seller delivery on an order.
type DeliverInput struct {
	OrderID  uuid.UUID
	SellerID uuid.UUID
	Message  string
	File     *FileRef
}

// RevisionInput is a buyer revision request.
type RevisionInput struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
	Message string
}

// ApproveInput is the buyer's final-delivery approval.
type ApproveInput struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
}

// ReviewInput is post-completion feedback from either party.
type ReviewInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Rating  int
	Comment string
}

// ListParams configures the buyer/seller order listings.
type ListParams struct {
	UserID uuid.UUID
	Status *enums.OrderStatus
	Limit  int
	Cursor string
}

// OrderSummary exposes the aggregated fields returned in the listings.
type OrderSummary struct {
	ID          uuid.UUID         `json:"id"`
	GigID       uuid.UUID         `json:"gig_id"`
	BuyerID     uuid.UUID         `json:"buyer_id"`
	SellerID    uuid.UUID         `json:"seller_id"`
	PackageType enums.PackageType `json:"package_type"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	DueDate     time.Time         `json:"delivery_due_date"`
	CreatedAt   time.Time         `json:"created_at"`
	DeliveredAt *time.Time        `json:"delivered_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
