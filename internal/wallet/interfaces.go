package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/pagination"
)

// Repository defines persistence operations for wallets and their ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	FindByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error)
	// DebitBalance decrements the balance only when sufficient funds remain.
	// Returns false when the guard rejected the debit.
	DebitBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (bool, error)
	CreditBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	ListTransactions(ctx context.Context, query TransactionQuery) ([]models.WalletTransaction, *pagination.Cursor, error)
	CreateReferral(ctx context.Context, referral *models.Referral) error
	CreateCard(ctx context.Context, card *models.WalletCard) error
	ListCards(ctx context.Context, walletID uuid.UUID) ([]models.WalletCard, error)
	FindPrimaryCard(ctx context.Context, walletID uuid.UUID) (*models.WalletCard, error)
	ClearPrimary(ctx context.Context, walletID uuid.UUID) error
	UpdateWallet(ctx context.Context, walletID uuid.UUID, updates map[string]any) error
}

// TransactionQuery filters the ledger listing.
type TransactionQuery struct {
	WalletID uuid.UUID
	Limit    int
	Cursor   *pagination.Cursor
	Type     string
	From     *time.Time
	To       *time.Time
}
