package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return nil, err
	}
	return wallet, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) FindByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("id = ?", walletID).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) DebitBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE wallets
		SET balance = balance - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND balance >= ?
	`, amount, walletID, amount)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreditBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE wallets
		SET balance = balance + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, amount, walletID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, params TransactionQuery) ([]models.WalletTransaction, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("wallet_id = ?", params.WalletID)
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at <= ?", *params.To)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var txns []models.WalletTransaction
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&txns).Error; err != nil {
		return nil, nil, err
	}

	if len(txns) > normalized {
		next := txns[normalized]
		txns = txns[:normalized]
		return txns, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return txns, nil, nil
}

func (r *repository) CreateReferral(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).Create(referral).Error
}

func (r *repository) CreateCard(ctx context.Context, card *models.WalletCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *repository) ListCards(ctx context.Context, walletID uuid.UUID) ([]models.WalletCard, error) {
	var cards []models.WalletCard
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *repository) FindPrimaryCard(ctx context.Context, walletID uuid.UUID) (*models.WalletCard, error) {
	var card models.WalletCard
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND is_primary = true", walletID).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *repository) ClearPrimary(ctx context.Context, walletID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletCard{}).
		Where("wallet_id = ? AND is_primary = true", walletID).
		UpdateColumn("is_primary", false).Error
}

func (r *repository) UpdateWallet(ctx context.Context, walletID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(updates).Error
}
