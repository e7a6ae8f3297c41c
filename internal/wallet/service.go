package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/pkg/db"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines wallet ledger operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Ensure(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	ListTransactions(ctx context.Context, params ListTransactionsParams) (*TransactionList, error)
	Credit(ctx context.Context, input CreditInput) error
	Debit(ctx context.Context, input DebitInput) error
	CreditReferral(ctx context.Context, input ReferralCreditInput) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// ListTransactionsParams configures the ledger listing.
type ListTransactionsParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
	Type   string
}

// TransactionList wraps the paginated ledger plus the next page cursor.
type TransactionList struct {
	Transactions []models.WalletTransaction `json:"transactions"`
	NextCursor   string                     `json:"next_cursor,omitempty"`
}

// CreditInput adds funds to a user's wallet.
type CreditInput struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Description string
	OrderID     *uuid.UUID
}

// DebitInput removes funds from a user's wallet.
type DebitInput struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Description string
	OrderID     *uuid.UUID
}

// ReferralCreditInput rewards a referrer for a completed order. Keyed by
// order id so retries are idempotent.
type ReferralCreditInput struct {
	ReferrerID     uuid.UUID
	ReferredUserID uuid.UUID
	OrderID        uuid.UUID
	Amount         decimal.Decimal
}

// NewService builds a wallet service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	wallet, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	return wallet, nil
}

func (s *service) Ensure(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	wallet, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}

	created, err := s.repo.Create(ctx, &models.Wallet{UserID: userID, Balance: decimal.Zero})
	if err != nil {
		// Lost the creation race: another request inserted the row first.
		if db.IsUniqueViolation(err, "") {
			return s.Get(ctx, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet")
	}
	return created, nil
}

func (s *service) ListTransactions(ctx context.Context, params ListTransactionsParams) (*TransactionList, error) {
	wallet, err := s.Get(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	query := TransactionQuery{
		WalletID: wallet.ID,
		Limit:    params.Limit,
		Type:     params.Type,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListTransactions(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &TransactionList{Transactions: rows, NextCursor: cursor}, nil
}

func (s *service) Credit(ctx context.Context, input CreditInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	wallet, err := s.Ensure(ctx, input.UserID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreditBalance(ctx, wallet.ID, input.Amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet balance")
		}
		txn := &models.WalletTransaction{
			WalletID:    wallet.ID,
			Type:        enums.WalletTransactionTypeCredit,
			Amount:      input.Amount,
			Description: input.Description,
			OrderID:     input.OrderID,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record credit transaction")
		}
		return nil
	})
}

func (s *service) Debit(ctx context.Context, input DebitInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	wallet, err := s.Get(ctx, input.UserID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.DebitBalance(ctx, wallet.ID, input.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet balance")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodePayment, "insufficient wallet balance")
		}
		txn := &models.WalletTransaction{
			WalletID:    wallet.ID,
			Type:        enums.WalletTransactionTypeDebit,
			Amount:      input.Amount,
			Description: input.Description,
			OrderID:     input.OrderID,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record debit transaction")
		}
		return nil
	})
}

func (s *service) CreditReferral(ctx context.Context, input ReferralCreditInput) error {
	if input.ReferrerID == uuid.Nil || input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "referrer and order ids required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	wallet, err := s.Ensure(ctx, input.ReferrerID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		referral := &models.Referral{
			WalletID:       wallet.ID,
			ReferredUserID: input.ReferredUserID,
			OrderID:        input.OrderID,
			CreditsEarned:  input.Amount,
		}
		if err := repo.CreateReferral(ctx, referral); err != nil {
			// Already credited for this order.
			if db.IsUniqueViolation(err, "referrals_order_id_key") {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record referral")
		}
		if err := repo.CreditBalance(ctx, wallet.ID, input.Amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit referral reward")
		}
		txn := &models.WalletTransaction{
			WalletID:    wallet.ID,
			Type:        enums.WalletTransactionTypeCredit,
			Amount:      input.Amount,
			Description: fmt.Sprintf("Referral reward for order %s", input.OrderID),
			OrderID:     &input.OrderID,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record referral transaction")
		}
		return nil
	})
}
