package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/internal/wallet"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Provider is the external payment processor surface the platform depends on.
type Provider interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerID, methodID string) (brand, last4 string, err error)
	ChargeOffSession(ctx context.Context, customerID, methodID string, amount decimal.Decimal, description string, metadata map[string]string) (string, error)
}

// Capturer is the in-transaction capture surface the orders service uses.
// A capture failure aborts the enclosing transaction, so no order row is
// left behind.
type Capturer interface {
	Capture(ctx context.Context, tx *gorm.DB, input CaptureInput) (*CaptureResult, error)
}

// Service exposes payment operations beyond the in-transaction capture.
type Service interface {
	Capturer
	TopUp(ctx context.Context, input TopUpInput) error
	RegisterCard(ctx context.Context, input RegisterCardInput) (*models.WalletCard, error)
	ListCards(ctx context.Context, userID uuid.UUID) ([]models.WalletCard, error)
}

type service struct {
	wallets  wallet.Repository
	walletSv wallet.Service
	provider Provider
	tx       txRunner
}

// CaptureInput carries everything needed to take funds for an order.
type CaptureInput struct {
	BuyerID     uuid.UUID
	Amount      decimal.Decimal
	Method      enums.PaymentMethod
	Description string
	Metadata    map[string]string
}

// CaptureResult reports the provider receipt reference, when one exists.
// Balance captures have no external reference.
type CaptureResult struct {
	Ref *string
}

// TopUpInput charges the buyer's primary card and credits their balance.
type TopUpInput struct {
	UserID uuid.UUID
	Amount decimal.Decimal
}

// RegisterCardInput stores a tokenized payment method against the wallet.
type RegisterCardInput struct {
	UserID      uuid.UUID
	Email       string
	Name        string
	MethodID    string
	MakePrimary bool
}

// NewService builds a payments service with the required dependencies.
func NewService(wallets wallet.Repository, walletSv wallet.Service, provider Provider, tx txRunner) (Service, error) {
	if wallets == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if walletSv == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		wallets:  wallets,
		walletSv: walletSv,
		provider: provider,
		tx:       tx,
	}, nil
}

func (s *service) Capture(ctx context.Context, tx *gorm.DB, input CaptureInput) (*CaptureResult, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	repo := s.wallets.WithTx(tx)
	w, err := repo.FindByUserID(ctx, input.BuyerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodePayment, "buyer has no wallet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer wallet")
	}

	switch input.Method {
	case enums.PaymentMethodBalance:
		return s.captureFromBalance(ctx, repo, w, input)
	case enums.PaymentMethodCard:
		return s.captureFromCard(ctx, repo, w, input)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
}

func (s *service) captureFromBalance(ctx context.Context, repo wallet.Repository, w *models.Wallet, input CaptureInput) (*CaptureResult, error) {
	ok, err := repo.DebitBalance(ctx, w.ID, input.Amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet balance")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodePayment, "insufficient wallet balance")
	}
	txn := &models.WalletTransaction{
		WalletID:    w.ID,
		Type:        enums.WalletTransactionTypeDebit,
		Amount:      input.Amount,
		Description: input.Description,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record debit transaction")
	}
	return &CaptureResult{}, nil
}

func (s *service) captureFromCard(ctx context.Context, repo wallet.Repository, w *models.Wallet, input CaptureInput) (*CaptureResult, error) {
	if w.ProviderCustomerID == nil || *w.ProviderCustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodePayment, "no payment profile on file")
	}
	card, err := repo.FindPrimaryCard(ctx, w.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodePayment, "no primary card on file")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load primary card")
	}

	ref, err := s.provider.ChargeOffSession(ctx, *w.ProviderCustomerID, card.ProviderMethodID, input.Amount, input.Description, input.Metadata)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "card charge declined")
	}

	// Card payments never touch the balance; the ledger still records them.
	txn := &models.WalletTransaction{
		WalletID:    w.ID,
		Type:        enums.WalletTransactionTypeDebit,
		Amount:      input.Amount,
		Description: input.Description,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record card transaction")
	}
	return &CaptureResult{Ref: &ref}, nil
}

func (s *service) TopUp(ctx context.Context, input TopUpInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	w, err := s.walletSv.Ensure(ctx, input.UserID)
	if err != nil {
		return err
	}
	if w.ProviderCustomerID == nil || *w.ProviderCustomerID == "" {
		return pkgerrors.New(pkgerrors.CodePayment, "no payment profile on file")
	}
	card, err := s.wallets.FindPrimaryCard(ctx, w.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodePayment, "no primary card on file")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load primary card")
	}

	ref, err := s.provider.ChargeOffSession(ctx, *w.ProviderCustomerID, card.ProviderMethodID, input.Amount, "Wallet top-up", map[string]string{
		"user_id": input.UserID.String(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePayment, err, "card charge declined")
	}

	return s.walletSv.Credit(ctx, wallet.CreditInput{
		UserID:      input.UserID,
		Amount:      input.Amount,
		Description: fmt.Sprintf("Top-up via card (ref %s)", ref),
	})
}

func (s *service) RegisterCard(ctx context.Context, input RegisterCardInput) (*models.WalletCard, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.MethodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}

	w, err := s.walletSv.Ensure(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	customerID := ""
	if w.ProviderCustomerID != nil {
		customerID = *w.ProviderCustomerID
	}
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(ctx, input.Email, input.Name)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment customer")
		}
		if err := s.wallets.UpdateWallet(ctx, w.ID, map[string]any{"provider_customer_id": customerID}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment customer")
		}
	}

	brand, last4, err := s.provider.AttachPaymentMethod(ctx, customerID, input.MethodID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach payment method")
	}

	card := &models.WalletCard{
		WalletID:         w.ID,
		ProviderMethodID: input.MethodID,
		Brand:            brand,
		Last4:            last4,
		IsPrimary:        input.MakePrimary,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.wallets.WithTx(tx)
		if input.MakePrimary {
			if err := repo.ClearPrimary(ctx, w.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear primary card")
			}
		}
		if err := repo.CreateCard(ctx, card); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store card")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *service) ListCards(ctx context.Context, userID uuid.UUID) ([]models.WalletCard, error) {
	w, err := s.walletSv.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cards, err := s.wallets.ListCards(ctx, w.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cards")
	}
	return cards, nil
}
