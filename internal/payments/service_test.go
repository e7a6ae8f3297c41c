package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/giglane/giglane-backend/internal/wallet"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/pagination"
)

type stubWalletRepo struct {
	wallet       *models.Wallet
	primaryCard  *models.WalletCard
	debitOK      bool
	debits       []decimal.Decimal
	transactions []models.WalletTransaction
	cards        []models.WalletCard
	updates      []map[string]any
}

func (s *stubWalletRepo) WithTx(tx *gorm.DB) wallet.Repository { return s }

func (s *stubWalletRepo) Create(ctx context.Context, w *models.Wallet) (*models.Wallet, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	s.wallet = w
	return w, nil
}

func (s *stubWalletRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if s.wallet == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.wallet, nil
}

func (s *stubWalletRepo) FindByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	return s.FindByUserID(ctx, uuid.Nil)
}

func (s *stubWalletRepo) DebitBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (bool, error) {
	if !s.debitOK {
		return false, nil
	}
	s.debits = append(s.debits, amount)
	return true, nil
}

func (s *stubWalletRepo) CreditBalance(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	return nil
}

func (s *stubWalletRepo) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	s.transactions = append(s.transactions, *txn)
	return nil
}

func (s *stubWalletRepo) ListTransactions(ctx context.Context, query wallet.TransactionQuery) ([]models.WalletTransaction, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubWalletRepo) CreateReferral(ctx context.Context, referral *models.Referral) error {
	return nil
}

func (s *stubWalletRepo) CreateCard(ctx context.Context, card *models.WalletCard) error {
	s.cards = append(s.cards, *card)
	return nil
}

func (s *stubWalletRepo) ListCards(ctx context.Context, walletID uuid.UUID) ([]models.WalletCard, error) {
	return s.cards, nil
}

func (s *stubWalletRepo) FindPrimaryCard(ctx context.Context, walletID uuid.UUID) (*models.WalletCard, error) {
	if s.primaryCard == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.primaryCard, nil
}

func (s *stubWalletRepo) ClearPrimary(ctx context.Context, walletID uuid.UUID) error { return nil }

func (s *stubWalletRepo) UpdateWallet(ctx context.Context, walletID uuid.UUID, updates map[string]any) error {
	s.updates = append(s.updates, updates)
	return nil
}

type stubProvider struct {
	chargeRef  string
	chargeErr  error
	charges    []decimal.Decimal
	customerID string
	attached   []string
}

func (s *stubProvider) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	if s.customerID == "" {
		s.customerID = "cus_" + uuid.NewString()[:8]
	}
	return s.customerID, nil
}

func (s *stubProvider) AttachPaymentMethod(ctx context.Context, customerID, methodID string) (string, string, error) {
	s.attached = append(s.attached, methodID)
	return "visa", "4242", nil
}

func (s *stubProvider) ChargeOffSession(ctx context.Context, customerID, methodID string, amount decimal.Decimal, description string, metadata map[string]string) (string, error) {
	if s.chargeErr != nil {
		return "", s.chargeErr
	}
	s.charges = append(s.charges, amount)
	if s.chargeRef == "" {
		s.chargeRef = "pi_" + uuid.NewString()[:8]
	}
	return s.chargeRef, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newPaymentsService(t *testing.T, repo *stubWalletRepo, provider *stubProvider) Service {
	t.Helper()
	walletSv, err := wallet.NewService(repo, fakeTxRunner{})
	if err != nil {
		t.Fatalf("wallet.NewService: %v", err)
	}
	svc, err := NewService(repo, walletSv, provider, fakeTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func str(v string) *string { return &v }

func TestCapture_balanceDebitsWalletAndRecordsLedger(t *testing.T) {
	repo := &stubWalletRepo{
		wallet:  &models.Wallet{ID: uuid.New(), UserID: uuid.New(), Balance: decimal.NewFromInt(200)},
		debitOK: true,
	}
	svc := newPaymentsService(t, repo, &stubProvider{})

	result, err := svc.Capture(context.Background(), nil, CaptureInput{
		BuyerID:     repo.wallet.UserID,
		Amount:      decimal.NewFromInt(80),
		Method:      enums.PaymentMethodBalance,
		Description: "Order for gig",
	})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if result.Ref != nil {
		t.Fatal("balance captures have no provider reference")
	}
	if len(repo.debits) != 1 || !repo.debits[0].Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected debits: %+v", repo.debits)
	}
	if len(repo.transactions) != 1 || repo.transactions[0].Type != enums.WalletTransactionTypeDebit {
		t.Fatalf("unexpected ledger rows: %+v", repo.transactions)
	}
}

func TestCapture_balanceInsufficientFundsFails(t *testing.T) {
	repo := &stubWalletRepo{
		wallet:  &models.Wallet{ID: uuid.New(), UserID: uuid.New(), Balance: decimal.NewFromInt(10)},
		debitOK: false,
	}
	svc := newPaymentsService(t, repo, &stubProvider{})

	_, err := svc.Capture(context.Background(), nil, CaptureInput{
		BuyerID: repo.wallet.UserID,
		Amount:  decimal.NewFromInt(80),
		Method:  enums.PaymentMethodBalance,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodePayment {
		t.Fatalf("expected payment error, got %v", err)
	}
	if len(repo.transactions) != 0 {
		t.Fatal("expected no ledger row for a failed capture")
	}
}

func TestCapture_cardChargesProviderWithoutTouchingBalance(t *testing.T) {
	repo := &stubWalletRepo{
		wallet: &models.Wallet{
			ID:                 uuid.New(),
			UserID:             uuid.New(),
			Balance:            decimal.NewFromInt(5),
			ProviderCustomerID: str("cus_123"),
		},
		primaryCard: &models.WalletCard{ID: uuid.New(), ProviderMethodID: "pm_123", IsPrimary: true},
	}
	provider := &stubProvider{chargeRef: "pi_abc"}
	svc := newPaymentsService(t, repo, provider)

	result, err := svc.Capture(context.Background(), nil, CaptureInput{
		BuyerID: repo.wallet.UserID,
		Amount:  decimal.NewFromInt(80),
		Method:  enums.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if result.Ref == nil || *result.Ref != "pi_abc" {
		t.Fatalf("expected provider reference, got %v", result.Ref)
	}
	if len(repo.debits) != 0 {
		t.Fatal("card captures must not touch the balance")
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected ledger row, got %d", len(repo.transactions))
	}
}

func TestCapture_cardDeclineIsPaymentError(t *testing.T) {
	repo := &stubWalletRepo{
		wallet: &models.Wallet{
			ID:                 uuid.New(),
			UserID:             uuid.New(),
			ProviderCustomerID: str("cus_123"),
		},
		primaryCard: &models.WalletCard{ID: uuid.New(), ProviderMethodID: "pm_123"},
	}
	provider := &stubProvider{chargeErr: errors.New("card_declined")}
	svc := newPaymentsService(t, repo, provider)

	_, err := svc.Capture(context.Background(), nil, CaptureInput{
		BuyerID: repo.wallet.UserID,
		Amount:  decimal.NewFromInt(80),
		Method:  enums.PaymentMethodCard,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodePayment {
		t.Fatalf("expected payment error, got %v", err)
	}
}

func TestCapture_cardWithoutProfileFails(t *testing.T) {
	repo := &stubWalletRepo{
		wallet: &models.Wallet{ID: uuid.New(), UserID: uuid.New()},
	}
	svc := newPaymentsService(t, repo, &stubProvider{})

	_, err := svc.Capture(context.Background(), nil, CaptureInput{
		BuyerID: repo.wallet.UserID,
		Amount:  decimal.NewFromInt(80),
		Method:  enums.PaymentMethodCard,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodePayment {
		t.Fatalf("expected payment error, got %v", err)
	}
}

func TestTopUp_chargesCardAndCreditsBalance(t *testing.T) {
	repo := &stubWalletRepo{
		wallet: &models.Wallet{
			ID:                 uuid.New(),
			UserID:             uuid.New(),
			ProviderCustomerID: str("cus_123"),
		},
		primaryCard: &models.WalletCard{ID: uuid.New(), ProviderMethodID: "pm_123"},
	}
	provider := &stubProvider{chargeRef: "pi_topup"}
	svc := newPaymentsService(t, repo, provider)

	err := svc.TopUp(context.Background(), TopUpInput{
		UserID: repo.wallet.UserID,
		Amount: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if len(provider.charges) != 1 || !provider.charges[0].Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected charges: %+v", provider.charges)
	}
	if len(repo.transactions) != 1 || repo.transactions[0].Type != enums.WalletTransactionTypeCredit {
		t.Fatalf("expected credit ledger row, got %+v", repo.transactions)
	}
}

func TestRegisterCard_createsCustomerOnce(t *testing.T) {
	repo := &stubWalletRepo{
		wallet: &models.Wallet{ID: uuid.New(), UserID: uuid.New()},
	}
	provider := &stubProvider{}
	svc := newPaymentsService(t, repo, provider)

	card, err := svc.RegisterCard(context.Background(), RegisterCardInput{
		UserID:      repo.wallet.UserID,
		Email:       "buyer@example.com",
		Name:        "Buyer",
		MethodID:    "pm_new",
		MakePrimary: true,
	})
	if err != nil {
		t.Fatalf("RegisterCard: %v", err)
	}
	if card.Brand != "visa" || card.Last4 != "4242" {
		t.Fatalf("unexpected card details: %+v", card)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("expected the provider customer stored once, got %d updates", len(repo.updates))
	}
	if len(repo.cards) != 1 || !repo.cards[0].IsPrimary {
		t.Fatalf("unexpected stored cards: %+v", repo.cards)
	}
}
