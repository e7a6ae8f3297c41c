package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giglane/giglane-backend/api/middleware"
	"github.com/giglane/giglane-backend/api/responses"
	"github.com/giglane/giglane-backend/api/validators"
	paysvc "github.com/giglane/giglane-backend/internal/payments"
	walletsvc "github.com/giglane/giglane-backend/internal/wallet"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/logger"
)

// WalletGet returns the acting user's wallet, creating it on first access.
func WalletGet(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		wallet, err := svc.Ensure(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newWalletResponse(wallet))
	}
}

// WalletTransactions lists the acting user's ledger entries, newest first.
func WalletTransactions(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		params := walletsvc.ListTransactionsParams{UserID: middleware.UserIDFromContext(r.Context())}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}

		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		if typeStr := strings.TrimSpace(r.URL.Query().Get("type")); typeStr != "" {
			txType, err := enums.ParseWalletTransactionType(typeStr)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
				return
			}
			params.Type = txType.String()
		}

		result, err := svc.ListTransactions(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transactions := make([]walletTransactionResponse, 0, len(result.Transactions))
		for _, tx := range result.Transactions {
			transactions = append(transactions, walletTransactionResponse{
				ID:          tx.ID,
				Type:        string(tx.Type),
				Amount:      tx.Amount,
				Description: tx.Description,
				OrderID:     tx.OrderID,
				CreatedAt:   tx.CreatedAt,
			})
		}

		responses.WriteSuccess(w, walletTransactionListResponse{
			Transactions: transactions,
			NextCursor:   result.NextCursor,
		})
	}
}

// WalletTopUp charges the user's primary card and credits their balance.
func WalletTopUp(svc paysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload topUpRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := paysvc.TopUpInput{
			UserID: middleware.UserIDFromContext(r.Context()),
			Amount: payload.Amount,
		}

		if err := svc.TopUp(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "credited"})
	}
}

// WalletRegisterCard stores a tokenized payment method against the wallet.
func WalletRegisterCard(svc paysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload registerCardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := paysvc.RegisterCardInput{
			UserID:      middleware.UserIDFromContext(r.Context()),
			Email:       payload.Email,
			Name:        payload.Name,
			MethodID:    payload.MethodID,
			MakePrimary: payload.MakePrimary,
		}

		card, err := svc.RegisterCard(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newWalletCardResponse(card))
	}
}

// WalletListCards lists the payment methods stored against the wallet.
func WalletListCards(svc paysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		cards, err := svc.ListCards(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]walletCardResponse, 0, len(cards))
		for i := range cards {
			out = append(out, newWalletCardResponse(&cards[i]))
		}

		responses.WriteSuccess(w, out)
	}
}

type topUpRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type registerCardRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required"`
	MethodID    string `json:"method_id" validate:"required"`
	MakePrimary bool   `json:"make_primary"`
}

type walletResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	HasCard   bool            `json:"has_card"`
	CreatedAt time.Time       `json:"created_at"`
}

type walletTransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type walletTransactionListResponse struct {
	Transactions []walletTransactionResponse `json:"transactions"`
	NextCursor   string                      `json:"next_cursor,omitempty"`
}

type walletCardResponse struct {
	ID        uuid.UUID `json:"id"`
	Brand     string    `json:"brand"`
	Last4     string    `json:"last4"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func newWalletResponse(wallet *models.Wallet) walletResponse {
	return walletResponse{
		ID:        wallet.ID,
		UserID:    wallet.UserID,
		Balance:   wallet.Balance,
		HasCard:   wallet.ProviderCustomerID != nil,
		CreatedAt: wallet.CreatedAt,
	}
}

func newWalletCardResponse(card *models.WalletCard) walletCardResponse {
	return walletCardResponse{
		ID:        card.ID,
		Brand:     card.Brand,
		Last4:     card.Last4,
		IsPrimary: card.IsPrimary,
		CreatedAt: card.CreatedAt,
	}
}
