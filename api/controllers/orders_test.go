package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giglane/giglane-backend/api/middleware"
	ordersvc "github.com/giglane/giglane-backend/internal/orders"
	"github.com/giglane/giglane-backend/pkg/db/models"
	"github.com/giglane/giglane-backend/pkg/enums"
	"github.com/giglane/giglane-backend/pkg/logger"
)

type testOrdersService struct {
	createFn    func(ctx context.Context, input ordersvc.CreateInput) (*models.Order, error)
	deliverFn   func(ctx context.Context, input ordersvc.DeliverInput) error
	revisionFn  func(ctx context.Context, input ordersvc.RevisionInput) error
	approveFn   func(ctx context.Context, input ordersvc.ApproveInput) error
	reviewFn    func(ctx context.Context, input ordersvc.ReviewInput) error
	listBuyerFn func(ctx context.Context, params ordersvc.ListParams) (*ordersvc.OrderList, error)
	detailFn    func(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*models.Order, error)
}

func (s *testOrdersService) Create(ctx context.Context, input ordersvc.CreateInput) (*models.Order, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.Order{}, nil
}

func (s *testOrdersService) Deliver(ctx context.Context, input ordersvc.DeliverInput) error {
	if s.deliverFn != nil {
		return s.deliverFn(ctx, input)
	}
	return nil
}

func (s *testOrdersService) RequestRevision(ctx context.Context, input ordersvc.RevisionInput) error {
	if s.revisionFn != nil {
		return s.revisionFn(ctx, input)
	}
	return nil
}

func (s *testOrdersService) Approve(ctx context.Context, input ordersvc.ApproveInput) error {
	if s.approveFn != nil {
		return s.approveFn(ctx, input)
	}
	return nil
}

func (s *testOrdersService) SubmitReview(ctx context.Context, input ordersvc.ReviewInput) error {
	if s.reviewFn != nil {
		return s.reviewFn(ctx, input)
	}
	return nil
}

func (s *testOrdersService) ListBuyerOrders(ctx context.Context, params ordersvc.ListParams) (*ordersvc.OrderList, error) {
	if s.listBuyerFn != nil {
		return s.listBuyerFn(ctx, params)
	}
	return &ordersvc.OrderList{}, nil
}

func (s *testOrdersService) ListSellerOrders(ctx context.Context, params ordersvc.ListParams) (*ordersvc.OrderList, error) {
	return &ordersvc.OrderList{}, nil
}

func (s *testOrdersService) Detail(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*models.Order, error) {
	if s.detailFn != nil {
		return s.detailFn(ctx, orderID, actorID, role)
	}
	return &models.Order{}, nil
}

func (s *testOrdersService) AdminDelete(ctx context.Context, orderID uuid.UUID) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func withActor(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestOrderCreateSuccess(t *testing.T) {
	buyerID := uuid.New()
	gigID := uuid.New()
	var captured ordersvc.CreateInput
	svc := &testOrdersService{
		createFn: func(ctx context.Context, input ordersvc.CreateInput) (*models.Order, error) {
			captured = input
			return &models.Order{ID: uuid.New(), GigID: input.GigID, BuyerID: input.BuyerID}, nil
		},
	}

	body := `{"gig_id":"` + gigID.String() + `","package_type":"basic","payment_method":"balance","requirements":"logo refresh"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, buyerID)

	resp := httptest.NewRecorder()
	OrderCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.BuyerID != buyerID {
		t.Fatalf("expected buyer from context, got %s", captured.BuyerID)
	}
	if captured.GigID != gigID {
		t.Fatalf("unexpected gig %s", captured.GigID)
	}
	if captured.PackageType != enums.PackageTypeBasic {
		t.Fatalf("unexpected package type %s", captured.PackageType)
	}
	if captured.PaymentMethod != enums.PaymentMethodBalance {
		t.Fatalf("unexpected payment method %s", captured.PaymentMethod)
	}
}

func TestOrderCreateMissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	OrderCreate(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrderCreateRejectsUnknownPackageType(t *testing.T) {
	body := `{"gig_id":"` + uuid.NewString() + `","package_type":"mega","payment_method":"balance"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = withActor(req, uuid.New())

	resp := httptest.NewRecorder()
	OrderCreate(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderCreateRejectsUnknownFields(t *testing.T) {
	body := `{"gig_id":"` + uuid.NewString() + `","package_type":"basic","payment_method":"balance","surprise":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = withActor(req, uuid.New())

	resp := httptest.NewRecorder()
	OrderCreate(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderDeliverInvalidOrderID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/nope/deliver", strings.NewReader(`{"message":"done"}`))
	req = withActor(req, uuid.New())
	req = addRouteParam(req, "orderId", "nope")

	resp := httptest.NewRecorder()
	OrderDeliver(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderDeliverPassesFileRef(t *testing.T) {
	orderID := uuid.New()
	sellerID := uuid.New()
	var captured ordersvc.DeliverInput
	svc := &testOrdersService{
		deliverFn: func(ctx context.Context, input ordersvc.DeliverInput) error {
			captured = input
			return nil
		},
	}

	body := `{"message":"first cut","file":{"url":"https://cdn/x","storage_id":"orders/x"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/deliver", strings.NewReader(body))
	req = withActor(req, sellerID)
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	OrderDeliver(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.OrderID != orderID || captured.SellerID != sellerID {
		t.Fatal("identifiers not threaded through")
	}
	if captured.File == nil || captured.File.StorageID != "orders/x" {
		t.Fatal("expected file reference")
	}
}

func TestOrdersBuyerListRejectsBadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/bought?limit=zero", nil)
	req = withActor(req, uuid.New())

	resp := httptest.NewRecorder()
	OrdersBuyerList(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrdersBuyerListRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/bought?status=sideways", nil)
	req = withActor(req, uuid.New())

	resp := httptest.NewRecorder()
	OrdersBuyerList(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrdersBuyerListThreadsFilters(t *testing.T) {
	userID := uuid.New()
	var captured ordersvc.ListParams
	svc := &testOrdersService{
		listBuyerFn: func(ctx context.Context, params ordersvc.ListParams) (*ordersvc.OrderList, error) {
			captured = params
			return &ordersvc.OrderList{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/bought?limit=5&status=delivered&cursor=abc", nil)
	req = withActor(req, userID)

	resp := httptest.NewRecorder()
	OrdersBuyerList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if captured.UserID != userID || captured.Limit != 5 || captured.Cursor != "abc" {
		t.Fatalf("params not threaded: %+v", captured)
	}
	if captured.Status == nil || *captured.Status != enums.OrderStatusDelivered {
		t.Fatal("status filter missing")
	}
}

func TestOrderDetailEnvelope(t *testing.T) {
	orderID := uuid.New()
	svc := &testOrdersService{
		detailFn: func(ctx context.Context, id, actorID uuid.UUID, role enums.UserRole) (*models.Order, error) {
			return &models.Order{ID: id, Status: enums.OrderStatusDelivered}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil)
	req = withActor(req, uuid.New())
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	OrderDetail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data orderDetailResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.ID != orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.ID)
	}
	if envelope.Data.Status != string(enums.OrderStatusDelivered) {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}

func TestOrderCreateNilService(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	req = withActor(req, uuid.New())

	resp := httptest.NewRecorder()
	OrderCreate(nil, testLogger())(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
