package supplierorders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/internal/orders"
	"github.com/mateovidal/dropcart-backend/internal/suppliers"
	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
	"github.com/mateovidal/dropcart-backend/pkg/pagination"
	"github.com/mateovidal/dropcart-backend/pkg/types"
)

type fakeRepo struct {
	rows map[uuid.UUID]*models.SupplierOrder
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]*models.SupplierOrder{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, row *models.SupplierOrder) error {
	f.rows[row.ID] = row
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.SupplierOrder, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]models.SupplierOrder, error) {
	var out []models.SupplierOrder
	for _, row := range f.rows {
		if row.OrderID == orderID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListSweepable(_ context.Context, limit int) ([]models.SupplierOrder, error) {
	var out []models.SupplierOrder
	for _, row := range f.rows {
		if row.SupplierOrderRef != nil && !row.Status.IsTerminal() && row.Status != enums.SupplierOrderStatusPending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			row.Status = value.(enums.SupplierOrderStatus)
		case "supplier_order_ref":
			ref := value.(string)
			row.SupplierOrderRef = &ref
		case "total_cost_cents":
			row.TotalCostCents = value.(int)
		case "tracking_number":
			v := value.(string)
			row.TrackingNumber = &v
		case "tracking_carrier":
			v := value.(string)
			row.TrackingCarrier = &v
		case "tracking_url":
			v := value.(string)
			row.TrackingURL = &v
		case "tracking_status":
			v := value.(enums.TrackingStatus)
			row.TrackingStatus = &v
		case "tracking_updated_at":
			v := value.(time.Time)
			row.TrackingUpdated = &v
		case "error_message":
			v := value.(string)
			row.ErrorMessage = &v
		}
	}
	return nil
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*models.Supplier
}

func (f *fakeSupplierRepo) WithTx(tx *gorm.DB) suppliers.Repository { return f }

func (f *fakeSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Supplier, error) {
	s, ok := f.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSupplierRepo) ListByMerchant(_ context.Context, merchantID uuid.UUID) ([]models.Supplier, error) {
	var out []models.Supplier
	for _, s := range f.suppliers {
		if s.MerchantID == merchantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeOrdersRepo struct {
	orders   map[uuid.UUID]*models.MerchantOrder
	timeline map[uuid.UUID][]string
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{
		orders:   map[uuid.UUID]*models.MerchantOrder{},
		timeline: map[uuid.UUID][]string{},
	}
}

func (f *fakeOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrdersRepo) Create(_ context.Context, order *models.MerchantOrder) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrdersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.MerchantOrder, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrdersRepo) List(_ context.Context, merchantID uuid.UUID, _ pagination.Params) ([]models.MerchantOrder, int64, error) {
	var out []models.MerchantOrder
	for _, o := range f.orders {
		if o.MerchantID == merchantID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrdersRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	order, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			order.Status = value.(enums.OrderStatus)
		case "fulfillment_status":
			order.FulfillmentStatus = value.(enums.OrderFulfillmentStatus)
		}
	}
	return nil
}

func (f *fakeOrdersRepo) AppendTimeline(_ context.Context, id uuid.UUID, message string) error {
	f.timeline[id] = append(f.timeline[id], message)
	return nil
}

func (f *fakeOrdersRepo) SetLineItemsFulfilled(_ context.Context, ids []uuid.UUID, fulfilled bool) error {
	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	for _, order := range f.orders {
		for i := range order.Items {
			if wanted[order.Items[i].ID] {
				order.Items[i].Fulfilled = fulfilled
			}
		}
	}
	return nil
}

type fakeAdapter struct {
	createOrder    func(ctx context.Context, req suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error)
	getTracking    func(ctx context.Context, ref string) (*suppliers.TrackingInfo, error)
	getFulfillment func(ctx context.Context, ref string) (*suppliers.FulfillmentInfo, error)
}

func (f *fakeAdapter) TestConnection(context.Context) (*suppliers.ConnectionResult, error) {
	return &suppliers.ConnectionResult{Success: true}, nil
}

func (f *fakeAdapter) FetchProducts(context.Context, int, int) (*suppliers.ProductPage, error) {
	return &suppliers.ProductPage{}, nil
}

func (f *fakeAdapter) CreateOrder(ctx context.Context, req suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
	return f.createOrder(ctx, req)
}

func (f *fakeAdapter) GetTracking(ctx context.Context, ref string) (*suppliers.TrackingInfo, error) {
	if f.getTracking == nil {
		return nil, nil
	}
	return f.getTracking(ctx, ref)
}

func (f *fakeAdapter) GetFulfillment(ctx context.Context, ref string) (*suppliers.FulfillmentInfo, error) {
	if f.getFulfillment == nil {
		return nil, nil
	}
	return f.getFulfillment(ctx, ref)
}

type fakeResolver struct {
	adapter suppliers.Adapter
	err     error
}

func (f *fakeResolver) AdapterFor(*models.Supplier) (suppliers.Adapter, error) {
	return f.adapter, f.err
}

type noopTxRunner struct{}

func (noopTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type trackerFixture struct {
	svc       Service
	repo      *fakeRepo
	orders    *fakeOrdersRepo
	adapter   *fakeAdapter
	supplier  *models.Supplier
	order     *models.MerchantOrder
	lineItems []uuid.UUID
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()

	merchantID := uuid.New()
	supplier := &models.Supplier{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Type:       enums.SupplierTypeREST,
		Name:       "Acme Wholesale",
		Active:     true,
	}

	lineItemA := uuid.New()
	lineItemB := uuid.New()
	order := &models.MerchantOrder{
		ID:          uuid.New(),
		MerchantID:  merchantID,
		OrderNumber: 1001,
		Status:      enums.OrderStatusProcessing,
		Items: []models.OrderLineItem{
			{ID: lineItemA, Qty: 2, UnitCostCents: 1000},
			{ID: lineItemB, Qty: 1, UnitCostCents: 2500},
		},
	}

	repo := newFakeRepo()
	ordersRepo := newFakeOrdersRepo()
	require.NoError(t, ordersRepo.Create(context.Background(), order))

	adapter := &fakeAdapter{}
	svc, err := NewService(
		repo,
		&fakeSupplierRepo{suppliers: map[uuid.UUID]*models.Supplier{supplier.ID: supplier}},
		ordersRepo,
		&fakeResolver{adapter: adapter},
		noopTxRunner{},
		logger.New(logger.Options{ServiceName: "test"}),
	)
	require.NoError(t, err)

	return &trackerFixture{
		svc:       svc,
		repo:      repo,
		orders:    ordersRepo,
		adapter:   adapter,
		supplier:  supplier,
		order:     order,
		lineItems: []uuid.UUID{lineItemA, lineItemB},
	}
}

func (fx *trackerFixture) createInput() CreateInput {
	return CreateInput{
		Order:      fx.order,
		SupplierID: fx.supplier.ID,
		Items: types.SupplierOrderItems{
			{ProductID: uuid.New(), LineItemID: fx.lineItems[0], Qty: 2, UnitCostCents: 1000},
			{ProductID: uuid.New(), LineItemID: fx.lineItems[1], Qty: 1, UnitCostCents: 2500},
		},
	}
}

func TestCreateSubmitsAfterPendingRow(t *testing.T) {
	fx := newTrackerFixture(t)

	var observedStatus enums.SupplierOrderStatus
	fx.adapter.createOrder = func(context.Context, suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
		// the pending row must exist before the adapter is called
		for _, row := range fx.repo.rows {
			observedStatus = row.Status
		}
		return &suppliers.CreateOrderResult{SupplierOrderRef: "SUP-1"}, nil
	}

	result, err := fx.svc.Create(context.Background(), fx.createInput())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "SUP-1", result.SupplierOrderRef)
	assert.Equal(t, enums.SupplierOrderStatusPending, observedStatus)

	row := fx.repo.rows[result.SupplierOrderID]
	require.NotNil(t, row)
	assert.Equal(t, enums.SupplierOrderStatusSubmitted, row.Status)
	require.NotNil(t, row.SupplierOrderRef)
	assert.Equal(t, "SUP-1", *row.SupplierOrderRef)
	assert.Equal(t, 4500, row.TotalCostCents)
}

func TestCreateAppliesCostCorrection(t *testing.T) {
	fx := newTrackerFixture(t)
	fx.adapter.createOrder = func(context.Context, suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
		return &suppliers.CreateOrderResult{SupplierOrderRef: "SUP-2", TotalCostCents: 4700}, nil
	}

	result, err := fx.svc.Create(context.Background(), fx.createInput())
	require.NoError(t, err)
	assert.Equal(t, 4700, fx.repo.rows[result.SupplierOrderID].TotalCostCents)
}

func TestCreateRecordsAdapterFailure(t *testing.T) {
	fx := newTrackerFixture(t)
	fx.adapter.createOrder = func(context.Context, suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
		return nil, pkgerrors.New(pkgerrors.CodeSupplierRejected, "sku out of stock")
	}

	result, err := fx.svc.Create(context.Background(), fx.createInput())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "out of stock")

	row := fx.repo.rows[result.SupplierOrderID]
	require.NotNil(t, row)
	assert.Equal(t, enums.SupplierOrderStatusFailed, row.Status)
	require.NotNil(t, row.ErrorMessage)
	assert.Contains(t, *row.ErrorMessage, "out of stock")
}

func TestRefreshTrackingProgression(t *testing.T) {
	fx := newTrackerFixture(t)
	fx.adapter.createOrder = func(context.Context, suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
		return &suppliers.CreateOrderResult{SupplierOrderRef: "SUP-3"}, nil
	}
	result, err := fx.svc.Create(context.Background(), fx.createInput())
	require.NoError(t, err)

	// poll 1: in transit -> shipped, line items fulfilled
	fx.adapter.getTracking = func(context.Context, string) (*suppliers.TrackingInfo, error) {
		return &suppliers.TrackingInfo{
			TrackingNumber: "1Z999",
			Carrier:        "UPS",
			Status:         enums.TrackingStatusInTransit,
		}, nil
	}
	info, err := fx.svc.RefreshTracking(context.Background(), result.SupplierOrderID)
	require.NoError(t, err)
	require.NotNil(t, info)

	row := fx.repo.rows[result.SupplierOrderID]
	assert.Equal(t, enums.SupplierOrderStatusShipped, row.Status)
	require.NotNil(t, row.TrackingNumber)
	assert.Equal(t, "1Z999", *row.TrackingNumber)

	for _, item := range fx.order.Items {
		assert.True(t, item.Fulfilled)
	}
	assert.Equal(t, enums.OrderFulfillmentStatusFulfilled, fx.order.FulfillmentStatus)

	// poll 2: delivered -> terminal; the single supplier order delivers the
	// whole order
	fx.adapter.getTracking = func(context.Context, string) (*suppliers.TrackingInfo, error) {
		return &suppliers.TrackingInfo{Status: enums.TrackingStatusDelivered}, nil
	}
	_, err = fx.svc.RefreshTracking(context.Background(), result.SupplierOrderID)
	require.NoError(t, err)
	assert.Equal(t, enums.SupplierOrderStatusDelivered, row.Status)
	assert.Equal(t, enums.OrderStatusCompleted, fx.order.Status)

	// poll 3: terminal rows are idempotent no-ops
	fx.adapter.getTracking = func(context.Context, string) (*suppliers.TrackingInfo, error) {
		t.Fatal("terminal supplier order must not hit the adapter")
		return nil, nil
	}
	_, err = fx.svc.RefreshTracking(context.Background(), result.SupplierOrderID)
	require.NoError(t, err)
	assert.Equal(t, enums.SupplierOrderStatusDelivered, row.Status)
}

func TestRefreshTrackingExceptionUnfulfillsItems(t *testing.T) {
	fx := newTrackerFixture(t)
	fx.adapter.createOrder = func(context.Context, suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
		return &suppliers.CreateOrderResult{SupplierOrderRef: "SUP-4"}, nil
	}
	result, err := fx.svc.Create(context.Background(), fx.createInput())
	require.NoError(t, err)

	fx.adapter.getTracking = func(context.Context, string) (*suppliers.TrackingInfo, error) {
		return &suppliers.TrackingInfo{Status: enums.TrackingStatusInTransit}, nil
	}
	_, err = fx.svc.RefreshTracking(context.Background(), result.SupplierOrderID)
	require.NoError(t, err)

	fx.adapter.getTracking = func(context.Context, string) (*suppliers.TrackingInfo, error) {
		return &suppliers.TrackingInfo{Status: enums.TrackingStatusException}, nil
	}
	_, err = fx.svc.RefreshTracking(context.Background(), result.SupplierOrderID)
	require.NoError(t, err)

	row := fx.repo.rows[result.SupplierOrderID]
	assert.Equal(t, enums.SupplierOrderStatusFailed, row.Status)
	for _, item := range fx.order.Items {
		assert.False(t, item.Fulfilled)
	}
	assert.Equal(t, enums.OrderFulfillmentStatusUnfulfilled, fx.order.FulfillmentStatus)
}

func TestRefreshTrackingFulfillmentFallback(t *testing.T) {
	fx := newTrackerFixture(t)
	fx.adapter.createOrder = func(context.Context, suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
		return &suppliers.CreateOrderResult{SupplierOrderRef: "SUP-5"}, nil
	}
	result, err := fx.svc.Create(context.Background(), fx.createInput())
	require.NoError(t, err)

	// no tracking yet, but the supplier says the goods went out
	fx.adapter.getTracking = func(context.Context, string) (*suppliers.TrackingInfo, error) {
		return nil, nil
	}
	fx.adapter.getFulfillment = func(context.Context, string) (*suppliers.FulfillmentInfo, error) {
		return &suppliers.FulfillmentInfo{Fulfilled: true, Status: "shipped"}, nil
	}

	info, err := fx.svc.RefreshTracking(context.Background(), result.SupplierOrderID)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, enums.TrackingStatusInTransit, info.Status)
	assert.Equal(t, enums.SupplierOrderStatusShipped, fx.repo.rows[result.SupplierOrderID].Status)
}

func TestRefreshTrackingNoRefIsNoop(t *testing.T) {
	fx := newTrackerFixture(t)

	row := &models.SupplierOrder{
		ID:         uuid.New(),
		OrderID:    fx.order.ID,
		SupplierID: fx.supplier.ID,
		MerchantID: fx.order.MerchantID,
		Status:     enums.SupplierOrderStatusPending,
	}
	require.NoError(t, fx.repo.Create(context.Background(), row))

	info, err := fx.svc.RefreshTracking(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Equal(t, enums.SupplierOrderStatusPending, row.Status)
}

func TestRefreshTrackingPollFailurePropagates(t *testing.T) {
	fx := newTrackerFixture(t)
	fx.adapter.createOrder = func(context.Context, suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
		return &suppliers.CreateOrderResult{SupplierOrderRef: "SUP-6"}, nil
	}
	result, err := fx.svc.Create(context.Background(), fx.createInput())
	require.NoError(t, err)

	fx.adapter.getTracking = func(context.Context, string) (*suppliers.TrackingInfo, error) {
		return nil, errors.New("supplier timeout")
	}
	_, err = fx.svc.RefreshTracking(context.Background(), result.SupplierOrderID)
	require.Error(t, err)

	// no state change on a failed poll
	assert.Equal(t, enums.SupplierOrderStatusSubmitted, fx.repo.rows[result.SupplierOrderID].Status)
}

func TestGetByIDScopesToMerchant(t *testing.T) {
	fx := newTrackerFixture(t)
	fx.adapter.createOrder = func(context.Context, suppliers.CreateOrderRequest) (*suppliers.CreateOrderResult, error) {
		return &suppliers.CreateOrderResult{SupplierOrderRef: "SUP-7"}, nil
	}
	result, err := fx.svc.Create(context.Background(), fx.createInput())
	require.NoError(t, err)

	row, err := fx.svc.GetByID(context.Background(), fx.order.MerchantID, result.SupplierOrderID)
	require.NoError(t, err)
	assert.Equal(t, result.SupplierOrderID, row.ID)

	_, err = fx.svc.GetByID(context.Background(), uuid.New(), result.SupplierOrderID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
