package supplierorders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/internal/orders"
	"github.com/mateovidal/dropcart-backend/internal/suppliers"
	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
	"github.com/mateovidal/dropcart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type adapterResolver interface {
	AdapterFor(supplier *models.Supplier) (suppliers.Adapter, error)
}

// Service owns the lifecycle of one outbound purchase request to one
// supplier: submission, tracking refresh, and the mapping of tracking state
// onto the parent order's fulfillment flags.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*FulfillmentResult, error)
	RefreshTracking(ctx context.Context, supplierOrderID uuid.UUID) (*suppliers.TrackingInfo, error)
	GetByID(ctx context.Context, merchantID, supplierOrderID uuid.UUID) (*models.SupplierOrder, error)
	ListSweepable(ctx context.Context, limit int) ([]models.SupplierOrder, error)
}

// CreateInput carries one supplier group of a merchant order.
type CreateInput struct {
	Order           *models.MerchantOrder
	SupplierID      uuid.UUID
	Items           types.SupplierOrderItems
	ShippingAddress types.Address
	Note            string
}

// FulfillmentResult is the per-supplier outcome of a fulfillment attempt.
// Adapter failures are encoded here rather than raised, so the orchestrator
// always receives one result per supplier group.
type FulfillmentResult struct {
	SupplierID       uuid.UUID `json:"supplier_id"`
	SupplierOrderID  uuid.UUID `json:"supplier_order_id"`
	Success          bool      `json:"success"`
	SupplierOrderRef string    `json:"supplier_order_ref,omitempty"`
	Error            string    `json:"error,omitempty"`
}

type service struct {
	repo      Repository
	suppliers suppliers.Repository
	orders    orders.Repository
	adapters  adapterResolver
	tx        txRunner
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds a supplier order service with the required dependencies.
func NewService(
	repo Repository,
	supplierRepo suppliers.Repository,
	ordersRepo orders.Repository,
	adapters adapterResolver,
	tx txRunner,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier orders repository required")
	}
	if supplierRepo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if adapters == nil {
		return nil, fmt.Errorf("adapter resolver required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		suppliers: supplierRepo,
		orders:    ordersRepo,
		adapters:  adapters,
		tx:        tx,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Create writes the supplier order row in pending state before the adapter
// call, so a crash mid-call remains observable as "pending, needs
// reconciliation". Adapter failures transition the row to failed; there is
// no automatic retry.
func (s *service) Create(ctx context.Context, input CreateInput) (*FulfillmentResult, error) {
	if input.Order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier order needs at least one item")
	}

	row := &models.SupplierOrder{
		ID:             uuid.New(),
		OrderID:        input.Order.ID,
		SupplierID:     input.SupplierID,
		MerchantID:     input.Order.MerchantID,
		Items:          input.Items,
		TotalCostCents: input.Items.TotalCostCents(),
		Status:         enums.SupplierOrderStatusPending,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier order")
	}

	result := &FulfillmentResult{
		SupplierID:      input.SupplierID,
		SupplierOrderID: row.ID,
	}

	adapter, err := s.resolveAdapter(ctx, input.SupplierID)
	if err != nil {
		s.markFailed(ctx, row.ID, err)
		result.Error = err.Error()
		return result, nil
	}

	created, err := adapter.CreateOrder(ctx, suppliers.CreateOrderRequest{
		Items:           input.Items,
		ShippingAddress: input.ShippingAddress,
		Note:            input.Note,
	})
	if err != nil {
		s.markFailed(ctx, row.ID, err)
		result.Error = err.Error()
		return result, nil
	}

	updates := map[string]any{
		"status":             enums.SupplierOrderStatusSubmitted,
		"supplier_order_ref": created.SupplierOrderRef,
	}
	// suppliers may report a corrected cost on acceptance
	if created.TotalCostCents > 0 && created.TotalCostCents != row.TotalCostCents {
		updates["total_cost_cents"] = created.TotalCostCents
	}
	if err := s.repo.Update(ctx, row.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark supplier order submitted")
	}

	result.Success = true
	result.SupplierOrderRef = created.SupplierOrderRef
	return result, nil
}

// RefreshTracking polls the adapter and advances the supplier order through
// the one-way state machine. Terminal rows are idempotent no-ops.
func (s *service) RefreshTracking(ctx context.Context, supplierOrderID uuid.UUID) (*suppliers.TrackingInfo, error) {
	if supplierOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier order id required")
	}

	row, err := s.repo.FindByID(ctx, supplierOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier order")
	}
	if row.Status.IsTerminal() {
		return currentTracking(row), nil
	}
	if row.SupplierOrderRef == nil || *row.SupplierOrderRef == "" {
		return nil, nil
	}

	adapter, err := s.resolveAdapter(ctx, row.SupplierID)
	if err != nil {
		return nil, err
	}

	info, err := adapter.GetTracking(ctx, *row.SupplierOrderRef)
	if err != nil {
		return nil, err
	}
	if info == nil {
		// no tracking yet; the supplier's own fulfillment flag may still
		// tell us the goods went out
		fulfillment, ferr := adapter.GetFulfillment(ctx, *row.SupplierOrderRef)
		if ferr != nil || fulfillment == nil || !fulfillment.Fulfilled {
			return nil, nil
		}
		info = &suppliers.TrackingInfo{
			Status:     enums.TrackingStatusInTransit,
			LastUpdate: s.now().UTC(),
		}
	}

	if err := s.applyTracking(ctx, row, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *service) applyTracking(ctx context.Context, row *models.SupplierOrder, info *suppliers.TrackingInfo) error {
	target, ok := mapTrackingStatus(row.Status, info.Status)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("unknown tracking status %q", info.Status))
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		updates := map[string]any{
			"status":              target,
			"tracking_status":     info.Status,
			"tracking_updated_at": s.now().UTC(),
		}
		if info.TrackingNumber != "" {
			updates["tracking_number"] = info.TrackingNumber
		}
		if info.Carrier != "" {
			updates["tracking_carrier"] = info.Carrier
		}
		if info.TrackingURL != "" {
			updates["tracking_url"] = info.TrackingURL
		}
		if target == enums.SupplierOrderStatusFailed {
			updates["error_message"] = "tracking exception reported by supplier"
		}
		if err := repo.Update(ctx, row.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier order tracking")
		}

		if target == row.Status {
			return nil
		}

		fulfilled := target == enums.SupplierOrderStatusShipped || target == enums.SupplierOrderStatusDelivered
		unfulfilled := target == enums.SupplierOrderStatusFailed
		if fulfilled || unfulfilled {
			ids := make([]uuid.UUID, 0, len(row.Items))
			for _, item := range row.Items {
				ids = append(ids, item.LineItemID)
			}
			if err := ordersRepo.SetLineItemsFulfilled(ctx, ids, fulfilled); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line item fulfillment")
			}
			if err := s.rollUpFulfillment(ctx, ordersRepo, repo, row.OrderID); err != nil {
				return err
			}
		}

		message := timelineMessage(target, info)
		if message != "" {
			if err := ordersRepo.AppendTimeline(ctx, row.OrderID, message); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order timeline")
			}
		}
		return nil
	})
}

// rollUpFulfillment recomputes the parent order's fulfillment status from its
// line item flags, and completes the order once every supplier order has
// delivered.
func (s *service) rollUpFulfillment(ctx context.Context, ordersRepo orders.Repository, repo Repository, orderID uuid.UUID) error {
	order, err := ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload parent order")
	}

	fulfilled := 0
	for _, item := range order.Items {
		if item.Fulfilled {
			fulfilled++
		}
	}

	status := enums.OrderFulfillmentStatusUnfulfilled
	switch {
	case len(order.Items) > 0 && fulfilled == len(order.Items):
		status = enums.OrderFulfillmentStatusFulfilled
	case fulfilled > 0:
		status = enums.OrderFulfillmentStatusPartial
	}

	updates := map[string]any{"fulfillment_status": status}

	if status == enums.OrderFulfillmentStatusFulfilled {
		supplierOrders, err := repo.ListByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier orders")
		}
		allDelivered := len(supplierOrders) > 0
		for _, so := range supplierOrders {
			if so.Status != enums.SupplierOrderStatusDelivered {
				allDelivered = false
				break
			}
		}
		if allDelivered {
			updates["status"] = enums.OrderStatusCompleted
		}
	}

	if err := ordersRepo.Update(ctx, orderID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order fulfillment status")
	}
	return nil
}

// GetByID loads one supplier order, scoped to the owning merchant.
func (s *service) GetByID(ctx context.Context, merchantID, supplierOrderID uuid.UUID) (*models.SupplierOrder, error) {
	row, err := s.repo.FindByID(ctx, supplierOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier order")
	}
	if row.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier order not found")
	}
	return row, nil
}

func (s *service) ListSweepable(ctx context.Context, limit int) ([]models.SupplierOrder, error) {
	return s.repo.ListSweepable(ctx, limit)
}

func (s *service) resolveAdapter(ctx context.Context, supplierID uuid.UUID) (suppliers.Adapter, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return s.adapters.AdapterFor(supplier)
}

func (s *service) markFailed(ctx context.Context, supplierOrderID uuid.UUID, cause error) {
	updates := map[string]any{
		"status":        enums.SupplierOrderStatusFailed,
		"error_message": cause.Error(),
	}
	if err := s.repo.Update(ctx, supplierOrderID, updates); err != nil {
		logCtx := s.logg.WithField(ctx, "supplier_order_id", supplierOrderID.String())
		s.logg.Error(logCtx, "failed to mark supplier order failed", err)
	}
}

// mapTrackingStatus is the deterministic one-way state machine from the
// adapter tracking vocabulary to supplier order status. Transitions never
// move backwards: a shipped row reporting "pending" stays shipped.
func mapTrackingStatus(current enums.SupplierOrderStatus, tracking enums.TrackingStatus) (enums.SupplierOrderStatus, bool) {
	switch tracking {
	case enums.TrackingStatusPending:
		return current, true
	case enums.TrackingStatusInTransit, enums.TrackingStatusOutForDelivery:
		if current == enums.SupplierOrderStatusSubmitted {
			return enums.SupplierOrderStatusShipped, true
		}
		return current, true
	case enums.TrackingStatusDelivered:
		return enums.SupplierOrderStatusDelivered, true
	case enums.TrackingStatusException:
		return enums.SupplierOrderStatusFailed, true
	default:
		return current, false
	}
}

func currentTracking(row *models.SupplierOrder) *suppliers.TrackingInfo {
	if row.TrackingStatus == nil && row.TrackingNumber == nil {
		return nil
	}
	info := &suppliers.TrackingInfo{}
	if row.TrackingNumber != nil {
		info.TrackingNumber = *row.TrackingNumber
	}
	if row.TrackingCarrier != nil {
		info.Carrier = *row.TrackingCarrier
	}
	if row.TrackingURL != nil {
		info.TrackingURL = *row.TrackingURL
	}
	if row.TrackingStatus != nil {
		info.Status = *row.TrackingStatus
	}
	if row.TrackingUpdated != nil {
		info.LastUpdate = *row.TrackingUpdated
	}
	return info
}

func timelineMessage(status enums.SupplierOrderStatus, info *suppliers.TrackingInfo) string {
	switch status {
	case enums.SupplierOrderStatusShipped:
		if info.TrackingNumber != "" {
			return fmt.Sprintf("Supplier shipment on its way (%s %s)", info.Carrier, info.TrackingNumber)
		}
		return "Supplier shipment on its way"
	case enums.SupplierOrderStatusDelivered:
		return "Supplier shipment delivered"
	case enums.SupplierOrderStatusFailed:
		return "Supplier shipment hit a carrier exception"
	default:
		return ""
	}
}
