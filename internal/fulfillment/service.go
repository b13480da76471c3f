package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/internal/orders"
	"github.com/mateovidal/dropcart-backend/internal/products"
	"github.com/mateovidal/dropcart-backend/internal/supplierorders"
	"github.com/mateovidal/dropcart-backend/internal/wallet"
	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
	"github.com/mateovidal/dropcart-backend/pkg/types"
)

// Service coordinates one merchant order's fulfillment attempt: wallet
// debit first, then sequential per-supplier submission, full refund when any
// supplier group fails.
type Service interface {
	CanFulfill(ctx context.Context, merchantID, orderID uuid.UUID) (*CheckResult, error)
	FulfillWithWallet(ctx context.Context, merchantID, orderID uuid.UUID) (*Outcome, error)
}

// CheckResult is the side-effect-free answer to "can this order be
// fulfilled right now". Safe to call repeatedly from a dashboard.
type CheckResult struct {
	CanFulfill     bool   `json:"can_fulfill"`
	Reason         string `json:"reason,omitempty"`
	RequiredCents  int    `json:"required_cents"`
	AvailableCents int    `json:"available_cents"`
	ShortfallCents int    `json:"shortfall_cents,omitempty"`
}

// Outcome is the structured result of a fulfillment attempt, one entry per
// supplier group regardless of overall success.
type Outcome struct {
	Success      bool                              `json:"success"`
	ChargedCents int                               `json:"charged_cents"`
	Results      []supplierorders.FulfillmentResult `json:"results"`
	Error        string                            `json:"error,omitempty"`
}

const (
	reasonNoSupplierCost      = "no supplier cost"
	reasonInsufficientBalance = "insufficient balance"
)

type supplierGroup struct {
	supplierID uuid.UUID
	items      types.SupplierOrderItems
}

type service struct {
	wallet   wallet.Service
	tracker  supplierorders.Service
	orders   orders.Repository
	products products.Repository
	logg     *logger.Logger
}

// NewService wires the orchestrator with its collaborators.
func NewService(
	walletSvc wallet.Service,
	tracker supplierorders.Service,
	ordersRepo orders.Repository,
	productsRepo products.Repository,
	logg *logger.Logger,
) (Service, error) {
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("supplier order service required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		wallet:   walletSvc,
		tracker:  tracker,
		orders:   ordersRepo,
		products: productsRepo,
		logg:     logg,
	}, nil
}

// CanFulfill checks the order cost against the merchant's wallet balance.
// No side effects beyond the lazy balance row creation.
func (s *service) CanFulfill(ctx context.Context, merchantID, orderID uuid.UUID) (*CheckResult, error) {
	order, err := s.loadOrder(ctx, merchantID, orderID)
	if err != nil {
		return nil, err
	}

	if order.TotalCostCents <= 0 {
		return &CheckResult{Reason: reasonNoSupplierCost}, nil
	}

	balance, err := s.wallet.GetBalance(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		RequiredCents:  order.TotalCostCents,
		AvailableCents: balance.BalanceCents,
	}
	if balance.BalanceCents < order.TotalCostCents {
		result.Reason = reasonInsufficientBalance
		result.ShortfallCents = order.TotalCostCents - balance.BalanceCents
		return result, nil
	}
	result.CanFulfill = true
	return result, nil
}

// FulfillWithWallet runs the debit-first fulfillment attempt. The wallet is
// charged the full supplier cost before any adapter call; if any supplier
// group fails, the full amount is refunded even though other groups may have
// been accepted upstream.
func (s *service) FulfillWithWallet(ctx context.Context, merchantID, orderID uuid.UUID) (*Outcome, error) {
	order, err := s.loadOrder(ctx, merchantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s, only pending orders can be fulfilled", order.Status))
	}
	if order.TotalCostCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no supplier cost")
	}

	logCtx := s.logg.WithOrderID(s.logg.WithMerchantID(ctx, merchantID.String()), orderID.String())

	_, err = s.wallet.Debit(ctx, wallet.DebitInput{
		MerchantID:  merchantID,
		OrderID:     orderID,
		AmountCents: order.TotalCostCents,
		Reason:      fmt.Sprintf("fulfillment of order #%d", order.OrderNumber),
	})
	if err != nil {
		if pkgErr := pkgerrors.As(err); pkgErr.Code() == pkgerrors.CodeInsufficientFunds {
			note := fmt.Sprintf("Fulfillment blocked: awaiting wallet top-up, required %s",
				formatCents(order.TotalCostCents))
			if terr := s.orders.AppendTimeline(ctx, orderID, note); terr != nil {
				s.logg.Error(logCtx, "failed to append top-up note", terr)
			}
			return nil, err
		}
		// ledger failures other than insufficient funds propagate untouched
		return nil, err
	}

	groups, err := s.groupBySupplier(logCtx, order)
	if err != nil {
		s.refund(logCtx, merchantID, orderID, order.TotalCostCents, "fulfillment aborted before submission")
		return nil, err
	}
	if len(groups) == 0 {
		s.refund(logCtx, merchantID, orderID, order.TotalCostCents, "no resolvable supplier for any line item")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no line item resolves to an active supplier")
	}

	results := make([]supplierorders.FulfillmentResult, 0, len(groups))
	failed := false
	for _, group := range groups {
		result, err := s.tracker.Create(ctx, supplierorders.CreateInput{
			Order:           order,
			SupplierID:      group.supplierID,
			Items:           group.items,
			ShippingAddress: shippingAddress(order),
			Note:            fmt.Sprintf("order #%d", order.OrderNumber),
		})
		if err != nil {
			// infrastructure failure writing the supplier order row; treat
			// like an adapter rejection for refund purposes
			result = &supplierorders.FulfillmentResult{
				SupplierID: group.supplierID,
				Error:      err.Error(),
			}
		}
		if !result.Success {
			failed = true
		}
		results = append(results, *result)
	}

	if failed {
		s.refund(logCtx, merchantID, orderID, order.TotalCostCents, "fulfillment failed, reversing charge")
		if err := s.orders.AppendTimeline(ctx, orderID,
			fmt.Sprintf("Fulfillment failed, %s refunded to wallet", formatCents(order.TotalCostCents))); err != nil {
			s.logg.Error(logCtx, "failed to append refund note", err)
		}
		return &Outcome{
			Results: results,
			Error:   "one or more supplier submissions failed",
		}, nil
	}

	if err := s.orders.Update(ctx, orderID, map[string]any{
		"status":             enums.OrderStatusProcessing,
		"fulfillment_status": enums.OrderFulfillmentStatusPartial,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if err := s.orders.AppendTimeline(ctx, orderID,
		fmt.Sprintf("Fulfillment submitted to %d supplier(s), %s charged to wallet",
			len(groups), formatCents(order.TotalCostCents))); err != nil {
		s.logg.Error(logCtx, "failed to append fulfillment note", err)
	}

	return &Outcome{
		Success:      true,
		ChargedCents: order.TotalCostCents,
		Results:      results,
	}, nil
}

// groupBySupplier partitions line items by their product's supplier. Items
// whose product or supplier cannot be resolved are logged and dropped,
// not fatal: partial catalogs are common.
func (s *service) groupBySupplier(ctx context.Context, order *models.MerchantOrder) ([]supplierGroup, error) {
	productIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID != nil {
			productIDs = append(productIDs, *item.ProductID)
		}
	}

	productsByID := make(map[uuid.UUID]models.Product, len(productIDs))
	if len(productIDs) > 0 {
		rows, err := s.products.FindByIDs(ctx, productIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products for grouping")
		}
		for _, p := range rows {
			productsByID[p.ID] = p
		}
	}

	grouped := make(map[uuid.UUID]types.SupplierOrderItems)
	supplierIDs := make([]uuid.UUID, 0)
	for _, item := range order.Items {
		if item.Fulfilled {
			continue
		}
		if item.ProductID == nil {
			s.logg.Warn(s.logg.WithField(ctx, "line_item_id", item.ID.String()),
				"line item has no product, dropped from fulfillment")
			continue
		}
		product, ok := productsByID[*item.ProductID]
		if !ok || product.SupplierID == nil {
			s.logg.Warn(s.logg.WithField(ctx, "line_item_id", item.ID.String()),
				"line item product has no supplier, dropped from fulfillment")
			continue
		}
		supplierID := *product.SupplierID
		if _, seen := grouped[supplierID]; !seen {
			supplierIDs = append(supplierIDs, supplierID)
		}
		grouped[supplierID] = append(grouped[supplierID], types.SupplierOrderItem{
			ProductID:     product.ID,
			LineItemID:    item.ID,
			SupplierSKU:   item.SupplierSKU,
			Qty:           item.Qty,
			UnitCostCents: item.UnitCostCents,
		})
	}

	groups := make([]supplierGroup, 0, len(grouped))
	for _, supplierID := range supplierIDs {
		groups = append(groups, supplierGroup{supplierID: supplierID, items: grouped[supplierID]})
	}
	return groups, nil
}

func (s *service) refund(ctx context.Context, merchantID, orderID uuid.UUID, amountCents int, reason string) {
	if _, err := s.wallet.Refund(ctx, wallet.RefundInput{
		MerchantID:  merchantID,
		OrderID:     orderID,
		AmountCents: amountCents,
		Reason:      reason,
	}); err != nil {
		// a failed refund leaves real money stranded; loud log for the
		// reconciliation runbook
		s.logg.Error(s.logg.WithField(ctx, "amount_cents", amountCents),
			"wallet refund failed after fulfillment failure", err)
	}
}

func (s *service) loadOrder(ctx context.Context, merchantID, orderID uuid.UUID) (*models.MerchantOrder, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func shippingAddress(order *models.MerchantOrder) types.Address {
	if order.ShippingAddress == nil {
		return types.Address{}
	}
	return *order.ShippingAddress
}

func formatCents(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
