package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mateovidal/dropcart-backend/internal/products"
	"github.com/mateovidal/dropcart-backend/internal/suppliers"
	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
)

// Service imports supplier catalogs into the merchant product table.
type Service interface {
	Sync(ctx context.Context, merchantID, supplierID uuid.UUID) (*SyncResult, error)
}

// SyncResult summarizes one catalog import run.
type SyncResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Pages    int `json:"pages"`
}

type adapterResolver interface {
	AdapterFor(supplier *models.Supplier) (suppliers.Adapter, error)
}

type service struct {
	suppliers suppliers.Service
	products  products.Repository
	adapters  adapterResolver
	pageSize  int
	logg      *logger.Logger
}

const defaultPageSize = 50

// NewService wires the catalog importer.
func NewService(
	supplierSvc suppliers.Service,
	productsRepo products.Repository,
	adapters adapterResolver,
	pageSize int,
	logg *logger.Logger,
) (Service, error) {
	if supplierSvc == nil {
		return nil, fmt.Errorf("suppliers service required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if adapters == nil {
		return nil, fmt.Errorf("adapter resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &service{
		suppliers: supplierSvc,
		products:  productsRepo,
		adapters:  adapters,
		pageSize:  pageSize,
		logg:      logg,
	}, nil
}

// Sync pages the supplier catalog and upserts each entry keyed by
// (merchant, supplier, SKU). Entries with unparseable prices are skipped and
// logged rather than failing the whole run.
func (s *service) Sync(ctx context.Context, merchantID, supplierID uuid.UUID) (*SyncResult, error) {
	supplier, err := s.suppliers.GetByID(ctx, merchantID, supplierID)
	if err != nil {
		return nil, err
	}
	adapter, err := s.adapters.AdapterFor(supplier)
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithSupplierID(s.logg.WithMerchantID(ctx, merchantID.String()), supplierID.String())

	result := &SyncResult{}
	for page := 1; ; page++ {
		productPage, err := adapter.FetchProducts(ctx, page, s.pageSize)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
				fmt.Sprintf("fetch supplier catalog page %d", page))
		}
		result.Pages++

		for _, dto := range productPage.Items {
			costCents, err := suppliers.ParseMoneyCents(dto.Cost)
			if err != nil {
				s.logg.Warn(s.logg.WithField(logCtx, "sku", dto.SupplierSKU),
					fmt.Sprintf("skipping catalog entry, bad cost: %v", err))
				result.Skipped++
				continue
			}
			priceCents, err := suppliers.ParseMoneyCents(dto.Price)
			if err != nil {
				s.logg.Warn(s.logg.WithField(logCtx, "sku", dto.SupplierSKU),
					fmt.Sprintf("skipping catalog entry, bad price: %v", err))
				result.Skipped++
				continue
			}

			row := &models.Product{
				MerchantID:  merchantID,
				SupplierID:  &supplier.ID,
				SupplierSKU: dto.SupplierSKU,
				Title:       dto.Title,
				CostCents:   costCents,
				PriceCents:  priceCents,
				Active:      true,
			}
			if err := s.products.UpsertBySupplierSKU(ctx, row); err != nil {
				return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
					fmt.Sprintf("upsert product %q", dto.SupplierSKU))
			}
			result.Imported++
		}

		if !productPage.HasMore {
			break
		}
	}

	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"pages":    result.Pages,
	}), "supplier catalog sync complete")
	return result, nil
}
