package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
)

// Service exposes merchant-scoped supplier operations.
type Service interface {
	GetByID(ctx context.Context, merchantID, supplierID uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context, merchantID uuid.UUID) ([]models.Supplier, error)
	TestConnection(ctx context.Context, merchantID, supplierID uuid.UUID) (*ConnectionResult, error)
}

type service struct {
	repo     Repository
	registry *Registry
}

func NewService(repo Repository, registry *Registry) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if registry == nil {
		return nil, fmt.Errorf("adapter registry required")
	}
	return &service{repo: repo, registry: registry}, nil
}

func (s *service) GetByID(ctx context.Context, merchantID, supplierID uuid.UUID) (*models.Supplier, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return supplier, nil
}

func (s *service) List(ctx context.Context, merchantID uuid.UUID) ([]models.Supplier, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id required")
	}
	return s.repo.ListByMerchant(ctx, merchantID)
}

// TestConnection verifies supplier credentials through the adapter. Adapter
// failures come back as a structured result, not an error.
func (s *service) TestConnection(ctx context.Context, merchantID, supplierID uuid.UUID) (*ConnectionResult, error) {
	supplier, err := s.GetByID(ctx, merchantID, supplierID)
	if err != nil {
		return nil, err
	}
	adapter, err := s.registry.AdapterFor(supplier)
	if err != nil {
		return nil, err
	}
	result, err := adapter.TestConnection(ctx)
	if err != nil {
		return &ConnectionResult{Error: err.Error()}, nil
	}
	return result, nil
}
