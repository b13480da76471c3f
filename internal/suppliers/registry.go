package suppliers

import (
	"fmt"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	"github.com/mateovidal/dropcart-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
)

// Factory builds an Adapter for one supplier record.
type Factory func(supplier *models.Supplier) (Adapter, error)

// Registry resolves adapters by supplier type.
type Registry struct {
	factories map[enums.SupplierType]Factory
}

// NewRegistry builds a registry preloaded with the REST adapter factory.
func NewRegistry(opts RESTOptions) *Registry {
	r := &Registry{factories: map[enums.SupplierType]Factory{}}
	r.Register(enums.SupplierTypeREST, func(supplier *models.Supplier) (Adapter, error) {
		return NewRESTAdapter(supplier, opts)
	})
	return r
}

// Register adds a factory for a supplier type, replacing any existing one.
func (r *Registry) Register(supplierType enums.SupplierType, factory Factory) {
	if factory == nil {
		return
	}
	r.factories[supplierType] = factory
}

// AdapterFor returns the adapter serving the given supplier record.
func (r *Registry) AdapterFor(supplier *models.Supplier) (Adapter, error) {
	if supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier required")
	}
	if !supplier.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "supplier is inactive")
	}
	factory, ok := r.factories[supplier.Type]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("no adapter registered for supplier type %q", supplier.Type))
	}
	return factory(supplier)
}
