package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxMerchantID contextKey = "merchant_id"

// MerchantIDFromContext returns the authenticated merchant, or uuid.Nil when
// the request carries no merchant context.
func MerchantIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxMerchantID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// WithMerchantID injects the merchant identifier into the context.
func WithMerchantID(ctx context.Context, merchantID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxMerchantID, merchantID)
}
