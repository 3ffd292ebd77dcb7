package repository

import (
	"context"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// PricingRepository looks up a single list price.
type PricingRepository interface {
	LookupPrice(ctx context.Context, region string, dim entity.PriceDimension) (entity.Price, error)
}
