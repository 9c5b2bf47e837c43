package backend

import (
	"context"
	"errors"

	"github.com/example/shopcore/pkg/models"
)

// ErrNotFound marks a lookup of an absent entity.
var ErrNotFound = errors.New("not found")

// ErrPaymentFailed is the simulated stochastic payment failure.
var ErrPaymentFailed = errors.New("Payment processing failed. Please try again.")

// ListQuery is the catalog query the store's pagination and filter state
// translate into.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Category models.Category
	SortBy   models.SortOption
}

// ProductPage is one page of catalog results. Total counts everything
// matching the query, not just this page.
type ProductPage struct {
	Products []models.Product
	Total    int
}

// Gateway is the backend boundary. Every call is fallible and may block;
// no retries happen at this layer.
type Gateway interface {
	ListProducts(ctx context.Context, q ListQuery) (ProductPage, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	PlaceOrder(ctx context.Context, lines []models.CartLine) (models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}
