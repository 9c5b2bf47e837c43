package backend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/shopcore/pkg/config"
	"github.com/example/shopcore/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Simulator is the in-memory backend: a generated catalog served with
// injected latency, plus an order book with a stochastic payment failure.
// It is safe for concurrent use.
type Simulator struct {
	cfg    *config.BackendConfig
	logger *zap.Logger

	products []models.Product
	byID     map[string]models.Product

	mu     sync.Mutex
	rng    *rand.Rand
	orders []models.Order
}

func NewSimulator(cfg *config.BackendConfig, logger *zap.Logger) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	size := cfg.CatalogSize
	if size == 0 {
		size = 1050
	}

	rng := rand.New(rand.NewSource(seed))
	products := GenerateCatalog(size, rng, time.Now())
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	logger.Info("Backend simulator ready",
		zap.Int("catalog_size", len(products)),
		zap.Int64("seed", seed))

	return &Simulator{
		cfg:      cfg,
		logger:   logger,
		products: products,
		byID:     byID,
		rng:      rng,
	}
}

// Catalog exposes the generated products, useful for seeding fixtures.
func (s *Simulator) Catalog() []models.Product {
	return s.products
}

func (s *Simulator) ListProducts(ctx context.Context, q ListQuery) (ProductPage, error) {
	if err := s.sleep(ctx, s.listLatency()); err != nil {
		return ProductPage{}, err
	}

	search := strings.ToLower(q.Search)
	filtered := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, q.SortBy)

	total := len(filtered)
	start := (q.Page - 1) * q.PageSize
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}

	return ProductPage{Products: filtered[start:end], Total: total}, nil
}

func (s *Simulator) GetProduct(ctx context.Context, id string) (models.Product, error) {
	if err := s.sleep(ctx, s.cfg.DetailLatency); err != nil {
		return models.Product{}, err
	}
	p, ok := s.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *Simulator) PlaceOrder(ctx context.Context, lines []models.CartLine) (models.Order, error) {
	if err := s.sleep(ctx, s.cfg.OrderLatency); err != nil {
		return models.Order{}, err
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()
	if roll < s.cfg.PaymentFailureRate {
		return models.Order{}, ErrPaymentFailed
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := 0.0
	for _, line := range lines {
		p, ok := s.byID[line.ProductID]
		if !ok {
			return models.Order{}, fmt.Errorf("product %s: %w", line.ProductID, ErrNotFound)
		}
		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		})
		total += p.Price * float64(line.Quantity)
	}

	order := models.Order{
		ID:         "order-" + uuid.NewString(),
		Items:      items,
		TotalPrice: total,
		Status:     models.OrderCompleted,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int("item_count", len(items)),
		zap.Float64("total_price", total))

	return order, nil
}

func (s *Simulator) ListOrders(ctx context.Context) ([]models.Order, error) {
	if err := s.sleep(ctx, s.cfg.ListOrdersLatency); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.orders))
	for i := len(s.orders) - 1; i >= 0; i-- {
		out = append(out, s.orders[i])
	}
	return out, nil
}

func (s *Simulator) listLatency() time.Duration {
	if s.cfg.MaxLatency <= s.cfg.MinLatency {
		return s.cfg.MinLatency
	}
	s.mu.Lock()
	jitter := time.Duration(s.rng.Int63n(int64(s.cfg.MaxLatency - s.cfg.MinLatency)))
	s.mu.Unlock()
	return s.cfg.MinLatency + jitter
}

func (s *Simulator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func matchesSearch(p models.Product, search string) bool {
	if strings.Contains(strings.ToLower(p.Name), search) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), search) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func sortProducts(products []models.Product, sortBy models.SortOption) {
	switch sortBy {
	case models.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case models.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case models.SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case models.SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}
