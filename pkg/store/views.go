package store

import (
	"sync"

	"github.com/example/shopcore/pkg/models"
)

// CartLineView joins a cart line to its catalog entry. Product is nil when
// the catalog snapshot no longer holds the product; the line itself is
// always kept.
type CartLineView struct {
	models.CartLine
	Product *models.Product `json:"product"`
}

// Views holds the derived-view layer: read-only projections over store
// snapshots, each memoized on the identity of the sub-states it reads.
// A projection recomputes only when one of its inputs was replaced by a
// transition; results are shared between calls otherwise.
type Views struct {
	store *Store

	mu sync.Mutex

	cartJoin struct {
		cart     *CartState
		products *ProductsState
		lines    []CartLineView
		total    float64
	}
	cartCount struct {
		cart  *CartState
		count int
	}
	allProducts struct {
		products *ProductsState
		items    []models.Product
	}
	allOrders struct {
		orders *OrdersState
		items  []models.Order
	}
}

func NewViews(s *Store) *Views {
	return &Views{store: s}
}

func (v *Views) refreshCartJoin(snap *State) {
	if v.cartJoin.cart == snap.Cart && v.cartJoin.products == snap.Products {
		return
	}
	lines := make([]CartLineView, 0, len(snap.Cart.Lines))
	total := 0.0
	for _, line := range snap.Cart.Lines {
		view := CartLineView{CartLine: line}
		if prod, ok := snap.Products.ByID[line.ProductID]; ok {
			p := prod
			view.Product = &p
			total += p.Price * float64(line.Quantity)
		}
		lines = append(lines, view)
	}
	v.cartJoin.cart = snap.Cart
	v.cartJoin.products = snap.Products
	v.cartJoin.lines = lines
	v.cartJoin.total = total
}

// CartLinesWithProducts returns every cart line with its resolved product,
// or a nil product for lines whose catalog entry is absent.
func (v *Views) CartLinesWithProducts() []CartLineView {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshCartJoin(v.store.Snapshot())
	return v.cartJoin.lines
}

// CartTotal sums price times quantity over resolved lines; unresolved lines
// contribute nothing.
func (v *Views) CartTotal() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshCartJoin(v.store.Snapshot())
	return v.cartJoin.total
}

// CartCount sums all line quantities, regardless of product resolution.
func (v *Views) CartCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := v.store.Snapshot()
	if v.cartCount.cart != snap.Cart {
		count := 0
		for _, line := range snap.Cart.Lines {
			count += line.Quantity
		}
		v.cartCount.cart = snap.Cart
		v.cartCount.count = count
	}
	return v.cartCount.count
}

// AllProducts materializes the catalog ids into entities, in stored order.
func (v *Views) AllProducts() []models.Product {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := v.store.Snapshot()
	if v.allProducts.products != snap.Products {
		items := make([]models.Product, 0, len(snap.Products.IDs))
		for _, id := range snap.Products.IDs {
			items = append(items, snap.Products.ByID[id])
		}
		v.allProducts.products = snap.Products
		v.allProducts.items = items
	}
	return v.allProducts.items
}

// AllOrders materializes the order ids into entities, in stored order
// (most-recent-first).
func (v *Views) AllOrders() []models.Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := v.store.Snapshot()
	if v.allOrders.orders != snap.Orders {
		items := make([]models.Order, 0, len(snap.Orders.IDs))
		for _, id := range snap.Orders.IDs {
			items = append(items, snap.Orders.ByID[id])
		}
		v.allOrders.orders = snap.Orders
		v.allOrders.items = items
	}
	return v.allOrders.items
}

// ProductByID resolves a catalog entry, or nil when absent.
func (v *Views) ProductByID(id string) *models.Product {
	snap := v.store.Snapshot()
	if prod, ok := snap.Products.ByID[id]; ok {
		return &prod
	}
	return nil
}

// OrderByID resolves an order, or nil when absent.
func (v *Views) OrderByID(id string) *models.Order {
	snap := v.store.Snapshot()
	if ord, ok := snap.Orders.ByID[id]; ok {
		return &ord
	}
	return nil
}

// CurrentOrder resolves the latest placed order, or nil when unset or no
// longer present.
func (v *Views) CurrentOrder() *models.Order {
	snap := v.store.Snapshot()
	if snap.Orders.CurrentOrder == "" {
		return nil
	}
	if ord, ok := snap.Orders.ByID[snap.Orders.CurrentOrder]; ok {
		return &ord
	}
	return nil
}

func (v *Views) Filters() Filters {
	return v.store.Snapshot().Products.Filters
}

func (v *Views) Pagination() Pagination {
	return v.store.Snapshot().Products.Pagination
}

func (v *Views) ProductsLoading() bool { return v.store.Snapshot().Products.Loading }

func (v *Views) ProductsError() string { return v.store.Snapshot().Products.Error }

func (v *Views) CartLoading() bool { return v.store.Snapshot().Cart.Loading }

func (v *Views) CartError() string { return v.store.Snapshot().Cart.Error }

func (v *Views) OrdersLoading() bool { return v.store.Snapshot().Orders.Loading }

func (v *Views) OrdersError() string { return v.store.Snapshot().Orders.Error }
