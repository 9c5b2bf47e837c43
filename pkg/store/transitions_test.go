package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/shopcore/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeProducts(prefix string, n int) []models.Product {
	products := make([]models.Product, n)
	for i := range products {
		products[i] = models.Product{
			ID:    fmt.Sprintf("%s-%d", prefix, i+1),
			Name:  fmt.Sprintf("Product %s-%d", prefix, i+1),
			Price: float64(i + 1),
			Stock: 10,
		}
	}
	return products
}

func TestProductPageReplace(t *testing.T) {
	s := NewState(20)

	s = Apply(s, &ProductPageLoaded{Products: makeProducts("a", 20), Total: 1050})

	assert.Len(t, s.Products.IDs, 20)
	assert.Len(t, s.Products.ByID, 20)
	assert.Equal(t, 1050, s.Products.Pagination.Total)
	assert.True(t, s.Products.Pagination.HasMore)
	assert.False(t, s.Products.Loading)

	// A non-append page replaces everything.
	s = Apply(s, &ProductPageLoaded{Products: makeProducts("b", 5), Total: 5})
	assert.Len(t, s.Products.IDs, 5)
	assert.Equal(t, "b-1", s.Products.IDs[0])
	assert.False(t, s.Products.Pagination.HasMore)
}

func TestProductPageAppendNeverDuplicates(t *testing.T) {
	s := NewState(20)
	pageOne := makeProducts("a", 20)

	s = Apply(s, &ProductPageLoaded{Products: pageOne, Total: 1050})
	// Second page overlaps the first entirely, then adds new ids.
	overlap := append(append([]models.Product(nil), pageOne...), makeProducts("b", 20)...)
	s = Apply(s, &ProductPageLoaded{Products: overlap, Total: 1050, Append: true})

	assert.LessOrEqual(t, len(s.Products.IDs), 40)
	seen := make(map[string]bool)
	for _, id := range s.Products.IDs {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		_, ok := s.Products.ByID[id]
		require.True(t, ok, "id %s missing from ByID", id)
	}
	assert.Len(t, s.Products.ByID, len(s.Products.IDs))
	assert.True(t, s.Products.Pagination.HasMore)
}

func TestProductPageAppendOverwritesEntities(t *testing.T) {
	s := NewState(20)
	s = Apply(s, &ProductPageLoaded{Products: makeProducts("a", 3), Total: 3})

	updated := makeProducts("a", 3)
	updated[0].Stock = 99
	s = Apply(s, &ProductPageLoaded{Products: updated, Total: 3, Append: true})

	assert.Equal(t, 99, s.Products.ByID["a-1"].Stock)
	assert.Len(t, s.Products.IDs, 3)
}

func TestApplyIsPure(t *testing.T) {
	s := NewState(20)
	s = Apply(s, &ProductPageLoaded{Products: makeProducts("a", 3), Total: 3})

	before := s
	_ = Apply(s, &ProductPageLoaded{Products: makeProducts("b", 3), Total: 3})
	_ = Apply(s, &CartAdded{ProductID: "a-1", Quantity: 1, At: time.Now()})

	assert.Same(t, before.Products, s.Products)
	assert.Equal(t, []string{"a-1", "a-2", "a-3"}, s.Products.IDs)
	assert.Empty(t, s.Cart.Lines)
}

func TestFilterChangeResetsPage(t *testing.T) {
	tests := []struct {
		name  string
		event any
	}{
		{"search", &SearchSet{Search: "watch"}},
		{"category", &CategorySet{Category: models.CategoryToys}},
		{"sort", &SortSet{SortBy: models.SortPriceAsc}},
		{"clear", &FiltersCleared{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(20)
			s = Apply(s, &PageSet{Page: 4})
			s = Apply(s, tt.event)
			assert.Equal(t, 1, s.Products.Pagination.Page)
		})
	}
}

func TestPageBumpedGuards(t *testing.T) {
	s := NewState(20)
	s = Apply(s, &ProductPageLoaded{Products: makeProducts("a", 20), Total: 40})

	s = Apply(s, &PageBumped{})
	assert.Equal(t, 2, s.Products.Pagination.Page)

	// No bump while a fetch is in flight.
	s = Apply(s, &ProductsRequested{})
	s = Apply(s, &PageBumped{})
	assert.Equal(t, 2, s.Products.Pagination.Page)

	// No bump once everything is loaded.
	s = Apply(s, &ProductPageLoaded{Products: makeProducts("b", 20), Total: 40, Append: true})
	s = Apply(s, &PageBumped{})
	assert.Equal(t, 2, s.Products.Pagination.Page)
}

func TestCartAddMergesQuantities(t *testing.T) {
	s := NewState(20)
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s = Apply(s, &CartAdded{ProductID: "p1", Quantity: 3, At: first})
	s = Apply(s, &CartAdded{ProductID: "p1", Quantity: 4, At: first.Add(time.Hour)})

	require.Len(t, s.Cart.Lines, 1)
	assert.Equal(t, 7, s.Cart.Lines[0].Quantity)
	// AddedAt is preserved from the first insertion.
	assert.Equal(t, first, s.Cart.Lines[0].AddedAt)
}

func TestCartSetQuantityRemovesAtZeroOrBelow(t *testing.T) {
	for _, quantity := range []int{0, -5} {
		t.Run(fmt.Sprintf("quantity_%d", quantity), func(t *testing.T) {
			s := NewState(20)
			s = Apply(s, &CartAdded{ProductID: "p1", Quantity: 3, At: time.Now()})
			s = Apply(s, &CartQuantitySet{ProductID: "p1", Quantity: quantity})

			_, ok := s.Cart.Line("p1")
			assert.False(t, ok)
			assert.Empty(t, s.Cart.Lines)
		})
	}
}

func TestCartSetQuantityNoopWhenAbsent(t *testing.T) {
	s := NewState(20)
	s = Apply(s, &CartQuantitySet{ProductID: "ghost", Quantity: 5})
	assert.Empty(t, s.Cart.Lines)
}

func TestCartRemoveAndClear(t *testing.T) {
	s := NewState(20)
	s = Apply(s, &CartAdded{ProductID: "p1", Quantity: 1, At: time.Now()})
	s = Apply(s, &CartAdded{ProductID: "p2", Quantity: 2, At: time.Now()})

	s = Apply(s, &CartRemoved{ProductID: "p1"})
	require.Len(t, s.Cart.Lines, 1)
	assert.Equal(t, "p2", s.Cart.Lines[0].ProductID)

	// Removing an absent line is not an error.
	s = Apply(s, &CartRemoved{ProductID: "p1"})
	assert.Len(t, s.Cart.Lines, 1)

	s = Apply(s, &CartFailed{Err: "boom"})
	s = Apply(s, &CartCleared{})
	assert.Empty(t, s.Cart.Lines)
	assert.Empty(t, s.Cart.Error)
}

func TestOrderPlacedInsertsAtFront(t *testing.T) {
	s := NewState(20)
	s = Apply(s, &OrderPlaced{Order: models.Order{ID: "o1", Status: models.OrderCompleted}})
	s = Apply(s, &OrderPlaced{Order: models.Order{ID: "o2", Status: models.OrderCompleted}})

	assert.Equal(t, []string{"o2", "o1"}, s.Orders.IDs)
	assert.Equal(t, "o2", s.Orders.CurrentOrder)

	// Replaying the same order does not duplicate it.
	s = Apply(s, &OrderPlaced{Order: models.Order{ID: "o1", Status: models.OrderCompleted}})
	assert.Equal(t, []string{"o2", "o1"}, s.Orders.IDs)
	assert.Equal(t, "o1", s.Orders.CurrentOrder)
}

func TestOrdersListedReplacesWholesale(t *testing.T) {
	s := NewState(20)
	s = Apply(s, &OrderPlaced{Order: models.Order{ID: "old"}})

	s = Apply(s, &OrdersListed{Orders: []models.Order{{ID: "o3"}, {ID: "o2"}, {ID: "o1"}}})
	assert.Equal(t, []string{"o3", "o2", "o1"}, s.Orders.IDs)
	assert.Len(t, s.Orders.ByID, 3)
	assert.False(t, s.Orders.Loading)
}

func TestRequestAndFailureTransitions(t *testing.T) {
	s := NewState(20)

	s = Apply(s, &ProductsRequested{})
	assert.True(t, s.Products.Loading)
	s = Apply(s, &ProductsFailed{Err: "network down"})
	assert.False(t, s.Products.Loading)
	assert.Equal(t, "network down", s.Products.Error)

	// A new request clears the stale error.
	s = Apply(s, &ProductsRequested{})
	assert.Empty(t, s.Products.Error)

	s = Apply(s, &OrderRequested{})
	assert.True(t, s.Orders.Loading)
	s = Apply(s, &OrdersFailed{Err: "payment"})
	assert.False(t, s.Orders.Loading)
	assert.Equal(t, "payment", s.Orders.Error)
}

func TestClearCurrentOrder(t *testing.T) {
	s := NewState(20)
	s = Apply(s, &OrderPlaced{Order: models.Order{ID: "o1"}})
	s = Apply(s, &CurrentOrderCleared{})
	assert.Empty(t, s.Orders.CurrentOrder)
	// The order itself stays.
	assert.Contains(t, s.Orders.ByID, "o1")
}
