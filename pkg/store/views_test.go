package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/example/shopcore/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(s *Store) {
	s.DispatchSync(&ProductPageLoaded{
		Products: []models.Product{
			{ID: "p1", Name: "Wireless Headphones", Price: 50},
			{ID: "p2", Name: "Yoga Mat", Price: 20},
		},
		Total: 2,
	})
}

func TestCartTotalEmptyCart(t *testing.T) {
	s := newTestStore(t)
	v := NewViews(s)

	assert.Zero(t, v.CartTotal())
	assert.Zero(t, v.CartCount())
	assert.Empty(t, v.CartLinesWithProducts())
}

func TestCartJoinResolvesProducts(t *testing.T) {
	s := newTestStore(t)
	v := NewViews(s)
	seedCatalog(s)

	s.DispatchSync(&CartAdded{ProductID: "p1", Quantity: 2, At: time.Now()})
	s.DispatchSync(&CartAdded{ProductID: "p2", Quantity: 3, At: time.Now()})

	lines := v.CartLinesWithProducts()
	require.Len(t, lines, 2)
	require.NotNil(t, lines[0].Product)
	assert.Equal(t, "Wireless Headphones", lines[0].Product.Name)

	assert.Equal(t, 50.0*2+20.0*3, v.CartTotal())
	assert.Equal(t, 5, v.CartCount())
}

func TestCartJoinKeepsUnresolvedLines(t *testing.T) {
	s := newTestStore(t)
	v := NewViews(s)
	seedCatalog(s)

	s.DispatchSync(&CartAdded{ProductID: "p1", Quantity: 2, At: time.Now()})
	s.DispatchSync(&CartAdded{ProductID: "vanished", Quantity: 4, At: time.Now()})

	lines := v.CartLinesWithProducts()
	require.Len(t, lines, 2)
	assert.Nil(t, lines[1].Product)

	// The unresolved line contributes nothing to the total but still counts.
	assert.Equal(t, 100.0, v.CartTotal())
	assert.Equal(t, 6, v.CartCount())
}

func slicePtr(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}

func TestViewsMemoizeUntilInputsChange(t *testing.T) {
	s := newTestStore(t)
	v := NewViews(s)
	seedCatalog(s)
	s.DispatchSync(&CartAdded{ProductID: "p1", Quantity: 1, At: time.Now()})

	first := v.CartLinesWithProducts()
	second := v.CartLinesWithProducts()
	assert.Equal(t, slicePtr(first), slicePtr(second), "expected cached result")

	// An unrelated sub-state change must not invalidate the join.
	s.DispatchSync(&OrderPlaced{Order: models.Order{ID: "o1"}})
	third := v.CartLinesWithProducts()
	assert.Equal(t, slicePtr(first), slicePtr(third), "orders change should not recompute cart join")

	// A cart change must.
	s.DispatchSync(&CartAdded{ProductID: "p2", Quantity: 1, At: time.Now()})
	fourth := v.CartLinesWithProducts()
	assert.NotEqual(t, slicePtr(first), slicePtr(fourth))
	assert.Len(t, fourth, 2)
}

func TestAllProductsMaterializesInStoredOrder(t *testing.T) {
	s := newTestStore(t)
	v := NewViews(s)
	seedCatalog(s)

	products := v.AllProducts()
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p2", products[1].ID)

	cached := v.AllProducts()
	assert.Equal(t, slicePtr(products), slicePtr(cached))
}

func TestAllOrdersMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	v := NewViews(s)

	s.DispatchSync(&OrderPlaced{Order: models.Order{ID: "o1"}})
	s.DispatchSync(&OrderPlaced{Order: models.Order{ID: "o2"}})

	orders := v.AllOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)
	assert.Equal(t, "o1", orders[1].ID)
}

func TestCurrentOrderResolution(t *testing.T) {
	s := newTestStore(t)
	v := NewViews(s)

	assert.Nil(t, v.CurrentOrder())

	s.DispatchSync(&OrderPlaced{Order: models.Order{ID: "o1", TotalPrice: 42}})
	current := v.CurrentOrder()
	require.NotNil(t, current)
	assert.Equal(t, "o1", current.ID)

	s.DispatchSync(&CurrentOrderCleared{})
	assert.Nil(t, v.CurrentOrder())
}

func TestProductByID(t *testing.T) {
	s := newTestStore(t)
	v := NewViews(s)
	seedCatalog(s)

	p := v.ProductByID("p2")
	require.NotNil(t, p)
	assert.Equal(t, "Yoga Mat", p.Name)
	assert.Nil(t, v.ProductByID("ghost"))
}
