package store

import (
	"github.com/example/shopcore/pkg/models"
)

// Pagination tracks the catalog cursor. HasMore is derived from the loaded
// id count against the backend's total and is recomputed on every product
// mutation, never stored independently.
type Pagination struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasMore  bool `json:"has_more"`
}

// Filters is the current catalog query. Any change resets Page to 1.
type Filters struct {
	Search   string            `json:"search"`
	Category models.Category   `json:"category"`
	SortBy   models.SortOption `json:"sort_by"`
}

// ProductsState is the normalized catalog collection: IDs holds display
// order with no duplicates, ByID holds the entities, and the two always
// cover the same id set.
type ProductsState struct {
	IDs        []string
	ByID       map[string]models.Product
	Pagination Pagination
	Filters    Filters
	Loading    bool
	Error      string
}

// CartState holds the cart lines in insertion order.
type CartState struct {
	Lines   []models.CartLine
	Loading bool
	Error   string
}

// Line returns the cart line for productID, if present.
func (c *CartState) Line(productID string) (models.CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return models.CartLine{}, false
}

// OrdersState is the normalized order collection, most-recent-first.
// CurrentOrder points at the order from the latest successful placement.
type OrdersState struct {
	IDs          []string
	ByID         map[string]models.Order
	CurrentOrder string
	Loading      bool
	Error        string
}

// State is one committed snapshot of the whole store. Sub-states are
// pointers so a transition replaces only the sub-state it touched; derived
// views use that identity to decide whether to recompute.
type State struct {
	Products *ProductsState
	Cart     *CartState
	Orders   *OrdersState
}

// NewState returns the initial state for an empty shop.
func NewState(pageSize int) State {
	return State{
		Products: &ProductsState{
			ByID: make(map[string]models.Product),
			Pagination: Pagination{
				Page:     1,
				PageSize: pageSize,
				HasMore:  true,
			},
			Filters: Filters{SortBy: models.SortNewest},
		},
		Cart: &CartState{},
		Orders: &OrdersState{
			ByID: make(map[string]models.Order),
		},
	}
}

func (p *ProductsState) clone() *ProductsState {
	c := *p
	c.IDs = append([]string(nil), p.IDs...)
	c.ByID = make(map[string]models.Product, len(p.ByID))
	for id, prod := range p.ByID {
		c.ByID[id] = prod
	}
	return &c
}

// clone copies the struct but shares the Lines slice; transitions that
// mutate lines replace the slice themselves.
func (c *CartState) clone() *CartState {
	d := *c
	return &d
}

func (c *CartState) cloneLines() []models.CartLine {
	return append([]models.CartLine(nil), c.Lines...)
}

func (o *OrdersState) clone() *OrdersState {
	c := *o
	c.IDs = append([]string(nil), o.IDs...)
	c.ByID = make(map[string]models.Order, len(o.ByID))
	for id, ord := range o.ByID {
		c.ByID[id] = ord
	}
	return &c
}
