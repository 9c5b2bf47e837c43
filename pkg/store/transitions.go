package store

import (
	"time"

	"github.com/example/shopcore/pkg/models"
)

// Transition events. Each is a plain message applied to the state by the
// dispatcher; Apply is pure and the only way state changes.

type ProductsRequested struct{}

type ProductPageLoaded struct {
	Products []models.Product
	Total    int
	Append   bool
}

type ProductsFailed struct {
	Err string
}

type SearchSet struct {
	Search string
}

type CategorySet struct {
	Category models.Category
}

type SortSet struct {
	SortBy models.SortOption
}

type FiltersCleared struct{}

type PageSet struct {
	Page int
}

type PageBumped struct{}

type CartRequested struct{}

type CartAdded struct {
	ProductID string
	Quantity  int
	At        time.Time
}

type CartQuantitySet struct {
	ProductID string
	Quantity  int
}

type CartRemoved struct {
	ProductID string
}

type CartCleared struct{}

type CartFailed struct {
	Err string
}

type OrderRequested struct{}

type OrderPlaced struct {
	Order models.Order
}

type OrdersListed struct {
	Orders []models.Order
}

type OrdersFailed struct {
	Err string
}

type CurrentOrderCleared struct{}

// Apply runs one transition against a committed state and returns the next
// state. Unknown events leave the state untouched. Apply never mutates its
// input; untouched sub-states are shared between the old and new snapshots.
func Apply(s State, event any) State {
	switch ev := event.(type) {
	case *ProductsRequested:
		p := s.Products.clone()
		p.Loading = true
		p.Error = ""
		s.Products = p

	case *ProductPageLoaded:
		p := s.Products.clone()
		if !ev.Append {
			p.IDs = p.IDs[:0]
			p.ByID = make(map[string]models.Product, len(ev.Products))
		}
		for _, prod := range ev.Products {
			if _, known := p.ByID[prod.ID]; !known {
				p.IDs = append(p.IDs, prod.ID)
			}
			p.ByID[prod.ID] = prod
		}
		p.Pagination.Total = ev.Total
		p.Pagination.HasMore = len(p.IDs) < ev.Total
		p.Loading = false
		s.Products = p

	case *ProductsFailed:
		p := s.Products.clone()
		p.Loading = false
		p.Error = ev.Err
		s.Products = p

	case *SearchSet:
		p := s.Products.clone()
		p.Filters.Search = ev.Search
		p.Pagination.Page = 1
		s.Products = p

	case *CategorySet:
		p := s.Products.clone()
		p.Filters.Category = ev.Category
		p.Pagination.Page = 1
		s.Products = p

	case *SortSet:
		p := s.Products.clone()
		p.Filters.SortBy = ev.SortBy
		p.Pagination.Page = 1
		s.Products = p

	case *FiltersCleared:
		p := s.Products.clone()
		p.Filters = Filters{SortBy: models.SortNewest}
		p.Pagination.Page = 1
		s.Products = p

	case *PageSet:
		p := s.Products.clone()
		p.Pagination.Page = ev.Page
		s.Products = p

	case *PageBumped:
		// Load-more only advances past a fully loaded page.
		if !s.Products.Pagination.HasMore || s.Products.Loading {
			break
		}
		p := s.Products.clone()
		p.Pagination.Page++
		s.Products = p

	case *CartRequested:
		c := s.Cart.clone()
		c.Loading = true
		c.Error = ""
		s.Cart = c

	case *CartAdded:
		c := s.Cart.clone()
		lines := c.cloneLines()
		merged := false
		for i := range lines {
			if lines[i].ProductID == ev.ProductID {
				lines[i].Quantity += ev.Quantity
				merged = true
				break
			}
		}
		if !merged {
			lines = append(lines, models.CartLine{
				ProductID: ev.ProductID,
				Quantity:  ev.Quantity,
				AddedAt:   ev.At,
			})
		}
		c.Lines = lines
		c.Loading = false
		s.Cart = c

	case *CartQuantitySet:
		c := s.Cart.clone()
		if ev.Quantity <= 0 {
			c.Lines = removeLine(c.Lines, ev.ProductID)
		} else {
			lines := c.cloneLines()
			for i := range lines {
				if lines[i].ProductID == ev.ProductID {
					lines[i].Quantity = ev.Quantity
					break
				}
			}
			c.Lines = lines
		}
		c.Loading = false
		s.Cart = c

	case *CartRemoved:
		c := s.Cart.clone()
		c.Lines = removeLine(c.Lines, ev.ProductID)
		s.Cart = c

	case *CartCleared:
		c := s.Cart.clone()
		c.Lines = nil
		c.Error = ""
		s.Cart = c

	case *CartFailed:
		c := s.Cart.clone()
		c.Loading = false
		c.Error = ev.Err
		s.Cart = c

	case *OrderRequested:
		o := s.Orders.clone()
		o.Loading = true
		o.Error = ""
		s.Orders = o

	case *OrderPlaced:
		o := s.Orders.clone()
		if _, known := o.ByID[ev.Order.ID]; !known {
			o.IDs = append([]string{ev.Order.ID}, o.IDs...)
		}
		o.ByID[ev.Order.ID] = ev.Order
		o.CurrentOrder = ev.Order.ID
		o.Loading = false
		s.Orders = o

	case *OrdersListed:
		o := s.Orders.clone()
		o.IDs = make([]string, 0, len(ev.Orders))
		o.ByID = make(map[string]models.Order, len(ev.Orders))
		for _, ord := range ev.Orders {
			if _, known := o.ByID[ord.ID]; known {
				continue
			}
			o.IDs = append(o.IDs, ord.ID)
			o.ByID[ord.ID] = ord
		}
		o.Loading = false
		s.Orders = o

	case *OrdersFailed:
		o := s.Orders.clone()
		o.Loading = false
		o.Error = ev.Err
		s.Orders = o

	case *CurrentOrderCleared:
		o := s.Orders.clone()
		o.CurrentOrder = ""
		s.Orders = o
	}

	return s
}

func removeLine(lines []models.CartLine, productID string) []models.CartLine {
	kept := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	return kept
}
