package workflow

import (
	"errors"
	"fmt"
)

// ErrSuperseded resolves an instance of a latest-wins workflow whose result
// was discarded because a newer instance started.
var ErrSuperseded = errors.New("superseded by a newer request")

// ErrEmptyCart rejects a checkout with nothing in the cart. No backend call
// is made.
var ErrEmptyCart = errors.New("Cart is empty")

// ErrOutOfStock rejects an add against a product with no stock.
var ErrOutOfStock = errors.New("Product is out of stock")

// StockExceededError rejects an add that would push the cart line past the
// product's available stock.
type StockExceededError struct {
	Available int
	Held      int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("Only %d items available. You already have %d in cart.", e.Available, e.Held)
}

// StockLimitError rejects a quantity update above the available stock.
type StockLimitError struct {
	Available int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("Only %d items available in stock", e.Available)
}
