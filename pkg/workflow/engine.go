package workflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/shopcore/pkg/backend"
	"github.com/example/shopcore/pkg/models"
	"github.com/example/shopcore/pkg/store"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

type Options struct {
	// Debounce is the quiescence window for search-triggered fetches.
	Debounce time.Duration
}

// Engine maps triggering intents onto named asynchronous workflows, each
// under a concurrency policy:
//
//   - catalog fetches (fetch, search, category, sort, load-more) share one
//     latest-wins generation: starting a new instance discards the result
//     of any still-pending one;
//   - cart mutations run every trigger to completion, serialized per
//     product id by the stock guard;
//   - order placement and order listing are each latest-wins on their own
//     generation.
//
// Every workflow is three-phase: mark the owning collection loading, call
// the backend (the sole suspension point), then commit either a success or
// a failure transition. Cancellation is result-level: a superseded instance
// never aborts its backend call, its resolution is just never applied.
type Engine struct {
	store   *store.Store
	gateway backend.Gateway
	logger  *zap.Logger

	debounce time.Duration

	productsGen atomic.Uint64
	placeGen    atomic.Uint64
	ordersGen   atomic.Uint64

	searchMu    sync.Mutex
	searchTimer *time.Timer

	cartLocks lockTable
}

func NewEngine(s *store.Store, gw backend.Gateway, logger *zap.Logger, opts Options) *Engine {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Engine{
		store:    s,
		gateway:  gw,
		logger:   logger,
		debounce: debounce,
	}
}

// guard converts a worker panic into a failure transition so a crashed
// instance still resolves its collection out of the loading state.
func (e *Engine) guard(res chan<- error, failure func(msg string) any) func() {
	return func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("workflow panicked: %v", r)
			e.logger.Error("Workflow panic", zap.Any("cause", r))
			e.store.DispatchSync(failure(err.Error()))
			res <- err
		}
	}
}

func productsFailure(msg string) any { return &store.ProductsFailed{Err: msg} }
func cartFailure(msg string) any     { return &store.CartFailed{Err: msg} }
func ordersFailure(msg string) any   { return &store.OrdersFailed{Err: msg} }

// FetchProducts starts a fresh catalog fetch for the current filter and
// page state. Latest-wins.
func (e *Engine) FetchProducts() <-chan error {
	res := make(chan error, 1)
	gen := e.productsGen.Add(1)
	go e.runProductsFetch(gen, false, res)
	return res
}

// LoadMore advances the page (when more pages exist and no fetch is in
// flight) and fetches it in append mode. Latest-wins against every other
// catalog fetch, so the appended page always reflects current filters.
func (e *Engine) LoadMore() <-chan error {
	e.store.DispatchSync(&store.PageBumped{})
	res := make(chan error, 1)
	gen := e.productsGen.Add(1)
	go e.runProductsFetch(gen, true, res)
	return res
}

// SetSearch records the search text immediately (resetting the page), then
// refetches after the debounce window. A pending instance is superseded at
// once; the fetch itself waits for the keystrokes to settle. Only the
// winning keystroke's channel resolves.
func (e *Engine) SetSearch(search string) <-chan error {
	e.store.DispatchSync(&store.SearchSet{Search: search})

	res := make(chan error, 1)
	gen := e.productsGen.Add(1)

	e.searchMu.Lock()
	defer e.searchMu.Unlock()
	if e.searchTimer != nil {
		e.searchTimer.Stop()
	}
	e.searchTimer = time.AfterFunc(e.debounce, func() {
		e.runProductsFetch(gen, false, res)
	})
	return res
}

// SetCategory applies the category filter and refetches. Latest-wins.
func (e *Engine) SetCategory(category models.Category) <-chan error {
	return e.refetchAfter(&store.CategorySet{Category: category})
}

// SetSortBy applies the sort order and refetches. Latest-wins.
func (e *Engine) SetSortBy(sortBy models.SortOption) <-chan error {
	return e.refetchAfter(&store.SortSet{SortBy: sortBy})
}

// ClearFilters resets the query and refetches. Latest-wins.
func (e *Engine) ClearFilters() <-chan error {
	return e.refetchAfter(&store.FiltersCleared{})
}

// BrowseQuery is a batch filter change; nil fields are left as they are.
type BrowseQuery struct {
	Search   *string
	Category *models.Category
	SortBy   *models.SortOption
	Page     *int
}

// Browse applies every provided filter change in one commit, then runs a
// fresh fetch. Latest-wins.
func (e *Engine) Browse(q BrowseQuery) <-chan error {
	events := make([]any, 0, 4)
	if q.Search != nil {
		events = append(events, &store.SearchSet{Search: *q.Search})
	}
	if q.Category != nil {
		events = append(events, &store.CategorySet{Category: *q.Category})
	}
	if q.SortBy != nil {
		events = append(events, &store.SortSet{SortBy: *q.SortBy})
	}
	if q.Page != nil {
		events = append(events, &store.PageSet{Page: *q.Page})
	}
	return e.refetchAfter(events...)
}

func (e *Engine) refetchAfter(events ...any) <-chan error {
	if len(events) > 0 {
		e.store.DispatchSync(events...)
	}
	res := make(chan error, 1)
	gen := e.productsGen.Add(1)
	go e.runProductsFetch(gen, false, res)
	return res
}

// runProductsFetch is the shared catalog workflow body. Page, page size and
// filters are read at call time, from the state committed by this
// instance's own request mark, never from the trigger-time snapshot.
func (e *Engine) runProductsFetch(gen uint64, appendPage bool, res chan<- error) {
	defer e.guard(res, productsFailure)()

	committed, ok := e.store.DispatchGuarded(&e.productsGen, gen, &store.ProductsRequested{})
	if !ok {
		res <- ErrSuperseded
		return
	}
	p := committed.Products

	page, err := e.gateway.ListProducts(context.Background(), backend.ListQuery{
		Page:     p.Pagination.Page,
		PageSize: p.Pagination.PageSize,
		Search:   p.Filters.Search,
		Category: p.Filters.Category,
		SortBy:   p.Filters.SortBy,
	})
	if err != nil {
		if _, ok := e.store.DispatchGuarded(&e.productsGen, gen, &store.ProductsFailed{Err: err.Error()}); !ok {
			res <- ErrSuperseded
			return
		}
		res <- err
		return
	}

	if _, ok := e.store.DispatchGuarded(&e.productsGen, gen, &store.ProductPageLoaded{
		Products: page.Products,
		Total:    page.Total,
		Append:   appendPage,
	}); !ok {
		res <- ErrSuperseded
		return
	}
	res <- nil
}

// AddToCart adds quantity of a product, guarded against the authoritative
// stock from the backend. Every trigger runs to completion; instances for
// the same product are serialized by the guard lock.
func (e *Engine) AddToCart(productID string, quantity int) <-chan error {
	res := make(chan error, 1)
	go e.runAddToCart(productID, quantity, res)
	return res
}

func (e *Engine) runAddToCart(productID string, quantity int, res chan<- error) {
	defer e.guard(res, cartFailure)()

	e.store.DispatchSync(&store.CartRequested{})

	unlock := e.cartLocks.Lock(productID)
	defer unlock()

	product, err := e.gateway.GetProduct(context.Background(), productID)
	if err != nil {
		e.store.DispatchSync(&store.CartFailed{Err: err.Error()})
		res <- err
		return
	}
	if product.Stock <= 0 {
		e.store.DispatchSync(&store.CartFailed{Err: ErrOutOfStock.Error()})
		res <- ErrOutOfStock
		return
	}

	// Current quantity is read at resolve time, under the product lock, so
	// no concurrent instance can commit between this check and ours.
	current := 0
	if line, ok := e.store.Snapshot().Cart.Line(productID); ok {
		current = line.Quantity
	}
	if current+quantity > product.Stock {
		stockErr := &StockExceededError{Available: product.Stock, Held: current}
		e.store.DispatchSync(&store.CartFailed{Err: stockErr.Error()})
		res <- stockErr
		return
	}

	e.store.DispatchSync(&store.CartAdded{ProductID: productID, Quantity: quantity, At: time.Now()})
	res <- nil
}

// UpdateQuantity sets a cart line's quantity. Zero or negative removes the
// line without consulting the backend; positive quantities are checked
// against authoritative stock. Every trigger runs to completion.
func (e *Engine) UpdateQuantity(productID string, quantity int) <-chan error {
	res := make(chan error, 1)
	go e.runUpdateQuantity(productID, quantity, res)
	return res
}

func (e *Engine) runUpdateQuantity(productID string, quantity int, res chan<- error) {
	defer e.guard(res, cartFailure)()

	e.store.DispatchSync(&store.CartRequested{})

	if quantity <= 0 {
		e.store.DispatchSync(&store.CartQuantitySet{ProductID: productID, Quantity: quantity})
		res <- nil
		return
	}

	unlock := e.cartLocks.Lock(productID)
	defer unlock()

	product, err := e.gateway.GetProduct(context.Background(), productID)
	if err != nil {
		e.store.DispatchSync(&store.CartFailed{Err: err.Error()})
		res <- err
		return
	}
	if product.Stock <= 0 {
		e.store.DispatchSync(&store.CartFailed{Err: ErrOutOfStock.Error()})
		res <- ErrOutOfStock
		return
	}
	if quantity > product.Stock {
		stockErr := &StockLimitError{Available: product.Stock}
		e.store.DispatchSync(&store.CartFailed{Err: stockErr.Error()})
		res <- stockErr
		return
	}

	e.store.DispatchSync(&store.CartQuantitySet{ProductID: productID, Quantity: quantity})
	res <- nil
}

// RemoveFromCart drops a line unconditionally. Removal needs no guard and
// no backend call, so it is a plain transition, not a workflow.
func (e *Engine) RemoveFromCart(productID string) {
	e.store.DispatchSync(&store.CartRemoved{ProductID: productID})
}

// ClearCurrentOrder unsets the current-order pointer, typically after the
// confirmation flow has consumed it.
func (e *Engine) ClearCurrentOrder() {
	e.store.DispatchSync(&store.CurrentOrderCleared{})
}

// PlaceOrder submits the current cart. Latest-wins, so a double-tap cannot
// submit twice: reissuing discards the stale attempt. On success the order
// insert and the cart clear commit atomically; on failure the cart is left
// intact for retry.
func (e *Engine) PlaceOrder() <-chan error {
	res := make(chan error, 1)
	gen := e.placeGen.Add(1)
	go e.runPlaceOrder(gen, res)
	return res
}

func (e *Engine) runPlaceOrder(gen uint64, res chan<- error) {
	defer e.guard(res, ordersFailure)()

	committed, ok := e.store.DispatchGuarded(&e.placeGen, gen, &store.OrderRequested{})
	if !ok {
		res <- ErrSuperseded
		return
	}

	lines := committed.Cart.Lines
	if len(lines) == 0 {
		e.store.DispatchGuarded(&e.placeGen, gen, &store.OrdersFailed{Err: ErrEmptyCart.Error()})
		res <- ErrEmptyCart
		return
	}

	order, err := e.gateway.PlaceOrder(context.Background(), lines)
	if err != nil {
		if _, ok := e.store.DispatchGuarded(&e.placeGen, gen, &store.OrdersFailed{Err: err.Error()}); !ok {
			res <- ErrSuperseded
			return
		}
		res <- err
		return
	}

	if _, ok := e.store.DispatchGuarded(&e.placeGen, gen,
		&store.OrderPlaced{Order: order},
		&store.CartCleared{},
	); !ok {
		res <- ErrSuperseded
		return
	}
	res <- nil
}

// FetchOrders refreshes the order list from the backend. Latest-wins.
func (e *Engine) FetchOrders() <-chan error {
	res := make(chan error, 1)
	gen := e.ordersGen.Add(1)
	go e.runFetchOrders(gen, res)
	return res
}

func (e *Engine) runFetchOrders(gen uint64, res chan<- error) {
	defer e.guard(res, ordersFailure)()

	if _, ok := e.store.DispatchGuarded(&e.ordersGen, gen, &store.OrderRequested{}); !ok {
		res <- ErrSuperseded
		return
	}

	orders, err := e.gateway.ListOrders(context.Background())
	if err != nil {
		if _, ok := e.store.DispatchGuarded(&e.ordersGen, gen, &store.OrdersFailed{Err: err.Error()}); !ok {
			res <- ErrSuperseded
			return
		}
		res <- err
		return
	}

	if _, ok := e.store.DispatchGuarded(&e.ordersGen, gen, &store.OrdersListed{Orders: orders}); !ok {
		res <- ErrSuperseded
		return
	}
	res <- nil
}
