package exchange

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/apd/v3"

	"bitasiaex/pkg/core"
)

// Exchange defines the uniform trading interface this adapter exposes to
// the aggregation layer. All methods are single-shot request/response
// calls; the only state an implementation keeps between calls is its
// market cache.
//
// Result shapes are intentionally uneven where the upstream API is:
// CreateOrder returns a normalized record, while FetchOrder and the
// entrustment listings return the raw response envelope. Callers depend
// on the raw shapes, so the asymmetry is part of the contract.
type Exchange interface {
	Name() string
	Version() string

	// LoadMarkets returns the market index keyed by normalized symbol,
	// serving a cached copy when one is fresh.
	LoadMarkets(ctx context.Context) (map[string]core.Market, error)
	// FetchMarkets always performs the discovery call.
	FetchMarkets(ctx context.Context) (map[string]core.Market, error)
	// Market resolves a normalized symbol against the loaded index.
	Market(symbol string) (*core.Market, error)

	FetchTicker(ctx context.Context, symbol string) (*core.Ticker, error)
	FetchOrderBook(ctx context.Context, symbol string, opts ...Option) (*core.OrderBook, error)
	FetchBalance(ctx context.Context) (*core.BalanceSheet, error)

	// CreateOrder submits an entrustment. Price is required for limit
	// orders and ignored for market orders.
	CreateOrder(ctx context.Context, symbol string, orderType core.OrderType, side core.OrderSide, amount *apd.Decimal, price *apd.Decimal) (*core.Order, error)
	// CancelOrders batch-cancels the given entrustment ids.
	CancelOrders(ctx context.Context, ids []string, symbol string) (json.RawMessage, error)
	// FetchOrder looks up one entrustment by id and returns the raw
	// response payload.
	FetchOrder(ctx context.Context, id string, symbol string) (json.RawMessage, error)
	// FetchOrders returns paginated historical entrustments for a pair.
	FetchOrders(ctx context.Context, symbol string, opts ...Option) (json.RawMessage, error)
	// FetchMyEntrusts returns the caller's current open entrustments for
	// a pair. This fills the aggregation layer's "fetchTrades" slot even
	// though it does not return public trade ticks; see the package
	// documentation of the concrete adapter.
	FetchMyEntrusts(ctx context.Context, symbol string) (json.RawMessage, error)
}
