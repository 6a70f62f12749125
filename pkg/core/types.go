package core

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order (buy or sell).
//
// The numeric values deliberately match BitAsiaEx's native side codes
// (0 = buy, 1 = sell), so Code() can be sent on the wire directly.
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase an asset.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell an asset.
	SideSell
)

// String returns the string representation of the order side ("buy" or "sell").
func (s OrderSide) String() string {
	return [...]string{"buy", "sell"}[s]
}

// Code returns the exchange-native numeric side code (0 = buy, 1 = sell).
func (s OrderSide) Code() int {
	return int(s)
}

// ParseOrderSide converts a side string to an OrderSide.
// Unknown values are rejected rather than passed through; the caller is
// expected to surface the failure as an invalid-order condition before
// anything reaches the wire.
func ParseOrderSide(s string) (OrderSide, error) {
	switch s {
	case "buy", "BUY", "Buy":
		return SideBuy, nil
	case "sell", "SELL", "Sell":
		return SideSell, nil
	default:
		return 0, NewExchangeError("bitasiaex", ErrorTypeInvalidOrder, 0,
			"unknown order side: "+s).WithCode(ErrCodeInvalidOrder)
	}
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return NewExchangeError("bitasiaex", ErrorTypeInvalidOrder, 0,
			"invalid order side: "+string(data)).WithCode(ErrCodeInvalidOrder)
	}
	parsed, err := ParseOrderSide(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// OrderType represents the type of order to place on the exchange.
type OrderType int

// Order type constants define how an order is executed.
const (
	// TypeMarket executes immediately at the best available price.
	TypeMarket OrderType = iota
	// TypeLimit executes at a specified price or better.
	TypeLimit
)

// String returns the string representation of the order type.
func (t OrderType) String() string {
	return [...]string{"market", "limit"}[t]
}

// ParseOrderType converts a type string to an OrderType.
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "market", "MARKET", "Market":
		return TypeMarket, nil
	case "limit", "LIMIT", "Limit":
		return TypeLimit, nil
	default:
		return 0, NewExchangeError("bitasiaex", ErrorTypeInvalidOrder, 0,
			"unknown order type: "+s).WithCode(ErrCodeInvalidOrder)
	}
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return NewExchangeError("bitasiaex", ErrorTypeInvalidOrder, 0,
			"invalid order type: "+string(data)).WithCode(ErrCodeInvalidOrder)
	}
	parsed, err := ParseOrderType(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarketPrecision describes the decimal digit counts used for a market.
// BitAsiaEx does not publish per-pair precision, so both values are the
// fixed constant 8 for every pair.
type MarketPrecision struct {
	// Price is the number of decimal digits for prices.
	Price int `json:"price"`
	// Amount is the number of decimal digits for amounts.
	Amount int `json:"amount"`
}

// MarketLimits holds the tradable price bounds derived from precision:
// 10^-precision .. 10^precision.
type MarketLimits struct {
	// PriceMin is the minimum tradable price.
	PriceMin apd.Decimal `json:"price_min"`
	// PriceMax is the maximum tradable price.
	PriceMax apd.Decimal `json:"price_max"`
}

// Market identifies one tradable pair on the exchange.
// Markets are constructed once during market discovery and are immutable
// afterwards; the symbol is always Base + "/" + Quote.
type Market struct {
	// ID is the exchange-native pair identifier (e.g., "btc_usdt").
	ID string `json:"id"`
	// Symbol is the normalized pair identifier (e.g., "BTC/USDT").
	Symbol string `json:"symbol"`
	// Base is the normalized base asset code.
	Base string `json:"base"`
	// Quote is the normalized quote asset code.
	Quote string `json:"quote"`
	// Active reports whether the pair is tradable.
	Active bool `json:"active"`
	// Precision holds the fixed decimal digit counts for this exchange.
	Precision MarketPrecision `json:"precision"`
	// Limits holds the price bounds derived from Precision.
	Limits MarketLimits `json:"limits"`
	// Timestamp is the exchange time of the discovery response.
	Timestamp time.Time `json:"timestamp"`
	// Info preserves the raw market record as reported by the exchange.
	Info json.RawMessage `json:"info,omitempty"`
}

// Ticker is a point-in-time price summary for one market.
// It is constructed fresh on every fetch and never persisted.
type Ticker struct {
	// Symbol is the trading pair identifier, re-derived from the
	// response's own base/quote short names.
	Symbol string `json:"symbol"`
	// Timestamp is the exchange time of the response.
	Timestamp time.Time `json:"timestamp"`
	// High is the period high price.
	High apd.Decimal `json:"high"`
	// Low is the period low price.
	Low apd.Decimal `json:"low"`
	// Bid is the highest price a buyer is willing to pay.
	Bid apd.Decimal `json:"bid"`
	// Ask is the lowest price a seller is willing to accept.
	Ask apd.Decimal `json:"ask"`
	// Last is the price of the most recent trade.
	Last apd.Decimal `json:"last"`
	// Close aliases Last.
	Close apd.Decimal `json:"close"`
	// Change is the percentage change reported by the exchange.
	Change apd.Decimal `json:"change"`
	// Volume is the traded volume total.
	Volume apd.Decimal `json:"volume"`
}

// BookLevel represents a single price level in the order book.
type BookLevel struct {
	// Price is the limit price for this level.
	Price apd.Decimal `json:"price"`
	// Amount is the total amount available at this price.
	Amount apd.Decimal `json:"amount"`
}

// OrderBook holds bids and asks as ordered sequences of price levels
// plus the exchange timestamp of the snapshot.
type OrderBook struct {
	// Symbol is the trading pair for this order book.
	Symbol string `json:"symbol"`
	// Bids are buy levels in the order the exchange reported them.
	Bids []BookLevel `json:"bids"`
	// Asks are sell levels in the order the exchange reported them.
	Asks []BookLevel `json:"asks"`
	// Timestamp is the exchange time of the snapshot.
	Timestamp time.Time `json:"timestamp"`
}

// Balance represents account balance for a single asset.
// Free is always Total - Used; Used is sourced from the exchange's
// "frozen" field.
type Balance struct {
	// Asset is the normalized currency code (e.g., "BTC").
	Asset string `json:"asset"`
	// Total is the full balance.
	Total apd.Decimal `json:"total"`
	// Used is the balance frozen in open entrustments.
	Used apd.Decimal `json:"used"`
	// Free is the available balance (Total - Used).
	Free apd.Decimal `json:"free"`
}

// BalanceSheet aggregates per-asset balances keyed by normalized
// currency code, with the raw wallet response preserved under Info.
type BalanceSheet struct {
	// Balances maps normalized currency codes to their balances.
	Balances map[string]Balance `json:"balances"`
	// Info preserves the raw response for callers that need it.
	Info json.RawMessage `json:"info,omitempty"`
}

// Order is the normalized record returned when an order is created.
// The exchange is the source of truth for status; this record is never
// mutated client-side. Average price and last-trade timestamp are never
// populated because the exchange does not report them synchronously.
type Order struct {
	// ID is the exchange-assigned entrustment identifier.
	ID string `json:"id"`
	// Timestamp is the exchange time of the creation response.
	Timestamp time.Time `json:"timestamp"`
	// Datetime is Timestamp rendered as ISO-8601 UTC.
	Datetime string `json:"datetime"`
	// Symbol is the trading pair the order was placed on.
	Symbol string `json:"symbol"`
	// Type defines how the order executes (market or limit).
	Type OrderType `json:"type"`
	// Side indicates whether this is a buy or sell order.
	Side OrderSide `json:"side"`
	// SideCode is the exchange-native numeric side code (0=buy, 1=sell).
	SideCode int `json:"side_code"`
	// Price is the requested limit price; zero for market orders.
	Price apd.Decimal `json:"price"`
	// Amount is the requested order amount.
	Amount apd.Decimal `json:"amount"`
	// Info preserves the raw creation response.
	Info json.RawMessage `json:"info,omitempty"`
}
