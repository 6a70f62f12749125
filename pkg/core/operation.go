package core

// Operation represents a named remote operation on the exchange.
type Operation int

// Operation constants define all supported exchange operations.
const (
	// OpGetMarkets retrieves the market index (pair discovery).
	OpGetMarkets Operation = iota
	// OpGetTicker retrieves the current ticker for a pair.
	OpGetTicker
	// OpGetOrderBook retrieves the full depth snapshot for a pair.
	OpGetOrderBook
	// OpGetBalance retrieves the account wallet.
	OpGetBalance
	// OpPlaceLimitOrder submits a limit entrustment.
	OpPlaceLimitOrder
	// OpPlaceMarketOrder submits a market entrustment.
	OpPlaceMarketOrder
	// OpCancelOrders submits a batch cancel for a comma-joined id list.
	OpCancelOrders
	// OpGetOrder looks up one entrustment by id.
	OpGetOrder
	// OpGetOrderHistory retrieves paginated historical entrustments.
	OpGetOrderHistory
	// OpGetOpenEntrusts retrieves the caller's current open entrustments.
	// The upstream API calls this "trades"; it is not public trade ticks.
	OpGetOpenEntrusts
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"GET_MARKETS",
		"GET_TICKER",
		"GET_ORDER_BOOK",
		"GET_BALANCE",
		"PLACE_LIMIT_ORDER",
		"PLACE_MARKET_ORDER",
		"CANCEL_ORDERS",
		"GET_ORDER",
		"GET_ORDER_HISTORY",
		"GET_OPEN_ENTRUSTS",
	}[o]
}

// Private reports whether the operation requires the encrypted
// private-channel envelope.
func (o Operation) Private() bool {
	switch o {
	case OpGetMarkets, OpGetTicker, OpGetOrderBook:
		return false
	default:
		return true
	}
}
