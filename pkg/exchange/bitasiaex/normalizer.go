package bitasiaex

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"bitasiaex/pkg/core"
)

// rawMarket is one record of the market index response. The venue names
// the base asset "sellshortname" and the quote asset "buyshortname".
type rawMarket struct {
	Pairname      string `json:"pairname"`
	SellShortName string `json:"sellshortname"`
	BuyShortName  string `json:"buyshortname"`
}

// rawTicker is the data object of the ticker response. Numeric fields
// arrive as either JSON numbers or strings depending on the venue's
// mood, so everything decodes through json.Number.
type rawTicker struct {
	SellShortName string      `json:"sellshortname"`
	BuyShortName  string      `json:"buyshortname"`
	High          json.Number `json:"high"`
	Low           json.Number `json:"low"`
	Bid           json.Number `json:"bid"`
	Ask           json.Number `json:"ask"`
	Price         json.Number `json:"price"`
	Rose          json.Number `json:"rose"`
	Total         json.Number `json:"total"`
}

// rawDepth is the data object of the full-depth response: nested arrays
// with price at column 0 and amount at column 1.
type rawDepth struct {
	Bids [][]json.Number `json:"bids"`
	Asks [][]json.Number `json:"asks"`
}

// rawWallet is the data object of the wallet response.
type rawWallet struct {
	Wallet []rawWalletEntry `json:"wallet"`
}

type rawWalletEntry struct {
	ShortName string      `json:"shortname"`
	Total     json.Number `json:"total"`
	Frozen    json.Number `json:"frozen"`
}

// rawEntrustAck is one entry of the order-creation acknowledgement list.
type rawEntrustAck struct {
	EntrustID json.Number `json:"entrustId"`
}

// fixedPrecision is the decimal digit count for every pair on this
// venue; the API does not publish per-pair precision.
const fixedPrecision = 8

// Normalizer converts BitAsiaEx wire shapes to canonical core types and
// canonical requests to the venue's field names and codes.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer instance.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeMarkets converts the market index data into a map keyed by
// normalized symbol. Duplicate symbols in the raw feed overwrite
// earlier entries, last wins, matching the upstream indexing behavior.
func (n *Normalizer) NormalizeMarkets(data json.RawMessage, ts time.Time) (map[string]core.Market, error) {
	var records []json.RawMessage
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal market index: %w", err)
	}

	markets := make(map[string]core.Market, len(records))
	for _, raw := range records {
		var rec rawMarket
		if err := sonic.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal market record: %w", err)
		}

		base := core.NormalizeCurrencyCode(rec.SellShortName)
		quote := core.NormalizeCurrencyCode(rec.BuyShortName)
		symbol := base + "/" + quote

		markets[symbol] = core.Market{
			ID:     rec.Pairname,
			Symbol: symbol,
			Base:   base,
			Quote:  quote,
			Active: true,
			Precision: core.MarketPrecision{
				Price:  fixedPrecision,
				Amount: fixedPrecision,
			},
			Limits: core.MarketLimits{
				PriceMin: core.PowerOfTen(-fixedPrecision),
				PriceMax: core.PowerOfTen(fixedPrecision),
			},
			Timestamp: ts,
			Info:      raw,
		}
	}

	return markets, nil
}

// NormalizeTicker converts a ticker data object to a canonical Ticker.
// The symbol is re-derived from the response's own short names rather
// than the request symbol: the venue's response is authoritative for
// display units.
func (n *Normalizer) NormalizeTicker(data *rawTicker, ts time.Time) (*core.Ticker, error) {
	base := core.NormalizeCurrencyCode(data.SellShortName)
	quote := core.NormalizeCurrencyCode(data.BuyShortName)

	ticker := &core.Ticker{
		Symbol:    base + "/" + quote,
		Timestamp: ts,
	}

	fields := []struct {
		dest *apd.Decimal
		src  json.Number
		name string
	}{
		{&ticker.High, data.High, "high"},
		{&ticker.Low, data.Low, "low"},
		{&ticker.Bid, data.Bid, "bid"},
		{&ticker.Ask, data.Ask, "ask"},
		{&ticker.Last, data.Price, "price"},
		{&ticker.Close, data.Price, "price"},
		{&ticker.Change, data.Rose, "rose"},
		{&ticker.Volume, data.Total, "total"},
	}
	for _, f := range fields {
		if err := core.ParseDecimal(f.dest, f.src.String()); err != nil {
			return nil, fmt.Errorf("parse ticker %s: %w", f.name, err)
		}
	}

	return ticker, nil
}

// NormalizeOrderBook converts a full-depth data object to a canonical
// OrderBook. Column order is price at index 0, amount at index 1, and
// level ordering is preserved exactly as reported. Rows shorter than
// two columns are skipped.
func (n *Normalizer) NormalizeOrderBook(data *rawDepth, symbol string, ts time.Time) (*core.OrderBook, error) {
	book := &core.OrderBook{
		Symbol:    symbol,
		Timestamp: ts,
	}

	bids, err := normalizeBookSide(data.Bids)
	if err != nil {
		return nil, fmt.Errorf("normalize bids: %w", err)
	}
	book.Bids = bids

	asks, err := normalizeBookSide(data.Asks)
	if err != nil {
		return nil, fmt.Errorf("normalize asks: %w", err)
	}
	book.Asks = asks

	return book, nil
}

func normalizeBookSide(levels [][]json.Number) ([]core.BookLevel, error) {
	result := make([]core.BookLevel, 0, len(levels))

	for _, level := range levels {
		if len(level) < 2 {
			continue
		}

		var bl core.BookLevel
		if err := core.ParseDecimal(&bl.Price, level[0].String()); err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		if err := core.ParseDecimal(&bl.Amount, level[1].String()); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}

		result = append(result, bl)
	}

	return result, nil
}

// NormalizeBalances converts wallet entries into a BalanceSheet keyed by
// normalized currency code, computing free = total - frozen.
func (n *Normalizer) NormalizeBalances(wallet *rawWallet, rawBody []byte) (*core.BalanceSheet, error) {
	sheet := &core.BalanceSheet{
		Balances: make(map[string]core.Balance, len(wallet.Wallet)),
		Info:     json.RawMessage(rawBody),
	}

	for _, entry := range wallet.Wallet {
		asset := core.NormalizeCurrencyCode(entry.ShortName)

		bal := core.Balance{Asset: asset}
		if err := core.ParseDecimal(&bal.Total, entry.Total.String()); err != nil {
			return nil, fmt.Errorf("parse %s total: %w", asset, err)
		}
		if err := core.ParseDecimal(&bal.Used, entry.Frozen.String()); err != nil {
			return nil, fmt.Errorf("parse %s frozen: %w", asset, err)
		}

		if _, err := apd.BaseContext.Sub(&bal.Free, &bal.Total, &bal.Used); err != nil {
			return nil, fmt.Errorf("compute %s free balance: %w", asset, err)
		}

		sheet.Balances[asset] = bal
	}

	return sheet, nil
}

// NormalizeOrderAck builds the normalized Order record from an order
// creation acknowledgement. The id comes from the first entry of the
// response's entrustment list; average price and last-trade timestamp
// stay unset because the venue does not report them synchronously.
func (n *Normalizer) NormalizeOrderAck(data json.RawMessage, envTime int64, symbol string, orderType core.OrderType, side core.OrderSide, amount, price *apd.Decimal, rawBody []byte) (*core.Order, error) {
	var acks []rawEntrustAck
	if err := sonic.Unmarshal(data, &acks); err != nil {
		return nil, fmt.Errorf("unmarshal entrustment ack: %w", err)
	}
	if len(acks) == 0 {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeExchange, 0,
			"order acknowledgement carried no entrustment id").WithCode(core.ErrCodeBadEnvelope)
	}

	ts := time.UnixMilli(envTime).UTC()

	order := &core.Order{
		ID:        acks[0].EntrustID.String(),
		Timestamp: ts,
		Datetime:  ts.Format(time.RFC3339Nano),
		Symbol:    symbol,
		Type:      orderType,
		Side:      side,
		SideCode:  side.Code(),
		Info:      json.RawMessage(rawBody),
	}

	if amount != nil {
		order.Amount = *amount
	}
	if price != nil {
		order.Price = *price
	}

	return order, nil
}
