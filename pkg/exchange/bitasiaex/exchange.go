package bitasiaex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"bitasiaex/internal/circuitbreaker"
	httpclient "bitasiaex/internal/http"
	"bitasiaex/internal/keyring"
	"bitasiaex/internal/ratelimit"
	"bitasiaex/pkg/core"
	"bitasiaex/pkg/exchange"
)

// marketCacheKey is the single cache entry holding the discovered
// market index.
const marketCacheKey = "markets"

// BitAsiaExchange implements the uniform exchange interface for the
// BitAsiaEx venue. Aside from the TTL market cache it holds no mutable
// state between calls; every operation is a single-shot request/response.
type BitAsiaExchange struct {
	config         *core.Config
	baseURL        string
	keyRing        *keyring.KeyRing
	httpClient     *httpclient.Client
	rateLimiter    *ratelimit.Limiter
	circuitBreaker *circuitbreaker.Breaker
	logger         zerolog.Logger
	normalizer     *Normalizer
	protocol       *Protocol
	marketCache    *gocache.Cache
}

// Option is a functional option for configuring the BitAsiaExchange.
type Option func(*Options)

// Options holds construction options for the BitAsiaExchange.
type Options struct {
	KeyRing *keyring.KeyRing
	Logger  zerolog.Logger
	BaseURL string
}

// WithKeyRing returns an option that sets the credential ring used for
// key rotation on private calls.
func WithKeyRing(kr *keyring.KeyRing) Option {
	return func(o *Options) {
		o.KeyRing = kr
	}
}

// WithLogger returns an option that sets the logger for the exchange.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithBaseURL returns an option that overrides the API base URL, for
// proxied deployments.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// New creates a BitAsiaExchange with the given configuration and options.
func New(config *core.Config, opts ...Option) (*BitAsiaExchange, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	protocol := NewProtocol()

	baseURL := protocol.BaseURL(config.Sandbox)
	if options.BaseURL != "" {
		baseURL = strings.TrimRight(options.BaseURL, "/")
	}

	client, err := httpclient.NewClient(&httpclient.Config{
		BaseURL:      baseURL,
		Timeout:      config.Timeout,
		MaxRetries:   config.MaxRetries,
		RetryWaitMin: config.RetryWaitMin,
		RetryWaitMax: config.RetryWaitMax,
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	var rl *ratelimit.Limiter
	if config.RateLimitRequests > 0 {
		rl = ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)
	}

	var cb *circuitbreaker.Breaker
	if config.CircuitBreakerEnabled {
		cb = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		})
	}

	ttl := config.MarketCacheTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	return &BitAsiaExchange{
		config:         config,
		baseURL:        baseURL,
		keyRing:        options.KeyRing,
		httpClient:     client,
		rateLimiter:    rl,
		circuitBreaker: cb,
		logger:         options.Logger,
		normalizer:     NewNormalizer(),
		protocol:       protocol,
		marketCache:    gocache.New(ttl, 2*ttl),
	}, nil
}

// Name returns the exchange identifier "bitasiaex".
func (e *BitAsiaExchange) Name() string {
	return ExchangeName
}

// Version returns the API version segment.
func (e *BitAsiaExchange) Version() string {
	return e.protocol.Version()
}

// Close releases resources used by the exchange.
func (e *BitAsiaExchange) Close() error {
	if e.httpClient != nil {
		return e.httpClient.Close()
	}
	return nil
}

// LoadMarkets returns the market index, reusing a cached copy when one
// is still fresh.
func (e *BitAsiaExchange) LoadMarkets(ctx context.Context) (map[string]core.Market, error) {
	if cached, ok := e.marketCache.Get(marketCacheKey); ok {
		return cached.(map[string]core.Market), nil
	}

	markets, err := e.FetchMarkets(ctx)
	if err != nil {
		return nil, err
	}

	e.marketCache.SetDefault(marketCacheKey, markets)
	return markets, nil
}

// Market resolves a normalized symbol against the loaded market index.
func (e *BitAsiaExchange) Market(symbol string) (*core.Market, error) {
	cached, ok := e.marketCache.Get(marketCacheKey)
	if !ok {
		return nil, core.ErrMarketsNotLoaded
	}

	markets := cached.(map[string]core.Market)
	market, ok := markets[symbol]
	if !ok {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeBadRequest, 0,
			"unknown symbol: "+symbol).WithCode(core.ErrCodeInvalidSymbol)
	}
	return &market, nil
}

// FetchMarkets performs the market discovery call. A non-success
// envelope raises an exchange error carrying the venue's message, for
// consistency with the other fetchers.
func (e *BitAsiaExchange) FetchMarkets(ctx context.Context) (map[string]core.Market, error) {
	env, _, err := e.call(ctx, core.OpGetMarkets, core.Params{})
	if err != nil {
		return nil, err
	}

	return e.normalizer.NormalizeMarkets(env.Data, time.UnixMilli(env.Time).UTC())
}

// FetchTicker retrieves the current ticker for the given symbol.
func (e *BitAsiaExchange) FetchTicker(ctx context.Context, symbol string) (*core.Ticker, error) {
	market, err := e.resolveMarket(ctx, symbol)
	if err != nil {
		return nil, err
	}

	env, _, err := e.call(ctx, core.OpGetTicker, core.Params{
		"pairname": strings.ToLower(market.ID),
	})
	if err != nil {
		return nil, err
	}

	var data rawTicker
	if err := decodeData(env.Data, &data); err != nil {
		return nil, err
	}

	return e.normalizer.NormalizeTicker(&data, time.UnixMilli(env.Time).UTC())
}

// FetchOrderBook retrieves the full depth snapshot for the given symbol.
func (e *BitAsiaExchange) FetchOrderBook(ctx context.Context, symbol string, opts ...exchange.Option) (*core.OrderBook, error) {
	options := exchange.ApplyOptions(opts...)

	market, err := e.resolveMarket(ctx, symbol)
	if err != nil {
		return nil, err
	}

	params := core.Params{
		"pairname": strings.ToLower(market.ID),
	}
	if options.Limit > 0 {
		params["limit"] = options.Limit
	}

	env, _, err := e.call(ctx, core.OpGetOrderBook, params)
	if err != nil {
		return nil, err
	}

	var data rawDepth
	if err := decodeData(env.Data, &data); err != nil {
		return nil, err
	}

	return e.normalizer.NormalizeOrderBook(&data, symbol, time.UnixMilli(env.Time).UTC())
}

// FetchBalance retrieves the account wallet. Markets are loaded first
// for consistency with the rest of the surface, even though the wallet
// lookup itself needs no pair.
func (e *BitAsiaExchange) FetchBalance(ctx context.Context) (*core.BalanceSheet, error) {
	if _, err := e.LoadMarkets(ctx); err != nil {
		return nil, err
	}

	env, body, err := e.call(ctx, core.OpGetBalance, core.Params{})
	if err != nil {
		return nil, err
	}

	var data rawWallet
	if err := decodeData(env.Data, &data); err != nil {
		return nil, err
	}

	return e.normalizer.NormalizeBalances(&data, body)
}

// CreateOrder submits an entrustment and returns the normalized record.
//
// Limit orders require a price and submit {pairname, type, price, count}.
// Market orders carry the amount under "amount" for buys and "count" for
// sells; that asymmetry is the venue's own and is preserved.
func (e *BitAsiaExchange) CreateOrder(ctx context.Context, symbol string, orderType core.OrderType, side core.OrderSide, amount, price *apd.Decimal) (*core.Order, error) {
	market, err := e.resolveMarket(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if amount == nil {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeInvalidOrder, 0,
			"createOrder requires an amount").WithCode(core.ErrCodeInvalidOrder)
	}

	params := core.Params{
		"pairname": market.ID,
		"type":     side.Code(),
	}

	var op core.Operation
	switch orderType {
	case core.TypeLimit:
		if price == nil {
			return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeInvalidOrder, 0,
				"createOrder requires a price argument for a limit order").WithCode(core.ErrCodeInvalidOrder)
		}
		priceStr, err := core.PriceToPrecision(price, market.Precision.Price)
		if err != nil {
			return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeInvalidOrder, 0,
				err.Error()).WithCode(core.ErrCodeInvalidOrder)
		}
		params["price"] = priceStr
		params["count"] = amount.String()
		op = core.OpPlaceLimitOrder

	case core.TypeMarket:
		if side == core.SideBuy {
			params["amount"] = amount.String()
		} else {
			params["count"] = amount.String()
		}
		op = core.OpPlaceMarketOrder

	default:
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeInvalidOrder, 0,
			"unsupported order type: "+orderType.String()).WithCode(core.ErrCodeInvalidOrder)
	}

	env, body, err := e.call(ctx, op, params)
	if err != nil {
		return nil, err
	}

	return e.normalizer.NormalizeOrderAck(env.Data, env.Time, symbol, orderType, side, amount, price, body)
}

// CancelOrders batch-cancels the given entrustment ids, joined into the
// venue's comma-separated list. An empty list fails locally before any
// network call.
func (e *BitAsiaExchange) CancelOrders(ctx context.Context, ids []string, symbol string) (json.RawMessage, error) {
	if _, err := e.LoadMarkets(ctx); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeInvalidOrder, 0,
			"cancelOrders requires at least one entrustment id").WithCode(core.ErrCodeInvalidOrder)
	}

	_, body, err := e.call(ctx, core.OpCancelOrders, core.Params{
		"entrustIdList": strings.Join(ids, ","),
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// FetchOrder looks up one entrustment by id and returns the raw
// response payload; see the package documentation for why this is not
// normalized like CreateOrder.
func (e *BitAsiaExchange) FetchOrder(ctx context.Context, id string, symbol string) (json.RawMessage, error) {
	if _, err := e.LoadMarkets(ctx); err != nil {
		return nil, err
	}

	_, body, err := e.call(ctx, core.OpGetOrder, core.Params{
		"entrustId": id,
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// FetchOrders returns paginated historical entrustments for a pair.
func (e *BitAsiaExchange) FetchOrders(ctx context.Context, symbol string, opts ...exchange.Option) (json.RawMessage, error) {
	if symbol == "" {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeExchange, 0,
			"fetchOrders requires a symbol").WithCode(core.ErrCodeMissingSymbol)
	}

	options := exchange.ApplyOptions(opts...)

	market, err := e.resolveMarket(ctx, symbol)
	if err != nil {
		return nil, err
	}

	params := core.Params{
		"pairname": market.ID,
	}
	if page := formatPage(options.Page); page != "" {
		params["currentPage"] = page
	}

	_, body, err := e.call(ctx, core.OpGetOrderHistory, params)
	if err != nil {
		return nil, err
	}

	return body, nil
}

// FetchMyEntrusts returns the caller's current open entrustments for a
// pair. This fills the aggregation layer's fetchTrades slot; it does not
// return public trade ticks.
func (e *BitAsiaExchange) FetchMyEntrusts(ctx context.Context, symbol string) (json.RawMessage, error) {
	if symbol == "" {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeExchange, 0,
			"fetchMyEntrusts requires a symbol").WithCode(core.ErrCodeMissingSymbol)
	}

	market, err := e.resolveMarket(ctx, symbol)
	if err != nil {
		return nil, err
	}

	_, body, err := e.call(ctx, core.OpGetOpenEntrusts, core.Params{
		"pairname": market.ID,
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// resolveMarket loads the market index if needed and resolves the symbol.
func (e *BitAsiaExchange) resolveMarket(ctx context.Context, symbol string) (*core.Market, error) {
	if _, err := e.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	return e.Market(symbol)
}

// call builds, signs, dispatches, and envelope-checks one operation.
// It returns the parsed envelope and the raw response body.
func (e *BitAsiaExchange) call(ctx context.Context, op core.Operation, params core.Params) (*envelope, json.RawMessage, error) {
	signer, err := e.signer(op)
	if err != nil {
		return nil, nil, err
	}

	req, err := e.protocol.BuildRequest(ctx, op, params, signer)
	if err != nil {
		return nil, nil, err
	}

	resp, err := e.doRequest(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	body := resp.Bytes()
	env, err := e.protocol.parseEnvelope(body)
	if err != nil {
		return nil, nil, err
	}

	e.logger.Debug().
		Str("operation", op.String()).
		Str("path", req.Path).
		Int("code", env.Code).
		Msg("bitasiaex call")

	return env, json.RawMessage(body), nil
}

// signer returns a signer bound to the credentials for this call:
// the current key-ring entry when a ring is configured, the static
// config credentials otherwise. Public operations get a credential-free
// signer.
func (e *BitAsiaExchange) signer(op core.Operation) (*Signer, error) {
	baseURL := e.baseURL

	if !op.Private() {
		return NewSigner(core.Credentials{}, baseURL), nil
	}

	if e.keyRing != nil {
		entry := e.keyRing.Current()
		if entry == nil {
			return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeAuthentication, 0,
				"no available credential set").WithCode(core.ErrCodeNoCredentials)
		}
		e.keyRing.MarkUsed()
		return NewSigner(core.Credentials{
			APIKey:          entry.Key,
			SecretKey:       entry.Secret,
			ServerPublicKey: entry.ServerPublic,
		}, baseURL), nil
	}

	if e.config.Credentials == nil {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeAuthentication, 0,
			"no credentials configured").WithCode(core.ErrCodeNoCredentials)
	}

	return NewSigner(*e.config.Credentials, baseURL), nil
}

func (e *BitAsiaExchange) doRequest(ctx context.Context, req *core.Request) (*resty.Response, error) {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	if e.circuitBreaker != nil && !e.circuitBreaker.Allow() {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeNetwork, 0,
			"circuit breaker open").WithCode(core.ErrCodeNetwork)
	}

	var resp *resty.Response
	var err error

	switch req.Method {
	case http.MethodGet:
		resp, err = e.httpClient.Get(ctx, req.Path, e.requestOptions(req)...)
	case http.MethodPost:
		resp, err = e.httpClient.Post(ctx, req.Path, req.Body, e.requestOptions(req)...)
	default:
		return nil, fmt.Errorf("unsupported method: %s", req.Method)
	}

	if e.circuitBreaker != nil {
		e.circuitBreaker.Record(err == nil)
	}

	if e.keyRing != nil && err != nil {
		e.keyRing.OnError(err)
	}

	return resp, err
}

func (e *BitAsiaExchange) requestOptions(req *core.Request) []httpclient.RequestOption {
	var opts []httpclient.RequestOption

	for k, v := range req.Headers {
		opts = append(opts, httpclient.WithHeader(k, v))
	}

	for k, v := range req.Query {
		opts = append(opts, httpclient.WithQueryParam(k, fmt.Sprint(v)))
	}

	return opts
}

// decodeData unmarshals the envelope's data payload into dest, failing
// with a typed parsing error rather than an undefined-field access.
func decodeData(data json.RawMessage, dest any) error {
	if err := sonic.Unmarshal(data, dest); err != nil {
		return core.NewExchangeError(ExchangeName, core.ErrorTypeExchange, 0,
			fmt.Sprintf("malformed response data: %v", err)).WithCode(core.ErrCodeBadEnvelope)
	}
	return nil
}

// Register creates a BitAsiaExchange and registers it with the container.
func Register(container *exchange.Container, config *core.Config, opts ...Option) error {
	ex, err := New(config, opts...)
	if err != nil {
		return fmt.Errorf("create bitasiaex exchange: %w", err)
	}
	container.Register(ExchangeName, ex)
	return nil
}
