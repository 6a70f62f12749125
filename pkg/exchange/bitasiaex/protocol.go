package bitasiaex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"bitasiaex/pkg/core"
)

// ExchangeName is the adapter identifier.
const ExchangeName = "bitasiaex"

const (
	// ProductionURL is the REST API base. The venue operates no test
	// environment, so sandbox mode resolves to the same URL.
	ProductionURL = "https://www.bitasiabit.com/app/v1"
	// WWWURL is the venue's public site.
	WWWURL = "https://www.bitasiaex.com"
	// DocURL is the venue's API documentation page.
	DocURL = "https://www.bitasiaex.com/about/about.html?id=115"
)

// Exchange endpoint paths, relative to the API base.
const (
	pathMarketIndex  = "getIndexMarketCus"
	pathTicker       = "getMarketCus"
	pathFullDepth    = "getFullDepthCus"
	pathLimitOrder   = "entrustSubmitCus"
	pathMarketOrder  = "entrustMarketCus"
	pathBatchCancel  = "entrustBatchCancelCus"
	pathOpenEntrusts = "userEntrustCus"
	pathHistory      = "userEntrustHistoryCus"
	pathSearch       = "userEntrustSearchCus"
	pathWallet       = "userCapitalCus"
)

// Timeframes maps normalized interval names to the venue's kline codes.
// The venue declares OHLCV support under these codes but exposes no
// public candle endpoint, so the table is protocol metadata only.
var Timeframes = map[string]string{
	"1m":  "M1",
	"5m":  "M5",
	"15m": "M15",
	"30m": "M30",
	"1h":  "H1",
	"1d":  "D1",
	"1w":  "W1",
}

// envelopeSuccessCode is the application-level success code of the wire
// envelope; HTTP status is not authoritative on this venue.
const envelopeSuccessCode = 200

// Protocol holds the endpoint table and request/response rules for the
// BitAsiaEx REST API. It is stateless; signing is delegated to a Signer
// carrying immutable credentials.
type Protocol struct{}

// NewProtocol creates a new BitAsiaEx protocol instance.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// Name returns the protocol identifier "bitasiaex".
func (p *Protocol) Name() string {
	return ExchangeName
}

// Version returns the API version segment.
func (p *Protocol) Version() string {
	return "v1"
}

// BaseURL returns the API base URL. Sandbox has no effect because the
// venue operates no test environment.
func (p *Protocol) BaseURL(sandbox bool) string {
	return ProductionURL
}

// SupportedOperations returns the operations this protocol implements.
func (p *Protocol) SupportedOperations() []core.Operation {
	return []core.Operation{
		core.OpGetMarkets,
		core.OpGetTicker,
		core.OpGetOrderBook,
		core.OpGetBalance,
		core.OpPlaceLimitOrder,
		core.OpPlaceMarketOrder,
		core.OpCancelOrders,
		core.OpGetOrder,
		core.OpGetOrderHistory,
		core.OpGetOpenEntrusts,
	}
}

// BuildRequest validates the operation parameters and produces the final
// wire request through the given signer.
func (p *Protocol) BuildRequest(ctx context.Context, op core.Operation, params core.Params, signer *Signer) (*core.Request, error) {
	switch op {
	case core.OpGetMarkets:
		return signer.Sign(pathMarketIndex, ChannelPublic, http.MethodGet, params)

	case core.OpGetTicker:
		if err := requireStringParam(params, "pairname"); err != nil {
			return nil, err
		}
		return signer.Sign(pathTicker, ChannelPublic, http.MethodGet, params)

	case core.OpGetOrderBook:
		if err := requireStringParam(params, "pairname"); err != nil {
			return nil, err
		}
		return signer.Sign(pathFullDepth, ChannelPublic, http.MethodGet, params)

	case core.OpGetBalance:
		return signer.Sign(pathWallet, ChannelPrivate, http.MethodPost, params)

	case core.OpPlaceLimitOrder:
		for _, key := range []string{"pairname", "price"} {
			if err := requireStringParam(params, key); err != nil {
				return nil, err
			}
		}
		if _, ok := params["count"]; !ok {
			return nil, missingParam("count")
		}
		return signer.Sign(pathLimitOrder, ChannelPrivate, http.MethodPost, params)

	case core.OpPlaceMarketOrder:
		if err := requireStringParam(params, "pairname"); err != nil {
			return nil, err
		}
		_, hasAmount := params["amount"]
		_, hasCount := params["count"]
		if !hasAmount && !hasCount {
			return nil, missingParam("amount or count")
		}
		return signer.Sign(pathMarketOrder, ChannelPrivate, http.MethodPost, params)

	case core.OpCancelOrders:
		if err := requireStringParam(params, "entrustIdList"); err != nil {
			return nil, err
		}
		return signer.Sign(pathBatchCancel, ChannelPrivate, http.MethodPost, params)

	case core.OpGetOrder:
		if _, ok := params["entrustId"]; !ok {
			return nil, missingParam("entrustId")
		}
		return signer.Sign(pathSearch, ChannelPrivate, http.MethodPost, params)

	case core.OpGetOrderHistory:
		if err := requireStringParam(params, "pairname"); err != nil {
			return nil, err
		}
		return signer.Sign(pathHistory, ChannelPrivate, http.MethodPost, params)

	case core.OpGetOpenEntrusts:
		if err := requireStringParam(params, "pairname"); err != nil {
			return nil, err
		}
		return signer.Sign(pathOpenEntrusts, ChannelPrivate, http.MethodPost, params)

	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

// envelope is the validated wire shape of every response:
// {code: 200, data: ..., time: <unix-ms>} on success,
// {code: <non-200>, msg: <string>} on failure.
type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Time int64           `json:"time"`
	Msg  string          `json:"msg"`
}

// parseEnvelope decodes a response body into the typed envelope and
// converts a non-success code into the matching domain error. Malformed
// bodies fail with a typed parsing error instead of surfacing as missing
// fields deeper in translation.
func (p *Protocol) parseEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeExchange, 0,
			fmt.Sprintf("malformed response envelope: %v", err)).WithCode(core.ErrCodeBadEnvelope)
	}
	if env.Code == 0 {
		return nil, core.NewExchangeError(ExchangeName, core.ErrorTypeExchange, 0,
			"response envelope missing code").WithCode(core.ErrCodeBadEnvelope)
	}
	if env.Code != envelopeSuccessCode {
		return nil, p.envelopeError(env.Code, env.Msg)
	}
	return &env, nil
}

// envelopeError maps a failure envelope onto the error taxonomy. The
// venue documents no numeric code table, so classification is by
// message keywords with the envelope code preserved on the error.
func (p *Protocol) envelopeError(code int, msg string) *core.ExchangeError {
	errType := core.ErrorTypeExchange
	errCode := core.ErrCodeExchange

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "insufficient") || strings.Contains(lower, "not enough"):
		errType = core.ErrorTypeInsufficientFunds
		errCode = core.ErrCodeInsufficientFunds
	case strings.Contains(lower, "permission") || strings.Contains(lower, "denied") || strings.Contains(lower, "forbidden"):
		errType = core.ErrorTypePermissionDenied
	case strings.Contains(lower, "nonce"):
		errType = core.ErrorTypeInvalidNonce
	case strings.Contains(lower, "not found") || strings.Contains(lower, "not exist"):
		errType = core.ErrorTypeOrderNotFound
		errCode = core.ErrCodeOrderNotFound
	case strings.Contains(lower, "apikey") || strings.Contains(lower, "api key") || strings.Contains(lower, "signature"):
		errType = core.ErrorTypeAuthentication
	}

	return core.NewExchangeError(ExchangeName, errType, code, msg).WithCode(errCode)
}

func requireStringParam(params core.Params, key string) error {
	val, ok := params[key]
	if !ok {
		return missingParam(key)
	}
	str, ok := val.(string)
	if !ok {
		return fmt.Errorf("parameter %s must be a string, got %T", key, val)
	}
	if str == "" {
		return fmt.Errorf("parameter %s cannot be empty", key)
	}
	return nil
}

func missingParam(key string) error {
	return fmt.Errorf("missing required parameter: %s", key)
}

// formatPage renders a history page number for the wire; page numbering
// starts at 1 and zero means the venue default.
func formatPage(page int) string {
	if page <= 0 {
		return ""
	}
	return strconv.Itoa(page)
}
