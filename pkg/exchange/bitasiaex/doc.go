// Package bitasiaex implements the BitAsiaEx adapter for the uniform
// exchange interface.
//
// Two quirks of the upstream API are preserved deliberately and should
// not be "fixed":
//
//   - The endpoint the venue documents for "trades" (userEntrustCus)
//     returns the caller's own open entrustments, not public trade
//     ticks. The adapter exposes it as FetchMyEntrusts; it still fills
//     the aggregation layer's fetchTrades slot.
//   - CreateOrder returns a normalized Order while FetchOrder returns
//     the raw response payload. Callers depend on the raw shape, so the
//     asymmetry is part of the contract.
//
// Private requests are not HMAC-signed. The secret key and all call
// parameters are sealed into an RSA PKCS#1 v1.5 envelope encrypted with
// the venue's server public key, which the caller must obtain out of
// band; only the API key travels in cleartext as a routing hint.
package bitasiaex
