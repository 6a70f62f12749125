package bitasiaex

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"maps"
	"strings"

	"github.com/bytedance/sonic"

	"bitasiaex/pkg/core"
)

// Channel selects the public or private signing path.
type Channel int

const (
	// ChannelPublic builds a plain GET-style request with query parameters.
	ChannelPublic Channel = iota
	// ChannelPrivate builds the encrypted envelope body.
	ChannelPrivate
)

// privateEnvelope is the body of every private request: the API key in
// cleartext as a routing hint, and the secret plus all call parameters
// sealed inside the RSA ciphertext.
type privateEnvelope struct {
	APIKey string `json:"apiKey"`
	Data   string `json:"data"`
}

// Signer builds the final wire request for a named remote operation.
// It is bound to an immutable credentials value, so concurrent private
// calls never observe partially updated key material.
type Signer struct {
	creds   core.Credentials
	baseURL string
}

// NewSigner creates a signer for the given credentials and API base URL.
// A zero Credentials value is valid for public-channel signing.
func NewSigner(creds core.Credentials, baseURL string) *Signer {
	return &Signer{creds: creds, baseURL: strings.TrimRight(baseURL, "/")}
}

// Sign produces the url/method/body/headers tuple for one call.
//
// Path placeholders of the form {name} are substituted from params and
// the consumed entries are omitted from the remainder. On the public
// channel the remainder becomes the query string; on the private channel
// it is merged with the credentials into the encrypted payload.
func (s *Signer) Sign(path string, channel Channel, method string, params core.Params) (*core.Request, error) {
	path, remaining := implodeParams(path, params)

	req := core.NewRequest(method, s.baseURL+"/"+path)

	if channel == ChannelPublic {
		req.SetQueryParams(remaining)
		return req, nil
	}

	if err := s.checkCredentials(); err != nil {
		return nil, err
	}

	ciphertext, err := s.encryptPayload(remaining)
	if err != nil {
		return nil, err
	}

	req.SetBody(privateEnvelope{APIKey: s.creds.APIKey, Data: ciphertext})
	req.SetHeader("Content-Type", "application/json;charset=utf-8")
	req.SetRequireAuth(true)
	return req, nil
}

// checkCredentials fails fast, before any network activity, when the
// material required for a private call is missing.
func (s *Signer) checkCredentials() error {
	if s.creds.APIKey == "" || s.creds.SecretKey == "" {
		return core.NewExchangeError(ExchangeName, core.ErrorTypeAuthentication, 0,
			"apiKey and secret are required for private calls").WithCode(core.ErrCodeNoCredentials)
	}
	if s.creds.ServerPublicKey == "" {
		return core.NewExchangeError(ExchangeName, core.ErrorTypeAuthentication, 0,
			"server public key is required for private calls").WithCode(core.ErrCodeNoServerKey)
	}
	return nil
}

// encryptPayload seals {apiKey, secretKey, ...params} into a base64
// PKCS#1 v1.5 ciphertext under the server's public key. Failures surface
// as authentication-class errors with distinct codes so callers can tell
// a rejected secret from a misconfigured server key.
func (s *Signer) encryptPayload(params core.Params) (string, error) {
	payload := core.Params{
		"apiKey":    s.creds.APIKey,
		"secretKey": s.creds.SecretKey,
	}
	maps.Copy(payload, params)

	plaintext, err := sonic.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal private payload: %w", err)
	}

	pub, err := parseServerPublicKey(s.creds.ServerPublicKey)
	if err != nil {
		return "", core.NewExchangeError(ExchangeName, core.ErrorTypeAuthentication, 0,
			fmt.Sprintf("parse server public key: %v", err)).WithCode(core.ErrCodeInvalidServerKey)
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, plaintext)
	if err != nil {
		return "", core.NewExchangeError(ExchangeName, core.ErrorTypeAuthentication, 0,
			fmt.Sprintf("encrypt private payload: %v", err)).WithCode(core.ErrCodeEncryptFailed)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// parseServerPublicKey accepts the venue's key in PEM form, either PKIX
// ("PUBLIC KEY") or PKCS#1 ("RSA PUBLIC KEY") encoded.
func parseServerPublicKey(pemText string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("server key is %T, not RSA", pub)
		}
		return rsaPub, nil
	}

	return x509.ParsePKCS1PublicKey(block.Bytes)
}

// implodeParams substitutes {name} placeholders in the path and returns
// the resolved path plus the parameters that were not consumed by it.
func implodeParams(path string, params core.Params) (string, core.Params) {
	remaining := make(core.Params, len(params))
	maps.Copy(remaining, params)

	for key, val := range params {
		placeholder := "{" + key + "}"
		if strings.Contains(path, placeholder) {
			path = strings.ReplaceAll(path, placeholder, fmt.Sprint(val))
			delete(remaining, key)
		}
	}

	return path, remaining
}
