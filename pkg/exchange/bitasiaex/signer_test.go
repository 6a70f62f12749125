package bitasiaex

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitasiaex/pkg/core"
)

// genServerKey produces a fresh RSA key pair with the public half in the
// PEM form the venue hands out.
func genServerKey(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	return pemText, priv
}

func TestSigner_PublicChannel(t *testing.T) {
	signer := NewSigner(core.Credentials{}, "https://example.com/app/v1/")

	req, err := signer.Sign(pathTicker, ChannelPublic, http.MethodGet, core.Params{
		"pairname": "btc_usdt",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://example.com/app/v1/getMarketCus", req.Path)
	assert.Equal(t, "btc_usdt", req.Query["pairname"])
	assert.Nil(t, req.Body)
	assert.False(t, req.RequireAuth)
}

func TestSigner_PrivateChannel_RoundTrip(t *testing.T) {
	pemText, priv := genServerKey(t)
	signer := NewSigner(core.Credentials{
		APIKey:          "api-key-1",
		SecretKey:       "secret-1",
		ServerPublicKey: pemText,
	}, "https://example.com/app/v1")

	req, err := signer.Sign(pathWallet, ChannelPrivate, http.MethodPost, core.Params{
		"pairname": "btc_usdt",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://example.com/app/v1/userCapitalCus", req.Path)
	assert.Equal(t, "application/json;charset=utf-8", req.Headers["Content-Type"])
	assert.True(t, req.RequireAuth)

	env, ok := req.Body.(privateEnvelope)
	require.True(t, ok)
	assert.Equal(t, "api-key-1", env.APIKey)

	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	require.NoError(t, err)

	plaintext, err := rsa.DecryptPKCS1v15(nil, priv, ciphertext)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, sonic.Unmarshal(plaintext, &payload))
	assert.Equal(t, "api-key-1", payload["apiKey"])
	assert.Equal(t, "secret-1", payload["secretKey"])
	assert.Equal(t, "btc_usdt", payload["pairname"])
}

func TestSigner_PKCS1ServerKey(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemText := string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&priv.PublicKey),
	}))

	signer := NewSigner(core.Credentials{
		APIKey:          "k",
		SecretKey:       "s",
		ServerPublicKey: pemText,
	}, "https://example.com/app/v1")

	_, err = signer.Sign(pathWallet, ChannelPrivate, http.MethodPost, core.Params{})
	require.NoError(t, err)
}

func TestSigner_CredentialFailures(t *testing.T) {
	pemText, _ := genServerKey(t)

	tests := []struct {
		name     string
		creds    core.Credentials
		wantCode core.ErrorCode
	}{
		{
			name:     "no_credentials",
			creds:    core.Credentials{},
			wantCode: core.ErrCodeNoCredentials,
		},
		{
			name:     "missing_secret",
			creds:    core.Credentials{APIKey: "k", ServerPublicKey: pemText},
			wantCode: core.ErrCodeNoCredentials,
		},
		{
			name:     "missing_server_key",
			creds:    core.Credentials{APIKey: "k", SecretKey: "s"},
			wantCode: core.ErrCodeNoServerKey,
		},
		{
			name:     "garbage_server_key",
			creds:    core.Credentials{APIKey: "k", SecretKey: "s", ServerPublicKey: "not a pem"},
			wantCode: core.ErrCodeInvalidServerKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := NewSigner(tt.creds, "https://example.com/app/v1")
			_, err := signer.Sign(pathWallet, ChannelPrivate, http.MethodPost, core.Params{})
			require.Error(t, err)
			assert.True(t, core.IsAuthenticationError(err))
			assert.True(t, core.IsErrorCode(err, tt.wantCode))
		})
	}
}

func TestSigner_OversizedPayload(t *testing.T) {
	pemText, _ := genServerKey(t)
	signer := NewSigner(core.Credentials{
		APIKey:          "k",
		SecretKey:       "s",
		ServerPublicKey: pemText,
	}, "https://example.com/app/v1")

	// PKCS#1 v1.5 under a 2048-bit key caps the plaintext at 245 bytes.
	_, err := signer.Sign(pathWallet, ChannelPrivate, http.MethodPost, core.Params{
		"memo": strings.Repeat("x", 300),
	})
	require.Error(t, err)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeEncryptFailed))
}

func TestImplodeParams(t *testing.T) {
	path, remaining := implodeParams("orders/{entrustId}/detail", core.Params{
		"entrustId": 42,
		"pairname":  "btc_usdt",
	})

	assert.Equal(t, "orders/42/detail", path)
	assert.NotContains(t, remaining, "entrustId")
	assert.Equal(t, "btc_usdt", remaining["pairname"])
}
