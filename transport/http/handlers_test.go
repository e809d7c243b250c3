package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shilldao/chainauth/adapters/campaigns"
	"github.com/shilldao/chainauth/adapters/sessions"
	"github.com/shilldao/chainauth/adapters/store"
	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/internal/eth"
	"github.com/shilldao/chainauth/ports"
	"github.com/shilldao/chainauth/service"
)

var (
	tokenContract = common.HexToAddress("0x652159C7F62E9C1613476CA600f3B591DbFC920e")
	treasury      = common.HexToAddress("0xE5FE82ec6482d0291f22B5269eDBC4a046eEA763")
	paymentTxHash = common.HexToHash("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	blockHash     = common.HexToHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type fakeChain struct {
	receipt *ports.TxReceipt
	block   *ports.TxBlock
	tx      *ports.TxBody
}

func (f *fakeChain) TransactionReceipt(ctx context.Context, h common.Hash) (*ports.TxReceipt, error) {
	return f.receipt, nil
}

func (f *fakeChain) BlockByHash(ctx context.Context, h common.Hash) (*ports.TxBlock, error) {
	return f.block, nil
}

func (f *fakeChain) TransactionByHash(ctx context.Context, h common.Hash) (*ports.TxBody, error) {
	return f.tx, nil
}

type fixture struct {
	router  *gin.Engine
	key     *ecdsa.PrivateKey
	address string
	chain   *fakeChain
	store   *campaigns.MemoryStore
}

// paidChain fakes a transaction that pays 100 tokens from payer to the
// treasury, mined moments ago.
func paidChain(payer common.Address) *fakeChain {
	amount, _ := new(big.Int).SetString("100000000000000000000", 10) // 100 tokens at 18 decimals
	return &fakeChain{
		receipt: &ports.TxReceipt{
			Status:    ethtypes.ReceiptStatusSuccessful,
			BlockHash: blockHash,
			Logs: []ethtypes.Log{{
				Address: tokenContract,
				Topics: []common.Hash{
					eth.TransferEventSignature,
					common.BytesToHash(common.LeftPadBytes(payer.Bytes(), 32)),
					common.BytesToHash(common.LeftPadBytes(treasury.Bytes(), 32)),
				},
				Data: common.LeftPadBytes(amount.Bytes(), 32),
			}},
		},
		block: &ports.TxBlock{Hash: blockHash, Time: uint64(time.Now().Unix())},
		tx:    &ports.TxBody{Hash: paymentTxHash, From: payer, To: &tokenContract},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	walletKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(walletKey.PublicKey)

	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	chain := paidChain(address)
	campaignStore := campaigns.NewMemoryStore()

	authService := service.NewAuthService(
		store.NewMemoryStore(core.DefaultNonceTTL),
		sessions.NewJWTIssuer(signKey),
		nil,
		nil,
		false,
	)
	paymentService := service.NewPaymentService(chain, service.PaymentConfig{
		TokenContract: tokenContract,
		Treasury:      treasury,
		TokenDecimals: 18,
	}, nil)

	handlers := NewHandlers(authService, paymentService, campaignStore, nil)

	return &fixture{
		router:  SetupRouter(handlers, authService),
		key:     walletKey,
		address: address.Hex(),
		chain:   chain,
		store:   campaignStore,
	}
}

func (f *fixture) post(t *testing.T, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// login runs the full nonce/sign/verify exchange and returns an access token.
func (f *fixture) login(t *testing.T) string {
	t.Helper()

	w := f.post(t, "/auth/nonce", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var nonceResp struct {
		Nonce     string `json:"nonce"`
		Timestamp int64  `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nonceResp))

	message := eth.RenderChallengeMessage(nonceResp.Nonce, nonceResp.Timestamp)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), f.key)
	require.NoError(t, err)
	sig[64] += 27

	w = f.post(t, "/auth/verify", "", gin.H{
		"address":   f.address,
		"message":   message,
		"signature": hexutil.Encode(sig),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var verifyResp struct {
		IsSuccess   bool   `json:"is_success"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verifyResp))
	require.True(t, verifyResp.IsSuccess)
	require.NotEmpty(t, verifyResp.AccessToken)

	return verifyResp.AccessToken
}

func TestNonceRejectsInvalidAddress(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/auth/nonce", "", gin.H{"address": "not-an-address"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)

	token := f.login(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), core.NormalizeAddress(f.address))
}

func TestVerifyRejectsReplayedSignature(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/auth/nonce", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusOK, w.Code)

	var nonceResp struct {
		Nonce     string `json:"nonce"`
		Timestamp int64  `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nonceResp))

	message := eth.RenderChallengeMessage(nonceResp.Nonce, nonceResp.Timestamp)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), f.key)
	require.NoError(t, err)
	sig[64] += 27

	body := gin.H{"address": f.address, "message": message, "signature": hexutil.Encode(sig)}

	w = f.post(t, "/auth/verify", "", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.post(t, "/auth/verify", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Nonce not found")
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	f := newFixture(t)

	attacker, err := crypto.GenerateKey()
	require.NoError(t, err)

	w := f.post(t, "/auth/nonce", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusOK, w.Code)

	var nonceResp struct {
		Nonce     string `json:"nonce"`
		Timestamp int64  `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nonceResp))

	message := eth.RenderChallengeMessage(nonceResp.Nonce, nonceResp.Timestamp)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), attacker)
	require.NoError(t, err)
	sig[64] += 27

	w = f.post(t, "/auth/verify", "", gin.H{
		"address":   f.address,
		"message":   message,
		"signature": hexutil.Encode(sig),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid signature")
}

func TestCreateVerifiedCampaign(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	w := f.post(t, "/api/campaigns/verified", token, gin.H{
		"transaction_hash": paymentTxHash.Hex(),
		"name":             "Launch campaign",
		"description":      "First funded campaign",
		"budget":           "100",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created core.Campaign
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, core.NormalizeAddress(f.address), created.OwnerAddress)

	_, ok := f.store.Get(created.ID)
	assert.True(t, ok, "campaign persisted after attestation")
}

func TestCreateVerifiedCampaignRequiresAuth(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/api/campaigns/verified", "", gin.H{
		"transaction_hash": paymentTxHash.Hex(),
		"name":             "Launch campaign",
		"budget":           "100",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateVerifiedCampaignRejectsFailedPayment(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	f.chain.receipt.Status = ethtypes.ReceiptStatusFailed

	w := f.post(t, "/api/campaigns/verified", token, gin.H{
		"transaction_hash": paymentTxHash.Hex(),
		"name":             "Launch campaign",
		"budget":           "100",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Transaction verification failed")
}

func TestCreateVerifiedCampaignRejectsAmountMismatch(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	w := f.post(t, "/api/campaigns/verified", token, gin.H{
		"transaction_hash": paymentTxHash.Hex(),
		"name":             "Launch campaign",
		"budget":           "250",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateVerifiedCampaignRejectsBadHash(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	w := f.post(t, "/api/campaigns/verified", token, gin.H{
		"transaction_hash": "0x1234",
		"name":             "Launch campaign",
		"budget":           "100",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid transaction hash")
}
