package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/internal/eth"
	"github.com/shilldao/chainauth/ports"
	"github.com/shilldao/chainauth/service"
)

// Handlers contains the HTTP handlers for auth and campaign endpoints.
type Handlers struct {
	auth      *service.AuthService
	payments  *service.PaymentService
	campaigns ports.CampaignStore
	events    ports.EventPublisher
}

// NewHandlers creates the handler set.
func NewHandlers(
	auth *service.AuthService,
	payments *service.PaymentService,
	campaigns ports.CampaignStore,
	events ports.EventPublisher,
) *Handlers {
	return &Handlers{
		auth:      auth,
		payments:  payments,
		campaigns: campaigns,
		events:    events,
	}
}

// Nonce issues a signing challenge for an address.
func (h *Handlers) Nonce(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	nonce, issuedAt, err := h.auth.CreateNonce(c.Request.Context(), req.Address)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid eth address"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create nonce"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":     nonce,
		"timestamp": issuedAt,
	})
}

// Verify checks a signed challenge message and issues session credentials.
func (h *Handlers) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	credentials, err := h.auth.VerifySignature(c.Request.Context(), req.Address, req.Message, req.Signature)
	if err != nil {
		// All three reasons map to the same status; the message tells the
		// client what to do next without leaking registration state.
		errorMsg := "Authentication failed"
		switch {
		case errors.Is(err, core.ErrNonceNotFound):
			errorMsg = "Nonce not found"
		case errors.Is(err, core.ErrNonceInvalid):
			errorMsg = "Invalid or expired nonce"
		case errors.Is(err, core.ErrInvalidSignature), errors.Is(err, core.ErrMalformedSignature):
			errorMsg = "Invalid signature"
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": errorMsg})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_success":    true,
		"access_token":  credentials.AccessToken,
		"refresh_token": credentials.RefreshToken,
	})
}

// CreateVerifiedCampaign creates a campaign only after the referenced payment
// transaction passes attestation.
func (h *Handlers) CreateVerifiedCampaign(c *gin.Context) {
	var req struct {
		TransactionHash string          `json:"transaction_hash" binding:"required"`
		Name            string          `json:"name" binding:"required"`
		Description     string          `json:"description"`
		Budget          decimal.Decimal `json:"budget" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !eth.IsTxHash(req.TransactionHash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction hash"})
		return
	}

	address, exists := c.Get("userAddress")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	owner := address.(string)

	result := h.payments.Attest(
		c.Request.Context(),
		common.HexToHash(req.TransactionHash),
		common.HexToAddress(owner),
		req.Budget,
	)
	if !result.Accepted {
		// Reason codes stay server-side; the client gets a uniform message.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction verification failed"})
		return
	}

	campaign := &core.Campaign{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Description:     req.Description,
		Budget:          req.Budget,
		OwnerAddress:    core.NormalizeAddress(owner),
		TransactionHash: req.TransactionHash,
		CreatedAt:       time.Now().UTC(),
	}

	if err := h.campaigns.Create(c.Request.Context(), campaign); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
		return
	}

	if h.events != nil {
		// Best effort; the campaign is already persisted.
		_ = h.events.PublishCampaignCreated(c.Request.Context(), campaign.ID, campaign.OwnerAddress)
	}

	c.JSON(http.StatusCreated, campaign)
}

// Me returns the authenticated wallet address.
func (h *Handlers) Me(c *gin.Context) {
	address, exists := c.Get("userAddress")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}
