package handler

import (
	"net/http"

	"github.com/GoPolymarket/fusiongate/internal/middleware"
	"github.com/GoPolymarket/fusiongate/internal/model"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Register mounts the order routes on g.
func (h *OrderHandler) Register(g *gin.RouterGroup) {
	g.POST("", h.PrepareOrder)
	g.GET("/:hash", h.GetOrder)
	g.POST("/:hash/submission", h.BuildSubmission)
	g.POST("/:hash/secrets", h.RevealSecrets)
}

func (h *OrderHandler) PrepareOrder(c *gin.Context) {
	var req model.PrepareOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	resp, err := h.svc.PrepareOrder(c.Request.Context(), middleware.ClientFrom(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

type orderView struct {
	*model.OrderRecord
	OrderType model.OrderType `json:"orderType"`
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	hash, ok := orderHashParam(c)
	if !ok {
		return
	}
	rec, err := h.svc.GetOrder(c.Request.Context(), hash)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orderView{OrderRecord: rec, OrderType: rec.Type()})
}

func (h *OrderHandler) BuildSubmission(c *gin.Context) {
	hash, ok := orderHashParam(c)
	if !ok {
		return
	}
	var req model.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	payload, err := h.svc.BuildSubmission(c.Request.Context(), hash, req.Signature)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// RevealSecrets answers a batch of fills that are ready to accept their secret.
// Secrets only go to the API key the order was prepared with.
func (h *OrderHandler) RevealSecrets(c *gin.Context) {
	client := middleware.ClientFrom(c)
	if client == middleware.AnonymousClient {
		_ = c.Error(apperrors.New(apperrors.ErrAuthFailed, "revealing secrets requires an API key", nil))
		return
	}
	hash, ok := orderHashParam(c)
	if !ok {
		return
	}
	var req model.ReadyToAcceptSecretFills
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if len(req.Fills) == 0 {
		_ = c.Error(apperrors.NewValidation("fills", "required"))
		return
	}

	out := make([]*model.PublicSecret, 0, len(req.Fills))
	for _, fill := range req.Fills {
		secret, err := h.svc.RevealSecret(c.Request.Context(), client, hash, fill)
		if err != nil {
			_ = c.Error(err)
			return
		}
		out = append(out, secret)
	}
	c.JSON(http.StatusOK, gin.H{"secrets": out})
}

func orderHashParam(c *gin.Context) (common.Hash, bool) {
	raw, err := hexutil.Decode(c.Param("hash"))
	if err != nil || len(raw) != common.HashLength {
		_ = c.Error(apperrors.NewValidation("hash", "order hash must be 32 bytes of 0x-prefixed hex"))
		return common.Hash{}, false
	}
	return common.BytesToHash(raw), true
}
