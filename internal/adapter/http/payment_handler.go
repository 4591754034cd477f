package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Monkachunkaa/tote-storage-api/internal/intake"
	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

type PaymentHandler struct {
	intent    *usecase.CreatePaymentIntent
	subscribe *usecase.CreateSubscription
}

func NewPaymentHandler(intent *usecase.CreatePaymentIntent, subscribe *usecase.CreateSubscription) *PaymentHandler {
	return &PaymentHandler{intent: intent, subscribe: subscribe}
}

type orderData struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
	ToteNumber int      `json:"toteNumber"`
	TotalCost  *float64 `json:"totalCost"`
}

type createPaymentIntentReq struct {
	Amount    int64     `json:"amount" binding:"required"`
	OrderData orderData `json:"orderData" binding:"required"`
}

type createPaymentIntentResp struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	CustomerID      string `json:"customer_id"`
}

// CreatePaymentIntent handler: translate to use case input.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req createPaymentIntentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c))

	out, err := h.intent.Execute(ctx, usecase.CreatePaymentIntentInput{
		AmountCents: req.Amount,
		Order: intake.RawOrder{
			Name:          req.OrderData.Name,
			Email:         req.OrderData.Email,
			Phone:         req.OrderData.Phone,
			Address:       req.OrderData.Address,
			ToteCount:     req.OrderData.ToteNumber,
			DeclaredTotal: req.OrderData.TotalCost,
		},
	}, c.ClientIP())

	if err != nil {
		writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, createPaymentIntentResp{
		ClientSecret:    out.ClientSecret,
		PaymentIntentID: out.PaymentIntentID,
		CustomerID:      out.CustomerID,
	})
}

func writePaymentError(c *gin.Context, err error) {
	var ve *intake.ValidationError

	switch {
	case errors.Is(err, usecase.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	default:
		writeGatewayError(c, err)
	}
}

// writeGatewayError surfaces the gateway's human-readable reason when there
// is one; anything else becomes a generic 500 with no internals leaked.
func writeGatewayError(c *gin.Context, err error) {
	var ge *usecase.GatewayError
	if errors.As(err, &ge) && ge.Msg != "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ge.Msg})
		return
	}
	logging.From(c).Error("unexpected handler error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
}

type createSubscriptionReq struct {
	PaymentIntentID string `json:"payment_intent_id"`
	CustomerID      string `json:"customer_id"`
	MonthlyAmount   int64  `json:"monthly_amount"`
	ToteQuantity    int    `json:"tote_quantity"`
}

type createSubscriptionResp struct {
	SubscriptionID  string `json:"subscription_id,omitempty"`
	Status          string `json:"status"`
	NextBillingDate string `json:"next_billing_date,omitempty"`
	MonthlyAmount   int64  `json:"monthly_amount"`
	TrialEnd        int64  `json:"trial_end,omitempty"`
}

// CreateSubscription is called once the client reports payment success;
// the use case independently re-confirms that with the gateway.
func (h *PaymentHandler) CreateSubscription(c *gin.Context) {
	var req createSubscriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c))

	out, err := h.subscribe.Execute(ctx, usecase.CreateSubscriptionInput{
		PaymentIntentID: req.PaymentIntentID,
		CustomerID:      req.CustomerID,
		MonthlyAmount:   req.MonthlyAmount,
		ToteQuantity:    req.ToteQuantity,
	})
	if err != nil {
		// The interface contract collapses every failure here to a 500;
		// the body still names the reason.
		switch {
		case errors.Is(err, usecase.ErrMissingData),
			errors.Is(err, usecase.ErrInvalidAmount),
			errors.Is(err, usecase.ErrPaymentNotConfirmed),
			errors.Is(err, usecase.ErrNoPaymentMethod):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			writeGatewayError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, createSubscriptionResp{
		SubscriptionID:  out.SubscriptionID,
		Status:          out.Status,
		NextBillingDate: out.NextBillingDate,
		MonthlyAmount:   out.MonthlyAmount,
		TrialEnd:        out.TrialEnd,
	})
}
