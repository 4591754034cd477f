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

type EmailHandler struct {
	send *usecase.SendEmail
}

func NewEmailHandler(send *usecase.SendEmail) *EmailHandler {
	return &EmailHandler{send: send}
}

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type orderEmailReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ToteCount       int    `json:"toteCount"`
	SetupCost       int64  `json:"setupCost"`
	MonthlyCost     int64  `json:"monthlyCost"`
	SubscriptionID  string `json:"subscriptionId"`
	NextBillingDate string `json:"nextBillingDate"`
	Status          string `json:"subscriptionStatus"`
}

type emailResp struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

func (h *EmailHandler) SendContactEmail(c *gin.Context) {
	var req contactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c))

	id, err := h.send.SendContact(ctx, usecase.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		writeEmailError(c, err)
		return
	}
	c.JSON(http.StatusOK, emailResp{Success: true, MessageID: id})
}

func (h *EmailHandler) SendOrderEmail(c *gin.Context) {
	var req orderEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c))

	id, err := h.send.SendOrderConfirmation(ctx, usecase.OrderConfirmationMsg{
		Name:               intake.Sanitize(req.Name),
		Email:              intake.Sanitize(req.Email),
		Phone:              intake.Sanitize(req.Phone),
		Address:            intake.Sanitize(req.Address),
		ToteCount:          req.ToteCount,
		SetupCost:          req.SetupCost,
		MonthlyCost:        req.MonthlyCost,
		SubscriptionID:     req.SubscriptionID,
		NextBillingDate:    req.NextBillingDate,
		SubscriptionStatus: req.Status,
	})
	if err != nil {
		writeEmailError(c, err)
		return
	}
	c.JSON(http.StatusOK, emailResp{Success: true, MessageID: id})
}

func writeEmailError(c *gin.Context, err error) {
	var ve *intake.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}
	logging.From(c).Error("email send failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send email, please try again"})
}
