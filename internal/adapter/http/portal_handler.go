package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

type PortalHandler struct {
	portal *usecase.CustomerPortal
}

func NewPortalHandler(portal *usecase.CustomerPortal) *PortalHandler {
	return &PortalHandler{portal: portal}
}

type portalReq struct {
	CustomerEmail string `json:"customer_email"`
}

type portalResp struct {
	PortalURL    string `json:"portal_url"`
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
}

func (h *PortalHandler) OpenPortal(c *gin.Context) {
	var req portalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c))

	out, err := h.portal.Execute(ctx, req.CustomerEmail)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrCustomerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			writeGatewayError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, portalResp{
		PortalURL:    out.PortalURL,
		CustomerID:   out.CustomerID,
		CustomerName: out.CustomerName,
	})
}
