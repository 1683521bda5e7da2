package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	Email string `json:"email" binding:"omitempty,email,max=254"`
}

// CreateCheckoutSession answers {url} for the hosted checkout page.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var body checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, bindError(err))
			return
		}
	}
	email := body.Email
	if email == "" {
		email = c.GetString("email")
	}

	url, err := h.gateway.CreateCheckout(c.Request.Context(), userID, email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) CreateBillingPortal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	url, err := h.gateway.CreatePortalSession(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
