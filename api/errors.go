package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/parkspot/internal/domain"
)

// writeError maps domain failure kinds onto HTTP statuses. Anything without a
// kind is an internal error and deliberately surfaces no detail.
func writeError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"kind": "internal", "message": "internal error"}})
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindSlotUnavailable, domain.KindInvalidTransition:
		status = http.StatusConflict
	case domain.KindInsufficientFunds:
		status = http.StatusPaymentRequired
	}
	c.JSON(status, gin.H{"error": gin.H{"kind": string(de.Kind), "message": de.Message}})
}
