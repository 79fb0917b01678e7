package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/models"
)

// resourceOptionsDetail returns the appropriate response for an HTTP OPTIONS
// request for a specific resource.
//
// Note: This function only works for resources with an ID, not for computed
// endpoints (like /aging)
func resourceOptionsDetail[R models.Invoice | models.Payment | models.Allocation | models.CollectionActivity | models.MatchRule](c *gin.Context, resource R, respond func(*gin.Context)) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&resource, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	respond(c)
}
