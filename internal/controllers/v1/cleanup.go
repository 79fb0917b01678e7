package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/models"
)

// Cleanup deletes all resources
//
//	@Summary		Delete everything
//	@Description	Permanently deletes all resources. Requires the confirmation query parameter to be set to "yes-please-delete-everything".
//	@Tags			v1
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			confirm	query	string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
//	@Router			/v1 [delete]
func Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errCleanupConfirmation.Error(),
		})
		return
	}

	// The allocation ledger is deleted first so that the append-only
	// checks never see entries whose payment or invoice is already gone
	resources := []any{
		models.Allocation{},
		models.CollectionActivity{},
		models.Payment{},
		models.Invoice{},
		models.MatchRule{},
	}

	// Use a transaction so that we can roll back if errors happen
	tx := models.DB.Begin()

	for _, model := range resources {
		// Unscoped deletion deletes soft-deleted resources, too
		err := tx.Unscoped().Where("true").Delete(&model).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpError{
				Error: err.Error(),
			})
			tx.Rollback()
			return
		}
	}

	tx.Commit()
	c.JSON(http.StatusNoContent, nil)
}
