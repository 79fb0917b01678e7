package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/httputil"
	"github.com/medledger/backend/internal/models"
	"github.com/medledger/backend/internal/types"
	"golang.org/x/exp/slices"
)

// RegisterCollectionActivityRoutes registers the routes for collection
// activities with the RouterGroup that is passed.
func RegisterCollectionActivityRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsCollectionActivityList)
		r.GET("", GetCollectionActivities)
		r.POST("", CreateCollectionActivities)
	}

	// CollectionActivity with ID
	{
		r.OPTIONS("/:id", OptionsCollectionActivityDetail)
		r.GET("/:id", GetCollectionActivity)
	}
}

// OptionsCollectionActivityList returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			CollectionActivities
//	@Success		204
//	@Router			/v1/collection-activities [options]
func OptionsCollectionActivityList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsCollectionActivityDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			CollectionActivities
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/collection-activities/{id} [options]
func OptionsCollectionActivityDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.CollectionActivity{}, httputil.OptionsGet)
}

// CreateCollectionActivities creates new collection activities
//
//	@Summary		Create collection activities
//	@Description	Creates new collection activity records. The collection log is append-only.
//	@Tags			CollectionActivities
//	@Produce		json
//	@Success		201			{object}	CollectionActivityCreateResponse
//	@Failure		400			{object}	CollectionActivityCreateResponse
//	@Failure		404			{object}	CollectionActivityCreateResponse
//	@Failure		500			{object}	CollectionActivityCreateResponse
//	@Param			activities	body		[]CollectionActivityEditable	true	"Collection activities"
//	@Router			/v1/collection-activities [post]
func CreateCollectionActivities(c *gin.Context) {
	var editables []CollectionActivityEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CollectionActivityCreateResponse{
			Error: &s,
		})
		return
	}

	responseStatus := http.StatusCreated
	r := CollectionActivityCreateResponse{}

	for _, editable := range editables {
		activity := editable.model()

		// The activity must be about an invoice that exists
		var invoice models.Invoice
		err = models.DB.First(&invoice, "id = ?", activity.InvoiceID).Error
		if err != nil {
			responseStatus = r.appendError(err, responseStatus)
			continue
		}

		err = models.DB.Create(&activity).Error
		if err != nil {
			responseStatus = r.appendError(err, responseStatus)
			continue
		}

		data := newCollectionActivity(c, activity)
		r.Data = append(r.Data, CollectionActivityResponse{Data: &data})
	}

	c.JSON(responseStatus, r)
}

// GetCollectionActivities returns a list of collection activities filtered
// by the query parameters
//
//	@Summary		Get collection activities
//	@Description	Returns a list of collection activities
//	@Tags			CollectionActivities
//	@Produce		json
//	@Success		200	{object}	CollectionActivityListResponse
//	@Failure		400	{object}	CollectionActivityListResponse
//	@Failure		500	{object}	CollectionActivityListResponse
//	@Router			/v1/collection-activities [get]
//	@Param			invoice			query	string	false	"Filter by invoice"
//	@Param			activityType	query	string	false	"Filter by activity type"
//	@Param			actor			query	string	false	"Filter by actor"
//	@Param			followUpFrom	query	string	false	"Activities with a follow-up at and after this date (YYYY-MM-DD)"
//	@Param			followUpTo		query	string	false	"Activities with a follow-up before and at this date (YYYY-MM-DD)"
//	@Param			offset			query	uint	false	"The offset of the first activity returned. Defaults to 0."
//	@Param			limit			query	int		false	"Maximum number of activities to return. Defaults to 50."
func GetCollectionActivities(c *gin.Context) {
	var filter CollectionActivityQueryFilter

	// The filters are optional, so we do not need to handle the error
	_ = c.Bind(&filter)

	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	where := filter.model()

	var activities []models.CollectionActivity
	query := models.DB.
		Order("created_at ASC").
		Where(&where, queryFields...)

	if slices.Contains(queryFields, "Invoice") {
		query = query.Where("invoice_id = ?", filter.Invoice.UUID)
	}

	if filter.FollowUpFrom != "" {
		date, err := types.ParseDate(filter.FollowUpFrom)
		if err != nil {
			s := errAsOfInvalid.Error()
			c.JSON(http.StatusBadRequest, CollectionActivityListResponse{Error: &s})
			return
		}
		query = query.Where("follow_up_date >= ?", date)
	}

	if filter.FollowUpTo != "" {
		date, err := types.ParseDate(filter.FollowUpTo)
		if err != nil {
			s := errAsOfInvalid.Error()
			c.JSON(http.StatusBadRequest, CollectionActivityListResponse{Error: &s})
			return
		}
		query = query.Where("follow_up_date <= ?", date)
	}

	query = query.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(queryFields, "Limit") {
		limit = filter.Limit
	}
	query = query.Limit(limit)

	err := query.Find(&activities).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CollectionActivityListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = query.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CollectionActivityListResponse{
			Error: &s,
		})
		return
	}

	data := make([]CollectionActivity, 0, len(activities))
	for _, activity := range activities {
		data = append(data, newCollectionActivity(c, activity))
	}

	c.JSON(http.StatusOK, CollectionActivityListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// GetCollectionActivity returns a specific collection activity
//
//	@Summary		Get collection activity
//	@Description	Returns a specific collection activity
//	@Tags			CollectionActivities
//	@Produce		json
//	@Success		200	{object}	CollectionActivityResponse
//	@Failure		400	{object}	CollectionActivityResponse
//	@Failure		404	{object}	CollectionActivityResponse
//	@Failure		500	{object}	CollectionActivityResponse
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/collection-activities/{id} [get]
func GetCollectionActivity(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CollectionActivityResponse{
			Error: &s,
		})
		return
	}

	var activity models.CollectionActivity
	err = models.DB.First(&activity, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CollectionActivityResponse{
			Error: &s,
		})
		return
	}

	data := newCollectionActivity(c, activity)
	c.JSON(http.StatusOK, CollectionActivityResponse{Data: &data})
}
