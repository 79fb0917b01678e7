package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medledger/backend/internal/httputil"
	"github.com/medledger/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterMatchRuleRoutes registers the routes for match rules with
// the RouterGroup that is passed.
func RegisterMatchRuleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsMatchRuleList)
		r.GET("", GetMatchRules)
		r.POST("", CreateMatchRules)
	}

	// MatchRule with ID
	{
		r.OPTIONS("/:id", OptionsMatchRuleDetail)
		r.GET("/:id", GetMatchRule)
		r.PATCH("/:id", UpdateMatchRule)
		r.DELETE("/:id", DeleteMatchRule)
	}
}

// OptionsMatchRuleList returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			MatchRules
//	@Success		204
//	@Router			/v1/match-rules [options]
func OptionsMatchRuleList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsMatchRuleDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			MatchRules
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/match-rules/{id} [options]
func OptionsMatchRuleDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.MatchRule{}, httputil.OptionsGetPatchDelete)
}

// CreateMatchRules creates new match rules
//
//	@Summary		Create match rules
//	@Description	Creates new match rules
//	@Tags			MatchRules
//	@Produce		json
//	@Success		201		{object}	MatchRuleCreateResponse
//	@Failure		400		{object}	MatchRuleCreateResponse
//	@Failure		500		{object}	MatchRuleCreateResponse
//	@Param			rules	body		[]MatchRuleEditable	true	"Match rules"
//	@Router			/v1/match-rules [post]
func CreateMatchRules(c *gin.Context) {
	var editables []MatchRuleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleCreateResponse{
			Error: &s,
		})
		return
	}

	responseStatus := http.StatusCreated
	r := MatchRuleCreateResponse{}

	for _, editable := range editables {
		rule := editable.model()

		err = models.DB.Create(&rule).Error
		if err != nil {
			responseStatus = r.appendError(err, responseStatus)
			continue
		}

		data := newMatchRule(c, rule)
		r.Data = append(r.Data, MatchRuleResponse{Data: &data})
	}

	c.JSON(responseStatus, r)
}

// GetMatchRules returns a list of match rules filtered by the query
// parameters
//
//	@Summary		Get match rules
//	@Description	Returns a list of match rules
//	@Tags			MatchRules
//	@Produce		json
//	@Success		200	{object}	MatchRuleListResponse
//	@Failure		400	{object}	MatchRuleListResponse
//	@Failure		500	{object}	MatchRuleListResponse
//	@Router			/v1/match-rules [get]
//	@Param			match	query	string	false	"Filter by pattern"
//	@Param			patient	query	string	false	"Filter by patient reference"
//	@Param			offset	query	uint	false	"The offset of the first match rule returned. Defaults to 0."
//	@Param			limit	query	int		false	"Maximum number of match rules to return. Defaults to 50."
func GetMatchRules(c *gin.Context) {
	var filter MatchRuleQueryFilter

	// The filters are optional, so we do not need to handle the error
	_ = c.Bind(&filter)

	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	where := filter.model()

	var rules []models.MatchRule
	// "match" is quoted since it is a keyword in sqlite
	query := models.DB.
		Order(`priority ASC, "match" ASC`).
		Where(&where, queryFields...)

	if filter.Match != "" {
		query = query.Where(`"match" LIKE ?`, "%"+filter.Match+"%")
	}

	query = query.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(queryFields, "Limit") {
		limit = filter.Limit
	}
	query = query.Limit(limit)

	err := query.Find(&rules).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = query.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleListResponse{
			Error: &s,
		})
		return
	}

	data := make([]MatchRule, 0, len(rules))
	for _, rule := range rules {
		data = append(data, newMatchRule(c, rule))
	}

	c.JSON(http.StatusOK, MatchRuleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// GetMatchRule returns a specific match rule
//
//	@Summary		Get match rule
//	@Description	Returns a specific match rule
//	@Tags			MatchRules
//	@Produce		json
//	@Success		200	{object}	MatchRuleResponse
//	@Failure		400	{object}	MatchRuleResponse
//	@Failure		404	{object}	MatchRuleResponse
//	@Failure		500	{object}	MatchRuleResponse
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/match-rules/{id} [get]
func GetMatchRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleResponse{
			Error: &s,
		})
		return
	}

	var rule models.MatchRule
	err = models.DB.First(&rule, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleResponse{
			Error: &s,
		})
		return
	}

	data := newMatchRule(c, rule)
	c.JSON(http.StatusOK, MatchRuleResponse{Data: &data})
}

// UpdateMatchRule updates a match rule, selecting the fields to update
// from the request body
//
//	@Summary		Update match rule
//	@Description	Updates an existing match rule. Only values to be updated need to be specified.
//	@Tags			MatchRules
//	@Accept			json
//	@Produce		json
//	@Success		200		{object}	MatchRuleResponse
//	@Failure		400		{object}	MatchRuleResponse
//	@Failure		404		{object}	MatchRuleResponse
//	@Failure		500		{object}	MatchRuleResponse
//	@Param			id		path		URIID				true	"ID formatted as string"
//	@Param			rule	body		MatchRuleEditable	true	"Match rule"
//	@Router			/v1/match-rules/{id} [patch]
func UpdateMatchRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleResponse{
			Error: &s,
		})
		return
	}

	var rule models.MatchRule
	err = models.DB.First(&rule, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, MatchRuleEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleResponse{
			Error: &s,
		})
		return
	}

	var update MatchRuleEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&rule).Select("", updateFields...).Updates(update.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleResponse{
			Error: &s,
		})
		return
	}

	data := newMatchRule(c, rule)
	c.JSON(http.StatusOK, MatchRuleResponse{Data: &data})
}

// DeleteMatchRule deletes a match rule
//
//	@Summary		Delete match rule
//	@Description	Deletes a match rule
//	@Tags			MatchRules
//	@Success		204
//	@Failure		400	{object}	httpError
//	@Failure		404	{object}	httpError
//	@Failure		500	{object}	httpError
//	@Param			id	path		URIID	true	"ID formatted as string"
//	@Router			/v1/match-rules/{id} [delete]
func DeleteMatchRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var rule models.MatchRule
	err = models.DB.First(&rule, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&rule).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
