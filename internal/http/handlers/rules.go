package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/territory_assign/backend/internal/models"
	"github.com/territory_assign/backend/internal/service"
)

type RuleRequest struct {
	Name            string                 `json:"name" validate:"required"`
	Description     string                 `json:"description"`
	Priority        int                    `json:"priority"`
	Conditions      []models.RuleCondition `json:"conditions"`
	LogicalOperator models.LogicalOperator `json:"logical_operator" validate:"omitempty,oneof=AND OR"`
	Action          *models.ActionDocument `json:"action" validate:"required"`
	Active          *bool                  `json:"active"`
	CreatedBy       string                 `json:"created_by"`
}

type RulePatchRequest struct {
	Name            *string                 `json:"name"`
	Description     *string                 `json:"description"`
	Priority        *int                    `json:"priority"`
	Conditions      []models.RuleCondition  `json:"conditions"`
	LogicalOperator *models.LogicalOperator `json:"logical_operator"`
	Action          *models.ActionDocument  `json:"action"`
	Active          *bool                   `json:"active"`
}

// @Summary List rules
// @Tags rules
// @Produce json
// @Success 200 {array} models.AssignmentRule
// @Router /api/rules [get]
func (h *Handler) RulesList(c *gin.Context) {
	out, err := h.Rules.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Rule")
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Active rules in evaluation order
// @Tags rules
// @Produce json
// @Success 200 {array} models.AssignmentRule
// @Router /api/rules/active [get]
func (h *Handler) RulesActive(c *gin.Context) {
	out, err := h.Rules.Active(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Rule")
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Get rule
// @Tags rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} models.AssignmentRule
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{id} [get]
func (h *Handler) RuleGet(c *gin.Context) {
	r, err := h.Rules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Rule")
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary Create rule
// @Tags rules
// @Accept json
// @Produce json
// @Param body body RuleRequest true "Rule"
// @Success 201 {object} models.AssignmentRule
// @Failure 400 {object} ErrorResponse
// @Router /api/rules [post]
func (h *Handler) RuleCreate(c *gin.Context) {
	var req RuleRequest
	if !h.bind(c, &req) {
		return
	}
	action, err := req.Action.Action()
	if err != nil {
		h.fail(c, err, "Rule")
		return
	}
	r, err := h.Rules.Create(c.Request.Context(), service.RuleInput{
		Name:            req.Name,
		Description:     req.Description,
		Priority:        req.Priority,
		Conditions:      req.Conditions,
		LogicalOperator: req.LogicalOperator,
		Action:          action,
		Active:          req.Active,
		CreatedBy:       req.CreatedBy,
	})
	if err != nil {
		h.fail(c, err, "Rule")
		return
	}
	c.JSON(http.StatusCreated, r)
}

// @Summary Update rule
// @Tags rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param body body RulePatchRequest true "Fields to change"
// @Success 200 {object} models.AssignmentRule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{id} [patch]
func (h *Handler) RuleUpdate(c *gin.Context) {
	var req RulePatchRequest
	if !h.bind(c, &req) {
		return
	}
	patch := service.RulePatch{
		Name:            req.Name,
		Description:     req.Description,
		Priority:        req.Priority,
		Conditions:      req.Conditions,
		LogicalOperator: req.LogicalOperator,
		Active:          req.Active,
	}
	if req.Action != nil {
		action, err := req.Action.Action()
		if err != nil {
			h.fail(c, err, "Rule")
			return
		}
		patch.Action = action
	}
	r, err := h.Rules.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err, "Rule")
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary Delete rule
// @Tags rules
// @Param id path string true "Rule ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{id} [delete]
func (h *Handler) RuleDelete(c *gin.Context) {
	deleted, err := h.Rules.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Rule")
		return
	}
	if !deleted {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Rule not found", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
