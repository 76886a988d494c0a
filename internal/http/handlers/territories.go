package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/territory_assign/backend/internal/models"
	"github.com/territory_assign/backend/internal/service"
)

type AddMemberRequest struct {
	models.TeamMemberAssignment
	ModifiedBy string `json:"modified_by"`
}

// @Summary List territories
// @Tags territories
// @Produce json
// @Success 200 {array} models.Territory
// @Router /api/territories [get]
func (h *Handler) TerritoriesList(c *gin.Context) {
	out, err := h.Territories.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Territory")
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Get territory
// @Tags territories
// @Produce json
// @Param id path string true "Territory ID"
// @Success 200 {object} models.Territory
// @Failure 404 {object} ErrorResponse
// @Router /api/territories/{id} [get]
func (h *Handler) TerritoryGet(c *gin.Context) {
	t, err := h.Territories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Territory")
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Create territory
// @Tags territories
// @Accept json
// @Produce json
// @Param body body service.TerritoryInput true "Territory"
// @Success 201 {object} models.Territory
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/territories [post]
func (h *Handler) TerritoryCreate(c *gin.Context) {
	var req service.TerritoryInput
	if !h.bind(c, &req) {
		return
	}
	t, err := h.Territories.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Territory")
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary Update territory
// @Tags territories
// @Accept json
// @Produce json
// @Param id path string true "Territory ID"
// @Param body body service.TerritoryPatch true "Fields to change"
// @Success 200 {object} models.Territory
// @Failure 404 {object} ErrorResponse
// @Router /api/territories/{id} [patch]
func (h *Handler) TerritoryUpdate(c *gin.Context) {
	var req service.TerritoryPatch
	if !h.bind(c, &req) {
		return
	}
	t, err := h.Territories.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "Territory")
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Delete territory
// @Description Rules that still target the territory are kept and resolve to no_match.
// @Tags territories
// @Param id path string true "Territory ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/territories/{id} [delete]
func (h *Handler) TerritoryDelete(c *gin.Context) {
	deleted, err := h.Territories.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Territory")
		return
	}
	if !deleted {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Territory not found", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Add team member
// @Tags territories
// @Accept json
// @Produce json
// @Param id path string true "Territory ID"
// @Param body body AddMemberRequest true "Member"
// @Success 200 {object} models.Territory
// @Failure 409 {object} ErrorResponse
// @Router /api/territories/{id}/members [post]
func (h *Handler) MemberAdd(c *gin.Context) {
	var req AddMemberRequest
	if !h.bind(c, &req) {
		return
	}
	t, err := h.Territories.AddTeamMember(c.Request.Context(), c.Param("id"), req.TeamMemberAssignment, req.ModifiedBy)
	if err != nil {
		h.fail(c, err, "Team member")
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Update team member
// @Tags territories
// @Accept json
// @Produce json
// @Param id path string true "Territory ID"
// @Param userId path string true "User ID"
// @Param body body service.MemberPatch true "Fields to change"
// @Success 200 {object} models.Territory
// @Router /api/territories/{id}/members/{userId} [patch]
func (h *Handler) MemberUpdate(c *gin.Context) {
	var req service.MemberPatch
	if !h.bind(c, &req) {
		return
	}
	t, err := h.Territories.UpdateTeamMember(c.Request.Context(), c.Param("id"), c.Param("userId"), req)
	if err != nil {
		h.fail(c, err, "Team member")
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Remove team member
// @Tags territories
// @Produce json
// @Param id path string true "Territory ID"
// @Param userId path string true "User ID"
// @Param modified_by query string false "Actor"
// @Success 200 {object} models.Territory
// @Failure 404 {object} ErrorResponse
// @Router /api/territories/{id}/members/{userId} [delete]
func (h *Handler) MemberRemove(c *gin.Context) {
	t, err := h.Territories.RemoveTeamMember(c.Request.Context(), c.Param("id"), c.Param("userId"), c.Query("modified_by"))
	if err != nil {
		h.fail(c, err, "Team member")
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Territory statistics
// @Tags stats
// @Produce json
// @Param id path string true "Territory ID"
// @Success 200 {object} models.TerritoryStats
// @Failure 404 {object} ErrorResponse
// @Router /api/territories/{id}/stats [get]
func (h *Handler) TerritoryStats(c *gin.Context) {
	st, err := h.Stats.TerritoryStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Territory")
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary Capacity utilization ranking
// @Tags stats
// @Produce json
// @Success 200 {array} models.TerritoryStats
// @Router /api/stats/utilization [get]
func (h *Handler) UtilizationRanking(c *gin.Context) {
	out, err := h.Stats.CapacityUtilizationRanking(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Territory")
		return
	}
	c.JSON(http.StatusOK, out)
}
