package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/territory_assign/backend/internal/models"
	"github.com/territory_assign/backend/internal/service"
)

type AssignRequest struct {
	models.ClientAssignmentRequest
	ManualUserID string `json:"manual_user_id"`
	PerformedBy  string `json:"performed_by"`
}

// @Summary Assign a client
// @Description Business conflicts are returned with 200, success=false and a conflict.
// @Tags assignments
// @Accept json
// @Produce json
// @Param body body AssignRequest true "Client"
// @Success 200 {object} models.AssignmentResult
// @Failure 400 {object} ErrorResponse
// @Router /api/assignments [post]
func (h *Handler) Assign(c *gin.Context) {
	var req AssignRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.Engine.Assign(c.Request.Context(), req.ClientAssignmentRequest, service.AssignOptions{
		ManualUserID: req.ManualUserID,
		PerformedBy:  req.PerformedBy,
	})
	if err != nil {
		h.fail(c, err, "Assignment")
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Assignment audit log
// @Tags assignments
// @Produce json
// @Param limit query int false "Max entries, newest first"
// @Success 200 {array} models.AssignmentLog
// @Router /api/assignment-logs [get]
func (h *Handler) LogsList(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be an integer", raw)
			return
		}
		limit = n
	}
	out, err := h.Logs.List(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err, "Assignment log")
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Clear the assignment audit log
// @Tags assignments
// @Param performed_by query string false "Actor"
// @Success 204
// @Router /api/assignment-logs [delete]
func (h *Handler) LogsClear(c *gin.Context) {
	if err := h.Logs.Clear(c.Request.Context(), c.Query("performed_by")); err != nil {
		h.fail(c, err, "Assignment log")
		return
	}
	c.Status(http.StatusNoContent)
}
