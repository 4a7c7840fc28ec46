// ABOUTME: Condition endpoints for the JSON API.
// ABOUTME: Conditions are addressed by member email and condition name.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
)

type conditionRequest struct {
	Email    string  `json:"email"`
	Name     string  `json:"condition_name"`
	Severity *string `json:"severity"`
	Notes    *string `json:"notes"`
}

func (h *Handler) listConditions(c *gin.Context) {
	severity, err := parseSeverity(c.Query("severity"))
	if err != nil {
		fail(c, err)
		return
	}

	conditions, err := h.repo.ListConditions(&storage.ConditionFilter{
		Email:    c.Query("email"),
		Query:    c.Query("q"),
		Severity: severity,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, conditions)
}

func (h *Handler) createCondition(c *gin.Context) {
	var req conditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	cond := models.NewCondition(req.Email, req.Name, "")
	if err := applyCondition(cond, &req); err != nil {
		fail(c, err)
		return
	}
	if err := h.repo.CreateCondition(cond); err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, cond)
}

func (h *Handler) getCondition(c *gin.Context) {
	cond, err := h.repo.GetCondition(c.Param("email"), conditionName(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, cond)
}

func (h *Handler) updateCondition(c *gin.Context) {
	var req conditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	cond, err := h.repo.GetCondition(c.Param("email"), conditionName(c))
	if err != nil {
		fail(c, err)
		return
	}
	if err := applyCondition(cond, &req); err != nil {
		fail(c, err)
		return
	}
	if err := h.repo.UpdateCondition(cond); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, cond)
}

func (h *Handler) deleteCondition(c *gin.Context) {
	if err := h.repo.DeleteCondition(c.Param("email"), conditionName(c)); err != nil {
		fail(c, err)
		return
	}
	respondDeleted(c)
}

// conditionName reads the catch-all name segment without its leading slash.
func conditionName(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("name"), "/")
}

func applyCondition(cond *models.Condition, req *conditionRequest) error {
	if req.Severity != nil {
		severity, err := parseSeverity(*req.Severity)
		if err != nil {
			return err
		}
		cond.Severity = severity
	}
	if req.Notes != nil {
		cond.Notes = *req.Notes
	}
	return nil
}

func parseSeverity(s string) (models.Severity, error) {
	if s == "" {
		return "", nil
	}
	sev, ok := models.ParseSeverity(s)
	if !ok {
		return "", fmt.Errorf("%w: unknown severity %q", errBadRequest, s)
	}
	return sev, nil
}
