// ABOUTME: Assessment endpoints for the JSON API.
// ABOUTME: Assessments are addressed by member email and YYYY-MM-DD date.
package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
)

type assessmentRequest struct {
	Email         string   `json:"email"`
	Date          string   `json:"assessment_date"`
	Height        *float64 `json:"height"`
	BMI           *float64 `json:"bmi"`
	BloodPressure *float64 `json:"blood_pressure"`
	HeartRate     *float64 `json:"heart_rate"`
	Weight        *float64 `json:"weight"`
	// Clear names measurements to remove on update. JSON null means "unchanged".
	Clear []string `json:"clear"`
}

func (h *Handler) listAssessments(c *gin.Context) {
	filter := &storage.AssessmentFilter{Email: c.Query("email")}

	var err error
	if filter.From, err = optionalDate(c.Query("from")); err != nil {
		fail(c, err)
		return
	}
	if filter.To, err = optionalDate(c.Query("to")); err != nil {
		fail(c, err)
		return
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest))
			return
		}
		filter.Limit = n
	}

	assessments, err := h.repo.ListAssessments(filter)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, assessments)
}

func (h *Handler) createAssessment(c *gin.Context) {
	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	date := time.Now()
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			fail(c, err)
			return
		}
		date = d
	}

	a := models.NewAssessment(req.Email, date)
	applyAssessment(a, &req)
	if err := h.repo.CreateAssessment(a); err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *Handler) getAssessment(c *gin.Context) {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		fail(c, err)
		return
	}
	a, err := h.repo.GetAssessment(c.Param("email"), date)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) updateAssessment(c *gin.Context) {
	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	date, err := parseDate(c.Param("date"))
	if err != nil {
		fail(c, err)
		return
	}

	a, err := h.repo.GetAssessment(c.Param("email"), date)
	if err != nil {
		fail(c, err)
		return
	}
	for _, name := range req.Clear {
		if !a.Clear(models.Measurement(name)) {
			fail(c, fmt.Errorf("%w: unknown measurement %q", errBadRequest, name))
			return
		}
	}
	applyAssessment(a, &req)
	if err := h.repo.UpdateAssessment(a); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) deleteAssessment(c *gin.Context) {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.repo.DeleteAssessment(c.Param("email"), date); err != nil {
		fail(c, err)
		return
	}
	respondDeleted(c)
}

// applyAssessment copies the measurements present in req onto a.
func applyAssessment(a *models.Assessment, req *assessmentRequest) {
	if req.Height != nil {
		a.Height = req.Height
	}
	if req.BMI != nil {
		a.BMI = req.BMI
	}
	if req.BloodPressure != nil {
		a.BloodPressure = req.BloodPressure
	}
	if req.HeartRate != nil {
		a.HeartRate = req.HeartRate
	}
	if req.Weight != nil {
		a.Weight = req.Weight
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return d, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
