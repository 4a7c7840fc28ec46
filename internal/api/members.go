// ABOUTME: Member endpoints for the JSON API.
// ABOUTME: Email in the path is the member key; PUT updates only the fields sent.
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/fitcentre/internal/models"
	"github.com/harperreed/fitcentre/internal/storage"
)

type memberRequest struct {
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Gender    *string `json:"gender"`
}

func (h *Handler) listMembers(c *gin.Context) {
	gender, err := parseGender(c.Query("gender"))
	if err != nil {
		fail(c, err)
		return
	}

	members, err := h.repo.ListMembers(&storage.MemberFilter{Query: c.Query("q"), Gender: gender})
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, members)
}

func (h *Handler) createMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	m := models.NewMember(req.Email, "", "", "")
	if err := applyMember(m, &req); err != nil {
		fail(c, err)
		return
	}
	if err := h.repo.CreateMember(m); err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, m)
}

func (h *Handler) getMember(c *gin.Context) {
	m, err := h.repo.GetMember(c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, m)
}

func (h *Handler) updateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	m, err := h.repo.GetMember(c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := applyMember(m, &req); err != nil {
		fail(c, err)
		return
	}
	if err := h.repo.UpdateMember(m); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, m)
}

func (h *Handler) deleteMember(c *gin.Context) {
	if err := h.repo.DeleteMember(c.Param("email")); err != nil {
		fail(c, err)
		return
	}
	respondDeleted(c)
}

func applyMember(m *models.Member, req *memberRequest) error {
	if req.FirstName != nil {
		m.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		m.LastName = *req.LastName
	}
	if req.Gender != nil {
		gender, err := parseGender(*req.Gender)
		if err != nil {
			return err
		}
		m.Gender = gender
	}
	return nil
}

// parseGender accepts any casing of a known gender; empty means unspecified.
func parseGender(s string) (models.Gender, error) {
	if s == "" {
		return "", nil
	}
	g, ok := models.ParseGender(s)
	if !ok {
		return "", fmt.Errorf("%w: unknown gender %q", errBadRequest, s)
	}
	return g, nil
}
