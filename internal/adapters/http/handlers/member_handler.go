package handlers

import (
	"errors"
	"strconv"

	"masonko-stokvel/internal/adapters/http/middleware"
	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/core/domain"
	"masonko-stokvel/internal/core/services"
	"masonko-stokvel/internal/pkg/pagination"
	"masonko-stokvel/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles membership endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

func toMemberResponses(members []*models.Member) []*models.MemberResponse {
	responses := make([]*models.MemberResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, member.ToResponse())
	}
	return responses
}

// List lists approved members
// @Summary List members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	members, total, err := h.memberService.ListApprovedPaged(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Paginated(c, toMemberResponses(members), pagination.GetMeta(params, total))
}

// ListPending lists registrations awaiting approval
// @Summary List pending members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /pending-members [get]
func (h *MemberHandler) ListPending(c *fiber.Ctx) error {
	members, err := h.memberService.ListPending(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending members")
	}
	return response.Success(c, "", toMemberResponses(members))
}

// Approve approves a pending registration
// @Summary Approve member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /approve-member/{id} [post]
func (h *MemberHandler) Approve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.Approve(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to approve member")
	}

	return response.Success(c, "Member approved", member.ToResponse())
}

// Profile returns the caller's own record
// @Summary Get own profile
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile [get]
func (h *MemberHandler) Profile(c *fiber.Ctx) error {
	caller := middleware.Identity(c)

	member, err := h.memberService.GetProfile(c.Context(), caller.MemberID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, "", member.ToResponse())
}
