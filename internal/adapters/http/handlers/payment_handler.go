package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"masonko-stokvel/internal/adapters/http/middleware"
	"masonko-stokvel/internal/config"
	"masonko-stokvel/internal/core/domain"
	"masonko-stokvel/internal/core/services"
	"masonko-stokvel/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MaxProofSize caps proof-of-payment uploads at 5MB
const MaxProofSize = 5 * 1024 * 1024

// PaymentHandler handles payment workflow endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
	cfg            *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		cfg:            cfg,
	}
}

// Submit submits a payment claim with optional proof upload
// @Summary Submit payment
// @Description Submit a contribution payment for treasurer review
// @Tags Payments
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param amount formData number true "Amount"
// @Param method formData string true "Payment method"
// @Param reference formData string false "Payment reference"
// @Param date formData string true "Payment date (YYYY-MM-DD)"
// @Param notes formData string false "Notes"
// @Param proof formData file false "Proof of payment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /submit-payment [post]
func (h *PaymentHandler) Submit(c *fiber.Ctx) error {
	amount, err := strconv.ParseFloat(c.FormValue("amount"), 64)
	if err != nil {
		return response.BadRequest(c, "Invalid amount")
	}

	input := &services.SubmitPaymentInput{
		Amount:         amount,
		Method:         c.FormValue("method"),
		Reference:      c.FormValue("reference"),
		Date:           c.FormValue("date"),
		Notes:          c.FormValue("notes"),
		IdempotencyKey: c.FormValue("idempotency_key"),
	}

	// Proof artifact is optional
	if file, err := c.FormFile("proof"); err == nil {
		if file.Size > MaxProofSize {
			return response.BadRequest(c, "Proof file exceeds 5MB limit")
		}
		filename := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename))
		proofPath := filepath.Join(h.cfg.UploadDir, filename)
		if err := c.SaveFile(file, proofPath); err != nil {
			return response.InternalServerError(c, "Failed to store proof file")
		}
		input.ProofPath = proofPath
	}

	caller := middleware.Identity(c)

	payment, err := h.paymentService.Submit(c.Context(), caller.MemberID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Account not yet approved")
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to submit payment")
		}
	}

	return response.Created(c, "Payment submitted", fiber.Map{
		"payment_id": payment.ID,
		"payment":    payment,
	})
}

// ListPending lists payments awaiting review
// @Summary List pending payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /pending-payments [get]
func (h *PaymentHandler) ListPending(c *fiber.Ctx) error {
	payments, err := h.paymentService.ListPending(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending payments")
	}
	return response.Success(c, "", payments)
}

// ListMine lists the caller's own submissions
// @Summary List own payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /my-payments [get]
func (h *PaymentHandler) ListMine(c *fiber.Ctx) error {
	caller := middleware.Identity(c)
	payments, err := h.paymentService.ListByMember(c.Context(), caller.MemberID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}
	return response.Success(c, "", payments)
}

// Approve confirms a pending payment
// @Summary Approve payment
// @Description Confirm a pending payment: writes the contribution and credits the balance atomically
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /approve-payment/{id} [post]
func (h *PaymentHandler) Approve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment ID")
	}

	caller := middleware.Identity(c)

	payment, err := h.paymentService.Approve(c.Context(), uint(id), caller)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentNotFound):
			return response.NotFound(c, "Payment not found")
		case errors.Is(err, domain.ErrInvalidStateTransition):
			return response.Conflict(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to approve payment")
		}
	}

	return response.Success(c, "Payment approved", payment)
}

// RejectRequest represents reject payment request
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Reject rejects a pending payment
// @Summary Reject payment
// @Description Move a pending payment to rejected with no ledger effect
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param body body RejectRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reject-payment/{id} [post]
func (h *PaymentHandler) Reject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment ID")
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Reason == "" {
		return response.BadRequest(c, "Reason is required")
	}

	caller := middleware.Identity(c)

	payment, err := h.paymentService.Reject(c.Context(), uint(id), caller, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentNotFound):
			return response.NotFound(c, "Payment not found")
		case errors.Is(err, domain.ErrInvalidStateTransition):
			return response.Conflict(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to reject payment")
		}
	}

	return response.Success(c, "Payment rejected", payment)
}

// Contributions lists the caller's confirmed contribution ledger
// @Summary List own contributions
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /contributions [get]
func (h *PaymentHandler) Contributions(c *fiber.Ctx) error {
	caller := middleware.Identity(c)
	contributions, err := h.paymentService.ListContributions(c.Context(), caller.MemberID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list contributions")
	}
	return response.Success(c, "", contributions)
}
