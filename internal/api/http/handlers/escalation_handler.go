package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/escalation-engine/internal/api/dto"
	"github.com/spec-kit/escalation-engine/internal/engine"
	"github.com/spec-kit/escalation-engine/internal/service"
	apperrors "github.com/spec-kit/escalation-engine/pkg/util"
)

// EscalationHandler exposes the engine trigger endpoints.
type EscalationHandler struct {
	orchestrator *engine.Orchestrator
	rules        *service.RuleService
}

// NewEscalationHandler constructs handler.
func NewEscalationHandler(orchestrator *engine.Orchestrator, rules *service.RuleService) *EscalationHandler {
	return &EscalationHandler{orchestrator: orchestrator, rules: rules}
}

// RunForTicket POST /escalations/tickets/:id/run.
func (h *EscalationHandler) RunForTicket(c *fiber.Ctx) error {
	ticketID := c.Params("id")
	force := c.QueryBool("force", false)

	result, err := h.orchestrator.RunForTicket(c.Context(), ticketID, force)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": result})
}

// RunBatch POST /escalations/run.
func (h *EscalationHandler) RunBatch(c *fiber.Ctx) error {
	var req dto.RunBatchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	result, err := h.orchestrator.RunAll(c.Context(), req.Limit, req.Statuses, req.Force)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": result})
}

// ListTicketHistory GET /escalations/tickets/:id/history.
func (h *EscalationHandler) ListTicketHistory(c *fiber.Ctx) error {
	history, err := h.rules.ListTicketHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ExecutionResponse, 0, len(history))
	for i := range history {
		items = append(items, executionResponse(&history[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
