package web

import (
	"github.com/docpipe/docpipe/pkg/persistence"
	"github.com/docpipe/docpipe/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	return problemJSON(c, fiber.StatusBadRequest, "validation_error", detail)
}

func notFound(c fiber.Ctx, detail string) error {
	return problemJSON(c, fiber.StatusNotFound, "not_found", detail)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

func problemJSON(c fiber.Ctx, status int, problemType, detail string) error {
	problem := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(status).JSON(problem)
}

// handleServiceError maps service and repository errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return problemJSON(c, fiber.StatusBadRequest, "validation_error", err.Error())
	case services.IsConflictError(err):
		return problemJSON(c, fiber.StatusConflict, "conflict", err.Error())
	case persistence.IsWorkflowNotFound(err):
		return problemJSON(c, fiber.StatusNotFound, "workflow_not_found", "workflow not found")
	case persistence.IsDocumentNotFound(err):
		return problemJSON(c, fiber.StatusNotFound, "document_not_found", "document not found")
	case persistence.IsRunNotFound(err):
		return problemJSON(c, fiber.StatusNotFound, "run_not_found", "workflow run not found")
	default:
		return internalError(c, err)
	}
}
