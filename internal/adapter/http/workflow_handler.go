package http

import (
	"net/http"

	"procurement-approval/internal/usecase/workflow"

	"github.com/labstack/echo/v4"
)

type WorkflowHandler struct{ uc *workflow.Usecase }

func NewWorkflowHandler(uc *workflow.Usecase) *WorkflowHandler { return &WorkflowHandler{uc: uc} }

type moveStepReq struct {
	Order int `json:"order" validate:"gte=1"`
}

func (h *WorkflowHandler) Create(c echo.Context) error {
	var in workflow.CreateDefinitionInput
	if err := bindValid(c, &in); err != nil {
		return respondError(c, err)
	}
	def, err := h.uc.CreateDefinition(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, def)
}

func (h *WorkflowHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	def, err := h.uc.GetDefinition(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, def)
}

func (h *WorkflowHandler) AddStep(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in workflow.AddStepInput
	if err := bindValid(c, &in); err != nil {
		return respondError(c, err)
	}
	step, err := h.uc.AddStep(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, step)
}

func (h *WorkflowHandler) MoveStep(c echo.Context) error {
	id, stepID, err := stepPath(c)
	if err != nil {
		return respondError(c, err)
	}
	var req moveStepReq
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	steps, err := h.uc.MoveStep(c.Request().Context(), id, stepID, req.Order)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, steps)
}

func (h *WorkflowHandler) RemoveStep(c echo.Context) error {
	id, stepID, err := stepPath(c)
	if err != nil {
		return respondError(c, err)
	}
	steps, err := h.uc.RemoveStep(c.Request().Context(), id, stepID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, steps)
}

func (h *WorkflowHandler) AssignRole(c echo.Context) error {
	id, stepID, err := stepPath(c)
	if err != nil {
		return respondError(c, err)
	}
	var in workflow.AssignRoleInput
	if err := bindValid(c, &in); err != nil {
		return respondError(c, err)
	}
	in.WorkflowID, in.StepID = id, stepID
	ra, err := h.uc.AssignRole(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ra)
}

func (h *WorkflowHandler) EligibleUsers(c echo.Context) error {
	id, stepID, err := stepPath(c)
	if err != nil {
		return respondError(c, err)
	}
	dto, err := h.uc.EligibleUsers(c.Request().Context(), id, stepID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WorkflowHandler) ConfigureEscalation(c echo.Context) error {
	id, stepID, err := stepPath(c)
	if err != nil {
		return respondError(c, err)
	}
	var in workflow.EscalationInput
	if err := bindValid(c, &in); err != nil {
		return respondError(c, err)
	}
	in.WorkflowID, in.StepID = id, stepID
	esc, err := h.uc.ConfigureEscalation(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, esc)
}

func stepPath(c echo.Context) (workflowID, stepID uint64, err error) {
	if workflowID, err = pathID(c, "id"); err != nil {
		return 0, 0, err
	}
	if stepID, err = pathID(c, "step_id"); err != nil {
		return 0, 0, err
	}
	return workflowID, stepID, nil
}
