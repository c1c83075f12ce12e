package http

import (
	"net/http"

	"procurement-approval/internal/usecase/budget"

	"github.com/labstack/echo/v4"
)

type BudgetHandler struct{ uc *budget.Usecase }

func NewBudgetHandler(uc *budget.Usecase) *BudgetHandler { return &BudgetHandler{uc: uc} }

func (h *BudgetHandler) Create(c echo.Context) error {
	var in budget.CreateInput
	if err := bindValid(c, &in); err != nil {
		return respondError(c, err)
	}
	code, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, code)
}

func (h *BudgetHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in budget.UpdateInput
	if err := bindValid(c, &in); err != nil {
		return respondError(c, err)
	}
	code, err := h.uc.Update(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, code)
}
