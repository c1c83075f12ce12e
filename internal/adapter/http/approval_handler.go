package http

import (
	"net/http"

	domain "procurement-approval/internal/domain/approval"
	"procurement-approval/internal/usecase/approval"
	"procurement-approval/internal/usecase/request"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct {
	engine   *approval.Usecase
	requests *request.Usecase
}

func NewApprovalHandler(engine *approval.Usecase, requests *request.Usecase) *ApprovalHandler {
	return &ApprovalHandler{engine: engine, requests: requests}
}

type actionReq struct {
	Action string `json:"action" validate:"required,oneof=approve reject sendback"`
	Remark string `json:"remark" validate:"max=2000"`
}

func (h *ApprovalHandler) TakeAction(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	requestID, err := pathID(c, "request_id")
	if err != nil {
		return respondError(c, err)
	}
	var req actionReq
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := h.engine.TakeAction(c.Request().Context(), approval.ActionInput{
		RequestID: requestID,
		ActorID:   actor,
		Action:    domain.Action(req.Action),
		Remark:    req.Remark,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// MyActions lists the requests the caller has acted on, latest row first.
func (h *ApprovalHandler) MyActions(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	dto, err := h.engine.MyActions(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) History(c echo.Context) error {
	requestID, err := pathID(c, "request_id")
	if err != nil {
		return respondError(c, err)
	}
	dto, err := h.requests.History(c.Request().Context(), requestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
