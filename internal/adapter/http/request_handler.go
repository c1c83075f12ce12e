package http

import (
	"context"
	"net/http"
	"time"

	"procurement-approval/internal/usecase/request"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type RequestHandler struct{ uc *request.Usecase }

func NewRequestHandler(uc *request.Usecase) *RequestHandler { return &RequestHandler{uc: uc} }

type attachmentReq struct {
	DocumentTypeID uint64 `json:"document_type_id" validate:"required"`
	FileRef        string `json:"file_ref" validate:"required,max=500"`
}

type createRequestReq struct {
	EntityID              uint64          `json:"entity_id" validate:"required"`
	DepartmentID          uint64          `json:"department_id" validate:"required"`
	CategoryID            uint64          `json:"category_id" validate:"required"`
	RequestType           string          `json:"request_type" validate:"required,max=50"`
	Amount                decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	Description           string          `json:"description" validate:"max=5000"`
	SupplierID            *uint64         `json:"supplier_id"`
	ExpectedDate          string          `json:"expected_date" validate:"required,datetime=2006-01-02"`
	BehalfOf              *uint64         `json:"behalf_of"`
	BehalfDepartmentID    *uint64         `json:"behalf_department_id"`
	BusinessJustification string          `json:"business_justification"`
	Attachments           []attachmentReq `json:"attachments" validate:"dive"`
	Draft                 bool            `json:"draft"`
}

type updateRequestReq struct {
	Description           *string          `json:"description" validate:"omitempty,max=5000"`
	BusinessJustification *string          `json:"business_justification"`
	ExpectedDate          *string          `json:"expected_date" validate:"omitempty,datetime=2006-01-02"`
	SupplierID            *uint64          `json:"supplier_id"`
	Amount                *decimal.Decimal `json:"amount" validate:"omitempty,gt=0,dec2"`
	Attachments           *[]attachmentReq `json:"attachments" validate:"omitempty,dive"`
}

func toDocumentInputs(in []attachmentReq) []request.DocumentInput {
	out := make([]request.DocumentInput, 0, len(in))
	for _, a := range in {
		out = append(out, request.DocumentInput{DocumentTypeID: a.DocumentTypeID, FileRef: a.FileRef})
	}
	return out
}

func (h *RequestHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	var req createRequestReq
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	expected, err := parseDate("expected_date", req.ExpectedDate)
	if err != nil {
		return respondError(c, err)
	}

	dto, err := h.uc.Create(c.Request().Context(), request.CreateInput{
		RequesterID:           actor,
		EntityID:              req.EntityID,
		DepartmentID:          req.DepartmentID,
		CategoryID:            req.CategoryID,
		RequestType:           req.RequestType,
		Amount:                req.Amount,
		Description:           req.Description,
		SupplierID:            req.SupplierID,
		ExpectedDate:          expected,
		BehalfOf:              req.BehalfOf,
		BehalfDepartmentID:    req.BehalfDepartmentID,
		BusinessJustification: req.BusinessJustification,
		Attachments:           toDocumentInputs(req.Attachments),
		Draft:                 req.Draft,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RequestHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) Update(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateRequestReq
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}

	in := request.UpdateInput{
		Description:           req.Description,
		BusinessJustification: req.BusinessJustification,
		SupplierID:            req.SupplierID,
		Amount:                req.Amount,
	}
	if req.ExpectedDate != nil {
		var t time.Time
		if t, err = parseDate("expected_date", *req.ExpectedDate); err != nil {
			return respondError(c, err)
		}
		in.ExpectedDate = &t
	}
	if req.Attachments != nil {
		docs := toDocumentInputs(*req.Attachments)
		in.Attachments = &docs
	}

	dto, err := h.uc.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) Delete(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RequestHandler) Submit(c echo.Context) error {
	return h.transition(c, h.uc.Submit)
}

func (h *RequestHandler) Withdraw(c echo.Context) error {
	return h.transition(c, h.uc.Withdraw)
}

func (h *RequestHandler) transition(c echo.Context, fn func(ctx context.Context, actorID, id uint64) (*request.RequestDTO, error)) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	dto, err := fn(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
