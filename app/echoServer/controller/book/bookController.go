package book

import (
	"bytes"
	"log/slog"
	"net/http"

	"bookstore/app/echoServer/validation"
	"bookstore/model"
	booksvc "bookstore/service/book"
	"bookstore/util/httpx"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List books
// @Summary      List books
// @Tags         books
// @Produce      json
// @Param        search  query  string  false  "title or author contains"
// @Param        page    query  int     false  "page (1-based)"
// @Param        limit   query  int     false  "page size, max 100"
// @Success      200  {object}  map[string]any
// @Router       /v1/books [get]
func (h *Controller) List(c echo.Context) error {
	p, err := h.Svc.List(c.Request().Context(),
		c.QueryParam("search"), httpx.QueryInt(c, "page", 1), httpx.QueryInt(c, "limit", booksvc.DefaultLimit))
	if err != nil {
		return httpx.Fail(c, h.Log, "book list", err)
	}
	out := make([]BookResp, 0, len(p.Data))
	for i := range p.Data {
		out = append(out, toResp(&p.Data[i]))
	}
	return c.JSON(http.StatusOK, model.Page[BookResp]{Data: out, Total: p.Total, Page: p.Page, LastPage: p.LastPage})
}

// Detail
// @Summary      Book detail
// @Tags         books
// @Produce      json
// @Param        id  path  int  true  "book id"
// @Success      200  {object}  BookResp
// @Failure      404  {object}  map[string]any
// @Router       /v1/books/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid id")
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return httpx.Fail(c, h.Log, "book detail", err)
	}
	return c.JSON(http.StatusOK, toResp(b))
}

// Create (admin)
// @Summary      Create book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  CreateBookReq  true  "Book"
// @Success      201  {object}  BookResp
// @Failure      400  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /v1/books [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return httpx.Message(c, http.StatusBadRequest, "invalid json")
	}
	if errs := validation.Check(h.V, req); errs != nil {
		return httpx.Invalid(c, errs)
	}
	b, err := h.Svc.Create(c.Request().Context(), booksvc.CreateInput{
		Title: req.Title, Author: req.Author, Price: *req.Price, Stock: *req.Stock,
	})
	if err != nil {
		return httpx.Fail(c, h.Log, "book create", err)
	}
	return c.JSON(http.StatusCreated, toResp(b))
}

// Update (admin)
// @Summary      Update book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int            true  "book id"
// @Param        payload  body  UpdateBookReq  true  "fields to change"
// @Success      200  {object}  BookResp
// @Router       /v1/books/{id} [patch]
func (h *Controller) Update(c echo.Context) error {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid id")
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return httpx.Message(c, http.StatusBadRequest, "invalid json")
	}
	if errs := validation.Check(h.V, req); errs != nil {
		return httpx.Invalid(c, errs)
	}
	b, err := h.Svc.Update(c.Request().Context(), id, req.Patch())
	if err != nil {
		return httpx.Fail(c, h.Log, "book update", err)
	}
	return c.JSON(http.StatusOK, toResp(b))
}

// Delete (admin)
// @Summary      Delete book
// @Tags         books
// @Security     BearerAuth
// @Param        id  path  int  true  "book id"
// @Success      204
// @Failure      409  {object}  map[string]any "book has orders"
// @Router       /v1/books/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return httpx.Fail(c, h.Log, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Export (admin)
// @Summary      Export catalog as xlsx
// @Tags         books
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200
// @Router       /v1/books/export [get]
func (h *Controller) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.Svc.Export(c.Request().Context(), &buf); err != nil {
		return httpx.Fail(c, h.Log, "book export", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="books.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
