package transaction

import (
	"log/slog"
	"net/http"

	"bookstore/app/echoServer/jwtx"
	"bookstore/model"
	booksvc "bookstore/service/book"
	checkoutsvc "bookstore/service/checkout"
	ordersvc "bookstore/service/order"
	"bookstore/util/httpx"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	CheckoutSvc checkoutsvc.Service
	OrderSvc    ordersvc.Service
	Log         *slog.Logger
}

// Checkout
// @Summary      Checkout the cart
// @Description  Converts the whole cart into one order, decrementing stock atomically
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  TransactionResp
// @Failure      400  {object}  map[string]any "empty cart or insufficient stock"
// @Failure      404  {object}  map[string]any "book no longer exists"
// @Failure      500  {object}  map[string]any
// @Router       /v1/transactions/checkout [post]
func (h *Controller) Checkout(c echo.Context) error {
	t, err := h.CheckoutSvc.Checkout(c.Request().Context(), jwtx.UserID(c))
	if err != nil {
		return httpx.Fail(c, h.Log, "checkout", err)
	}
	return c.JSON(http.StatusCreated, toResp(t))
}

// History
// @Summary      Order history
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "page (1-based)"
// @Param        limit  query  int  false  "page size"
// @Success      200  {object}  map[string]any
// @Router       /v1/transactions/history [get]
func (h *Controller) History(c echo.Context) error {
	p, err := h.OrderSvc.History(c.Request().Context(), jwtx.UserID(c),
		httpx.QueryInt(c, "page", 1), httpx.QueryInt(c, "limit", booksvc.DefaultLimit))
	if err != nil {
		return httpx.Fail(c, h.Log, "transaction history", err)
	}
	out := make([]TransactionResp, 0, len(p.Data))
	for i := range p.Data {
		out = append(out, toResp(&p.Data[i]))
	}
	return c.JSON(http.StatusOK, model.Page[TransactionResp]{Data: out, Total: p.Total, Page: p.Page, LastPage: p.LastPage})
}

// Detail
// @Summary      One order
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "transaction id"
// @Success      200  {object}  TransactionResp
// @Failure      404  {object}  map[string]any
// @Router       /v1/transactions/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid id")
	}
	t, err := h.OrderSvc.Detail(c.Request().Context(), jwtx.UserID(c), id)
	if err != nil {
		return httpx.Fail(c, h.Log, "transaction detail", err)
	}
	return c.JSON(http.StatusOK, toResp(t))
}
