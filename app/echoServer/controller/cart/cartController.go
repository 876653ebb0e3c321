package cart

import (
	"log/slog"
	"net/http"

	"bookstore/app/echoServer/jwtx"
	"bookstore/app/echoServer/validation"
	cartsvc "bookstore/service/cart"
	"bookstore/util/httpx"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc cartsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Get
// @Summary      Current cart
// @Description  Returns the caller's cart with live prices; created on first access
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  CartResp
// @Router       /v1/cart [get]
func (h *Controller) Get(c echo.Context) error {
	cart, err := h.Svc.Get(c.Request().Context(), jwtx.UserID(c))
	if err != nil {
		return httpx.Fail(c, h.Log, "cart get", err)
	}
	return c.JSON(http.StatusOK, toCart(cart))
}

// AddItem
// @Summary      Add book to cart
// @Description  Merges with an existing line for the same book
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  AddItemReq  true  "book and quantity"
// @Success      201  {object}  ItemResp
// @Failure      400  {object}  map[string]any "insufficient stock"
// @Failure      404  {object}  map[string]any
// @Router       /v1/cart/items [post]
func (h *Controller) AddItem(c echo.Context) error {
	var req AddItemReq
	if err := c.Bind(&req); err != nil {
		return httpx.Message(c, http.StatusBadRequest, "invalid json")
	}
	if errs := validation.Check(h.V, req); errs != nil {
		return httpx.Invalid(c, errs)
	}
	it, err := h.Svc.AddItem(c.Request().Context(), jwtx.UserID(c), req.BookID, req.Quantity)
	if err != nil {
		return httpx.Fail(c, h.Log, "cart add", err)
	}
	return c.JSON(http.StatusCreated, toItem(it))
}

// UpdateItem
// @Summary      Set line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        itemId   path  int            true  "cart item id"
// @Param        payload  body  UpdateItemReq  true  "new quantity"
// @Success      200  {object}  ItemResp
// @Router       /v1/cart/items/{itemId} [patch]
func (h *Controller) UpdateItem(c echo.Context) error {
	id, ok := httpx.ParamID(c, "itemId")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid item id")
	}
	var req UpdateItemReq
	if err := c.Bind(&req); err != nil {
		return httpx.Message(c, http.StatusBadRequest, "invalid json")
	}
	if errs := validation.Check(h.V, req); errs != nil {
		return httpx.Invalid(c, errs)
	}
	it, err := h.Svc.UpdateItemQuantity(c.Request().Context(), jwtx.UserID(c), id, req.Quantity)
	if err != nil {
		return httpx.Fail(c, h.Log, "cart update", err)
	}
	return c.JSON(http.StatusOK, toItem(it))
}

// RemoveItem
// @Summary      Remove line
// @Tags         cart
// @Security     BearerAuth
// @Param        itemId  path  int  true  "cart item id"
// @Success      200  {object}  map[string]any
// @Router       /v1/cart/items/{itemId} [delete]
func (h *Controller) RemoveItem(c echo.Context) error {
	id, ok := httpx.ParamID(c, "itemId")
	if !ok {
		return httpx.Message(c, http.StatusBadRequest, "invalid item id")
	}
	if err := h.Svc.RemoveItem(c.Request().Context(), jwtx.UserID(c), id); err != nil {
		return httpx.Fail(c, h.Log, "cart remove", err)
	}
	return httpx.Message(c, http.StatusOK, "item removed")
}

// Clear
// @Summary      Empty the cart
// @Tags         cart
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/cart [delete]
func (h *Controller) Clear(c echo.Context) error {
	cleared, err := h.Svc.Clear(c.Request().Context(), jwtx.UserID(c))
	if err != nil {
		return httpx.Fail(c, h.Log, "cart clear", err)
	}
	msg := "cart cleared"
	if !cleared {
		msg = "cart already empty"
	}
	return httpx.Message(c, http.StatusOK, msg)
}
