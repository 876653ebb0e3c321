package echoServer

import (
	"net/http"

	"bookstore/app/echoServer/controller/auth"
	"bookstore/app/echoServer/controller/book"
	"bookstore/app/echoServer/controller/cart"
	"bookstore/app/echoServer/controller/transaction"
	"bookstore/app/echoServer/controller/user"
	"bookstore/app/echoServer/jwtx"
	"bookstore/model"
	jwtutil "bookstore/util/jwt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth        *auth.Controller
	Book        *book.Controller
	Cart        *cart.Controller
	Transaction *transaction.Controller
	User        *user.Controller
	JWTSecret   string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		ContextKey:  jwtx.ContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return jwtutil.Parse(token, c.JWTSecret)
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			ctx.Logger().Warnf("[AUTH] rejected req_id=%s ip=%s err=%v",
				ctx.Response().Header().Get(echo.HeaderXRequestID), ctx.RealIP(), err)
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	}))
	authed.Use(Principal())

	// Cart
	authed.GET("/cart", c.Cart.Get)
	authed.DELETE("/cart", c.Cart.Clear)
	authed.POST("/cart/items", c.Cart.AddItem)
	authed.PATCH("/cart/items/:itemId", c.Cart.UpdateItem)
	authed.DELETE("/cart/items/:itemId", c.Cart.RemoveItem)

	// Transactions
	authed.POST("/transactions/checkout", c.Transaction.Checkout)
	authed.GET("/transactions/history", c.Transaction.History)
	authed.GET("/transactions/:id", c.Transaction.Detail)

	// Profile
	authed.GET("/users/me", c.User.Me)
	authed.PATCH("/users/me", c.User.UpdateMe)

	// Admin endpoints
	admin := authed.Group("", RequireRole(string(model.RoleAdmin)))
	admin.POST("/books", c.Book.Create)
	admin.GET("/books/export", c.Book.Export)
	admin.PATCH("/books/:id", c.Book.Update)
	admin.DELETE("/books/:id", c.Book.Delete)

	admin.GET("/users", c.User.List)
	admin.GET("/users/:id", c.User.Get)
	admin.PATCH("/users/:id", c.User.Update)
	admin.DELETE("/users/:id", c.User.Delete)
}
