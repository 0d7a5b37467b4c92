package server

import (
	"github.com/sujoy-karmokar/shoptal-sub000/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	orderH *handler.OrderHandler,
	couponH *handler.CouponHandler,
	adminOrderH *handler.AdminOrderHandler,
) {
	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e)
	orderH.RegisterRoutes(e)
	couponH.RegisterRoutes(e)
	adminOrderH.RegisterRoutes(e)
}
