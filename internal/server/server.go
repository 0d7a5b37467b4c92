package server

import (
	"github.com/sujoy-karmokar/shoptal-sub000/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はechoを組み立ててルートを登録する。
func New(
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	orderH *handler.OrderHandler,
	couponH *handler.CouponHandler,
	adminOrderH *handler.AdminOrderHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, productH, cartH, orderH, couponH, adminOrderH)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
