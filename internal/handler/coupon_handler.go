package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/middleware"
	"github.com/sujoy-karmokar/shoptal-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CouponHandler struct {
	uc *usecase.CouponUsecase
}

func NewCouponHandler(uc *usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{uc: uc}
}

type ApplyCouponRequest struct {
	CouponCode  string `json:"coupon_code"`
	TotalAmount int64  `json:"total_amount"`
}

type AdminCreateCouponRequest struct {
	Code           string    `json:"code"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  int64     `json:"discount_value"`
	ExpirationDate time.Time `json:"expiration_date"`
	UsageLimit     int64     `json:"usage_limit"`
}

func (h *CouponHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/coupons")
	g.Use(middleware.RequireUser())
	g.POST("/apply", h.apply)

	admin := e.Group("/admin/coupons")
	admin.Use(middleware.RequireUser())
	admin.Use(middleware.AdminRoleGuard())
	admin.POST("", h.adminCreate)
	admin.GET("", h.adminList)
}

// チェックアウト前の割引プレビュー。使用回数は消費しない。
func (h *CouponHandler) apply(c echo.Context) error {
	var req ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Apply(c.Request().Context(), usecase.ApplyCouponInput{
		CouponCode:  req.CouponCode,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CouponHandler) adminCreate(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AdminCreateCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AdminCreate(c.Request().Context(), adminID, usecase.AdminCreateCouponInput{
		Code:           req.Code,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		ExpirationDate: req.ExpirationDate,
		UsageLimit:     req.UsageLimit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CouponHandler) adminList(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.AdminList(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
