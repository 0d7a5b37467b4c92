package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
	repo "github.com/sujoy-karmokar/shoptal-sub000/internal/repository"

	"github.com/google/uuid"
)

type CouponUsecase struct {
	couponRepo repo.CouponRepository
	auditRepo  repo.AuditLogRepository
}

func NewCouponUsecase(couponRepo repo.CouponRepository, auditRepo repo.AuditLogRepository) *CouponUsecase {
	return &CouponUsecase{couponRepo: couponRepo, auditRepo: auditRepo}
}

type ApplyCouponInput struct {
	CouponCode  string
	TotalAmount int64
}

type ApplyCouponOutput struct {
	TotalAmount int64 `json:"total_amount"`
}

// Apply はチェックアウト前のプレビュー。
// 判定は注文確定と同じだが、使用回数は増やさない。
func (u *CouponUsecase) Apply(ctx context.Context, in ApplyCouponInput) (ApplyCouponOutput, error) {
	code := strings.TrimSpace(in.CouponCode)
	if code == "" {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusBadRequest, "coupon_code required")
	}
	if in.TotalAmount < 0 {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusBadRequest, "invalid total_amount")
	}

	cpn, err := u.couponRepo.FindByCode(ctx, code)
	if err == repo.ErrNotFound {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	if err != nil {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if cpn.Expired(time.Now()) {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusBadRequest, "coupon expired")
	}
	if cpn.UsageExhausted() {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusBadRequest, "coupon usage limit reached")
	}

	return ApplyCouponOutput{TotalAmount: cpn.Discount(in.TotalAmount)}, nil
}

type AdminCreateCouponInput struct {
	Code           string
	DiscountType   string
	DiscountValue  int64
	ExpirationDate time.Time
	UsageLimit     int64
}

func (u *CouponUsecase) AdminCreate(ctx context.Context, actorAdminUserID int64, in AdminCreateCouponInput) (model.Coupon, error) {
	if actorAdminUserID <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	dt := model.DiscountType(strings.TrimSpace(in.DiscountType))
	switch dt {
	case model.DiscountTypePercentage:
		if in.DiscountValue < 0 || in.DiscountValue > 100 {
			return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "discount_value must be 0-100")
		}
	case model.DiscountTypeFixedAmount:
		if in.DiscountValue <= 0 {
			return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "discount_value must be > 0")
		}
	default:
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid discount_type")
	}
	if in.UsageLimit <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "usage_limit must be > 0")
	}
	if in.ExpirationDate.IsZero() {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "expiration_date required")
	}

	//コード未指定なら生成
	code := strings.TrimSpace(in.Code)
	if code == "" {
		code = strings.ToUpper(uuid.NewString()[:8])
	}

	now := time.Now()
	created, err := u.couponRepo.Create(ctx, model.Coupon{
		Code:           code,
		DiscountType:   dt,
		DiscountValue:  in.DiscountValue,
		ExpirationDate: in.ExpirationDate,
		UsageLimit:     in.UsageLimit,
		Used:           0,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		//コード重複はユーザー起因として返す
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "coupon code already exists")
	}

	//監査ログ（CREATE_COUPON）
	afterJSON := fmt.Sprintf(`{"code":%q,"discount_type":%q,"discount_value":%d}`, created.Code, created.DiscountType, created.DiscountValue)
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionCreateCoupon,
		ResourceType: model.AuditResourceCoupon,
		ResourceID:   created.ID,
		BeforeJSON:   "{}",
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return created, nil
}

type CouponListOutput struct {
	Items []model.Coupon `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (u *CouponUsecase) AdminList(ctx context.Context, page int, limit int) (CouponListOutput, error) {
	if page < 1 {
		return CouponListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return CouponListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.couponRepo.List(ctx, repo.CouponListQuery{Page: page, Limit: limit})
	if err != nil {
		return CouponListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CouponListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}
