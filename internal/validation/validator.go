package validation

import (
	"fmt"
	"math"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/storefront-admin/internal/admin"
)

// dateLayouts are the accepted coupon date formats: a plain date from a
// date picker or a full timestamp.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// New returns a configured validator with the struct-level rules registered.
// Coupon invariants live here rather than in the admin store, which accepts
// whatever it is given.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})
	v.RegisterStructValidation(couponStructValidation, CouponRequest{})
	v.RegisterStructValidation(couponPatchStructValidation, admin.CouponPatch{})
	v.RegisterStructValidation(storedCouponStructValidation, admin.Coupon{})

	return v
}

// checkoutStructValidation verifies the items add up to Total, compared in cents.
func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)

	var sum float64
	for _, it := range req.Items {
		sum += float64(it.Quantity) * it.Price
	}

	if Cents(sum) != Cents(req.Total) {
		sl.ReportError(req.Total, "total", "Total", "total_match_items", fmt.Sprintf("items sum %.2f != total %.2f", sum, req.Total))
	}
}

// Cents rounds a rupee amount to whole paise for exact comparison.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func couponStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CouponRequest)
	checkCouponRules(sl, req.Type, req.Amount, req.StartDate, req.EndDate)
}

// storedCouponStructValidation checks a coupon with a patch already applied,
// which is where rules spanning several fields can be enforced on update.
func storedCouponStructValidation(sl validatorv10.StructLevel) {
	c := sl.Current().Interface().(admin.Coupon)
	checkCouponRules(sl, string(c.Type), c.Amount, c.StartDate, c.EndDate)
}

// couponPatchStructValidation can only check what the patch itself carries.
func couponPatchStructValidation(sl validatorv10.StructLevel) {
	p := sl.Current().Interface().(admin.CouponPatch)

	var typ, start, end string
	var amount float64
	if p.Type != nil {
		typ = string(*p.Type)
	}
	if p.Amount != nil {
		amount = *p.Amount
	}
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.EndDate != nil {
		end = *p.EndDate
	}
	checkCouponRules(sl, typ, amount, start, end)
}

func checkCouponRules(sl validatorv10.StructLevel, typ string, amount float64, start, end string) {
	if typ == string(admin.DiscountPercent) && amount > 100 {
		sl.ReportError(amount, "amount", "Amount", "percent_max_100", "")
	}

	startAt, startOK := parseDate(start)
	if start != "" && !startOK {
		sl.ReportError(start, "startDate", "StartDate", "iso_date", "")
	}
	endAt, endOK := parseDate(end)
	if end != "" && !endOK {
		sl.ReportError(end, "endDate", "EndDate", "iso_date", "")
	}
	if startOK && endOK && endAt.Before(startAt) {
		sl.ReportError(end, "endDate", "EndDate", "end_after_start", "")
	}
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
