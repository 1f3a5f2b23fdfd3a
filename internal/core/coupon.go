package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CouponConfig describes one coupon denomination and its booklet size.
type CouponConfig struct {
	Label      string          `json:"label"`
	FaceValue  decimal.Decimal `json:"faceValue"`
	BundleSize int64           `json:"bundleSize"`
}

// CouponCatalog is the static, read-only list of coupon denominations.
type CouponCatalog []CouponConfig

// DefaultCoupons is the catalog the shop ships with.
func DefaultCoupons() CouponCatalog {
	return CouponCatalog{
		{Label: "Rs 5", FaceValue: decimal.NewFromInt(5), BundleSize: 500},
		{Label: "Rs 10", FaceValue: decimal.NewFromInt(10), BundleSize: 500},
		{Label: "Rs 15", FaceValue: decimal.NewFromInt(15), BundleSize: 500},
		{Label: "Rs 20", FaceValue: decimal.NewFromInt(20), BundleSize: 500},
		{Label: "Rs 50", FaceValue: decimal.NewFromInt(50), BundleSize: 400},
		{Label: "Rs 50 (Combo)", FaceValue: decimal.NewFromInt(50), BundleSize: 100},
		{Label: "Rs 100 (Combo)", FaceValue: decimal.NewFromInt(100), BundleSize: 100},
	}
}

// Lookup finds a coupon by label, ignoring case and surrounding spaces.
func (c CouponCatalog) Lookup(label string) (CouponConfig, bool) {
	label = strings.TrimSpace(label)
	for _, cfg := range c {
		if strings.EqualFold(cfg.Label, label) {
			return cfg, true
		}
	}
	return CouponConfig{}, false
}

// QuantityFromBundles converts a booklet count into coupon units.
func QuantityFromBundles(booklets, bundleSize int64) (int64, error) {
	if booklets <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBooklets, booklets)
	}
	if bundleSize <= 0 {
		return 0, fmt.Errorf("%w: bundle size %d", ErrInvalidQuantity, bundleSize)
	}
	return booklets * bundleSize, nil
}

// QuantityFromSerials returns the inclusive count of a serial range.
func QuantityFromSerials(start, end int64) (int64, error) {
	if start <= 0 || end < start {
		return 0, fmt.Errorf("%w: %d-%d", ErrInvalidSerialRange, start, end)
	}
	return end - start + 1, nil
}
