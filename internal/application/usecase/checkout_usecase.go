// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"github.com/shopspring/decimal"

	cartdom "essentia/internal/domain/cart"
	orderdom "essentia/internal/domain/order"
)

// CheckoutPolicy holds the configurable pricing knobs. Values come from
// config, never hardcoded at call sites.
type CheckoutPolicy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	GiftWrapFee           decimal.Decimal
}

// CheckoutUsecase derives the totals breakdown from the current cart plus
// add-ons. Pure: no persistence, always computable, all-zero for an empty
// cart.
type CheckoutUsecase struct {
	policy CheckoutPolicy
}

func NewCheckoutUsecase(policy CheckoutPolicy) *CheckoutUsecase {
	return &CheckoutUsecase{policy: policy}
}

func (uc *CheckoutUsecase) Quote(c *cartdom.Cart, giftWrap bool) orderdom.Totals {
	if c == nil || len(c.Lines) == 0 {
		return orderdom.Totals{
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Gift:     decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	subtotal := c.Total()

	shipping := decimal.Zero
	if subtotal.LessThan(uc.policy.FreeShippingThreshold) {
		shipping = uc.policy.ShippingFee
	}

	gift := decimal.Zero
	if giftWrap {
		gift = uc.policy.GiftWrapFee
	}

	return orderdom.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Gift:     gift,
		Total:    subtotal.Add(shipping).Add(gift),
	}
}
