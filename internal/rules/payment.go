// Package rules holds the pure computation core used when generating tasks
// from templates: payment rule evaluation, schedule resolution, and pattern
// rendering. Nothing here touches the database or errors on bad input; the
// checkout and admin flows prefer a correctable value over a hard failure.
package rules

import (
	"github.com/shopspring/decimal"

	"bouncehub/internal/model"
	"bouncehub/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// EvaluatePaymentRule computes the payment amount for a rule against a
// reference amount (typically the order total). Percentage is a whole-number
// percent, so 10 means 10% of the reference.
//
// The result is clamped to [MinimumAmount, MaximumAmount] and rounded to
// cents. Negative inputs are treated as zero and an unknown rule type falls
// back to the fixed base amount rather than failing.
func EvaluatePaymentRule(rule model.PaymentRule, reference decimal.Decimal) decimal.Decimal {
	base := money.NonNegative(rule.BaseAmount)
	pct := money.NonNegative(rule.Percentage)
	ref := money.NonNegative(reference)

	var amount decimal.Decimal
	switch rule.Type {
	case model.RulePercentage:
		amount = ref.Mul(pct).Div(hundred)
	case model.RuleFormula:
		amount = base.Add(ref.Mul(pct).Div(hundred))
	case model.RuleFixed:
		amount = base
	default:
		amount = base
	}

	min := money.NonNegative(rule.MinimumAmount)
	return money.Round2(money.Clamp(amount, min, rule.MaximumAmount))
}
