package rules_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bouncehub/internal/model"
	"bouncehub/internal/rules"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestEvaluatePaymentRule_Fixed(t *testing.T) {
	rule := model.PaymentRule{Type: model.RuleFixed, BaseAmount: dec("42.5")}

	for _, reference := range []string{"0", "100", "99999.99"} {
		got := rules.EvaluatePaymentRule(rule, dec(reference))
		assert.True(t, dec("42.50").Equal(got), "reference %s: got %s", reference, got)
	}
}

func TestEvaluatePaymentRule_Percentage(t *testing.T) {
	rule := model.PaymentRule{Type: model.RulePercentage, Percentage: dec("15")}

	got := rules.EvaluatePaymentRule(rule, dec("100"))
	assert.True(t, dec("15.00").Equal(got), "got %s", got)
}

func TestEvaluatePaymentRule_Formula(t *testing.T) {
	// base 10 plus 10% of 200 = 30
	rule := model.PaymentRule{Type: model.RuleFormula, BaseAmount: dec("10"), Percentage: dec("10")}

	got := rules.EvaluatePaymentRule(rule, dec("200"))
	assert.True(t, dec("30.00").Equal(got), "got %s", got)
}

func TestEvaluatePaymentRule_UnknownTypeFallsBackToFixed(t *testing.T) {
	rule := model.PaymentRule{Type: "mystery", BaseAmount: dec("25"), Percentage: dec("50")}

	got := rules.EvaluatePaymentRule(rule, dec("1000"))
	assert.True(t, dec("25.00").Equal(got), "got %s", got)
}

func TestEvaluatePaymentRule_Clamping(t *testing.T) {
	tests := []struct {
		name      string
		rule      model.PaymentRule
		reference string
		want      string
	}{
		{
			name:      "below minimum raised to minimum",
			rule:      model.PaymentRule{Type: model.RulePercentage, Percentage: dec("5"), MinimumAmount: dec("20")},
			reference: "100", // 5% of 100 = 5, clamped up
			want:      "20.00",
		},
		{
			name:      "above maximum lowered to maximum",
			rule:      model.PaymentRule{Type: model.RulePercentage, Percentage: dec("50"), MaximumAmount: decPtr("75")},
			reference: "1000", // 50% of 1000 = 500, clamped down
			want:      "75.00",
		},
		{
			name:      "inside window untouched",
			rule:      model.PaymentRule{Type: model.RuleFixed, BaseAmount: dec("50"), MinimumAmount: dec("10"), MaximumAmount: decPtr("100")},
			reference: "0",
			want:      "50.00",
		},
		{
			name:      "nil maximum is unbounded",
			rule:      model.PaymentRule{Type: model.RulePercentage, Percentage: dec("100")},
			reference: "123456.78",
			want:      "123456.78",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.EvaluatePaymentRule(tt.rule, dec(tt.reference))
			assert.True(t, dec(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestEvaluatePaymentRule_ClampInvariant(t *testing.T) {
	// For every rule shape with min <= max the result stays inside the window.
	types := []model.PaymentRuleType{model.RuleFixed, model.RulePercentage, model.RuleFormula, "unknown"}
	amounts := []string{"0", "0.01", "12.34", "500", "99999"}

	min := dec("15")
	max := decPtr("250")
	for _, ruleType := range types {
		for _, base := range amounts {
			for _, ref := range amounts {
				rule := model.PaymentRule{
					Type:          ruleType,
					BaseAmount:    dec(base),
					Percentage:    dec("12.5"),
					MinimumAmount: min,
					MaximumAmount: max,
				}
				got := rules.EvaluatePaymentRule(rule, dec(ref))
				assert.True(t, got.GreaterThanOrEqual(min), "type=%s base=%s ref=%s got=%s below min", ruleType, base, ref, got)
				assert.True(t, got.LessThanOrEqual(*max), "type=%s base=%s ref=%s got=%s above max", ruleType, base, ref, got)
			}
		}
	}
}

func TestEvaluatePaymentRule_NegativeInputsTreatedAsZero(t *testing.T) {
	rule := model.PaymentRule{Type: model.RuleFormula, BaseAmount: dec("-10"), Percentage: dec("-5")}

	got := rules.EvaluatePaymentRule(rule, dec("-200"))
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestEvaluatePaymentRule_RoundsToCents(t *testing.T) {
	// 3% of 33.33 = 0.9999 -> 1.00
	rule := model.PaymentRule{Type: model.RulePercentage, Percentage: dec("3")}

	got := rules.EvaluatePaymentRule(rule, dec("33.33"))
	assert.True(t, dec("1.00").Equal(got), "got %s", got)
}
