package rules_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bouncehub/internal/model"
	"bouncehub/internal/rules"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveScheduledAt_OffsetBeforeEvent(t *testing.T) {
	rule := model.SchedulingRule{
		RelativeTo:  model.RelativeToEventDate,
		OffsetDays:  -1,
		DefaultTime: "16:00",
	}

	got := rules.ResolveScheduledAt(rule, rules.ReferenceDates{EventDate: day(2025, time.August, 2)})
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, time.August, 1, 16, 0, 0, 0, time.UTC), *got)
}

func TestResolveScheduledAt_OffsetAfterDelivery(t *testing.T) {
	delivery := day(2025, time.June, 10)
	rule := model.SchedulingRule{
		RelativeTo:  model.RelativeToDeliveryDate,
		OffsetDays:  2,
		DefaultTime: "08:30",
	}

	got := rules.ResolveScheduledAt(rule, rules.ReferenceDates{
		EventDate:    day(2025, time.June, 11),
		DeliveryDate: &delivery,
	})
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, time.June, 12, 8, 30, 0, 0, time.UTC), *got)
}

func TestResolveScheduledAt_DeliveryRuleFallsBackToEventDate(t *testing.T) {
	rule := model.SchedulingRule{
		RelativeTo:  model.RelativeToDeliveryDate,
		OffsetDays:  0,
		DefaultTime: "10:00",
	}

	got := rules.ResolveScheduledAt(rule, rules.ReferenceDates{EventDate: day(2025, time.March, 15)})
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC), *got)
}

func TestResolveScheduledAt_ManualReturnsNil(t *testing.T) {
	rule := model.SchedulingRule{
		RelativeTo:  model.RelativeToManual,
		OffsetDays:  3,
		DefaultTime: "12:00",
	}

	got := rules.ResolveScheduledAt(rule, rules.ReferenceDates{EventDate: day(2025, time.May, 1)})
	assert.Nil(t, got)
}

func TestResolveScheduledAt_ZeroAnchorReturnsNil(t *testing.T) {
	rule := model.SchedulingRule{RelativeTo: model.RelativeToEventDate, DefaultTime: "09:00"}

	got := rules.ResolveScheduledAt(rule, rules.ReferenceDates{})
	assert.Nil(t, got)
}

func TestResolveScheduledAt_MalformedTimeDegradesToMidnight(t *testing.T) {
	rule := model.SchedulingRule{
		RelativeTo:  model.RelativeToEventDate,
		DefaultTime: "25:99",
	}

	got := rules.ResolveScheduledAt(rule, rules.ReferenceDates{EventDate: day(2025, time.July, 4)})
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC), *got)
}

func TestResolveScheduledAt_OffsetCrossesMonthBoundary(t *testing.T) {
	rule := model.SchedulingRule{
		RelativeTo:  model.RelativeToEventDate,
		OffsetDays:  -1,
		DefaultTime: "17:00",
	}

	got := rules.ResolveScheduledAt(rule, rules.ReferenceDates{EventDate: day(2025, time.March, 1)})
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, time.February, 28, 17, 0, 0, 0, time.UTC), *got)
}

func TestWithinBusinessHours(t *testing.T) {
	window := rules.DefaultBusinessHours

	assert.True(t, rules.WithinBusinessHours(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), window))
	assert.True(t, rules.WithinBusinessHours(time.Date(2025, time.May, 1, 17, 59, 0, 0, time.UTC), window))
	assert.False(t, rules.WithinBusinessHours(time.Date(2025, time.May, 1, 18, 0, 0, 0, time.UTC), window))
	assert.False(t, rules.WithinBusinessHours(time.Date(2025, time.May, 1, 6, 30, 0, 0, time.UTC), window))
}
