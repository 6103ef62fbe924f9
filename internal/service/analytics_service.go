package service

import (
	"context"
	"log"
	"time"

	"bouncehub/internal/model"

	"gorm.io/gorm"
)

// --- DTOs ---

type TrackEventRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	EventType string `json:"event_type" binding:"required,oneof=page_view product_view checkout_start checkout_complete"`
	Page      string `json:"page"`
	Referrer  string `json:"referrer"`
	ProductID string `json:"product_id"`
}

// --- Interface ---

type AnalyticsService interface {
	// TrackEvent records a visitor interaction. Best effort: failures are
	// logged, never propagated, so tracking can sit on a hot public path.
	TrackEvent(ctx context.Context, req TrackEventRequest)
	GetFunnel(ctx context.Context, startDate, endDate time.Time) (model.FunnelReport, error)
}

type analyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) AnalyticsService {
	return &analyticsService{db: db}
}

// --- Implementation ---

func (s *analyticsService) TrackEvent(ctx context.Context, req TrackEventRequest) {
	event := model.VisitorEvent{
		SessionID:  req.SessionID,
		EventType:  req.EventType,
		Page:       req.Page,
		Referrer:   req.Referrer,
		ProductID:  req.ProductID,
		OccurredAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		log.Printf("analytics: failed to record %s event: %v", req.EventType, err)
	}
}

// GetFunnel aggregates visitor events between startDate and endDate into the
// engagement/conversion report shown on the admin dashboard.
func (s *analyticsService) GetFunnel(ctx context.Context, startDate, endDate time.Time) (model.FunnelReport, error) {
	var report model.FunnelReport
	report.TimeRangeStartDate = startDate
	report.TimeRangeEndDate = endDate

	base := s.db.WithContext(ctx).Model(&model.VisitorEvent{}).
		Where("occurred_at >= ? AND occurred_at <= ?", startDate, endDate)

	if err := base.Session(&gorm.Session{}).
		Distinct("session_id").Count(&report.Sessions).Error; err != nil {
		return report, err
	}

	counts := []struct {
		eventType string
		dest      *int64
	}{
		{model.EventPageView, &report.PageViews},
		{model.EventProductView, &report.ProductViews},
		{model.EventCheckoutStart, &report.CheckoutStarts},
		{model.EventCheckoutComplete, &report.CompletedCheckouts},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(&model.VisitorEvent{}).
			Where("occurred_at >= ? AND occurred_at <= ?", startDate, endDate).
			Where("event_type = ?", c.eventType).
			Count(c.dest).Error; err != nil {
			return report, err
		}
	}

	if report.Sessions > 0 {
		report.CheckoutRate = float64(report.CheckoutStarts) / float64(report.Sessions)
		report.ConversionRate = float64(report.CompletedCheckouts) / float64(report.Sessions)
	}

	var topPages []model.PageRanking
	if err := s.db.WithContext(ctx).Model(&model.VisitorEvent{}).
		Select("page, COUNT(*) as total_views").
		Where("occurred_at >= ? AND occurred_at <= ?", startDate, endDate).
		Where("event_type = ? AND page != ''", model.EventPageView).
		Group("page").
		Order("total_views DESC").
		Limit(5).
		Scan(&topPages).Error; err != nil {
		return report, err
	}
	report.TopPages = topPages

	return report, nil
}
