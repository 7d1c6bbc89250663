package service

import (
	"context"
	"fmt"
	"time"

	"flora-kart/internal/model"
	"flora-kart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RecentOrdersLimit is how many orders the recent-orders panel shows.
const RecentOrdersLimit = 10

// revenueStatus is the only status from which the workflow derives a paid order.
const revenueStatus = model.OrderStatusDelivered

// dashboardService implements DashboardService.
type dashboardService struct {
	repo   repository.DashboardRepository
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

// NewDashboardService creates a dashboard service. Monthly income uses calendar months in loc.
func NewDashboardService(repo repository.DashboardRepository, loc *time.Location, logger zerolog.Logger) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{
		repo:   repo,
		loc:    loc,
		now:    time.Now,
		logger: logger.With().Str("service", "dashboard").Logger(),
	}
}

func (s *dashboardService) Overview(ctx context.Context) (*model.DashboardOverview, error) {
	var out model.DashboardOverview
	month := model.MonthWindow(s.now(), s.loc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TotalOrder, err = s.repo.CountOrders(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		out.TotalPendingOrder, err = s.repo.CountOrders(gctx, model.OrderStatusPending)
		return err
	})
	g.Go(func() (err error) {
		out.TotalIncome, err = s.repo.SumOrderTotal(gctx, revenueStatus, nil)
		return err
	})
	g.Go(func() (err error) {
		out.CurrentMonthIncome, err = s.repo.SumOrderTotal(gctx, revenueStatus, &month)
		return err
	})
	g.Go(func() (err error) {
		out.TotalUser, err = s.repo.CountUsers(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to build dashboard overview")
		return nil, fmt.Errorf("failed to build dashboard overview: %w", err)
	}

	return &out, nil
}

func (s *dashboardService) RecentOrders(ctx context.Context) (*model.RecentOrders, error) {
	orders, err := s.repo.RecentOrders(ctx, RecentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return &model.RecentOrders{Orders: orders}, nil
}

// Statistics reports catalogue totals and the fraction of orders that were delivered.
func (s *dashboardService) Statistics(ctx context.Context) (*model.DashboardStatistics, error) {
	var (
		out       model.DashboardStatistics
		total     int64
		delivered int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TotalProduct, err = s.repo.CountProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalCategory, err = s.repo.CountCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.CountOrders(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		delivered, err = s.repo.CountOrders(gctx, revenueStatus)
		return err
	})
	g.Go(func() (err error) {
		out.ProductTypePerCategory, err = s.repo.ProductsPerCategory(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to build dashboard statistics")
		return nil, fmt.Errorf("failed to build dashboard statistics: %w", err)
	}

	out.OrderCompletionRate = completionRate(delivered, total)
	if out.ProductTypePerCategory == nil {
		out.ProductTypePerCategory = []model.CategoryProductCount{}
	}

	return &out, nil
}

// completionRate returns delivered/total rounded to four places.
func completionRate(delivered, total int64) float64 {
	if total == 0 {
		return 0
	}
	rate, _ := decimal.NewFromInt(delivered).
		DivRound(decimal.NewFromInt(total), 4).
		Float64()
	return rate
}
