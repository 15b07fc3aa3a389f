// Package report aggregates paid orders into sales reports.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rasa-pos/api/internal/database"
	"github.com/shopspring/decimal"
)

const DefaultTopItems = 10

// Store is satisfied by *database.Queries.
type Store interface {
	GetSalesSummary(ctx context.Context, arg database.GetSalesSummaryParams) (database.GetSalesSummaryRow, error)
	ListDailySales(ctx context.Context, arg database.ListDailySalesParams) ([]database.ListDailySalesRow, error)
	ListTopMenuItems(ctx context.Context, arg database.ListTopMenuItemsParams) ([]database.ListTopMenuItemsRow, error)
}

// Sales covers orders whose payment status is success or paid, valued at the
// unit price captured when each order was placed.
type Sales struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	TotalSales        int64           `json:"total_sales"`
	OrderCount        int64           `json:"order_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	Daily             []DailySales    `json:"daily"`
	TopItems          []TopItem       `json:"top_items"`
}

type DailySales struct {
	Date       string `json:"date"`
	TotalSales int64  `json:"total_sales"`
	OrderCount int64  `json:"order_count"`
}

type TopItem struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int64           `json:"quantity"`
	Revenue    int64           `json:"revenue"`
	Share      decimal.Decimal `json:"revenue_share"` // percent of TotalSales
}

// BuildSales runs the report queries for [from, to).
func BuildSales(ctx context.Context, store Store, from, to time.Time, topN int32) (*Sales, error) {
	start := pgtype.Timestamptz{Time: from, Valid: true}
	end := pgtype.Timestamptz{Time: to, Valid: true}

	summary, err := store.GetSalesSummary(ctx, database.GetSalesSummaryParams{StartDate: start, EndDate: end})
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}
	daily, err := store.ListDailySales(ctx, database.ListDailySalesParams{StartDate: start, EndDate: end})
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	if topN <= 0 {
		topN = DefaultTopItems
	}
	top, err := store.ListTopMenuItems(ctx, database.ListTopMenuItemsParams{StartDate: start, EndDate: end, Limit: topN})
	if err != nil {
		return nil, fmt.Errorf("top menu items: %w", err)
	}

	s := &Sales{
		From:              from,
		To:                to,
		TotalSales:        summary.TotalSales,
		OrderCount:        summary.OrderCount,
		AverageOrderValue: average(summary.TotalSales, summary.OrderCount),
		Daily:             make([]DailySales, 0, len(daily)),
		TopItems:          make([]TopItem, 0, len(top)),
	}
	for _, d := range daily {
		date := "N/A"
		if d.Day.Valid {
			date = d.Day.Time.Format("2006-01-02")
		}
		s.Daily = append(s.Daily, DailySales{Date: date, TotalSales: d.TotalSales, OrderCount: d.OrderCount})
	}
	for _, t := range top {
		s.TopItems = append(s.TopItems, TopItem{
			MenuItemID: t.MenuItemID,
			Name:       t.Name,
			Category:   t.Category,
			Quantity:   t.Quantity,
			Revenue:    t.Revenue,
			Share:      percent(t.Revenue, summary.TotalSales),
		})
	}
	return s, nil
}

func average(total, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).DivRound(decimal.NewFromInt(count), 2)
}

func percent(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).DivRound(decimal.NewFromInt(total), 2)
}
