// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

// Request bodies validated with go-playground/validator tags. Dates travel
// as YYYY-MM-DD strings and are checked by the dateonly tag before parsing.

import (
	"time"

	"github.com/tomtom215/stockcast/internal/events"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/recommend"
	"github.com/tomtom215/stockcast/internal/validation"
)

// HistoryPoint is one day of an inline sales history.
type HistoryPoint struct {
	Date         string  `json:"date" validate:"required,dateonly"`
	Sales        float64 `json:"sales" validate:"finite,gte=0"`
	IsHoliday    bool    `json:"is_holiday"`
	HasPromotion bool    `json:"has_promotion"`
}

// ForecastRequest is the body of POST /api/v1/forecast. Inline histories are
// capped at about ten years of days.
type ForecastRequest struct {
	History     []HistoryPoint `json:"history" validate:"required,min=1,max=3660,dive"`
	HorizonDays int            `json:"horizon_days" validate:"gte=1"`
}

// RecommendRequest is the body of POST /api/v1/recommendations.
// Transactions are not validated here; malformed lines are skipped by the
// recommender and reported as warnings.
type RecommendRequest struct {
	CustomerID   string                  `json:"customer_id" validate:"required,max=128"`
	Products     []ProductRequest        `json:"products" validate:"max=100000,dive"`
	Transactions []recommend.Transaction `json:"transactions" validate:"max=1000000"`
	TopN         int                     `json:"top_n" validate:"gte=0"`
}

// DemandRequest is the body of POST /api/v1/demand.
type DemandRequest struct {
	Product         ProductRequest     `json:"product"`
	History         []HistoryPoint     `json:"history" validate:"max=3660,dive"`
	ExternalFactors map[string]float64 `json:"external_factors" validate:"max=64,dive,keys,required,max=64,endkeys,finite"`
}

// ProductRequest is a catalog entry, the body of POST /api/v1/products.
type ProductRequest struct {
	ID          string   `json:"id" validate:"entityid"`
	Name        string   `json:"name" validate:"max=256"`
	Category    string   `json:"category" validate:"max=128"`
	Price       float64  `json:"price" validate:"finite,gte=0"`
	Tags        []string `json:"tags" validate:"max=64,dive,max=64"`
	OnPromotion bool     `json:"on_promotion"`
}

// SaleRequest is the body of POST /api/v1/sales.
type SaleRequest struct {
	ProductID    string  `json:"product_id" validate:"entityid"`
	Date         string  `json:"date" validate:"required,dateonly"`
	Quantity     float64 `json:"quantity" validate:"finite,gte=0"`
	IsHoliday    bool    `json:"is_holiday"`
	HasPromotion bool    `json:"has_promotion"`
}

// TransactionRequest is the body of POST /api/v1/transactions. A zero
// timestamp is stamped with the time of receipt.
type TransactionRequest struct {
	CustomerID string    `json:"customer_id" validate:"entityid"`
	ProductID  string    `json:"product_id" validate:"entityid"`
	Quantity   float64   `json:"quantity" validate:"finite,gt=0"`
	Timestamp  time.Time `json:"timestamp"`
}

// toPoints converts validated history points. Dates are known to parse.
func toPoints(history []HistoryPoint) []forecast.TimeSeriesPoint {
	points := make([]forecast.TimeSeriesPoint, len(history))
	for i, p := range history {
		date, _ := time.Parse(validation.DateLayout, p.Date)
		points[i] = forecast.TimeSeriesPoint{
			Date:         date,
			Sales:        p.Sales,
			IsHoliday:    p.IsHoliday,
			HasPromotion: p.HasPromotion,
		}
	}
	return points
}

func (p *ProductRequest) toProduct() recommend.Product {
	return recommend.Product{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Tags:        p.Tags,
		OnPromotion: p.OnPromotion,
	}
}

func toProducts(in []ProductRequest) []recommend.Product {
	products := make([]recommend.Product, len(in))
	for i := range in {
		products[i] = in[i].toProduct()
	}
	return products
}

func (s *SaleRequest) toEvent() events.SaleRecorded {
	date, _ := time.Parse(validation.DateLayout, s.Date)
	return events.SaleRecorded{
		ProductID:    s.ProductID,
		Date:         date,
		Quantity:     s.Quantity,
		IsHoliday:    s.IsHoliday,
		HasPromotion: s.HasPromotion,
	}
}

func (t *TransactionRequest) toTransaction(now time.Time) recommend.Transaction {
	ts := t.Timestamp
	if ts.IsZero() {
		ts = now.UTC()
	}
	return recommend.Transaction{
		CustomerID: t.CustomerID,
		ProductID:  t.ProductID,
		Quantity:   t.Quantity,
		Timestamp:  ts,
	}
}
