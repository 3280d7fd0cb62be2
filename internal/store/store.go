// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/metrics"
	"github.com/tomtom215/stockcast/internal/ml"
	"github.com/tomtom215/stockcast/internal/recommend"
)

// Key prefixes for BadgerDB storage
const (
	productKeyPrefix = "product:"
	saleKeyPrefix    = "sale:"
	txnKeyPrefix     = "txn:"
)

// maxConflictRetries bounds retries of read-modify-write transactions.
const maxConflictRetries = 5

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("not found")

// Config holds store settings.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory, for tests and ephemeral runs.
	InMemory bool
}

// Store is a badger-backed repository for products, sales and transactions.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// saleRecord is the stored value of one product-day.
type saleRecord struct {
	Quantity     float64 `json:"quantity"`
	IsHoliday    bool    `json:"is_holiday,omitempty"`
	HasPromotion bool    `json:"has_promotion,omitempty"`
}

// Open opens (or creates) the store.
//
//nolint:gocritic // hugeParam: logger passed by value per zerolog convention
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "store").Logger()

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("Store opened")
	return &Store{db: db, logger: logger}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Healthy reports whether the database is open.
func (s *Store) Healthy() bool {
	return !s.db.IsClosed()
}

// PutProduct creates or replaces a catalog entry.
func (s *Store) PutProduct(ctx context.Context, p recommend.Product) (err error) {
	defer observe("put_product", time.Now(), &err)

	if err := checkID("product id", p.ID); err != nil {
		return err
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return fmt.Errorf("%w: invalid price %v", ml.ErrInvalidInput, p.Price)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(productKeyPrefix+p.ID), data)
	})
}

// GetProduct returns one product or ErrNotFound.
func (s *Store) GetProduct(ctx context.Context, id string) (p recommend.Product, err error) {
	defer observe("get_product", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return p, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(productKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("product %q: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	return p, err
}

// ListProducts returns the catalog ordered by product ID.
func (s *Store) ListProducts(ctx context.Context) (products []recommend.Product, err error) {
	defer observe("list_products", time.Now(), &err)

	err = s.scan(ctx, productKeyPrefix, func(_ string, val []byte) error {
		var p recommend.Product
		if err := json.Unmarshal(val, &p); err != nil {
			return fmt.Errorf("decode product: %w", err)
		}
		products = append(products, p)
		return nil
	})
	return products, err
}

// RecordSale adds a day's sales to a product. Quantities for the same day
// accumulate; holiday and promotion flags are sticky once set.
func (s *Store) RecordSale(ctx context.Context, productID string, point forecast.TimeSeriesPoint) (err error) {
	defer observe("record_sale", time.Now(), &err)

	if err := checkID("product id", productID); err != nil {
		return err
	}
	if math.IsNaN(point.Sales) || math.IsInf(point.Sales, 0) || point.Sales < 0 {
		return fmt.Errorf("%w: sales must be a finite non-negative number, got %v", ml.ErrInvalidInput, point.Sales)
	}
	if point.Date.IsZero() {
		return fmt.Errorf("%w: sale date is required", ml.ErrInvalidInput)
	}

	key := []byte(saleKey(productID, point.Date))
	return s.updateWithRetry(ctx, func(txn *badger.Txn) error {
		var rec saleRecord
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("get sale: %w", err)
		default:
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return fmt.Errorf("decode sale: %w", err)
			}
		}

		rec.Quantity += point.Sales
		rec.IsHoliday = rec.IsHoliday || point.IsHoliday
		rec.HasPromotion = rec.HasPromotion || point.HasPromotion

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal sale: %w", err)
		}
		return txn.Set(key, data)
	})
}

// SalesHistory returns a product's daily sales from its first to its last
// recorded day, with missing days filled as zero sales. A product without
// sales yields an empty history.
func (s *Store) SalesHistory(ctx context.Context, productID string) (history []forecast.TimeSeriesPoint, err error) {
	defer observe("sales_history", time.Now(), &err)

	if err := checkID("product id", productID); err != nil {
		return nil, err
	}
	err = s.scan(ctx, saleKeyPrefix+productID+":", func(key string, val []byte) error {
		point, err := decodeSale(key[strings.LastIndexByte(key, ':')+1:], val)
		if err != nil {
			return err
		}
		history = appendFilled(history, point)
		return nil
	})
	return history, err
}

// AllSalesHistories returns the gap-filled history of every product with sales.
func (s *Store) AllSalesHistories(ctx context.Context) (histories map[string][]forecast.TimeSeriesPoint, err error) {
	defer observe("all_sales_histories", time.Now(), &err)

	histories = make(map[string][]forecast.TimeSeriesPoint)
	err = s.scan(ctx, saleKeyPrefix, func(key string, val []byte) error {
		rest := strings.TrimPrefix(key, saleKeyPrefix)
		sep := strings.LastIndexByte(rest, ':')
		if sep <= 0 {
			return fmt.Errorf("malformed sale key %q", key)
		}
		productID := rest[:sep]
		point, err := decodeSale(rest[sep+1:], val)
		if err != nil {
			return err
		}
		histories[productID] = appendFilled(histories[productID], point)
		return nil
	})
	return histories, err
}

// RecordTransaction stores a purchase under a generated ID and returns it.
func (s *Store) RecordTransaction(ctx context.Context, t recommend.Transaction) (string, error) {
	id := uuid.New().String()
	if err := s.PutTransaction(ctx, id, t); err != nil {
		return "", err
	}
	return id, nil
}

// PutTransaction stores a purchase under id. Writing the same id again
// replaces the earlier record, which makes redelivered events harmless.
func (s *Store) PutTransaction(ctx context.Context, id string, t recommend.Transaction) (err error) {
	defer observe("put_transaction", time.Now(), &err)

	if err := checkID("transaction id", id); err != nil {
		return err
	}
	if err := checkID("customer id", t.CustomerID); err != nil {
		return err
	}
	if err := checkID("product id", t.ProductID); err != nil {
		return err
	}
	if math.IsNaN(t.Quantity) || math.IsInf(t.Quantity, 0) || t.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %v", ml.ErrInvalidInput, t.Quantity)
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(txnKeyPrefix+t.CustomerID+":"+id), data)
	})
}

// ListTransactions returns every stored transaction grouped by customer.
func (s *Store) ListTransactions(ctx context.Context) ([]recommend.Transaction, error) {
	return s.listTransactions(ctx, "list_transactions", txnKeyPrefix)
}

// CustomerTransactions returns one customer's transactions.
func (s *Store) CustomerTransactions(ctx context.Context, customerID string) ([]recommend.Transaction, error) {
	if err := checkID("customer id", customerID); err != nil {
		return nil, err
	}
	return s.listTransactions(ctx, "customer_transactions", txnKeyPrefix+customerID+":")
}

func (s *Store) listTransactions(ctx context.Context, op, prefix string) (txns []recommend.Transaction, err error) {
	defer observe(op, time.Now(), &err)

	err = s.scan(ctx, prefix, func(_ string, val []byte) error {
		var t recommend.Transaction
		if err := json.Unmarshal(val, &t); err != nil {
			return fmt.Errorf("decode transaction: %w", err)
		}
		txns = append(txns, t)
		return nil
	})
	return txns, err
}

// scan calls fn for every key under prefix, in key order.
func (s *Store) scan(ctx context.Context, prefix string, fn func(key string, val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := string(item.Key())
			if err := item.Value(func(val []byte) error { return fn(key, val) }); err != nil {
				return err
			}
		}
		return nil
	})
}

// updateWithRetry runs fn in a read-write transaction, retrying on conflicts
// with a concurrent writer.
func (s *Store) updateWithRetry(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
		s.logger.Debug().Int("attempt", attempt+1).Msg("Transaction conflict, retrying")
	}
}

func saleKey(productID string, date time.Time) string {
	return saleKeyPrefix + productID + ":" + forecast.Day(date).Format(forecast.DateLayout)
}

func decodeSale(day string, val []byte) (forecast.TimeSeriesPoint, error) {
	date, err := time.Parse(forecast.DateLayout, day)
	if err != nil {
		return forecast.TimeSeriesPoint{}, fmt.Errorf("malformed sale date %q: %w", day, err)
	}
	var rec saleRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return forecast.TimeSeriesPoint{}, fmt.Errorf("decode sale: %w", err)
	}
	return forecast.TimeSeriesPoint{
		Date:         date,
		Sales:        rec.Quantity,
		IsHoliday:    rec.IsHoliday,
		HasPromotion: rec.HasPromotion,
	}, nil
}

// appendFilled appends point, first inserting zero-sales days for any gap
// after the last point. Points must arrive in ascending date order.
func appendFilled(history []forecast.TimeSeriesPoint, point forecast.TimeSeriesPoint) []forecast.TimeSeriesPoint {
	if n := len(history); n > 0 {
		for d := history[n-1].Date.AddDate(0, 0, 1); d.Before(point.Date); d = d.AddDate(0, 0, 1) {
			history = append(history, forecast.TimeSeriesPoint{Date: d})
		}
	}
	return append(history, point)
}

func checkID(what, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s is required", ml.ErrInvalidInput, what)
	}
	if strings.ContainsRune(id, ':') {
		return fmt.Errorf("%w: %s %q must not contain ':'", ml.ErrInvalidInput, what, id)
	}
	return nil
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreOperation(op, time.Since(start), *err)
}
