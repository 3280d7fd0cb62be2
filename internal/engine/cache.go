// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package engine

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/metrics"
)

// forecastCache memoizes forecasts. A nil *forecastCache is a valid,
// always-missing cache.
type forecastCache struct {
	cache *ristretto.Cache[string, SalesForecast]
	ttl   time.Duration
}

func newForecastCache(maxEntries int64, ttl time.Duration) (*forecastCache, error) {
	if maxEntries <= 0 {
		return nil, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, SalesForecast]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &forecastCache{cache: c, ttl: ttl}, nil
}

func (c *forecastCache) get(key string) (*SalesForecast, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.cache.Get(key)
	if !ok {
		metrics.ForecastCacheMisses.Inc()
		return nil, false
	}
	metrics.ForecastCacheHits.Inc()
	v.Results = append([]forecast.ForecastResult(nil), v.Results...)
	return &v, true
}

func (c *forecastCache) set(key string, fc *SalesForecast) {
	if c == nil {
		return
	}
	c.cache.SetWithTTL(key, SalesForecast{
		Results:      append([]forecast.ForecastResult(nil), fc.Results...),
		ModelVersion: fc.ModelVersion,
	}, 1, c.ttl)
	// Sets are buffered; wait so the entry is visible to the next request.
	c.cache.Wait()
}

func (c *forecastCache) clear() {
	if c == nil {
		return
	}
	c.cache.Clear()
}

func (c *forecastCache) close() {
	if c == nil {
		return
	}
	c.cache.Close()
}

// forecastKey fingerprints a forecast request. Every field of every point
// takes part, so any change to the history yields a different key.
func forecastKey(history []forecast.TimeSeriesPoint, horizonDays int, modelVersion uint64) string {
	d := xxhash.New()
	var buf [8]byte
	for _, p := range history {
		binary.LittleEndian.PutUint64(buf[:], uint64(forecast.Day(p.Date).Unix()))
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Sales))
		_, _ = d.Write(buf[:])
		var flags byte
		if p.IsHoliday {
			flags |= 1
		}
		if p.HasPromotion {
			flags |= 2
		}
		_, _ = d.Write([]byte{flags})
	}
	return strconv.FormatUint(d.Sum64(), 16) + ":" + strconv.Itoa(horizonDays) + ":" + strconv.FormatUint(modelVersion, 10)
}
