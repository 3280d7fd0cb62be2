// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package forecast

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// HolidayCalendar is an immutable set of holiday dates. A nil calendar knows
// no holidays.
type HolidayCalendar struct {
	days  map[string]string
	count int
}

// NewHolidayCalendar builds a calendar from dates.
func NewHolidayCalendar(dates ...time.Time) *HolidayCalendar {
	c := &HolidayCalendar{days: make(map[string]string, len(dates))}
	for _, d := range dates {
		c.days[Day(d).Format(DateLayout)] = ""
	}
	c.count = len(c.days)
	return c
}

// ParseHolidayCalendar builds a calendar from YYYY-MM-DD strings.
func ParseHolidayCalendar(dates []string) (*HolidayCalendar, error) {
	c := &HolidayCalendar{days: make(map[string]string, len(dates))}
	for _, s := range dates {
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("parse holiday %q: %w", s, err)
		}
		c.days[d.Format(DateLayout)] = ""
	}
	c.count = len(c.days)
	return c, nil
}

// holidayFile is the on-disk calendar layout:
//
//	holidays:
//	  - date: "2026-12-25"
//	    name: Christmas Day
type holidayFile struct {
	Holidays []struct {
		Date string `yaml:"date"`
		Name string `yaml:"name"`
	} `yaml:"holidays"`
}

// LoadHolidayCalendar reads a YAML holiday file. extra dates (for example from
// configuration) are merged in.
func LoadHolidayCalendar(path string, extra []string) (*HolidayCalendar, error) {
	cal, err := ParseHolidayCalendar(extra)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cal, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read holiday calendar: %w", err)
	}

	var f holidayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse holiday calendar %s: %w", path, err)
	}

	for i, h := range f.Holidays {
		d, err := time.Parse(DateLayout, h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %d in %s: %w", i, path, err)
		}
		cal.days[d.Format(DateLayout)] = h.Name
	}
	cal.count = len(cal.days)
	return cal, nil
}

// IsHoliday reports whether the calendar day of t is a holiday.
func (c *HolidayCalendar) IsHoliday(t time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.days[Day(t).Format(DateLayout)]
	return ok
}

// Name returns the holiday name for t, if one was configured.
func (c *HolidayCalendar) Name(t time.Time) string {
	if c == nil {
		return ""
	}
	return c.days[Day(t).Format(DateLayout)]
}

// Len returns the number of holidays.
func (c *HolidayCalendar) Len() int {
	if c == nil {
		return 0
	}
	return c.count
}
