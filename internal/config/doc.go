// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package config loads and validates Stockcast configuration.

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Defaults built into the binary (model defaults come from the model packages)
 2. An optional YAML file: CONFIG_PATH, else config.yaml or /etc/stockcast/config.yaml
 3. Environment variables from a fixed mapping table

Only mapped environment variables are read. Slice settings (CORS_ORIGINS,
FORECAST_HOLIDAYS, RECOMMEND_PRICE_BUCKETS, DEMAND_EXTERNAL_FACTORS) accept
comma-separated values.

# Example

	server:
	  port: 8080
	forecast:
	  window_length: 30
	  holiday_file: /etc/stockcast/holidays.yaml
	recommend:
	  collaborative_weight: 0.6
	  content_weight: 0.4
	demand:
	  external_factors: [seasonality, weather, trend]
	feed:
	  enabled: true
	  base_url: https://indicators.internal

EngineSettings and LoggingSettings convert the loaded sections into the
settings types of the engine and logging packages.
*/
package config
