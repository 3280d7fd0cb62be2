// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/stockcast/internal/logging"
)

// StartTraining handles POST /api/v1/training. The run happens in the
// background; poll GET /api/v1/training/status for the outcome.
func (h *Handler) StartTraining(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := h.engine.StartTraining(); err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Training run started via API")
	respondSuccess(w, r, http.StatusAccepted, h.engine.Status(), start)
}

// TrainingStatus handles GET /api/v1/training/status.
func (h *Handler) TrainingStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.engine.Status(), time.Now())
}
