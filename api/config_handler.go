package api

import (
	"net/http"

	"github.com/seenimoa/intrinsic/internal/config"
)

// Assumptions are the market-wide inputs every valuation shares.
type Assumptions struct {
	EquityRiskPremium    float64 `json:"equity_risk_premium"`
	RecessionProbability float64 `json:"recession_probability"`
	HistoryYears         int     `json:"history_years"`
	FallbackYield        float64 `json:"fallback_yield"`
	TablesPath           string  `json:"tables_path,omitempty"`
}

// handleGetConfigKeys returns the status of all credentials, masked.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusNotImplemented, "configuration not available")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckKeys(s.cfg),
	})
}

// handleGetAssumptions returns the running valuation assumptions.
func (s *Server) handleGetAssumptions(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusNotImplemented, "configuration not available")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: Assumptions{
			EquityRiskPremium:    s.cfg.Valuation.EquityRiskPremium,
			RecessionProbability: s.cfg.Valuation.RecessionProbability,
			HistoryYears:         s.cfg.Valuation.HistoryYears,
			FallbackYield:        s.cfg.Bonds.FallbackYield,
			TablesPath:           s.cfg.Valuation.TablesPath,
		},
	})
}
