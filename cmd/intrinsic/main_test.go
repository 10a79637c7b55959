package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seenimoa/intrinsic/internal/config"
	"github.com/seenimoa/intrinsic/pkg/models"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	assert.Contains(t, out, "intrinsic dev")
	assert.Contains(t, out, "commit:")
}

func TestPrintSummary(t *testing.T) {
	v := &models.Valuation{
		Company:          models.Company{Ticker: "ACME", Name: "Acme Corp", Industry: "Machinery", Country: "United States"},
		Market:           models.Market{Price: 50, PriceCurrency: "USD", Rating: "A+"},
		FCFFValue:        75,
		FCFFDelta:        models.Finite(-1.0 / 3),
		DividendValue:    40,
		DividendDelta:    models.Finite(0.25),
		LiquidationDelta: nil,
		Threshold:        0.2,
		Size:             "large",
		Status:           models.StatusOK,
		Warnings:         []string{"no dividends reported"},
	}

	var buf bytes.Buffer
	printSummary(&buf, v)
	out := buf.String()

	assert.Contains(t, out, "Acme Corp (ACME)")
	assert.Contains(t, out, "75.00 USD")
	assert.Regexp(t, `Synthetic rating +A\+`, out)
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Verdict: OK (under-priced)")
	assert.Contains(t, out, "! no dividends reported")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, writeJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestTablesOrigin(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"file wins", config.Config{
			Valuation: config.ValuationConfig{TablesPath: "/etc/t.yaml"},
			Store:     config.StoreConfig{DatabaseURL: "postgres://x"},
		}, "/etc/t.yaml"},
		{"database", config.Config{Store: config.StoreConfig{DatabaseURL: "postgres://x"}}, "database"},
		{"embedded", config.Config{}, "embedded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tablesOrigin(&tt.cfg))
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"value", "facts", "report", "history", "serve", "tables", "cache", "status", "version"} {
		assert.Contains(t, joined, want)
	}
}
