package report

const valuationMarkdown = `# {{cell .Title}}

Valued {{.GeneratedAt}}{{if .Author}} by {{.Author}}{{end}}. CIK {{.CIK}}.

## Verdict

**{{.Status}}**: {{.StatusLabel}}. Price {{.Price}}, margin threshold {{.Threshold}}, size class {{.Size}}.

| Method | Value per share | Price vs value |
|---|---:|---:|
| Free cash flow to firm | {{.FCFF}} | {{.FCFFDelta}} |
| Dividends | {{.Dividend}} | {{.DividendDelta}} |
| Liquidation | {{.Liquidation}} | {{.LiquidationDelta}} |

## Company

| | |
|---|---|
| Industry | {{cell .Industry}} |
| Country | {{cell .Country}} |
| Region | {{.Region}} ({{.Tier}}) |
| Market cap | {{.MarketCap}} |

## Market inputs

| | |
|---|---|
| 10-year yield | {{.Yield}} |
| Risk-free rate | {{.RiskFree}} |
| Equity risk premium | {{.ERP}} |
| Marginal tax rate | {{.TaxRate}} |
| Synthetic rating | {{or .Rating "n/a"}} |
| Exchange rate | {{.FX}} |

## Scenarios

| Cycle | FCFF | Dividends |
|---|---:|---:|
| Normal | {{.FCFFNormal}} | {{.DividendNormal}} |
| Recession | {{.FCFFRecession}} | {{.DividendRecession}} |

| Scenario | Value per share |
|---|---:|
{{- range .Scenarios}}
| {{.Name}} | {{.Value}} |
{{- end}}
{{if .Warnings}}
## Warnings
{{range .Warnings}}
- {{.}}
{{- end}}
{{end}}`

const factsMarkdown = `# {{cell .Company.Name}} ({{.Company.Ticker}}) line items

Currency {{.Currency}}{{if .FiscalYearEnd}}, last fiscal year end {{.FiscalYearEnd}}{{end}}. Industry {{cell .Company.Industry}}, {{cell .Company.Country}}.

| Item | TTM | Latest | As of | History |
|---|---:|---:|---|---|
{{- range .Rows}}
| {{.Name}} | {{.TTM}} | {{.Latest}} | {{.LatestDate}} | {{.History}} |
{{- end}}
`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --orange: #ea580c;
  }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { color: var(--accent); font-size: 1.5rem; border-bottom: 3px solid var(--accent); padding-bottom: 8px; }
  h2 { font-size: 1.2rem; margin-top: 24px; border-bottom: 2px solid var(--border); }
  table { border-collapse: collapse; width: 100%; margin: 8px 0; font-size: 0.9rem; }
  th, td { border-bottom: 1px solid var(--border); padding: 4px 8px; }
  .verdict { border-left: 6px solid var(--orange); padding: 4px 12px; }
  .verdict.ok { border-color: var(--green); }
  .verdict.ko { border-color: var(--red); }
  .chart { margin: 16px 0; overflow-x: auto; }
  footer { color: var(--muted); font-size: 0.8rem; margin-top: 32px; }
</style>
</head>
<body>
<div class="verdict {{.StatusClass}}">
{{.Body}}
</div>
<div class="chart">{{.Chart}}</div>
<footer>Values are estimates derived from public filings and are not investment advice.</footer>
</body>
</html>
`
