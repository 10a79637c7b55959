// Package lineitems extracts the fixed set of normalized financial line
// items from a company-facts bag.
package lineitems

import (
	"sort"
	"time"

	"github.com/seenimoa/intrinsic/internal/facts"
	"github.com/seenimoa/intrinsic/internal/resolve"
)

// LeaseBuckets is the number of yearly operating-lease maturity buckets.
const LeaseBuckets = 5

// LineItems is the normalized statement of one company. Absent items are
// zero-valued and report zeros through their accessors.
type LineItems struct {
	Currency string
	// FiscalYearEnd is the end date of the last annual report; every
	// balance-sheet history is anchored on it.
	FiscalYearEnd time.Time

	// Income statement and cash flow.
	Revenue         resolve.LineItem
	EBIT            resolve.LineItem
	NetIncome       resolve.LineItem
	RD              resolve.LineItem
	Dividends       resolve.LineItem
	Capex           resolve.LineItem
	Depreciation    resolve.LineItem
	InterestExpense resolve.LineItem
	SBC             resolve.LineItem

	// Balance sheet.
	Cash                resolve.LineItem
	Securities          resolve.LineItem
	Inventory           resolve.LineItem
	Receivables         resolve.LineItem
	OtherAssets         resolve.LineItem
	PPE                 resolve.LineItem
	InvestmentProperty  resolve.LineItem
	EquityInvestments   resolve.LineItem
	Debt                resolve.LineItem
	Liabilities         resolve.LineItem
	AccountPayable      resolve.LineItem
	DueToAffiliates     resolve.LineItem
	DueToRelatedParties resolve.LineItem
	Equity              resolve.LineItem
	MinorityInterest    resolve.LineItem
	TaxBenefits         resolve.LineItem
	SBCUnvested         resolve.LineItem
	Shares              resolve.LineItem

	// Operating leases.
	LeaseExpense resolve.LineItem
	LeaseDue     [LeaseBuckets]resolve.LineItem
	LeaseAfter5  resolve.LineItem
}

// Extract resolves every line item in the bag's reporting currency.
func Extract(bag *facts.Bag) *LineItems {
	return ExtractIn(bag, facts.ReportingCurrency(bag))
}

// ExtractIn resolves every line item in the given monetary unit.
func ExtractIn(bag *facts.Bag, currency string) *LineItems {
	flow := resolve.Flow(currency)
	li := &LineItems{Currency: currency}

	li.Revenue = resolve.Eval(bag, revenue, flow)
	if li.Revenue.Yearly != nil {
		li.FiscalYearEnd = li.Revenue.Yearly.LastAnnualReport
	}
	stock := resolve.Stock(currency, li.FiscalYearEnd)

	li.EBIT = resolve.Eval(bag, ebit, flow)
	li.NetIncome = resolve.Eval(bag, netIncome, flow)
	li.RD = resolve.Eval(bag, rd, flow)
	li.Dividends = resolve.Eval(bag, dividends, flow)
	li.Capex = resolve.Eval(bag, capex, flow)
	li.Depreciation = resolve.Eval(bag, depreciation, flow)
	li.InterestExpense = resolve.Eval(bag, interestExpense, flow)
	li.SBC = resolve.Eval(bag, sbc, flow)
	li.LeaseExpense = resolve.Eval(bag, leaseExpense, flow)

	li.Cash = resolve.Eval(bag, cash, stock)
	li.Securities = resolve.Eval(bag, securities, stock)
	li.Inventory = resolve.Eval(bag, inventory, stock)
	li.Receivables = resolve.Eval(bag, receivables, stock)
	li.OtherAssets = resolve.Eval(bag, otherAssets, stock)
	li.PPE = resolve.Eval(bag, ppe, stock)
	li.InvestmentProperty = resolve.Eval(bag, investmentProperty, stock)
	li.EquityInvestments = resolve.Eval(bag, equityInvestments, stock)
	li.Debt = resolve.Eval(bag, debt, stock)
	li.Liabilities = resolve.Eval(bag, liabilities, stock)
	li.AccountPayable = resolve.Eval(bag, accountPayable, stock)
	li.DueToAffiliates = resolve.Eval(bag, dueToAffiliates, stock)
	li.DueToRelatedParties = resolve.Eval(bag, dueToRelatedParties, stock)
	li.Equity = resolve.Eval(bag, equity, stock)
	li.MinorityInterest = resolve.Eval(bag, minorityInterest, stock)
	li.TaxBenefits = resolve.Eval(bag, taxBenefits, stock)
	li.SBCUnvested = resolve.Eval(bag, sbcUnvested, stock)
	li.Shares = resolve.Eval(bag, shares, stock)

	for i, spec := range leaseDue {
		li.LeaseDue[i] = resolve.Eval(bag, spec, stock)
	}
	li.LeaseAfter5 = resolve.Eval(bag, leaseAfter5, stock)
	return li
}

// TotalDebt is financial debt plus amounts owed to affiliates and related
// parties, which are treated as debt-like.
func (li *LineItems) TotalDebt() float64 {
	return li.Debt.LatestValue() + li.DueToAffiliates.LatestValue() + li.DueToRelatedParties.LatestValue()
}

// Named returns the line items keyed by their canonical names.
func (li *LineItems) Named() map[string]resolve.LineItem {
	m := map[string]resolve.LineItem{
		"revenue":                li.Revenue,
		"ebit":                   li.EBIT,
		"net_income":             li.NetIncome,
		"rd":                     li.RD,
		"dividends":              li.Dividends,
		"capex":                  li.Capex,
		"depreciation":           li.Depreciation,
		"interest_expense":       li.InterestExpense,
		"sbc":                    li.SBC,
		"cash":                   li.Cash,
		"securities":             li.Securities,
		"inventory":              li.Inventory,
		"receivables":            li.Receivables,
		"other_assets":           li.OtherAssets,
		"ppe":                    li.PPE,
		"investment_property":    li.InvestmentProperty,
		"equity_investments":     li.EquityInvestments,
		"debt":                   li.Debt,
		"liabilities":            li.Liabilities,
		"account_payable":        li.AccountPayable,
		"due_to_affiliates":      li.DueToAffiliates,
		"due_to_related_parties": li.DueToRelatedParties,
		"equity":                 li.Equity,
		"minority_interest":      li.MinorityInterest,
		"tax_benefits":           li.TaxBenefits,
		"sbc_unvested":           li.SBCUnvested,
		"shares":                 li.Shares,
		"lease_expense":          li.LeaseExpense,
		"lease_after5":           li.LeaseAfter5,
	}
	for i, due := range li.LeaseDue {
		m[leaseBucketName(i)] = due
	}
	return m
}

// Names returns the canonical names in sorted order.
func (li *LineItems) Names() []string {
	named := li.Named()
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func leaseBucketName(i int) string {
	return "lease_y" + string(rune('1'+i))
}
