package lineitems_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/intrinsic/internal/facts"
	"github.com/seenimoa/intrinsic/internal/facts/factstest"
	"github.com/seenimoa/intrinsic/internal/lineitems"
)

func withRevenue(b *factstest.Builder) *factstest.Builder {
	return b.GAAP("Revenues", factstest.Year(2020, 80), factstest.Year(2021, 90), factstest.Year(2022, 100))
}

func TestExtractDebtAggregation(t *testing.T) {
	bag := withRevenue(factstest.New()).
		GAAP("LongTermDebt",
			factstest.Instant(2020, 4, "2020-12-31", 100),
			factstest.Instant(2021, 4, "2021-12-31", 110),
			factstest.Instant(2022, 4, "2022-12-31", 120)).
		GAAP("ShortTermBorrowings",
			factstest.Instant(2021, 4, "2021-12-31", 5),
			factstest.Instant(2022, 4, "2022-12-31", 6)).
		Bag()

	li := lineitems.Extract(bag)
	require.NotNil(t, li.Debt.Yearly)
	assert.Equal(t, []int{2021, 2022}, li.Debt.Yearly.Years)
	assert.Equal(t, []float64{115, 126}, li.Debt.Yearly.Values)
	assert.Equal(t, 126.0, li.TotalDebt())
}

func TestExtractCashRequiresUnrestricted(t *testing.T) {
	bag := withRevenue(factstest.New()).
		GAAP("CashAndCashEquivalentsAtCarryingValue",
			factstest.Instant(2021, 4, "2021-12-31", 50),
			factstest.Instant(2022, 4, "2022-12-31", 60)).
		GAAP("RestrictedCashAndCashEquivalentsAtCarryingValue",
			factstest.Instant(2020, 4, "2020-12-31", 1),
			factstest.Instant(2021, 4, "2021-12-31", 2),
			factstest.Instant(2022, 4, "2022-12-31", 3)).
		Bag()

	li := lineitems.Extract(bag)
	assert.Equal(t, []int{2021, 2022}, li.Cash.Yearly.Years)
	assert.Equal(t, []float64{52, 63}, li.Cash.Yearly.Values)
	assert.Equal(t, 63.0, li.Cash.LatestValue())
}

func TestExtractDepreciationFromComponents(t *testing.T) {
	bag := withRevenue(factstest.New()).
		GAAP("Depreciation", factstest.Year(2021, 10), factstest.Year(2022, 12)).
		GAAP("AmortizationOfIntangibleAssets", factstest.Year(2021, 2), factstest.Year(2022, 3)).
		GAAP("AmortizationOfFinancingCosts", factstest.Year(2020, 1), factstest.Year(2022, 1)).
		Bag()

	li := lineitems.Extract(bag)
	assert.Equal(t, []int{2021, 2022}, li.Depreciation.Yearly.Years)
	assert.Equal(t, []float64{12, 16}, li.Depreciation.Yearly.Values)
	assert.Equal(t, 16.0, li.Depreciation.TTMValue())
}

func TestExtractEBITFromPretaxPlusInterest(t *testing.T) {
	bag := withRevenue(factstest.New()).
		GAAP("OperatingIncomeLoss", factstest.Year(2022, 30)).
		GAAP("IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
			factstest.Year(2021, 20), factstest.Year(2022, 25)).
		GAAP("InterestExpense", factstest.Year(2021, 4), factstest.Year(2022, 5)).
		Bag()

	li := lineitems.Extract(bag)
	assert.Equal(t, []float64{24, 30}, li.EBIT.Yearly.Values)
	assert.Equal(t, 5.0, li.InterestExpense.TTMValue())
}

func TestExtractSharesAndLeases(t *testing.T) {
	bag := withRevenue(factstest.New()).
		Add(facts.TaxonomyDEI, "EntityCommonStockSharesOutstanding", "shares",
			factstest.Instant(2023, 1, "2023-02-01", 1000)).
		GAAP("OperatingLeaseCost", factstest.Year(2022, 12)).
		GAAP("LesseeOperatingLeaseLiabilityPaymentsDueNextTwelveMonths", factstest.Instant(2022, 4, "2022-12-31", 11)).
		GAAP("LesseeOperatingLeaseLiabilityPaymentsDueYearTwo", factstest.Instant(2022, 4, "2022-12-31", 10)).
		GAAP("OperatingLeasesFutureMinimumPaymentsDueInThreeYears", factstest.Instant(2022, 4, "2022-12-31", 9)).
		GAAP("LesseeOperatingLeaseLiabilityPaymentsDueAfterYearFive", factstest.Instant(2022, 4, "2022-12-31", 40)).
		Bag()

	li := lineitems.Extract(bag)
	assert.Equal(t, 1000.0, li.Shares.LatestValue())
	assert.Equal(t, 12.0, li.LeaseExpense.TTMValue())
	assert.Equal(t, 11.0, li.LeaseDue[0].LatestValue())
	assert.Equal(t, 9.0, li.LeaseDue[2].LatestValue())
	assert.Equal(t, 0.0, li.LeaseDue[4].LatestValue())
	assert.Equal(t, 40.0, li.LeaseAfter5.LatestValue())
}

func TestExtractMissingItemsAreZero(t *testing.T) {
	li := lineitems.Extract(factstest.New().Bag())

	assert.Equal(t, "USD", li.Currency)
	assert.True(t, li.FiscalYearEnd.IsZero())
	for _, name := range li.Names() {
		item := li.Named()[name]
		assert.True(t, item.Empty(), name)
		assert.Zero(t, item.Current(), name)
	}
	assert.Len(t, li.Names(), 34)
}

func TestExtractAnchorsOnRevenue(t *testing.T) {
	bag := factstest.New().
		GAAP("Revenues", factstest.YearEnding(2022, "2021-07-01", "2022-06-30", 10)).
		GAAP("StockholdersEquity",
			factstest.Instant(2021, 2, "2021-06-30", 4),
			factstest.Instant(2021, 4, "2021-12-31", 5),
			factstest.Instant(2022, 2, "2022-06-30", 6)).
		Bag()

	li := lineitems.Extract(bag)
	assert.Equal(t, time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC), li.FiscalYearEnd)
	assert.Equal(t, []int{2021, 2022}, li.Equity.Yearly.Years)
	assert.Equal(t, []float64{4, 6}, li.Equity.Yearly.Values)
}
