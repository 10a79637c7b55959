package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/intrinsic/internal/facts"
	"github.com/seenimoa/intrinsic/internal/facts/factstest"
	"github.com/seenimoa/intrinsic/internal/resolve"
)

func TestTotalGuardedByMustInclude(t *testing.T) {
	bag := factstest.New().
		GAAP("LongTermDebt",
			factstest.Instant(2020, 4, "2020-12-31", 100),
			factstest.Instant(2021, 4, "2021-12-31", 110),
			factstest.Instant(2022, 4, "2022-12-31", 120)).
		GAAP("ShortTermBorrowings",
			factstest.Instant(2021, 4, "2021-12-31", 5),
			factstest.Instant(2022, 4, "2022-12-31", 6)).
		Bag()
	req := resolve.Stock("USD", date("2022-12-31"))
	short, long := resolve.Prefer("ShortTermBorrowings"), resolve.Prefer("LongTermDebt")

	guarded := resolve.Eval(bag, resolve.Total(resolve.Prefer("DebtLongtermAndShorttermCombinedAmount"), []resolve.Spec{short, long}, 0), req)
	require.NotNil(t, guarded.Yearly)
	assert.Equal(t, []int{2021, 2022}, guarded.Yearly.Years)
	assert.Equal(t, []float64{115, 126}, guarded.Yearly.Values)
	assert.Equal(t, 126.0, guarded.LatestValue())

	plain := resolve.Eval(bag, resolve.Sum(short, long), req)
	assert.Equal(t, []int{2020, 2021, 2022}, plain.Yearly.Years)
}

func TestTotalPrefersParent(t *testing.T) {
	bag := factstest.New().
		GAAP("ResearchAndDevelopmentExpense", factstest.Year(2022, 50)).
		GAAP("ResearchAndDevelopmentExpenseExcludingAcquiredInProcessCost", factstest.Year(2021, 30), factstest.Year(2022, 40)).
		GAAP("ResearchAndDevelopmentInProcess", factstest.Year(2021, 3), factstest.Year(2022, 4)).
		Bag()

	rd := resolve.Total(resolve.Prefer("ResearchAndDevelopmentExpense"), []resolve.Spec{
		resolve.Prefer("ResearchAndDevelopmentExpenseExcludingAcquiredInProcessCost"),
		resolve.Prefer("ResearchAndDevelopmentInProcess"),
	}, 0)
	li := resolve.Eval(bag, rd, resolve.Flow("USD"))
	assert.Equal(t, []int{2021, 2022}, li.Yearly.Years)
	assert.Equal(t, []float64{33, 50}, li.Yearly.Values)
	assert.Equal(t, 50.0, li.TTMValue())
}

func TestUnitAndTaxonomyWrappers(t *testing.T) {
	bag := factstest.New().
		Add(facts.TaxonomyDEI, "EntityCommonStockSharesOutstanding", "shares",
			factstest.Instant(2023, 1, "2023-04-20", 1000)).
		Add(facts.TaxonomyUSGAAP, "CommonStockSharesOutstanding", "shares",
			factstest.Instant(2022, 4, "2022-12-31", 990)).
		Bag()

	shares := resolve.InUnit("shares", resolve.Either(
		resolve.InTaxonomy(facts.TaxonomyDEI, resolve.Prefer("EntityCommonStockSharesOutstanding")),
		resolve.Prefer("CommonStockSharesOutstanding"),
	))
	li := resolve.Eval(bag, shares, resolve.Stock("USD", date("2022-12-31")))
	assert.Equal(t, 1000.0, li.LatestValue())
	assert.Equal(t, 990.0, li.Year(2022))
}

func TestEvalNilSpec(t *testing.T) {
	assert.True(t, resolve.Eval(nil, nil, resolve.Request{}).Empty())
}
