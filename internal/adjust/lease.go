package adjust

import (
	"math"

	"github.com/seenimoa/intrinsic/internal/lineitems"
)

const (
	initialICR         = 12.5
	maxLeaseIterations = 50
)

// SpreadTable maps an interest-coverage ratio to a credit spread.
type SpreadTable interface {
	Spread(icr float64) float64
	TargetSpread(current float64) float64
}

// LeaseInput is the operating-lease disclosure plus what the coverage
// ratio needs.
type LeaseInput struct {
	Expense float64
	Due     [lineitems.LeaseBuckets]float64
	After5  float64

	EBIT     float64
	Interest float64

	RiskFree      float64
	CountrySpread float64
	TaxRate       float64
}

// LeaseDebt is the result of converting operating leases to debt. The
// scalar fields describe the current year; the history slices are aligned
// with the revenue history passed to DebtizeLeases.
type LeaseDebt struct {
	Debt           float64
	Depreciation   float64
	Interest       float64
	EBITAdjustment float64
	TaxBenefit     float64

	ICR        float64
	Spread     float64
	CostOfDebt float64
	Iterations int
	Cycled     bool

	DebtHistory           []float64
	EBITAdjustmentHistory []float64
	TaxBenefitHistory     []float64
}

// DebtizeLeases solves for the synthetic credit spread by fixed-point
// iteration on the interest-coverage ratio, starting from 12.5. The loop
// halts when the spread repeats, when a spread seen earlier comes back, or
// after a bounded number of rounds. Without leases it still yields the
// spread implied by plain EBIT over interest.
func DebtizeLeases(in LeaseInput, table SpreadTable, revenue []float64) LeaseDebt {
	payments := leasePayments(in.Due, in.After5)
	lastPayment := 0
	for i, p := range payments {
		if p != 0 {
			lastPayment = i + 1
		}
	}

	var res LeaseDebt
	res.ICR = initialICR
	spread := table.Spread(res.ICR)
	visited := map[float64]bool{spread: true}

	for i := 0; i < maxLeaseIterations; i++ {
		res.Iterations = i + 1
		res.Spread = spread
		res.CostOfDebt = in.RiskFree + in.CountrySpread + spread

		res.Debt, res.Depreciation, res.EBITAdjustment, res.Interest = 0, 0, 0, 0
		if lastPayment > 0 {
			res.Debt = presentValue(payments, res.CostOfDebt)
			res.Depreciation = res.Debt / float64(lastPayment)
			res.EBITAdjustment = in.Expense - res.Depreciation
			res.Interest = in.Expense * (1 - 1/(1+res.CostOfDebt))
		}

		res.ICR = coverage(in.EBIT+res.EBITAdjustment, in.Interest+res.Interest)
		next := table.Spread(res.ICR)
		if next == spread {
			break
		}
		if visited[next] {
			res.Cycled = true
			break
		}
		visited[next] = true
		spread = next
	}
	res.TaxBenefit = res.EBITAdjustment * in.TaxRate

	res.DebtHistory = backcastWith(revenue, res.Debt)
	res.EBITAdjustmentHistory = backcastWith(revenue, res.EBITAdjustment)
	res.TaxBenefitHistory = backcastWith(revenue, res.TaxBenefit)
	return res
}

// leasePayments lays out the yearly payments. The after-year-five lump is
// spread evenly over as many years as the average early payment implies.
func leasePayments(due [lineitems.LeaseBuckets]float64, after5 float64) []float64 {
	payments := append([]float64(nil), due[:]...)
	if after5 <= 0 {
		return payments
	}
	var total float64
	var count int
	for _, p := range due {
		if p > 0 {
			total += p
			count++
		}
	}
	years := 1
	if count > 0 {
		years = int(math.Round(after5 / (total / float64(count))))
		if years < 1 {
			years = 1
		}
	}
	for i := 0; i < years; i++ {
		payments = append(payments, after5/float64(years))
	}
	return payments
}

func presentValue(payments []float64, rate float64) float64 {
	pv := 0.0
	for i, p := range payments {
		pv += p / math.Pow(1+rate, float64(i+1))
	}
	return pv
}

func coverage(ebit, interest float64) float64 {
	if interest > 0 {
		return ebit / interest
	}
	if ebit > 0 {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// backcastWith scales current back through history in proportion to
// revenue. The result is aligned with revenue.
func backcastWith(revenue []float64, current float64) []float64 {
	if len(revenue) == 0 {
		return nil
	}
	out := make([]float64, len(revenue))
	out[len(out)-1] = current
	for j := len(out) - 2; j >= 0; j-- {
		if revenue[j+1] > 0 {
			out[j] = out[j+1] * revenue[j] / revenue[j+1]
		}
	}
	return out
}
