package lineitems

import (
	"github.com/seenimoa/intrinsic/internal/facts"
	r "github.com/seenimoa/intrinsic/internal/resolve"
)

// Concept hierarchies. Order inside a Prefer list is the preference order;
// Total children are only summed for years the parent does not report.

var revenue = r.Prefer(
	"Revenues",
	"RevenueFromContractWithCustomerExcludingAssessedTax",
	"RevenueFromContractWithCustomerIncludingAssessedTax",
	"SalesRevenueNet",
	"SalesRevenueGoodsNet",
	"SalesRevenueServicesNet",
	"RevenuesNetOfInterestExpense",
	"RegulatedAndUnregulatedOperatingRevenue",
)

var interestExpense = r.Prefer(
	"InterestExpense",
	"InterestExpenseNonoperating",
	"InterestExpenseDebt",
	"InterestAndDebtExpense",
	"InterestPaidNet",
	"InterestPaid",
)

var ebit = r.Total(
	r.Prefer("OperatingIncomeLoss"),
	[]r.Spec{
		r.Prefer(
			"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
			"IncomeLossFromContinuingOperationsBeforeIncomeTaxesMinorityInterestAndIncomeLossFromEquityMethodInvestments",
			"IncomeLossFromContinuingOperationsBeforeIncomeTaxesDomestic",
		),
		interestExpense,
	},
	0,
)

var netIncome = r.Prefer(
	"NetIncomeLoss",
	"NetIncomeLossAvailableToCommonStockholdersBasic",
	"ProfitLoss",
	"IncomeLossFromContinuingOperations",
)

var rd = r.Total(
	r.Prefer("ResearchAndDevelopmentExpense"),
	[]r.Spec{
		r.Prefer("ResearchAndDevelopmentExpenseExcludingAcquiredInProcessCost"),
		r.Prefer("ResearchAndDevelopmentInProcess"),
	},
	0,
)

var dividends = r.Prefer(
	"PaymentsOfDividendsCommonStock",
	"PaymentsOfDividends",
	"DividendsCommonStockCash",
	"DividendsCommonStock",
	"DividendsCash",
)

var capex = r.Prefer(
	"PaymentsToAcquirePropertyPlantAndEquipment",
	"PaymentsToAcquireProductiveAssets",
	"PaymentsForCapitalImprovements",
	"PaymentsToAcquireOtherPropertyPlantAndEquipment",
)

var amortization = r.Sum(
	r.Prefer("AmortizationOfFinancingCosts", "AmortizationOfDebtDiscountPremium"),
	r.Prefer("AmortizationOfDeferredCharges"),
	r.Prefer("AmortizationOfDeferredSalesCommissions"),
	r.Prefer("AmortizationOfIntangibleAssets"),
)

var depreciation = r.Total(
	r.Prefer(
		"DepreciationDepletionAndAmortization",
		"DepreciationAmortizationAndAccretionNet",
		"DepreciationAndAmortization",
	),
	[]r.Spec{
		r.Prefer("Depreciation", "DepreciationNonproduction", "DepreciationDepletionAndAmortizationPropertyPlantAndEquipment"),
		amortization,
	},
	0,
)

var sbc = r.Prefer(
	"ShareBasedCompensation",
	"AllocatedShareBasedCompensationExpense",
)

var sbcUnvested = r.Prefer(
	"EmployeeServiceShareBasedCompensationNonvestedAwardsTotalCompensationCostNotYetRecognized",
	"EmployeeServiceShareBasedCompensationNonvestedAwardsTotalCompensationCostNotYetRecognizedShareBasedAwardsOtherThanOptions",
)

var cash = r.Total(
	r.Prefer("CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents"),
	[]r.Spec{
		r.Prefer("CashAndCashEquivalentsAtCarryingValue", "CashAndDueFromBanks", "Cash"),
		r.Prefer("RestrictedCashAndCashEquivalentsAtCarryingValue", "RestrictedCashCurrent", "RestrictedCash"),
	},
	0,
)

var securities = r.Prefer(
	"MarketableSecuritiesCurrent",
	"AvailableForSaleSecuritiesDebtSecuritiesCurrent",
	"ShortTermInvestments",
	"AvailableForSaleSecuritiesCurrent",
	"HeldToMaturitySecuritiesCurrent",
	"TradingSecuritiesCurrent",
)

var inventory = r.Prefer(
	"InventoryNet",
	"InventoryFinishedGoodsNetOfReserves",
	"InventoryGross",
	"RetailRelatedInventoryMerchandise",
)

var receivables = r.Prefer(
	"AccountsReceivableNetCurrent",
	"ReceivablesNetCurrent",
	"AccountsNotesAndLoansReceivableNetCurrent",
	"AccountsReceivableGrossCurrent",
)

var otherAssets = r.Prefer(
	"OtherAssetsCurrent",
	"PrepaidExpenseAndOtherAssetsCurrent",
	"PrepaidExpenseCurrent",
)

var ppe = r.Prefer(
	"PropertyPlantAndEquipmentNet",
	"PropertyPlantAndEquipmentAndFinanceLeaseRightOfUseAssetAfterAccumulatedDepreciationAndAmortization",
	"PropertyPlantAndEquipmentGross",
)

var investmentProperty = r.Prefer(
	"RealEstateInvestmentPropertyNet",
	"RealEstateInvestmentPropertyAtCost",
)

var equityInvestments = r.Prefer(
	"EquityMethodInvestments",
	"LongTermInvestments",
	"MarketableSecuritiesNoncurrent",
	"EquitySecuritiesFvNi",
)

var shortTermDebt = r.Total(
	r.Prefer("ShortTermBorrowings", "ShortTermBankLoansAndNotesPayable", "DebtCurrent"),
	[]r.Spec{
		r.Prefer("CommercialPaper"),
		r.Prefer("BankOverdrafts"),
		r.Prefer("LinesOfCreditCurrent"),
		r.Prefer("NotesPayableCurrent", "NotesPayableToBankCurrent"),
		r.Prefer("ConvertibleNotesPayableCurrent", "ConvertibleDebtCurrent"),
		r.Prefer("SecuredDebtCurrent"),
		r.Prefer("UnsecuredDebtCurrent"),
		r.Prefer("OtherShortTermBorrowings"),
	},
)

var longTermDebtNoncurrent = r.Total(
	r.Prefer("LongTermDebtNoncurrent"),
	[]r.Spec{
		r.Prefer("ConvertibleLongTermNotesPayable", "ConvertibleDebtNoncurrent"),
		r.Prefer("SecuredLongTermDebt"),
		r.Prefer("UnsecuredLongTermDebt"),
		r.Prefer("LongTermLineOfCredit"),
		r.Prefer("LongTermNotesPayable", "NotesPayableNoncurrent"),
		r.Prefer("SeniorLongTermNotes"),
		r.Prefer("OtherLongTermDebtNoncurrent"),
	},
)

var longTermDebt = r.Total(
	r.Prefer("LongTermDebt"),
	[]r.Spec{
		longTermDebtNoncurrent,
		r.Prefer("LongTermDebtCurrent"),
	},
	0,
)

var debt = r.Total(
	r.Prefer("DebtLongtermAndShorttermCombinedAmount"),
	[]r.Spec{shortTermDebt, longTermDebt},
	0,
)

var liabilities = r.Total(
	r.Prefer("Liabilities"),
	[]r.Spec{
		r.Prefer("LiabilitiesCurrent"),
		r.Prefer("LiabilitiesNoncurrent"),
	},
	0, 1,
)

var accountPayable = r.Prefer(
	"AccountsPayableCurrent",
	"AccountsPayableTradeCurrent",
	"AccountsPayableAndAccruedLiabilitiesCurrent",
)

var dueToAffiliates = r.Total(
	r.Prefer("DueToAffiliateCurrentAndNoncurrent"),
	[]r.Spec{
		r.Prefer("DueToAffiliateCurrent"),
		r.Prefer("DueToAffiliateNoncurrent"),
	},
)

var dueToRelatedParties = r.Total(
	r.Prefer("DueToRelatedPartiesCurrentAndNoncurrent"),
	[]r.Spec{
		r.Prefer("DueToRelatedPartiesCurrent"),
		r.Prefer("DueToRelatedPartiesNoncurrent"),
	},
)

var equity = r.Prefer(
	"StockholdersEquity",
	"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
	"CommonStockholdersEquity",
)

var minorityInterest = r.Prefer(
	"MinorityInterest",
	"RedeemableNoncontrollingInterestEquityCarryingAmount",
)

var taxBenefits = r.Total(
	r.Prefer("DeferredTaxAssetsOperatingLossCarryforwards"),
	[]r.Spec{
		r.Prefer("DeferredTaxAssetsOperatingLossCarryforwardsDomestic"),
		r.Prefer("DeferredTaxAssetsOperatingLossCarryforwardsForeign"),
		r.Prefer("DeferredTaxAssetsOperatingLossCarryforwardsStateAndLocal"),
	},
)

var shares = r.InUnit("shares", r.Either(
	r.InTaxonomy(facts.TaxonomyDEI, r.Prefer("EntityCommonStockSharesOutstanding")),
	r.Prefer(
		"CommonStockSharesOutstanding",
		"WeightedAverageNumberOfDilutedSharesOutstanding",
		"WeightedAverageNumberOfSharesOutstandingBasic",
	),
))

// Operating leases: current-year cost, five yearly maturities and the
// remainder. ASC 842 concepts first, ASC 840 disclosures as fallback.

var leaseExpense = r.Prefer(
	"OperatingLeaseCost",
	"OperatingLeaseExpense",
	"OperatingLeasesRentExpenseNet",
	"LeaseAndRentalExpense",
)

var leaseDue = [...]r.Spec{
	r.Prefer("LesseeOperatingLeaseLiabilityPaymentsDueNextTwelveMonths", "OperatingLeasesFutureMinimumPaymentsDueCurrent"),
	r.Prefer("LesseeOperatingLeaseLiabilityPaymentsDueYearTwo", "OperatingLeasesFutureMinimumPaymentsDueInTwoYears"),
	r.Prefer("LesseeOperatingLeaseLiabilityPaymentsDueYearThree", "OperatingLeasesFutureMinimumPaymentsDueInThreeYears"),
	r.Prefer("LesseeOperatingLeaseLiabilityPaymentsDueYearFour", "OperatingLeasesFutureMinimumPaymentsDueInFourYears"),
	r.Prefer("LesseeOperatingLeaseLiabilityPaymentsDueYearFive", "OperatingLeasesFutureMinimumPaymentsDueInFiveYears"),
}

var leaseAfter5 = r.Prefer(
	"LesseeOperatingLeaseLiabilityPaymentsDueAfterYearFive",
	"OperatingLeasesFutureMinimumPaymentsDueThereafter",
)
