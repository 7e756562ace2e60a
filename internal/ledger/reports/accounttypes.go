package reports

// Account types of the source ledger.
const (
	TypeBank         = "Bank"
	TypeAcctRec      = "AcctRec"
	TypeOthCurrAsset = "OthCurrAsset"
	TypeFixedAsset   = "FixedAsset"
	TypeOthAsset     = "OthAsset"
	TypeAcctPay      = "AcctPay"
	TypeOthCurrLiab  = "OthCurrLiab"
	TypeLongTermLiab = "LongTermLiab"
	TypeEquity       = "Equity"
	TypeIncome       = "Income"
	TypeOthIncome    = "OthIncome"
	TypeExpense      = "Expense"
	TypeCOGS         = "COGS"
	TypeOthExpense   = "OthExpense"
	TypeDeferExpense = "DeferExpense"
)

var (
	AssetTypes     = []string{TypeBank, TypeAcctRec, TypeOthCurrAsset, TypeFixedAsset, TypeOthAsset}
	LiabilityTypes = []string{TypeAcctPay, TypeOthCurrLiab, TypeLongTermLiab}
	EquityTypes    = []string{TypeEquity}
	RevenueTypes   = []string{TypeIncome, TypeOthIncome}
	ExpenseTypes   = []string{TypeExpense, TypeCOGS, TypeOthExpense, TypeDeferExpense}
)

// Categories returned by Category.
const (
	CategoryAsset     = "Asset"
	CategoryLiability = "Liability"
	CategoryEquity    = "Equity"
	CategoryRevenue   = "Revenue"
	CategoryExpense   = "Expense"
	CategoryOther     = "Other"
)

var categories = func() map[string]string {
	m := make(map[string]string)
	for cat, types := range map[string][]string{
		CategoryAsset:     AssetTypes,
		CategoryLiability: LiabilityTypes,
		CategoryEquity:    EquityTypes,
		CategoryRevenue:   RevenueTypes,
		CategoryExpense:   ExpenseTypes,
	} {
		for _, t := range types {
			m[t] = cat
		}
	}
	return m
}()

// Category maps an account type to its statement category.
func Category(accountType string) string {
	if c, ok := categories[accountType]; ok {
		return c
	}
	return CategoryOther
}

// ProfitAndLossTypes lists the account types a P&L covers.
func ProfitAndLossTypes() []string {
	return concat(RevenueTypes, ExpenseTypes)
}

// BalanceSheetTypes lists the account types a balance sheet covers.
func BalanceSheetTypes() []string {
	return concat(AssetTypes, LiabilityTypes, EquityTypes)
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
