package query

import (
	"github.com/shopspring/decimal"
)

// AccountTotal is the rounded sum of base rows sharing subsidiary, account
// name and account type.
type AccountTotal struct {
	SubsidiaryName string
	AccountName    string
	AccountType    string
	Total          decimal.Decimal
}

type accountKey struct {
	subsidiary, account, accountType string
}

// SumByAccount groups rows by (subsidiary, account, type). When keep is not
// nil only rows whose account type it accepts are summed. Groups are
// returned in first-seen order.
func SumByAccount(rows []BaseRow, keep func(accountType string) bool) []AccountTotal {
	index := make(map[accountKey]int)
	var out []AccountTotal
	for _, r := range rows {
		if keep != nil && !keep(r.AccountType) {
			continue
		}
		k := accountKey{r.SubsidiaryName, r.AccountName, r.AccountType}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, AccountTotal{SubsidiaryName: k.subsidiary, AccountName: k.account, AccountType: k.accountType})
		}
		out[i].Total = out[i].Total.Add(r.Amount)
	}
	for i := range out {
		out[i].Total = Round(out[i].Total)
	}
	return out
}

// Round rounds half away from zero to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TypeIn returns a matcher accepting exactly the given account types.
func TypeIn(types ...string) func(string) bool {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(t string) bool {
		_, ok := set[t]
		return ok
	}
}
