// Package validation computes data-quality counts over an unfiltered store.
package validation

import (
	"fmt"

	"github.com/odyssey-erp/glreport/internal/ledger/store"
)

// Result holds the referential and posting counts of a dataset.
type Result struct {
	NullAccounts        int `json:"null_accounts"`
	MissingSubsidiaries int `json:"missing_subsidiaries"`
	NonPostingCount     int `json:"nonposting_count"`
	TotalTransactions   int `json:"total_transactions"`
	PostingTransactions int `json:"posting_transactions"`
}

// Run counts accounting lines without a matching account, transaction lines
// without a matching subsidiary, and distinct posting/non-posting headers.
func Run(st *store.Store) Result {
	var r Result
	for _, al := range st.AccountingLines() {
		if len(st.AccountsByID(al.Account)) == 0 {
			r.NullAccounts++
		}
	}
	for _, tl := range st.TransactionLines() {
		if len(st.SubsidiariesByID(tl.Subsidiary)) == 0 {
			r.MissingSubsidiaries++
		}
	}
	all := make(map[int64]struct{})
	posting := make(map[int64]struct{})
	nonPosting := make(map[int64]struct{})
	for _, h := range st.Transactions() {
		all[h.ID] = struct{}{}
		if h.NonPosting {
			nonPosting[h.ID] = struct{}{}
		} else {
			posting[h.ID] = struct{}{}
		}
	}
	r.TotalTransactions = len(all)
	r.PostingTransactions = len(posting)
	r.NonPostingCount = len(nonPosting)
	return r
}

// HasReferentialGaps reports whether any account or subsidiary reference is
// unresolved.
func (r Result) HasReferentialGaps() bool {
	return r.NullAccounts > 0 || r.MissingSubsidiaries > 0
}

// Warnings renders the counts that need a reader's attention.
func (r Result) Warnings() []string {
	var out []string
	if r.NullAccounts > 0 {
		out = append(out, fmt.Sprintf("%d accounting lines have missing account references", r.NullAccounts))
	}
	if r.MissingSubsidiaries > 0 {
		out = append(out, fmt.Sprintf("%d lines have missing subsidiary references", r.MissingSubsidiaries))
	}
	return out
}
