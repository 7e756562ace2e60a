package ledgertest

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleCSV holds raw exports equivalent to Sample, keyed by table name. The
// column headers deliberately mix aliases.
var SampleCSV = map[string]string{
	"account": "id,fullname,accttype\n" +
		"1,Cash,Bank\n2,Receivables,AcctRec\n3,Payables,AcctPay\n4,Equity,Equity\n" +
		"5,Sales,Income\n6,COGS,COGS\n7,Rent,Expense\n",
	"subsidiary": "subsidiary_id,subsidiary_name\n1,HQ\n2,Branch\n",
	"transaction": "id,trandate,postingperiod,posting\n" +
		"100,2024-01-10,1,T\n101,2024-02-05,2,T\n102,2024-04-01,3,F\n103,2024-01-20,1,\n",
	"transactionline": "transaction,subsidiary,department\n" +
		"100,1,10\n101,1,20\n102,2,10\n103,2,\n",
	"transactionaccountingline": "transaction,account,amount\n" +
		"100,1,1000.00\n100,5,-1000.00\n101,7,300\n101,1,-300\n" +
		"102,2,500\n102,5,-500\n103,6,200\n103,3,-200\n103,99,50\n103,4,-50\n",
	"accountingperiod": "id,periodname,fiscalyear,quarter,month\n" +
		"1,Jan 2024,2024,1,1\n2,Feb 2024,2024,1,2\n3,Apr 2024,2024,2,4\n",
}

// WriteSampleDir writes SampleCSV into a temp directory as <table>.csv and
// returns its path. Tables named in skip are left out.
func WriteSampleDir(t testing.TB, skip ...string) string {
	t.Helper()
	dir := t.TempDir()
	omit := make(map[string]bool, len(skip))
	for _, s := range skip {
		omit[s] = true
	}
	for name, body := range SampleCSV {
		if omit[name] {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name+".csv"), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
