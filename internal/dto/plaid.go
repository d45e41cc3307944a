package dto

// PlaidSyncPage represents one page from Plaid /transactions/sync,
// converted to the shared transaction record grouped by Plaid account ID.
type PlaidSyncPage struct {
	Transactions map[string][]Transaction
	Cursor       string
	HasMore      bool
}

type PlaidEnvironment string

const (
	PlaidSandbox    PlaidEnvironment = "sandbox"
	PlaidProduction PlaidEnvironment = "production"
)
