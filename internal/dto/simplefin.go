package dto

// Account is one account record parsed from a SimpleFin /accounts response.
// Timestamps are Unix millis; monetary strings have already been validated.
type Account struct {
	ExternalID       string
	Name             string
	Currency         string
	Balance          *float64
	AvailableBalance *float64
	BalanceDate      *int64
	Institution      string
	Transactions     []Transaction
}

// Transaction is one transaction record parsed from a SimpleFin response.
type Transaction struct {
	ExternalID   string
	Amount       float64
	Currency     string
	Posted       int64 // Unix millis
	TransactedAt *int64
	Description  string
	Payee        string
	Memo         string
	Pending      bool
}

// AccountSet is the result of one SimpleFin fetch. Errors carries upstream
// error messages plus record-level parse failures; a non-empty Errors list
// does not make the fetch itself a failure.
type AccountSet struct {
	Accounts []Account
	Errors   []string
}

// SetupResult is returned after a setup token exchange.
type SetupResult struct {
	ItemID      string `json:"itemId"`
	Institution string `json:"institutionName"`
}

// SyncResult is the outcome of one sync invocation.
type SyncResult struct {
	Success             bool     `json:"success"`
	SyncJobID           string   `json:"syncJobId"`
	AccountsSynced      int      `json:"accountsSynced"`
	TransactionsAdded   int      `json:"transactionsAdded"`
	TransactionsUpdated int      `json:"transactionsUpdated"`
	Errors              []string `json:"errors"`
}
