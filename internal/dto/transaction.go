package dto

// TransactionQuery filters a transaction listing. Timestamps are Unix millis.
type TransactionQuery struct {
	AccountID *string
	Pending   *bool
	DateFrom  *int64
	DateTo    *int64
	Limit     int
	Offset    int
}
