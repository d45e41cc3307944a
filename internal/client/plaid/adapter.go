package plaidclient

import (
	"context"
	"time"

	"github.com/plaid/plaid-go/v24/plaid"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
)

type Adapter struct {
	client *plaid.APIClient
}

func NewAdapter(clientID, secret string, env dto.PlaidEnvironment) *Adapter {
	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	cfg.UseEnvironment(toPlaidEnv(env))

	return &Adapter{
		client: plaid.NewAPIClient(cfg),
	}
}

func (a *Adapter) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	req := plaid.NewLinkTokenCreateRequest(
		"CashState",
		"en",
		[]plaid.CountryCode{plaid.CountryCode("US")},
		plaid.LinkTokenCreateRequestUser{ClientUserId: uid},
	)
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := a.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", errs.NewExternalServiceError("plaid", "link token create failed: "+err.Error(), 0)
	}
	return resp.GetLinkToken(), nil
}

func (a *Adapter) ExchangePublicToken(ctx context.Context, publicToken string) (itemID, accessToken string, err error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := a.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return "", "", errs.NewExternalServiceError("plaid", "public token exchange failed: "+err.Error(), 0)
	}
	return resp.GetItemId(), resp.GetAccessToken(), nil
}

// FetchAccounts lists the item's accounts as shared account records.
func (a *Adapter) FetchAccounts(ctx context.Context, accessToken string) ([]dto.Account, error) {
	req := plaid.NewAccountsGetRequest(accessToken)
	resp, _, err := a.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*req).Execute()
	if err != nil {
		return nil, errs.NewExternalServiceError("plaid", "accounts get failed: "+err.Error(), 0)
	}

	accounts := make([]dto.Account, 0, len(resp.GetAccounts()))
	for _, pa := range resp.GetAccounts() {
		balances := pa.GetBalances()
		account := dto.Account{
			ExternalID: pa.GetAccountId(),
			Name:       pa.GetName(),
			Currency:   balances.GetIsoCurrencyCode(),
		}
		if account.Name == "" {
			account.Name = "Unknown Account"
		}
		if account.Currency == "" {
			account.Currency = "USD"
		}
		if current, ok := balances.GetCurrentOk(); ok {
			v := *current
			account.Balance = &v
		}
		if available, ok := balances.GetAvailableOk(); ok {
			v := *available
			account.AvailableBalance = &v
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// SyncTransactions fetches one page of added/modified transactions,
// grouped by Plaid account ID.
func (a *Adapter) SyncTransactions(ctx context.Context, accessToken string, cursor *string) (dto.PlaidSyncPage, error) {
	req := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != nil {
		req.SetCursor(*cursor)
	}
	req.SetCount(500)

	var page dto.PlaidSyncPage

	resp, _, err := a.client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*req).Execute()
	if err != nil {
		return page, errs.NewExternalServiceError("plaid", "transactions sync failed: "+err.Error(), 0)
	}

	page.Transactions = make(map[string][]dto.Transaction)
	for _, t := range resp.GetAdded() {
		page.Transactions[t.GetAccountId()] = append(page.Transactions[t.GetAccountId()], convert(t))
	}
	for _, t := range resp.GetModified() {
		page.Transactions[t.GetAccountId()] = append(page.Transactions[t.GetAccountId()], convert(t))
	}

	page.Cursor = resp.GetNextCursor()
	page.HasMore = resp.GetHasMore()

	return page, nil
}

func convert(pt plaid.Transaction) dto.Transaction {
	tx := dto.Transaction{
		ExternalID: pt.GetTransactionId(),
		// Plaid reports outflows as positive; the store keeps signed amounts.
		Amount:      -pt.GetAmount(),
		Currency:    pt.GetIsoCurrencyCode(),
		Description: pt.GetName(),
		Payee:       pt.GetMerchantName(),
		Pending:     pt.GetPending(),
	}
	if posted, err := time.Parse("2006-01-02", pt.GetDate()); err == nil {
		tx.Posted = posted.UnixMilli()
	}
	if authorized, err := time.Parse("2006-01-02", pt.GetAuthorizedDate()); err == nil {
		ms := authorized.UnixMilli()
		tx.TransactedAt = &ms
	}
	return tx
}

func toPlaidEnv(env dto.PlaidEnvironment) plaid.Environment {
	switch env {
	case dto.PlaidSandbox:
		return plaid.Sandbox
	default:
		return plaid.Production
	}
}
