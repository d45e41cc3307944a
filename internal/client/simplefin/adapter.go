// Package simplefinclient wraps the SimpleFin Bridge protocol: a one-shot
// claim exchange and a single Basic-auth /accounts endpoint that returns
// every account with its transactions.
package simplefinclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashstate/backend/internal/dto"
	"github.com/cashstate/backend/internal/errs"
)

const (
	serviceName     = "simplefin"
	defaultName     = "Unknown Account"
	defaultCurrency = "USD"
)

type Adapter struct {
	httpClient *http.Client
}

func NewAdapter(httpClient *http.Client) *Adapter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Adapter{httpClient: httpClient}
}

// DecodeSetupToken decodes a base64 setup token into its claim URL.
func DecodeSetupToken(setupToken string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(setupToken))
	if err != nil {
		return "", errs.NewValidationError("setup token is not valid base64")
	}
	return string(raw), nil
}

// ValidateAccessURL reports whether an access URL carries everything a
// fetch needs: scheme, host, and embedded credentials.
func ValidateAccessURL(accessURL string) bool {
	u, err := url.Parse(accessURL)
	if err != nil {
		return false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	if u.Host == "" || u.User == nil {
		return false
	}
	if _, hasPassword := u.User.Password(); !hasPassword || u.User.Username() == "" {
		return false
	}
	return true
}

// ClaimAccessURL exchanges a setup token for a long-lived access URL.
// The claim URL accepts exactly one POST; the response body is the URL.
func (a *Adapter) ClaimAccessURL(ctx context.Context, setupToken string) (string, error) {
	claimURL, err := DecodeSetupToken(setupToken)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, strings.NewReader(""))
	if err != nil {
		return "", errs.NewValidationError("invalid claim URL: " + err.Error())
	}
	// SimpleFin requires an explicit zero Content-Length on the claim POST.
	req.Header.Set("Content-Length", "0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", errs.NewExternalServiceError(serviceName, "claim request failed: "+err.Error(), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.NewExternalServiceError(serviceName, "reading claim response failed: "+err.Error(), 0)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errs.NewExternalServiceError(serviceName,
			fmt.Sprintf("claim returned %s", resp.Status), resp.StatusCode)
	}

	return strings.TrimSpace(string(body)), nil
}

// FetchAccounts retrieves all accounts and their transactions. startDate is
// Unix seconds; when non-nil it bounds the transaction window upstream.
func (a *Adapter) FetchAccounts(ctx context.Context, accessURL string, startDate *int64) (dto.AccountSet, error) {
	var set dto.AccountSet

	base, authHeader, err := splitAccessURL(accessURL)
	if err != nil {
		return set, err
	}

	target := base + "/accounts"
	if startDate != nil {
		target += fmt.Sprintf("?start-date=%d", *startDate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return set, errs.NewValidationError("invalid accounts URL: " + err.Error())
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return set, errs.NewExternalServiceError(serviceName, "accounts request failed: "+err.Error(), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return set, errs.NewExternalServiceError(serviceName,
			fmt.Sprintf("accounts endpoint returned %s", resp.Status), resp.StatusCode)
	}

	var wire accountsResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return set, errs.NewParseError("malformed accounts response: " + err.Error())
	}

	return convertAccountSet(wire), nil
}

// splitAccessURL derives the credential-free base URL and the Basic auth
// header from an access URL with embedded credentials.
func splitAccessURL(accessURL string) (base, authHeader string, err error) {
	u, err := url.Parse(accessURL)
	if err != nil || u.User == nil {
		return "", "", errs.NewValidationError("access URL is missing embedded credentials")
	}
	password, _ := u.User.Password()
	creds := base64.StdEncoding.EncodeToString([]byte(u.User.Username() + ":" + password))

	stripped := *u
	stripped.User = nil
	return strings.TrimSuffix(stripped.String(), "/"), "Basic " + creds, nil
}

// --- wire format ---

type accountsResponse struct {
	Accounts []wireAccount `json:"accounts"`
	Errors   []string      `json:"errors"`
}

type wireAccount struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Currency         string            `json:"currency"`
	Balance          string            `json:"balance"`
	AvailableBalance string            `json:"available-balance"`
	BalanceDate      *int64            `json:"balance-date"`
	Org              *wireOrganization `json:"org"`
	Transactions     []wireTransaction `json:"transactions"`
}

type wireOrganization struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type wireTransaction struct {
	ID           string `json:"id"`
	Amount       string `json:"amount"`
	Posted       int64  `json:"posted"`
	TransactedAt *int64 `json:"transacted_at"`
	Description  string `json:"description"`
	Payee        string `json:"payee"`
	Memo         string `json:"memo"`
	Pending      *bool  `json:"pending"`
}

func convertAccountSet(wire accountsResponse) dto.AccountSet {
	set := dto.AccountSet{Errors: append([]string{}, wire.Errors...)}

	for _, wa := range wire.Accounts {
		account := dto.Account{
			ExternalID: wa.ID,
			Name:       wa.Name,
			Currency:   wa.Currency,
		}
		if account.Name == "" {
			account.Name = defaultName
		}
		if account.Currency == "" {
			account.Currency = defaultCurrency
		}
		if wa.Org != nil {
			account.Institution = wa.Org.Name
		}
		if wa.BalanceDate != nil {
			ms := *wa.BalanceDate * 1000
			account.BalanceDate = &ms
		}

		var err error
		if account.Balance, err = parseMoney(wa.Balance); err != nil {
			set.Errors = append(set.Errors, fmt.Sprintf("%s: invalid balance %q", account.Name, wa.Balance))
		}
		if account.AvailableBalance, err = parseMoney(wa.AvailableBalance); err != nil {
			set.Errors = append(set.Errors, fmt.Sprintf("%s: invalid available balance %q", account.Name, wa.AvailableBalance))
		}

		for _, wt := range wa.Transactions {
			amount, err := decimal.NewFromString(wt.Amount)
			if err != nil {
				// Drop only the offending record, keep the rest of the account.
				set.Errors = append(set.Errors, fmt.Sprintf("%s: transaction %s has invalid amount %q", account.Name, wt.ID, wt.Amount))
				continue
			}

			tx := dto.Transaction{
				ExternalID:  wt.ID,
				Amount:      amount.InexactFloat64(),
				Currency:    account.Currency,
				Posted:      wt.Posted * 1000,
				Description: wt.Description,
				Payee:       wt.Payee,
				Memo:        wt.Memo,
				Pending:     wt.Pending != nil && *wt.Pending,
			}
			if wt.TransactedAt != nil {
				ms := *wt.TransactedAt * 1000
				tx.TransactedAt = &ms
			}
			account.Transactions = append(account.Transactions, tx)
		}

		set.Accounts = append(set.Accounts, account)
	}

	return set
}

// parseMoney parses an optional monetary string. Empty means absent.
func parseMoney(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	f := d.InexactFloat64()
	return &f, nil
}
