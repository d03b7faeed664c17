package ubeu

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/events"
)

const (
	enterprisePath = "/api/v1/enterprise"
	accountsPath   = enterprisePath + "/accounts"
)

// enterpriseService implements EnterpriseService
type enterpriseService struct {
	client *Client
}

// accountPath addresses accountID, or the current account when it is empty
func accountPath(accountID, current, sub string) string {
	if accountID == "" {
		return enterprisePath + "/" + current
	}
	return accountsPath + "/" + url.PathEscape(accountID) + sub
}

// Register creates an enterprise account
func (s *enterpriseService) Register(ctx context.Context, params *RegisterEnterpriseParams) (*EnterpriseAccount, error) {
	if params == nil || params.CompanyName == "" || params.ParentDomain == "" {
		return nil, errors.New("company name and parent domain are required")
	}
	account, err := call[*EnterpriseAccount](ctx, s.client, post(enterprisePath+"/register", params))
	if err != nil {
		return nil, annotate(err, "failed to register enterprise")
	}
	return account, nil
}

// Account retrieves an enterprise account
func (s *enterpriseService) Account(ctx context.Context, accountID string) (*EnterpriseAccount, error) {
	return call[*EnterpriseAccount](ctx, s.client, get(accountPath(accountID, "account", ""), nil))
}

// UpdateAccount updates the current enterprise account
func (s *enterpriseService) UpdateAccount(ctx context.Context, updates map[string]interface{}) (*EnterpriseAccount, error) {
	return call[*EnterpriseAccount](ctx, s.client, put(enterprisePath+"/account", updates))
}

// InitiateDNSVerification requests a DNS challenge for the parent domain
func (s *enterpriseService) InitiateDNSVerification(ctx context.Context, accountID string) (*DNSVerificationChallenge, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	return call[*DNSVerificationChallenge](ctx, s.client, post(dnsPath(accountsPath, accountID, "initiate"), nil))
}

// DNSVerificationStatus returns the state of the DNS challenge
func (s *enterpriseService) DNSVerificationStatus(ctx context.Context, accountID string) (*DNSVerificationResult, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	return call[*DNSVerificationResult](ctx, s.client, get(dnsPath(accountsPath, accountID, "status"), nil))
}

// VerifyDNS checks the published challenge record
func (s *enterpriseService) VerifyDNS(ctx context.Context, accountID string) (*DNSVerificationResult, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	result, err := call[*DNSVerificationResult](ctx, s.client, post(dnsPath(accountsPath, accountID, "verify"), nil))
	if err != nil {
		return nil, annotate(err, "failed to verify enterprise domain")
	}
	if result != nil && result.Verified {
		s.client.emit(events.DomainVerified, map[string]string{"accountId": accountID})
	}
	return result, nil
}

// UsageMetrics returns tier limits against current usage
func (s *enterpriseService) UsageMetrics(ctx context.Context, accountID string) (*UsageMetrics, error) {
	return call[*UsageMetrics](ctx, s.client, get(accountPath(accountID, "usage", "/usage"), nil))
}

// NetworkSpend returns treasury-sponsored network fees
func (s *enterpriseService) NetworkSpend(ctx context.Context, accountID string) (*NetworkSpend, error) {
	return call[*NetworkSpend](ctx, s.client, get(accountPath(accountID, "spend", "/spend"), nil))
}

// UpgradeTier requests a tier change
func (s *enterpriseService) UpgradeTier(ctx context.Context, tier string) (*TierUpgrade, error) {
	return call[*TierUpgrade](ctx, s.client, post(enterprisePath+"/upgrade", map[string]string{"tier": tier}))
}

// RegenerateAPIKey replaces the account API key
func (s *enterpriseService) RegenerateAPIKey(ctx context.Context, accountID string) (*APIKey, error) {
	return call[*APIKey](ctx, s.client, post(accountPath(accountID, "api-key", "/api-key"), nil))
}

// BillingHistory lists invoices
func (s *enterpriseService) BillingHistory(ctx context.Context, accountID string, filter *BillingFilter) ([]*Invoice, error) {
	var q url.Values
	if filter != nil {
		q = queryOf("fromDate", filter.FromDate, "toDate", filter.ToDate, "status", filter.Status)
		if filter.Limit > 0 {
			q.Set("limit", strconv.Itoa(filter.Limit))
		}
	}
	return call[[]*Invoice](ctx, s.client, get(accountPath(accountID, "billing", "/billing"), q))
}

// Analytics returns account analytics for a time range
func (s *enterpriseService) Analytics(ctx context.Context, accountID, timeRange string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(accountPath(accountID, "analytics", "/analytics"), queryOf("timeRange", timeRange)))
}

// Suspend suspends an account
func (s *enterpriseService) Suspend(ctx context.Context, accountID, reason string) (*AccountStatusChange, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	return call[*AccountStatusChange](ctx, s.client, post(accountsPath+"/"+url.PathEscape(accountID)+"/suspend", body))
}

// Reactivate reactivates a suspended account
func (s *enterpriseService) Reactivate(ctx context.Context, accountID string) (*AccountStatusChange, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	return call[*AccountStatusChange](ctx, s.client, post(accountsPath+"/"+url.PathEscape(accountID)+"/reactivate", nil))
}

// Delete permanently deletes an account
func (s *enterpriseService) Delete(ctx context.Context, accountID, confirmation string) (*AccountStatusChange, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	return call[*AccountStatusChange](ctx, s.client, del(accountsPath+"/"+url.PathEscape(accountID), map[string]string{
		"confirmation": confirmation,
	}))
}
