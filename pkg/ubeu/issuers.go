package ubeu

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/events"
)

const issuersPath = "/api/v1/issuers"

// issuerService implements IssuerService
type issuerService struct {
	client *Client
}

// Register registers the current user as an issuer
func (s *issuerService) Register(ctx context.Context, params *RegisterIssuerParams) (*IssuerProfile, error) {
	if params == nil || params.Name == "" {
		return nil, errors.New("issuer name is required")
	}
	profile, err := call[*IssuerProfile](ctx, s.client, post(issuersPath+"/register", params))
	if err != nil {
		return nil, annotate(err, "failed to register issuer")
	}
	return profile, nil
}

// InitiateDNSVerification requests a DNS challenge for the issuer domain
func (s *issuerService) InitiateDNSVerification(ctx context.Context, issuerID string) (*DNSVerificationChallenge, error) {
	if issuerID == "" {
		return nil, errors.New("issuer ID is required")
	}
	return call[*DNSVerificationChallenge](ctx, s.client, post(dnsPath(issuersPath, issuerID, "initiate"), nil))
}

// VerifyDNS checks the published challenge record
func (s *issuerService) VerifyDNS(ctx context.Context, issuerID string) (*DNSVerificationResult, error) {
	if issuerID == "" {
		return nil, errors.New("issuer ID is required")
	}
	result, err := call[*DNSVerificationResult](ctx, s.client, post(dnsPath(issuersPath, issuerID, "verify"), nil))
	if err != nil {
		return nil, annotate(err, "failed to verify issuer domain")
	}
	if result != nil && result.Verified {
		s.client.emit(events.DomainVerified, map[string]string{"issuerId": issuerID})
	}
	return result, nil
}

// DNSVerificationStatus returns the state of the DNS challenge
func (s *issuerService) DNSVerificationStatus(ctx context.Context, issuerID string) (*DNSVerificationResult, error) {
	if issuerID == "" {
		return nil, errors.New("issuer ID is required")
	}
	return call[*DNSVerificationResult](ctx, s.client, get(dnsPath(issuersPath, issuerID, "status"), nil))
}

// Profile returns an issuer profile
func (s *issuerService) Profile(ctx context.Context, issuerID string) (*IssuerProfile, error) {
	path := issuersPath + "/profile"
	if issuerID != "" {
		path = issuersPath + "/" + url.PathEscape(issuerID)
	}
	return call[*IssuerProfile](ctx, s.client, get(path, nil))
}

// UpdateProfile updates the current issuer profile
func (s *issuerService) UpdateProfile(ctx context.Context, updates map[string]interface{}) (*IssuerProfile, error) {
	return call[*IssuerProfile](ctx, s.client, put(issuersPath+"/profile", updates))
}

// CreateTemplate creates an issuance template
func (s *issuerService) CreateTemplate(ctx context.Context, template *CredentialTemplate) (*CredentialTemplate, error) {
	if template == nil || template.Name == "" {
		return nil, errors.New("template name is required")
	}
	return call[*CredentialTemplate](ctx, s.client, post(issuersPath+"/templates", template))
}

// Templates lists issuance templates
func (s *issuerService) Templates(ctx context.Context) ([]*CredentialTemplate, error) {
	return call[[]*CredentialTemplate](ctx, s.client, get(issuersPath+"/templates", nil))
}

// UpdateTemplate updates an issuance template
func (s *issuerService) UpdateTemplate(ctx context.Context, templateID string, updates map[string]interface{}) (*CredentialTemplate, error) {
	return call[*CredentialTemplate](ctx, s.client, put(issuersPath+"/templates/"+url.PathEscape(templateID), updates))
}

// DeleteTemplate deletes an issuance template
func (s *issuerService) DeleteTemplate(ctx context.Context, templateID string) error {
	_, err := call[json.RawMessage](ctx, s.client, del(issuersPath+"/templates/"+url.PathEscape(templateID), nil))
	return err
}

// IssueCredential issues a credential to one recipient
func (s *issuerService) IssueCredential(ctx context.Context, recipientID string, data *CredentialData) (*VerifiableCredential, error) {
	if recipientID == "" {
		return nil, errors.New("recipient ID is required")
	}
	if data == nil {
		return nil, errors.New("credential data is required")
	}

	body := struct {
		RecipientID string `json:"recipientId"`
		*CredentialData
	}{recipientID, data}

	vc, err := call[*VerifiableCredential](ctx, s.client, post(issuersPath+"/credentials/issue", body))
	if err != nil {
		return nil, annotate(err, "failed to issue credential")
	}

	s.client.emit(events.CredentialIssued, vc)
	return vc, nil
}

// BulkIssue issues credentials to several recipients
func (s *issuerService) BulkIssue(ctx context.Context, recipients []*BulkRecipient) (*BulkIssueResult, error) {
	if len(recipients) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	return call[*BulkIssueResult](ctx, s.client, post(issuersPath+"/credentials/bulk-issue", map[string]interface{}{
		"recipients": recipients,
	}))
}

// IssuedCredentials lists the credentials issued by the current issuer
func (s *issuerService) IssuedCredentials(ctx context.Context, filter *IssuedCredentialFilter) (*PaginatedResponse[*VerifiableCredential], error) {
	var q url.Values
	if filter != nil {
		q = pageQuery(queryOf(
			"status", filter.Status,
			"recipientId", filter.RecipientID,
			"fromDate", filter.FromDate,
			"toDate", filter.ToDate,
		), filter.Limit, filter.Offset)
	}
	return callPage[*VerifiableCredential](ctx, s.client, get(issuersPath+"/credentials", q))
}

// RevokeCredential revokes an issued credential
func (s *issuerService) RevokeCredential(ctx context.Context, credentialID, reason string) error {
	body := map[string]string{"credentialId": credentialID}
	if reason != "" {
		body["reason"] = reason
	}
	_, err := call[json.RawMessage](ctx, s.client, post(issuersPath+"/credentials/revoke", body))
	return err
}

// Statistics returns issuance statistics for a time range
func (s *issuerService) Statistics(ctx context.Context, timeRange string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(issuersPath+"/statistics", queryOf("timeRange", timeRange)))
}

// NetworkSpend returns treasury-sponsored network fees
func (s *issuerService) NetworkSpend(ctx context.Context) (*NetworkSpend, error) {
	return call[*NetworkSpend](ctx, s.client, get(issuersPath+"/treasury/spend", nil))
}

// UsageLimits returns the limits of the issuer tier
func (s *issuerService) UsageLimits(ctx context.Context) (*UsageLimits, error) {
	return call[*UsageLimits](ctx, s.client, get(issuersPath+"/limits", nil))
}

// UpgradeTier requests a tier change
func (s *issuerService) UpgradeTier(ctx context.Context, tier string) (*TierUpgrade, error) {
	return call[*TierUpgrade](ctx, s.client, post(issuersPath+"/upgrade", map[string]string{"tier": tier}))
}

// VerifyRecipient checks that a recipient identity exists
func (s *issuerService) VerifyRecipient(ctx context.Context, recipientID string) (*RecipientVerification, error) {
	return call[*RecipientVerification](ctx, s.client, post(issuersPath+"/verify-recipient", map[string]string{
		"recipientId": recipientID,
	}))
}

// PublicSchemas lists the public credential schemas
func (s *issuerService) PublicSchemas(ctx context.Context) ([]*CredentialSchema, error) {
	return call[[]*CredentialSchema](ctx, s.client, get("/api/v1/schemas/public", nil))
}

// CreateSchema creates an issuer-owned schema
func (s *issuerService) CreateSchema(ctx context.Context, schema *CredentialSchema) (*CredentialSchema, error) {
	return call[*CredentialSchema](ctx, s.client, post(issuersPath+"/schemas", schema))
}

// CustomSchemas lists the issuer-owned schemas
func (s *issuerService) CustomSchemas(ctx context.Context) ([]*CredentialSchema, error) {
	return call[[]*CredentialSchema](ctx, s.client, get(issuersPath+"/schemas", nil))
}

// dnsPath builds a DNS verification endpoint below an account collection
func dnsPath(base, id, action string) string {
	return base + "/" + url.PathEscape(id) + "/dns-verification/" + action
}
