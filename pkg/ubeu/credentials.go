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
	credentialPath  = "/api/v1/credential"
	credentialsPath = "/api/v1/credentials"
)

// credentialService implements CredentialService
type credentialService struct {
	client *Client
}

// Issue issues a credential
func (s *credentialService) Issue(ctx context.Context, params *IssueCredentialParams) (*VerifiableCredential, error) {
	if params == nil || len(params.Type) == 0 {
		return nil, errors.New("credential type is required")
	}
	if params.SubjectID == "" {
		return nil, errors.New("credential subject is required")
	}

	vc, err := call[*VerifiableCredential](ctx, s.client, post(credentialsPath+"/issue", params))
	if err != nil {
		return nil, annotate(err, "failed to issue credential")
	}

	s.client.emit(events.CredentialIssued, vc)
	return vc, nil
}

// BulkIssue issues several credentials in one call
func (s *credentialService) BulkIssue(ctx context.Context, credentials []*IssueCredentialParams) (*BulkIssueResult, error) {
	if len(credentials) == 0 {
		return nil, errors.New("at least one credential is required")
	}
	return call[*BulkIssueResult](ctx, s.client, post(credentialsPath+"/bulk-issue", map[string]interface{}{
		"credentials": credentials,
	}))
}

// IssueFromTemplate issues a credential from an issuer template
func (s *credentialService) IssueFromTemplate(ctx context.Context, templateID, recipientID string, customData map[string]interface{}) (*VerifiableCredential, error) {
	body := map[string]interface{}{
		"templateId":  templateID,
		"recipientId": recipientID,
	}
	if customData != nil {
		body["customData"] = customData
	}

	vc, err := call[*VerifiableCredential](ctx, s.client, post(credentialsPath+"/issue-template", body))
	if err != nil {
		return nil, annotate(err, "failed to issue credential from template")
	}

	s.client.emit(events.CredentialIssued, vc)
	return vc, nil
}

// Verify checks a credential
func (s *credentialService) Verify(ctx context.Context, credentialID string) (bool, error) {
	if credentialID == "" {
		return false, errors.New("credential ID is required")
	}

	result, err := call[struct {
		Valid bool `json:"valid"`
	}](ctx, s.client, post(credentialPath+"/verify", map[string]string{
		"credentialId": credentialID,
	}))
	if err != nil {
		return false, annotate(err, "failed to verify credential %s", credentialID)
	}

	s.client.emit(events.CredentialVerified, map[string]interface{}{
		"credentialId": credentialID,
		"valid":        result.Valid,
	})
	return result.Valid, nil
}

// Get retrieves a single credential by ID
func (s *credentialService) Get(ctx context.Context, credentialID string) (*VerifiableCredential, error) {
	if credentialID == "" {
		return nil, errors.New("credential ID is required")
	}
	vc, err := call[*VerifiableCredential](ctx, s.client, get(credentialPath+"/"+url.PathEscape(credentialID), nil))
	if err != nil {
		return nil, annotate(err, "failed to get credential %s", credentialID)
	}
	return vc, nil
}

// List lists credentials
func (s *credentialService) List(ctx context.Context, filter *CredentialFilter) ([]*VerifiableCredential, error) {
	return call[[]*VerifiableCredential](ctx, s.client, get(credentialsPath, filter.query()))
}

// Revoke revokes a credential
func (s *credentialService) Revoke(ctx context.Context, credentialID, reason string) error {
	body := map[string]string{"credentialId": credentialID}
	if reason != "" {
		body["reason"] = reason
	}
	_, err := call[json.RawMessage](ctx, s.client, post(credentialPath+"/revoke", body))
	return err
}

// UpdateStatus sets the status of a credential
func (s *credentialService) UpdateStatus(ctx context.Context, credentialID, status string) error {
	_, err := call[json.RawMessage](ctx, s.client, put(credentialPath+"/"+url.PathEscape(credentialID)+"/status", map[string]string{
		"status": status,
	}))
	return err
}

// Offers lists credential offers
func (s *credentialService) Offers(ctx context.Context, filter *CredentialFilter) ([]*CredentialOffer, error) {
	return call[[]*CredentialOffer](ctx, s.client, get(credentialPath+"/offers", filter.query()))
}

// AcceptOffer accepts an offer into a DID
func (s *credentialService) AcceptOffer(ctx context.Context, offerID, targetDID string) (*VerifiableCredential, error) {
	body := map[string]string{"offerId": offerID}
	if targetDID != "" {
		body["targetDid"] = targetDID
	}
	return call[*VerifiableCredential](ctx, s.client, post(credentialPath+"/offer/accept", body))
}

// DeclineOffer declines an offer
func (s *credentialService) DeclineOffer(ctx context.Context, offerID, reason string) error {
	body := map[string]string{"offerId": offerID}
	if reason != "" {
		body["reason"] = reason
	}
	_, err := call[json.RawMessage](ctx, s.client, post(credentialPath+"/offer/decline", body))
	return err
}

// ReassignOffer moves an offer to another DID
func (s *credentialService) ReassignOffer(ctx context.Context, offerID, newTargetDID string) (*CredentialOffer, error) {
	return call[*CredentialOffer](ctx, s.client, post(credentialPath+"/offer/reassign", map[string]string{
		"offerId":      offerID,
		"newTargetDid": newTargetDID,
	}))
}

// CreateSchema creates a credential schema
func (s *credentialService) CreateSchema(ctx context.Context, schema *CredentialSchema) (*CredentialSchema, error) {
	return call[*CredentialSchema](ctx, s.client, post(credentialPath+"/schema", schema))
}

// GetSchema retrieves a credential schema
func (s *credentialService) GetSchema(ctx context.Context, schemaID string) (*CredentialSchema, error) {
	return call[*CredentialSchema](ctx, s.client, get(credentialPath+"/schema/"+url.PathEscape(schemaID), nil))
}

// UpdateSchema updates a credential schema
func (s *credentialService) UpdateSchema(ctx context.Context, schemaID string, updates map[string]interface{}) (*CredentialSchema, error) {
	return call[*CredentialSchema](ctx, s.client, put(credentialPath+"/schema/"+url.PathEscape(schemaID), updates))
}

// DeleteSchema deletes a credential schema
func (s *credentialService) DeleteSchema(ctx context.Context, schemaID string) error {
	_, err := call[json.RawMessage](ctx, s.client, del(credentialPath+"/schema/"+url.PathEscape(schemaID), nil))
	return err
}

// ListSchemas lists credential schemas
func (s *credentialService) ListSchemas(ctx context.Context) ([]*CredentialSchema, error) {
	return call[[]*CredentialSchema](ctx, s.client, get(credentialPath+"/schemas", nil))
}

// Search finds credentials
func (s *credentialService) Search(ctx context.Context, params *CredentialSearchParams) (*PaginatedResponse[*VerifiableCredential], error) {
	if params == nil {
		params = &CredentialSearchParams{}
	}
	return callPage[*VerifiableCredential](ctx, s.client, post(credentialPath+"/search", params))
}

// Statistics returns credential statistics for a time range
func (s *credentialService) Statistics(ctx context.Context, timeRange string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(credentialPath+"/statistics", queryOf("timeRange", timeRange)))
}

// Export exports the credentials of a user
func (s *credentialService) Export(ctx context.Context, userID, format string) (string, error) {
	data, err := call[string](ctx, s.client, get(credentialPath+"/export", queryOf("userId", userID, "format", format)))
	if err != nil {
		return "", annotate(err, "failed to export credentials")
	}

	s.client.emit(events.ExportCompleted, map[string]interface{}{
		"userId": userID,
		"format": format,
		"size":   len(data),
	})
	return data, nil
}

// Import imports credentials
func (s *credentialService) Import(ctx context.Context, data, format string) (json.RawMessage, error) {
	body := map[string]string{"data": data}
	if format != "" {
		body["format"] = format
	}
	result, err := call[json.RawMessage](ctx, s.client, post(credentialPath+"/import", body))
	if err != nil {
		return nil, annotate(err, "failed to import credentials")
	}

	s.client.emit(events.ImportCompleted, result)
	return result, nil
}

// Types lists the supported credential types
func (s *credentialService) Types(ctx context.Context) ([]string, error) {
	return call[[]string](ctx, s.client, get(credentialPath+"/types", nil))
}

// Validate checks a credential against its schema
func (s *credentialService) Validate(ctx context.Context, credential map[string]interface{}, schemaID string) (*ValidationResult, error) {
	body := map[string]interface{}{"credential": credential}
	if schemaID != "" {
		body["schemaId"] = schemaID
	}
	return call[*ValidationResult](ctx, s.client, post(credentialPath+"/validate", body))
}

// Proof retrieves the proof of a credential
func (s *credentialService) Proof(ctx context.Context, credentialID string) (*Proof, error) {
	return call[*Proof](ctx, s.client, get(credentialPath+"/"+url.PathEscape(credentialID)+"/proof", nil))
}

// VerifyProof checks the proof of a credential
func (s *credentialService) VerifyProof(ctx context.Context, credentialID string) (bool, error) {
	result, err := call[struct {
		Valid bool `json:"valid"`
	}](ctx, s.client, post(credentialPath+"/"+url.PathEscape(credentialID)+"/verify-proof", nil))
	if err != nil {
		return false, err
	}
	return result.Valid, nil
}

// History returns the status history of a credential
func (s *credentialService) History(ctx context.Context, credentialID string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(credentialPath+"/"+url.PathEscape(credentialID)+"/history", nil))
}

// Share shares a credential with another DID
func (s *credentialService) Share(ctx context.Context, credentialID, recipientDID string, permissions []string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, post(credentialPath+"/share", map[string]interface{}{
		"credentialId": credentialID,
		"recipientDid": recipientDID,
		"permissions":  permissions,
	}))
}

// Shared lists the credentials shared with a user
func (s *credentialService) Shared(ctx context.Context, userID string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(credentialPath+"/shared", queryOf("userId", userID)))
}

// RevokeSharing stops sharing a credential with a DID
func (s *credentialService) RevokeSharing(ctx context.Context, credentialID, recipientDID string) error {
	_, err := call[json.RawMessage](ctx, s.client, post(credentialPath+"/revoke-sharing", map[string]string{
		"credentialId": credentialID,
		"recipientDid": recipientDID,
	}))
	return err
}

func (f *CredentialFilter) query() url.Values {
	if f == nil {
		return nil
	}
	return queryOf("userId", f.UserID, "status", f.Status)
}

// pageQuery adds limit and offset when positive
func pageQuery(q url.Values, limit, offset int) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}
