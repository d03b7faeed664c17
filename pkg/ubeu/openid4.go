package ubeu

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"
)

// openID4Service implements OpenID4Service
type openID4Service struct {
	client *Client
}

// issuerScoped prefixes path with the issuer collection, scoped to issuerID when set
func issuerScoped(issuerID, path string) string {
	if issuerID == "" {
		return issuersPath + path
	}
	return issuersPath + "/" + url.PathEscape(issuerID) + path
}

// IssuerMetadata returns the credential issuer metadata document
func (s *openID4Service) IssuerMetadata(ctx context.Context, issuerID string) (*OpenID4VCIMetadata, error) {
	return call[*OpenID4VCIMetadata](ctx, s.client, get(issuerScoped(issuerID, "/.well-known/openid-credential-issuer"), nil))
}

// CreateCredentialOffer creates a pre-authorized or authorized credential offer
func (s *openID4Service) CreateCredentialOffer(ctx context.Context, issuerID string, params *CredentialOfferParams) (*OpenID4CredentialOffer, error) {
	if params == nil || len(params.CredentialConfigurationIDs) == 0 {
		return nil, errors.New("credential configuration IDs are required")
	}
	return call[*OpenID4CredentialOffer](ctx, s.client, post(issuerScoped(issuerID, "/credential-offer"), params))
}

// IssueCredential issues a credential for an OpenID4VCI request
func (s *openID4Service) IssueCredential(ctx context.Context, issuerID string, req *CredentialRequest) (*CredentialResponse, error) {
	if err := ValidateCredentialRequest(req); err != nil {
		return nil, err
	}
	resp, err := call[*CredentialResponse](ctx, s.client, post(issuerScoped(issuerID, "/credentials/issue-openid4vci"), req))
	if err != nil {
		return nil, annotate(err, "failed to issue credential")
	}
	return resp, nil
}

// DeferredCredential fetches a credential whose issuance was deferred
func (s *openID4Service) DeferredCredential(ctx context.Context, issuerID, transactionID string) (*CredentialResponse, error) {
	if transactionID == "" {
		return nil, errors.New("transaction ID is required")
	}
	return call[*CredentialResponse](ctx, s.client, post(issuerScoped(issuerID, "/deferred-credential"), map[string]string{
		"transaction_id": transactionID,
	}))
}

// BatchIssue submits requests and returns a job tracking their transactions
func (s *openID4Service) BatchIssue(ctx context.Context, issuerID string, requests []*BatchRequest) (*BatchJob, error) {
	if len(requests) == 0 {
		return nil, errors.New("at least one request is required")
	}
	for i, r := range requests {
		if err := ValidateCredentialRequest(&CredentialRequest{CredentialRequest: r.CredentialRequest}); err != nil {
			return nil, errors.Wrapf(err, "request %d", i)
		}
	}

	issuance, err := call[*BatchIssuance](ctx, s.client, post(issuerScoped(issuerID, "/credentials/batch-issue-openid4vci"), map[string]interface{}{
		"requests": requests,
	}))
	if err != nil {
		return nil, annotate(err, "failed to start batch issuance")
	}
	if issuance == nil {
		return nil, errors.New("batch issuance returned no transactions")
	}

	fetch := func(ctx context.Context, txID string) (*BatchStatus, error) {
		return s.BatchStatus(ctx, issuerID, txID)
	}
	return newBatchJob(issuance, fetch, s.client.emit), nil
}

// BatchStatus returns the progress of one batch transaction
func (s *openID4Service) BatchStatus(ctx context.Context, issuerID, transactionID string) (*BatchStatus, error) {
	status, err := call[*BatchStatus](ctx, s.client, get(issuerScoped(issuerID, "/batch-issuance/"+url.PathEscape(transactionID)), nil))
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, errors.Errorf("no status for batch transaction %s", transactionID)
	}
	return status, nil
}

// CreatePresentationRequest creates an OpenID4VP authorization request
func (s *openID4Service) CreatePresentationRequest(ctx context.Context, issuerID string, req *PresentationRequest) (*PresentationRequestURI, error) {
	if req == nil {
		return nil, errors.New("presentation request is required")
	}
	if err := ValidatePresentationDefinition(req.PresentationDefinition); err != nil {
		return nil, err
	}
	return call[*PresentationRequestURI](ctx, s.client, post(issuerScoped(issuerID, "/presentation-request"), req))
}

// GetPresentationRequest resolves a request URI
func (s *openID4Service) GetPresentationRequest(ctx context.Context, requestURI string) (*PresentationRequest, error) {
	return call[*PresentationRequest](ctx, s.client, get("/api/v1/presentation-request", url.Values{"uri": {requestURI}}))
}

// VerifyPresentationResponse verifies a wallet's presentation
func (s *openID4Service) VerifyPresentationResponse(ctx context.Context, issuerID string, resp *PresentationResponse) (*PresentationVerificationResult, error) {
	if resp == nil || resp.VPToken == "" {
		return nil, errors.New("vp_token is required")
	}
	return call[*PresentationVerificationResult](ctx, s.client, post(issuerScoped(issuerID, "/presentation-response/verify"), resp))
}

// CreateSelectiveDisclosureRequest creates a request disclosing only selected fields
func (s *openID4Service) CreateSelectiveDisclosureRequest(ctx context.Context, issuerID string, req *SelectiveDisclosureRequest) (*PresentationRequestURI, error) {
	if req == nil {
		return nil, errors.New("selective disclosure request is required")
	}
	if err := ValidatePresentationDefinition(req.PresentationDefinition); err != nil {
		return nil, err
	}
	return call[*PresentationRequestURI](ctx, s.client, post(issuerScoped(issuerID, "/selective-disclosure-request"), req))
}

// WalletCredentialOffer returns a wallet-compatible offer for a credential
func (s *openID4Service) WalletCredentialOffer(ctx context.Context, issuerID, credentialID string) (*WalletCredentialOffer, error) {
	return call[*WalletCredentialOffer](ctx, s.client, get(issuerScoped(issuerID, "/wallet-offer/"+url.PathEscape(credentialID)), nil))
}

// WalletPresentation submits a presentation from a wallet
func (s *openID4Service) WalletPresentation(ctx context.Context, issuerID string, presentation *WalletPresentation) (*WalletPresentationResult, error) {
	if presentation == nil || presentation.VPToken == "" {
		return nil, errors.New("vp_token is required")
	}
	return call[*WalletPresentationResult](ctx, s.client, post(issuerScoped(issuerID, "/wallet-presentation"), presentation))
}

// SupportedFormats lists the OpenID4 capabilities of an issuer
func (s *openID4Service) SupportedFormats(ctx context.Context, issuerID string) (*SupportedFormats, error) {
	return call[*SupportedFormats](ctx, s.client, get(issuerScoped(issuerID, "/openid4-capabilities"), nil))
}

// ValidateCredentialRequest checks the shape of an OpenID4VCI credential
// request. It returns a *ValidationError listing every problem.
func ValidateCredentialRequest(req *CredentialRequest) error {
	var problems []string

	if req == nil || req.CredentialRequest == nil {
		problems = append(problems, "Missing credential_request field")
	} else {
		cr := req.CredentialRequest
		if cr.Format == "" {
			problems = append(problems, "Missing format in credential_request")
		}
		if cr.CredentialDefinition == nil {
			problems = append(problems, "Missing credential_definition")
		}
		if cr.CredentialDefinition == nil || cr.CredentialDefinition.Type == nil {
			problems = append(problems, "Invalid or missing credential types")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}

// ValidatePresentationDefinition checks the shape of a presentation
// definition. It returns a *ValidationError listing every problem.
func ValidatePresentationDefinition(def *PresentationDefinition) error {
	var problems []string

	switch {
	case def == nil:
		problems = append(problems, "Missing presentation definition ID", "Missing or invalid input_descriptors")
	default:
		if def.ID == "" {
			problems = append(problems, "Missing presentation definition ID")
		}
		if def.InputDescriptors == nil {
			problems = append(problems, "Missing or invalid input_descriptors")
		}
		for i, d := range def.InputDescriptors {
			if d.ID == "" {
				problems = append(problems, fmt.Sprintf("Input descriptor %d missing ID", i))
			}
			if d.Constraints == nil && len(d.Schema) == 0 {
				problems = append(problems, fmt.Sprintf("Input descriptor %d missing constraints or schema", i))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}
