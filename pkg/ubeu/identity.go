package ubeu

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/events"
)

const (
	identityPath = "/api/v1/identity"
	domainPath   = "/api/v1/domain"
	domainsPath  = "/api/v1/domains"
)

// identityService implements IdentityService
type identityService struct {
	client *Client
}

// Register creates a user with a primary DID
func (s *identityService) Register(ctx context.Context, params *RegisterIdentityParams) (*RegisteredIdentity, error) {
	if params == nil {
		return nil, errors.New("register params are required")
	}
	return call[*RegisteredIdentity](ctx, s.client, post(identityPath+"/register", params))
}

// GetProfile retrieves the profile of the authenticated user
func (s *identityService) GetProfile(ctx context.Context) (*UserProfile, error) {
	profile, err := call[*UserProfile](ctx, s.client, get("/api/v1/user/profile", nil))
	if err != nil {
		return nil, annotate(err, "failed to get profile")
	}
	return profile, nil
}

// UpdateProfile updates profile attributes
func (s *identityService) UpdateProfile(ctx context.Context, updates map[string]interface{}) (*UserProfile, error) {
	return call[*UserProfile](ctx, s.client, put("/api/v1/user/profile", updates))
}

// ResolveDID resolves a DID to its record
func (s *identityService) ResolveDID(ctx context.Context, did string) (*DID, error) {
	if did == "" {
		return nil, errors.New("did is required")
	}
	record, err := call[*DID](ctx, s.client, get(identityPath+"/"+url.PathEscape(did), nil))
	if err != nil {
		return nil, annotate(err, "failed to resolve %s", did)
	}
	return record, nil
}

// ListDIDs lists the DIDs of a user
func (s *identityService) ListDIDs(ctx context.Context, userID string) ([]*DID, error) {
	return call[[]*DID](ctx, s.client, get(identityPath+"/dids", queryOf("userId", userID)))
}

// CreateDID creates a DID for a context
func (s *identityService) CreateDID(ctx context.Context, didContext DIDContext, userID string) (*DID, error) {
	body := map[string]interface{}{
		"context": didContext,
	}
	if userID != "" {
		body["userId"] = userID
	}
	return call[*DID](ctx, s.client, post(identityPath+"/did", body))
}

// UpdateDID updates a DID document
func (s *identityService) UpdateDID(ctx context.Context, did string, updates map[string]interface{}) (*DID, error) {
	return call[*DID](ctx, s.client, put(identityPath+"/did/"+url.PathEscape(did), updates))
}

// ListDomains lists the domains of a user
func (s *identityService) ListDomains(ctx context.Context, userID string) ([]*Domain, error) {
	return call[[]*Domain](ctx, s.client, get(domainsPath, queryOf("userId", userID)))
}

// RegisterDomain registers a domain name
func (s *identityService) RegisterDomain(ctx context.Context, params *RegisterDomainParams) (*Domain, error) {
	if params == nil || params.Name == "" {
		return nil, errors.New("domain name is required")
	}
	return call[*Domain](ctx, s.client, post(domainPath+"/register", params))
}

// VerifyDomain checks domain ownership
func (s *identityService) VerifyDomain(ctx context.Context, domain, expectedOwner string) (bool, error) {
	result, err := call[struct {
		Verified bool `json:"verified"`
	}](ctx, s.client, post(domainPath+"/verify", map[string]string{
		"domain":        domain,
		"expectedOwner": expectedOwner,
	}))
	if err != nil {
		return false, annotate(err, "failed to verify domain %s", domain)
	}

	if result.Verified {
		s.client.emit(events.DomainVerified, map[string]string{
			"domain": domain,
			"owner":  expectedOwner,
		})
	}
	return result.Verified, nil
}

// LinkDomain links a domain to a DID
func (s *identityService) LinkDomain(ctx context.Context, did, domain string) (*AliasMapping, error) {
	return call[*AliasMapping](ctx, s.client, post(identityPath+"/link-domain", map[string]string{
		"did":    did,
		"domain": domain,
	}))
}

// GetContext returns every identifier of a user
func (s *identityService) GetContext(ctx context.Context, userID string) (*IdentityContext, error) {
	return call[*IdentityContext](ctx, s.client, get(identityPath+"/context", queryOf("userId", userID)))
}

// Export returns an encrypted identity archive
func (s *identityService) Export(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", errors.New("export password is required")
	}
	archive, err := call[string](ctx, s.client, post(identityPath+"/export", map[string]string{
		"password": password,
	}))
	if err != nil {
		return "", annotate(err, "failed to export identity")
	}

	s.client.emit(events.ExportCompleted, map[string]int{"size": len(archive)})
	return archive, nil
}

// Import restores an identity archive
func (s *identityService) Import(ctx context.Context, identityData, targetUserID string) (*IdentityContext, error) {
	body := map[string]string{"identityData": identityData}
	if targetUserID != "" {
		body["targetUserId"] = targetUserID
	}
	imported, err := call[*IdentityContext](ctx, s.client, post(identityPath+"/import", body))
	if err != nil {
		return nil, annotate(err, "failed to import identity")
	}

	s.client.emit(events.ImportCompleted, imported)
	return imported, nil
}

// Search finds users by identifier
func (s *identityService) Search(ctx context.Context, params *IdentitySearchParams) (*PaginatedResponse[*UserProfile], error) {
	if params == nil {
		params = &IdentitySearchParams{}
	}
	return callPage[*UserProfile](ctx, s.client, post(identityPath+"/search", params))
}

// Statistics returns platform identity statistics
func (s *identityService) Statistics(ctx context.Context) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(identityPath+"/statistics", nil))
}

// Delete permanently deletes the identity
func (s *identityService) Delete(ctx context.Context, confirmation string) error {
	_, err := call[json.RawMessage](ctx, s.client, del(identityPath, map[string]string{
		"confirmation": confirmation,
	}))
	return err
}

// DomainTypes lists the registrable domain types
func (s *identityService) DomainTypes(ctx context.Context) ([]string, error) {
	return call[[]string](ctx, s.client, get(domainsPath+"/types", nil))
}

// DomainAvailability reports whether a domain can be registered
func (s *identityService) DomainAvailability(ctx context.Context, domain string) (bool, error) {
	result, err := call[struct {
		Available bool `json:"available"`
	}](ctx, s.client, get(domainPath+"/availability/"+url.PathEscape(domain), nil))
	if err != nil {
		return false, err
	}
	return result.Available, nil
}

// DomainPricing returns the domain price list
func (s *identityService) DomainPricing(ctx context.Context) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(domainPath+"/pricing", nil))
}

// TransferDomain moves a domain to another owner
func (s *identityService) TransferDomain(ctx context.Context, domainID, newOwnerID string) (*Domain, error) {
	return call[*Domain](ctx, s.client, post(domainPath+"/transfer", map[string]string{
		"domainId":   domainID,
		"newOwnerId": newOwnerID,
	}))
}

// ListAliases lists the alias mappings of a user
func (s *identityService) ListAliases(ctx context.Context, userID string) ([]*AliasMapping, error) {
	return call[[]*AliasMapping](ctx, s.client, get(identityPath+"/aliases", queryOf("userId", userID)))
}

// CreateAlias creates an alias mapping
func (s *identityService) CreateAlias(ctx context.Context, alias *AliasMapping) (*AliasMapping, error) {
	return call[*AliasMapping](ctx, s.client, post(identityPath+"/alias", alias))
}

// UpdateAlias updates an alias mapping
func (s *identityService) UpdateAlias(ctx context.Context, aliasID string, updates map[string]interface{}) (*AliasMapping, error) {
	return call[*AliasMapping](ctx, s.client, put(identityPath+"/alias/"+url.PathEscape(aliasID), updates))
}

// DeleteAlias deletes an alias mapping
func (s *identityService) DeleteAlias(ctx context.Context, aliasID string) error {
	_, err := call[json.RawMessage](ctx, s.client, del(identityPath+"/alias/"+url.PathEscape(aliasID), nil))
	return err
}
