package ubeu

import (
	"context"
	"encoding/json"

	"github.com/ubeu-platform/ubeu-go/internal/transport"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// Transport dispatches requests to the platform
type Transport interface {
	Execute(ctx context.Context, req *transport.Request, result interface{}) error
	Config() types.Config
	UpdateConfig(fn func(*types.Config)) error
}

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// IdentityService manages users, DIDs, domains and aliases
type IdentityService interface {
	// Register creates a user with a primary DID
	Register(ctx context.Context, params *RegisterIdentityParams) (*RegisteredIdentity, error)

	// GetProfile retrieves the profile of the authenticated user
	GetProfile(ctx context.Context) (*UserProfile, error)

	// UpdateProfile updates profile attributes
	UpdateProfile(ctx context.Context, updates map[string]interface{}) (*UserProfile, error)

	// ResolveDID resolves a DID to its record
	ResolveDID(ctx context.Context, did string) (*DID, error)

	// ListDIDs lists the DIDs of a user, or of the current user when userID is empty
	ListDIDs(ctx context.Context, userID string) ([]*DID, error)

	// CreateDID creates a DID for a context
	CreateDID(ctx context.Context, didContext DIDContext, userID string) (*DID, error)

	// UpdateDID updates a DID document
	UpdateDID(ctx context.Context, did string, updates map[string]interface{}) (*DID, error)

	ListDomains(ctx context.Context, userID string) ([]*Domain, error)
	RegisterDomain(ctx context.Context, params *RegisterDomainParams) (*Domain, error)

	// VerifyDomain checks domain ownership and emits domain_verified on success
	VerifyDomain(ctx context.Context, domain, expectedOwner string) (bool, error)

	LinkDomain(ctx context.Context, did, domain string) (*AliasMapping, error)
	GetContext(ctx context.Context, userID string) (*IdentityContext, error)

	// Export returns an encrypted identity archive and emits export_completed
	Export(ctx context.Context, password string) (string, error)

	// Import restores an identity archive and emits import_completed
	Import(ctx context.Context, identityData, targetUserID string) (*IdentityContext, error)

	Search(ctx context.Context, params *IdentitySearchParams) (*PaginatedResponse[*UserProfile], error)
	Statistics(ctx context.Context) (json.RawMessage, error)

	// Delete permanently deletes the identity
	Delete(ctx context.Context, confirmation string) error

	DomainTypes(ctx context.Context) ([]string, error)
	DomainAvailability(ctx context.Context, domain string) (bool, error)
	DomainPricing(ctx context.Context) (json.RawMessage, error)
	TransferDomain(ctx context.Context, domainID, newOwnerID string) (*Domain, error)
	ListAliases(ctx context.Context, userID string) ([]*AliasMapping, error)
	CreateAlias(ctx context.Context, alias *AliasMapping) (*AliasMapping, error)
	UpdateAlias(ctx context.Context, aliasID string, updates map[string]interface{}) (*AliasMapping, error)
	DeleteAlias(ctx context.Context, aliasID string) error
}

// CredentialService manages verifiable credentials, offers and schemas
type CredentialService interface {
	// Issue issues a credential and emits credential_issued
	Issue(ctx context.Context, params *IssueCredentialParams) (*VerifiableCredential, error)

	BulkIssue(ctx context.Context, credentials []*IssueCredentialParams) (*BulkIssueResult, error)
	IssueFromTemplate(ctx context.Context, templateID, recipientID string, customData map[string]interface{}) (*VerifiableCredential, error)

	// Verify checks a credential and emits credential_verified
	Verify(ctx context.Context, credentialID string) (bool, error)

	Get(ctx context.Context, credentialID string) (*VerifiableCredential, error)
	List(ctx context.Context, filter *CredentialFilter) ([]*VerifiableCredential, error)
	Revoke(ctx context.Context, credentialID, reason string) error
	UpdateStatus(ctx context.Context, credentialID, status string) error

	// Offers
	Offers(ctx context.Context, filter *CredentialFilter) ([]*CredentialOffer, error)
	AcceptOffer(ctx context.Context, offerID, targetDID string) (*VerifiableCredential, error)
	DeclineOffer(ctx context.Context, offerID, reason string) error
	ReassignOffer(ctx context.Context, offerID, newTargetDID string) (*CredentialOffer, error)

	// Schemas
	CreateSchema(ctx context.Context, schema *CredentialSchema) (*CredentialSchema, error)
	GetSchema(ctx context.Context, schemaID string) (*CredentialSchema, error)
	UpdateSchema(ctx context.Context, schemaID string, updates map[string]interface{}) (*CredentialSchema, error)
	DeleteSchema(ctx context.Context, schemaID string) error
	ListSchemas(ctx context.Context) ([]*CredentialSchema, error)

	Search(ctx context.Context, params *CredentialSearchParams) (*PaginatedResponse[*VerifiableCredential], error)
	Statistics(ctx context.Context, timeRange string) (json.RawMessage, error)
	Export(ctx context.Context, userID, format string) (string, error)
	Import(ctx context.Context, data, format string) (json.RawMessage, error)
	Types(ctx context.Context) ([]string, error)

	// Validate checks a credential against its schema without issuing it
	Validate(ctx context.Context, credential map[string]interface{}, schemaID string) (*ValidationResult, error)

	Proof(ctx context.Context, credentialID string) (*Proof, error)
	VerifyProof(ctx context.Context, credentialID string) (bool, error)
	History(ctx context.Context, credentialID string) (json.RawMessage, error)
	Share(ctx context.Context, credentialID, recipientDID string, permissions []string) (json.RawMessage, error)
	Shared(ctx context.Context, userID string) (json.RawMessage, error)
	RevokeSharing(ctx context.Context, credentialID, recipientDID string) error
}

// IssuerService manages issuer organizations and their issuance
type IssuerService interface {
	Register(ctx context.Context, params *RegisterIssuerParams) (*IssuerProfile, error)

	// DNS verification of the issuer parent domain
	InitiateDNSVerification(ctx context.Context, issuerID string) (*DNSVerificationChallenge, error)
	VerifyDNS(ctx context.Context, issuerID string) (*DNSVerificationResult, error)
	DNSVerificationStatus(ctx context.Context, issuerID string) (*DNSVerificationResult, error)

	// Profile returns the profile of issuerID, or of the current issuer when empty
	Profile(ctx context.Context, issuerID string) (*IssuerProfile, error)
	UpdateProfile(ctx context.Context, updates map[string]interface{}) (*IssuerProfile, error)

	// Templates
	CreateTemplate(ctx context.Context, template *CredentialTemplate) (*CredentialTemplate, error)
	Templates(ctx context.Context) ([]*CredentialTemplate, error)
	UpdateTemplate(ctx context.Context, templateID string, updates map[string]interface{}) (*CredentialTemplate, error)
	DeleteTemplate(ctx context.Context, templateID string) error

	// IssueCredential issues to one recipient and emits credential_issued
	IssueCredential(ctx context.Context, recipientID string, data *CredentialData) (*VerifiableCredential, error)
	BulkIssue(ctx context.Context, recipients []*BulkRecipient) (*BulkIssueResult, error)
	IssuedCredentials(ctx context.Context, filter *IssuedCredentialFilter) (*PaginatedResponse[*VerifiableCredential], error)
	RevokeCredential(ctx context.Context, credentialID, reason string) error

	Statistics(ctx context.Context, timeRange string) (json.RawMessage, error)
	NetworkSpend(ctx context.Context) (*NetworkSpend, error)
	UsageLimits(ctx context.Context) (*UsageLimits, error)
	UpgradeTier(ctx context.Context, tier string) (*TierUpgrade, error)
	VerifyRecipient(ctx context.Context, recipientID string) (*RecipientVerification, error)

	// Schemas
	PublicSchemas(ctx context.Context) ([]*CredentialSchema, error)
	CreateSchema(ctx context.Context, schema *CredentialSchema) (*CredentialSchema, error)
	CustomSchemas(ctx context.Context) ([]*CredentialSchema, error)
}

// EnterpriseService manages enterprise accounts. Methods taking an accountID
// address the current account when it is empty.
type EnterpriseService interface {
	Register(ctx context.Context, params *RegisterEnterpriseParams) (*EnterpriseAccount, error)
	Account(ctx context.Context, accountID string) (*EnterpriseAccount, error)
	UpdateAccount(ctx context.Context, updates map[string]interface{}) (*EnterpriseAccount, error)

	InitiateDNSVerification(ctx context.Context, accountID string) (*DNSVerificationChallenge, error)
	DNSVerificationStatus(ctx context.Context, accountID string) (*DNSVerificationResult, error)

	// VerifyDNS checks the challenge record and emits domain_verified on success
	VerifyDNS(ctx context.Context, accountID string) (*DNSVerificationResult, error)

	UsageMetrics(ctx context.Context, accountID string) (*UsageMetrics, error)
	NetworkSpend(ctx context.Context, accountID string) (*NetworkSpend, error)
	UpgradeTier(ctx context.Context, tier string) (*TierUpgrade, error)
	RegenerateAPIKey(ctx context.Context, accountID string) (*APIKey, error)
	BillingHistory(ctx context.Context, accountID string, filter *BillingFilter) ([]*Invoice, error)
	Analytics(ctx context.Context, accountID, timeRange string) (json.RawMessage, error)

	Suspend(ctx context.Context, accountID, reason string) (*AccountStatusChange, error)
	Reactivate(ctx context.Context, accountID string) (*AccountStatusChange, error)
	Delete(ctx context.Context, accountID, confirmation string) (*AccountStatusChange, error)
}

// OpenID4Service implements OpenID4VCI issuance and OpenID4VP presentation
// flows. Methods taking an issuerID use the current issuer when it is empty.
type OpenID4Service interface {
	IssuerMetadata(ctx context.Context, issuerID string) (*OpenID4VCIMetadata, error)
	CreateCredentialOffer(ctx context.Context, issuerID string, params *CredentialOfferParams) (*OpenID4CredentialOffer, error)

	// IssueCredential validates the request locally before dispatch
	IssueCredential(ctx context.Context, issuerID string, req *CredentialRequest) (*CredentialResponse, error)
	DeferredCredential(ctx context.Context, issuerID, transactionID string) (*CredentialResponse, error)

	// BatchIssue submits requests and returns a job tracking their transactions
	BatchIssue(ctx context.Context, issuerID string, requests []*BatchRequest) (*BatchJob, error)
	BatchStatus(ctx context.Context, issuerID, transactionID string) (*BatchStatus, error)

	// Presentations
	CreatePresentationRequest(ctx context.Context, issuerID string, req *PresentationRequest) (*PresentationRequestURI, error)
	GetPresentationRequest(ctx context.Context, requestURI string) (*PresentationRequest, error)
	VerifyPresentationResponse(ctx context.Context, issuerID string, resp *PresentationResponse) (*PresentationVerificationResult, error)
	CreateSelectiveDisclosureRequest(ctx context.Context, issuerID string, req *SelectiveDisclosureRequest) (*PresentationRequestURI, error)

	// Wallets
	WalletCredentialOffer(ctx context.Context, issuerID, credentialID string) (*WalletCredentialOffer, error)
	WalletPresentation(ctx context.Context, issuerID string, presentation *WalletPresentation) (*WalletPresentationResult, error)
	SupportedFormats(ctx context.Context, issuerID string) (*SupportedFormats, error)
}

// WalletService drives the connected blockchain wallet
type WalletService interface {
	Connect(ctx context.Context, walletType, network string) (*WalletConnection, error)
	Disconnect(ctx context.Context) error
	Info(ctx context.Context) (*WalletInfo, error)
	Balance(ctx context.Context, address, network string) (string, error)
	Send(ctx context.Context, params *SendTransactionParams) (*WalletTransaction, error)
	Sign(ctx context.Context, message, address string) (string, error)
	VerifySignature(ctx context.Context, message, signature, address string) (bool, error)

	// Transactions lists wallet transactions, newest first
	Transactions(ctx context.Context, address string, limit, offset int) ([]*WalletTransaction, error)
	Transaction(ctx context.Context, hash, network string) (*WalletTransaction, error)
	EstimateGas(ctx context.Context, params *SendTransactionParams) (string, error)
	GasPrice(ctx context.Context, network string) (string, error)

	// Networks
	Networks(ctx context.Context) ([]*NetworkConfig, error)
	SwitchNetwork(ctx context.Context, network string) error
	AddNetwork(ctx context.Context, network *NetworkConfig) error

	// Tokens
	Tokens(ctx context.Context, address, network string) (json.RawMessage, error)
	TokenBalance(ctx context.Context, tokenAddress, walletAddress, network string) (string, error)
	TransferTokens(ctx context.Context, params *TokenTransferParams) (*WalletTransaction, error)
	ApproveTokens(ctx context.Context, params *TokenApprovalParams) (*WalletTransaction, error)
	TokenAllowance(ctx context.Context, tokenAddress, owner, spender, network string) (string, error)
	NFTs(ctx context.Context, address, network string) (json.RawMessage, error)
	TransferNFT(ctx context.Context, params *NFTTransferParams) (*WalletTransaction, error)

	Statistics(ctx context.Context, address, timeRange string) (json.RawMessage, error)
	Export(ctx context.Context, address string, includeTransactions bool) (json.RawMessage, error)
	ValidateAddress(ctx context.Context, address, network string) (bool, error)
	ConnectionStatus(ctx context.Context) (*WalletConnection, error)
	Refresh(ctx context.Context) (*WalletInfo, error)
	Notifications(ctx context.Context, limit int) (json.RawMessage, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
}
