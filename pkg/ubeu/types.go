package ubeu

import (
	"encoding/json"

	"github.com/ubeu-platform/ubeu-go/internal/auth"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// Session represents an authenticated session
type Session = types.Session

// Config is the runtime configuration of a client
type Config = types.Config

// Logger interface for logging
type Logger = types.Logger

// Hooks provides lifecycle hooks for requests
type Hooks = types.Hooks

// RetryConfig configures retry behavior
type RetryConfig = types.RetryConfig

// AuthCredentials identify the user logging in
type AuthCredentials = auth.Credentials

// AuthResult is returned by Authenticate
type AuthResult = auth.Result

// Authentication types
const (
	AuthTypePassword   = "password"
	AuthTypeWallet     = "wallet"
	AuthTypeSocial     = "social"
	AuthTypeEnterprise = "enterprise"
)

// Environments
const (
	EnvironmentDevelopment = types.EnvironmentDevelopment
	EnvironmentStaging     = types.EnvironmentStaging
	EnvironmentProduction  = types.EnvironmentProduction
)

// APIResponse is the envelope every platform endpoint responds with
type APIResponse[T any] struct {
	Success   bool      `json:"success"`
	Data      T         `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
	RequestID string    `json:"requestId"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// PaginatedResponse is an APIResponse carrying a page of items
type PaginatedResponse[T any] struct {
	APIResponse[[]T]
	Pagination Pagination `json:"pagination"`
}

// SDKStatus reports the client state and service availability
type SDKStatus struct {
	Initialized   bool           `json:"initialized"`
	Authenticated bool           `json:"authenticated"`
	Version       string         `json:"version"`
	Environment   string         `json:"environment"`
	Services      ServicesStatus `json:"services"`
	LastActivity  Timestamp      `json:"lastActivity"`
}

// ServicesStatus reports which platform services answered their health probe
type ServicesStatus struct {
	Identity    bool `json:"identity"`
	Credentials bool `json:"credentials"`
	Issuer      bool `json:"issuer"`
	Enterprise  bool `json:"enterprise"`
	OpenID4     bool `json:"openid4"`
	Wallet      bool `json:"wallet"`
	Analytics   bool `json:"analytics"`
}

// Identity types

// DIDContext is the usage context of a DID
type DIDContext string

const (
	ContextPersonal     DIDContext = "personal"
	ContextProfessional DIDContext = "professional"
	ContextEducational  DIDContext = "educational"
	ContextSocial       DIDContext = "social"
	ContextGaming       DIDContext = "gaming"
)

// DID is a decentralized identifier owned by a user
type DID struct {
	ID           string     `json:"id"`
	DID          string     `json:"did"`
	UserID       string     `json:"userId"`
	Context      DIDContext `json:"context"`
	HCSTopicID   string     `json:"hcsTopicId"`
	DocumentHash string     `json:"documentHash"`
	CreatedAt    Timestamp  `json:"createdAt"`
	UpdatedAt    Timestamp  `json:"updatedAt"`
	IsActive     bool       `json:"isActive"`
}

// Domain is a name registered to a user
type Domain struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	ChainType          string     `json:"chainType"`
	Phase              int        `json:"phase"`
	OwnerID            string     `json:"ownerId"`
	DIDID              string     `json:"didId"`
	VerificationStatus string     `json:"verificationStatus"`
	VerifiedAt         *Timestamp `json:"verifiedAt,omitempty"`
	ExpiresAt          Timestamp  `json:"expiresAt"`
	CreatedAt          Timestamp  `json:"createdAt"`
}

// AliasMapping links a domain to a DID
type AliasMapping struct {
	ID        string     `json:"id,omitempty"`
	DomainID  string     `json:"domainId"`
	DIDID     string     `json:"didId"`
	Context   DIDContext `json:"context"`
	IsPrimary bool       `json:"isPrimary"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
}

// IdentityContext aggregates the identifiers of a user
type IdentityContext struct {
	UserID        string          `json:"userId"`
	HCSTopicID    string          `json:"hcsTopicId"`
	PrimaryDID    string          `json:"primaryDid"`
	DIDs          []*DID          `json:"dids"`
	Domains       []*Domain       `json:"domains"`
	AliasMappings []*AliasMapping `json:"aliasMappings"`
}

// UserProfile describes a platform user
type UserProfile struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email,omitempty"`
	WalletAddress      string             `json:"walletAddress,omitempty"`
	PrimaryDID         string             `json:"primaryDid"`
	Domains            []string           `json:"domains"`
	Status             string             `json:"status"`
	CreatedAt          Timestamp          `json:"createdAt"`
	LastLoginAt        Timestamp          `json:"lastLoginAt"`
	Profile            ProfileDetails     `json:"profile"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
}

// ProfileDetails holds display attributes of a user
type ProfileDetails struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// VerificationStatus reports which user attributes are verified
type VerificationStatus struct {
	Email  bool            `json:"email"`
	Wallet bool            `json:"wallet"`
	Social map[string]bool `json:"social,omitempty"`
}

// RegisterIdentityParams for Identity.Register
type RegisterIdentityParams struct {
	Email         string   `json:"email,omitempty"`
	WalletAddress string   `json:"walletAddress,omitempty"`
	Domains       []string `json:"domains,omitempty"`
}

// RegisteredIdentity is returned by Identity.Register
type RegisteredIdentity struct {
	User       *UserProfile `json:"user"`
	PrimaryDID *DID         `json:"primaryDid"`
}

// RegisterDomainParams for Identity.RegisterDomain
type RegisterDomainParams struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	DIDID string `json:"didId,omitempty"`
}

// IdentitySearchParams for Identity.Search
type IdentitySearchParams struct {
	DID           string `json:"did,omitempty"`
	Domain        string `json:"domain,omitempty"`
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// Credential types

// VerifiableCredential is a W3C verifiable credential
type VerifiableCredential struct {
	Context           []string               `json:"@context"`
	ID                string                 `json:"id"`
	Type              []string               `json:"type"`
	Issuer            json.RawMessage        `json:"issuer"`
	IssuanceDate      Timestamp              `json:"issuanceDate"`
	ExpirationDate    *Timestamp             `json:"expirationDate,omitempty"`
	CredentialSubject map[string]interface{} `json:"credentialSubject"`
	Proof             *Proof                 `json:"proof,omitempty"`
}

// IssuerID returns the issuer identifier, which the platform encodes either
// as a string or as an object with an id
func (vc *VerifiableCredential) IssuerID() string {
	var id string
	if err := json.Unmarshal(vc.Issuer, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(vc.Issuer, &obj); err == nil {
		return obj.ID
	}
	return ""
}

// Proof is the cryptographic proof of a credential
type Proof struct {
	Type               string    `json:"type"`
	Created            Timestamp `json:"created"`
	VerificationMethod string    `json:"verificationMethod"`
	ProofPurpose       string    `json:"proofPurpose"`
	ProofValue         string    `json:"proofValue"`
}

// CredentialOffer is a credential offered to a DID
type CredentialOffer struct {
	ID             string          `json:"id"`
	IssuerDID      string          `json:"issuerDid"`
	CredentialType string          `json:"credentialType"`
	CredentialData json.RawMessage `json:"credentialData"`
	Status         string          `json:"status"`
	OfferedToDID   string          `json:"offeredToDid"`
	AssignedToDID  string          `json:"assignedToDid,omitempty"`
	UserID         string          `json:"userId"`
	CreatedAt      Timestamp       `json:"createdAt"`
	ExpiresAt      *Timestamp      `json:"expiresAt,omitempty"`
}

// CredentialSchema describes the shape of a credential type
type CredentialSchema struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Version   string          `json:"version"`
	Type      string          `json:"type"`
	Schema    json.RawMessage `json:"schema"`
	CreatedAt *Timestamp      `json:"createdAt,omitempty"`
	UpdatedAt *Timestamp      `json:"updatedAt,omitempty"`
}

// IssueCredentialParams for Credentials.Issue
type IssueCredentialParams struct {
	Type           []string               `json:"type"`
	SubjectID      string                 `json:"subjectId"`
	Claims         map[string]interface{} `json:"claims"`
	ExpirationDate string                 `json:"expirationDate,omitempty"`
	SchemaID       string                 `json:"schemaId,omitempty"`
	IssuerName     string                 `json:"issuerName,omitempty"`
	DeliveryMethod string                 `json:"deliveryMethod,omitempty"`
}

// ValidationResult reports a schema check of a credential
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// BulkIssueResult summarizes a bulk issuance
type BulkIssueResult struct {
	Issued  int               `json:"issued"`
	Failed  int               `json:"failed"`
	Results []json.RawMessage `json:"results"`
}

// CredentialFilter narrows credential and offer listings
type CredentialFilter struct {
	UserID string
	Status string
}

// CredentialSearchParams for Credentials.Search
type CredentialSearchParams struct {
	Issuer   string `json:"issuer,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Type     string `json:"type,omitempty"`
	Status   string `json:"status,omitempty"`
	FromDate string `json:"fromDate,omitempty"`
	ToDate   string `json:"toDate,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Issuer types

// IssuerProfile describes a registered credential issuer
type IssuerProfile struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	DID                   string       `json:"did"`
	Description           string       `json:"description,omitempty"`
	Website               string       `json:"website,omitempty"`
	Logo                  string       `json:"logo,omitempty"`
	VerificationStatus    string       `json:"verificationStatus"`
	CreatedAt             Timestamp    `json:"createdAt"`
	ParentDomain          string       `json:"parentDomain,omitempty"`
	DNSVerificationStatus string       `json:"dnsVerificationStatus,omitempty"`
	DNSChallenge          string       `json:"dnsChallenge,omitempty"`
	DNSChallengeExpiry    *Timestamp   `json:"dnsChallengeExpiry,omitempty"`
	EnterpriseTier        string       `json:"enterpriseTier,omitempty"`
	APIKey                string       `json:"apiKey,omitempty"`
	UsageLimits           *UsageLimits `json:"usageLimits,omitempty"`
}

// UsageLimits of an issuer tier
type UsageLimits struct {
	MonthlyCredentials   int `json:"monthlyCredentials"`
	CurrentMonthUsage    int `json:"currentMonthUsage"`
	APICallsPerMinute    int `json:"apiCallsPerMinute"`
	RemainingCredentials int `json:"remainingCredentials,omitempty"`
}

// RegisterIssuerParams for Issuers.Register
type RegisterIssuerParams struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Website      string `json:"website,omitempty"`
	Logo         string `json:"logo,omitempty"`
	ParentDomain string `json:"parentDomain,omitempty"`
}

// CredentialTemplate is a reusable issuance template
type CredentialTemplate struct {
	ID           string                 `json:"id,omitempty"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	SchemaID     string                 `json:"schemaId"`
	IssuerID     string                 `json:"issuerId,omitempty"`
	TemplateData map[string]interface{} `json:"templateData"`
	IsActive     bool                   `json:"isActive,omitempty"`
	CreatedAt    *Timestamp             `json:"createdAt,omitempty"`
}

// CredentialData is the payload of an issuer issuance
type CredentialData struct {
	Type           []string               `json:"type"`
	Claims         map[string]interface{} `json:"claims"`
	ExpirationDate string                 `json:"expirationDate,omitempty"`
	SchemaID       string                 `json:"schemaId,omitempty"`
	TemplateID     string                 `json:"templateId,omitempty"`
	DeliveryMethod string                 `json:"deliveryMethod,omitempty"`
}

// BulkRecipient is one entry of an issuer bulk issuance
type BulkRecipient struct {
	RecipientID    string         `json:"recipientId"`
	CredentialData CredentialData `json:"credentialData"`
}

// IssuedCredentialFilter for Issuers.IssuedCredentials
type IssuedCredentialFilter struct {
	Status      string
	RecipientID string
	FromDate    string
	ToDate      string
	Limit       int
	Offset      int
}

// DNSVerificationChallenge is the TXT record a domain owner must publish
type DNSVerificationChallenge struct {
	Challenge       string    `json:"challenge"`
	TXTRecord       string    `json:"txtRecord"`
	VerificationURL string    `json:"verificationUrl,omitempty"`
	ExpiresAt       Timestamp `json:"expiresAt"`
	Instructions    []string  `json:"instructions,omitempty"`
}

// DNSVerificationResult reports the outcome of a DNS challenge check
type DNSVerificationResult struct {
	Verified  bool       `json:"verified"`
	Status    string     `json:"status,omitempty"`
	Message   string     `json:"message,omitempty"`
	CheckedAt *Timestamp `json:"checkedAt,omitempty"`
}

// TierUpgrade is returned when a tier change is requested
type TierUpgrade struct {
	Success       bool       `json:"success"`
	NewTier       string     `json:"newTier"`
	EffectiveDate *Timestamp `json:"effectiveDate,omitempty"`
}

// RecipientVerification reports whether a recipient identity exists
type RecipientVerification struct {
	Valid bool   `json:"valid"`
	DID   string `json:"did,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Enterprise types

// EnterpriseAccount is an organization account
type EnterpriseAccount struct {
	ID                    string     `json:"id"`
	CompanyName           string     `json:"companyName"`
	ParentDomain          string     `json:"parentDomain"`
	ContactEmail          string     `json:"contactEmail"`
	ContactName           string     `json:"contactName,omitempty"`
	Description           string     `json:"description,omitempty"`
	Logo                  string     `json:"logo,omitempty"`
	Website               string     `json:"website,omitempty"`
	Industry              string     `json:"industry,omitempty"`
	CompanySize           string     `json:"companySize,omitempty"`
	Tier                  string     `json:"tier"`
	Status                string     `json:"status"`
	DNSVerificationStatus string     `json:"dnsVerificationStatus"`
	DNSChallenge          string     `json:"dnsChallenge,omitempty"`
	DNSChallengeExpiry    *Timestamp `json:"dnsChallengeExpiry,omitempty"`
	APIKey                string     `json:"apiKey,omitempty"`
	ManagedDID            string     `json:"managedDid,omitempty"`
	HederaAccountID       string     `json:"hederaAccountId,omitempty"`
	HCSTopicID            string     `json:"hcsTopicId,omitempty"`
	CreatedAt             Timestamp  `json:"createdAt"`
	VerifiedAt            *Timestamp `json:"verifiedAt,omitempty"`
	LastActivityAt        *Timestamp `json:"lastActivityAt,omitempty"`
}

// RegisterEnterpriseParams for Enterprise.Register
type RegisterEnterpriseParams struct {
	CompanyName  string `json:"companyName"`
	ParentDomain string `json:"parentDomain"`
	ContactEmail string `json:"contactEmail"`
	ContactName  string `json:"contactName,omitempty"`
	Description  string `json:"description,omitempty"`
	Website      string `json:"website,omitempty"`
	Industry     string `json:"industry,omitempty"`
	CompanySize  string `json:"companySize,omitempty"`
	Tier         string `json:"tier,omitempty"`
}

// UsageMetrics reports tier limits against current usage
type UsageMetrics struct {
	Tier   string `json:"tier"`
	Limits struct {
		MonthlyCredentials int     `json:"monthlyCredentials"`
		APICallsPerMinute  int     `json:"apiCallsPerMinute"`
		StorageGB          float64 `json:"storageGB"`
		ConcurrentUsers    int     `json:"concurrentUsers"`
	} `json:"limits"`
	CurrentUsage struct {
		CredentialsThisMonth int     `json:"credentialsThisMonth"`
		APICallsToday        int     `json:"apiCallsToday"`
		StorageUsedGB        float64 `json:"storageUsedGB"`
		ActiveUsers          int     `json:"activeUsers"`
	} `json:"currentUsage"`
	ResetDate       Timestamp `json:"resetDate"`
	NextBillingDate Timestamp `json:"nextBillingDate"`
}

// NetworkSpend tracks treasury-sponsored network fees, amounts in USD cents
type NetworkSpend struct {
	TotalSpent           int64                `json:"totalSpent"`
	MonthlySpent         int64                `json:"monthlySpent"`
	RemainingAllowance   int64                `json:"remainingAllowance"`
	Transactions         []NetworkTransaction `json:"transactions,omitempty"`
	ResetDate            Timestamp            `json:"resetDate"`
	AllowanceRenewalDate *Timestamp           `json:"allowanceRenewalDate,omitempty"`
}

// NetworkTransaction is one sponsored network operation
type NetworkTransaction struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	USDValue      int64     `json:"usdValue"`
	Timestamp     Timestamp `json:"timestamp"`
	Description   string    `json:"description"`
	TransactionID string    `json:"transactionId,omitempty"`
}

// APIKey is a regenerated enterprise API key
type APIKey struct {
	APIKey    string     `json:"apiKey"`
	CreatedAt Timestamp  `json:"createdAt"`
	ExpiresAt *Timestamp `json:"expiresAt,omitempty"`
}

// BillingFilter for Enterprise.BillingHistory
type BillingFilter struct {
	FromDate string
	ToDate   string
	Status   string
	Limit    int
}

// Invoice is one billing history entry
type Invoice struct {
	ID          string     `json:"id"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	InvoiceDate Timestamp  `json:"invoiceDate"`
	PaidAt      *Timestamp `json:"paidAt,omitempty"`
	InvoiceURL  string     `json:"invoiceUrl,omitempty"`
}

// AccountStatusChange is returned by suspend, reactivate and delete
type AccountStatusChange struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// OpenID4 types

// OpenID4VCIMetadata is the credential issuer metadata document
type OpenID4VCIMetadata struct {
	CredentialIssuer           string            `json:"credential_issuer"`
	AuthorizationServers       []string          `json:"authorization_servers,omitempty"`
	CredentialEndpoint         string            `json:"credential_endpoint"`
	DeferredCredentialEndpoint string            `json:"deferred_credential_endpoint,omitempty"`
	CredentialsSupported       []json.RawMessage `json:"credentials_supported"`
}

// CredentialOfferParams for OpenID4.CreateCredentialOffer
type CredentialOfferParams struct {
	CredentialConfigurationIDs []string               `json:"credential_configuration_ids"`
	Grants                     map[string]interface{} `json:"grants,omitempty"`
}

// OpenID4CredentialOffer is a created credential offer
type OpenID4CredentialOffer struct {
	CredentialOffer    json.RawMessage `json:"credential_offer"`
	CredentialOfferURI string          `json:"credential_offer_uri"`
}

// CredentialRequest is an OpenID4VCI credential request
type CredentialRequest struct {
	CredentialRequest *CredentialRequestBody `json:"credential_request"`
}

// CredentialRequestBody is the inner credential request
type CredentialRequestBody struct {
	Format               string                `json:"format"`
	CredentialDefinition *CredentialDefinition `json:"credential_definition"`
	Proof                *RequestProof         `json:"proof,omitempty"`
}

// CredentialDefinition names the requested credential types
type CredentialDefinition struct {
	Type              []string               `json:"type"`
	CredentialSubject map[string]interface{} `json:"credentialSubject,omitempty"`
}

// RequestProof binds a credential request to a holder key
type RequestProof struct {
	ProofType string `json:"proof_type"`
	JWT       string `json:"jwt,omitempty"`
	CWT       string `json:"cwt,omitempty"`
}

// CredentialResponse is an issued OpenID4VCI credential
type CredentialResponse struct {
	Format           string          `json:"format"`
	Credential       json.RawMessage `json:"credential"`
	CNonce           string          `json:"c_nonce,omitempty"`
	CNonceExpiresIn  int             `json:"c_nonce_expires_in,omitempty"`
	TransactionID    string          `json:"transaction_id,omitempty"`
	AcceptanceToken  string          `json:"acceptance_token,omitempty"`
	NotificationID   string          `json:"notification_id,omitempty"`
	DeferredInterval int             `json:"interval,omitempty"`
}

// BatchRequest is one entry of a batch issuance
type BatchRequest struct {
	RecipientID       string                 `json:"recipient_id"`
	CredentialRequest *CredentialRequestBody `json:"credential_request"`
}

// BatchIssuance is returned when a batch issuance is accepted
type BatchIssuance struct {
	TransactionIDs          []string   `json:"transaction_ids"`
	Status                  string     `json:"status"`
	EstimatedCompletionTime *Timestamp `json:"estimated_completion_time,omitempty"`
}

// BatchStatus reports the progress of one batch transaction
type BatchStatus struct {
	Status   string `json:"status"`
	Progress struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Failed    int `json:"failed"`
	} `json:"progress"`
	Results []BatchResult `json:"results,omitempty"`
}

// BatchResult is the outcome for one batch recipient
type BatchResult struct {
	RecipientID string          `json:"recipient_id"`
	Status      string          `json:"status"`
	Credential  json.RawMessage `json:"credential,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// PresentationDefinition lists the credentials a verifier asks for
type PresentationDefinition struct {
	ID               string            `json:"id"`
	InputDescriptors []InputDescriptor `json:"input_descriptors"`
}

// InputDescriptor describes one requested credential
type InputDescriptor struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name,omitempty"`
	Purpose     string                 `json:"purpose,omitempty"`
	Format      map[string]interface{} `json:"format,omitempty"`
	Constraints *Constraints           `json:"constraints,omitempty"`
	Schema      json.RawMessage        `json:"schema,omitempty"`
}

// Constraints restrict the fields of a requested credential
type Constraints struct {
	Fields []Field `json:"fields,omitempty"`
}

// Field is a JSONPath constraint
type Field struct {
	Path      []string        `json:"path"`
	Filter    json.RawMessage `json:"filter,omitempty"`
	Predicate string          `json:"predicate,omitempty"`
}

// PresentationRequest is an OpenID4VP authorization request
type PresentationRequest struct {
	PresentationDefinition *PresentationDefinition `json:"presentation_definition"`
	ResponseMode           string                  `json:"response_mode,omitempty"`
	ResponseType           string                  `json:"response_type,omitempty"`
	ClientID               string                  `json:"client_id,omitempty"`
	RedirectURI            string                  `json:"redirect_uri,omitempty"`
	State                  string                  `json:"state,omitempty"`
	Nonce                  string                  `json:"nonce,omitempty"`
	ExpiresAt              *Timestamp              `json:"expires_at,omitempty"`
}

// PresentationRequestURI is returned when a presentation request is created
type PresentationRequestURI struct {
	RequestURI             string `json:"request_uri"`
	PresentationRequestURI string `json:"presentation_request_uri,omitempty"`
	ExpiresIn              int    `json:"expires_in"`
	RequestID              string `json:"request_id,omitempty"`
}

// PresentationResponse is a wallet's answer to a presentation request
type PresentationResponse struct {
	VPToken                string          `json:"vp_token"`
	PresentationSubmission json.RawMessage `json:"presentation_submission,omitempty"`
	State                  string          `json:"state,omitempty"`
}

// PresentationVerificationResult reports the verification of a presentation
type PresentationVerificationResult struct {
	Verified            bool   `json:"verified"`
	HolderDID           string `json:"holder_did,omitempty"`
	CredentialsVerified []struct {
		CredentialID       string          `json:"credential_id"`
		Verified           bool            `json:"verified"`
		VerificationResult json.RawMessage `json:"verification_result"`
	} `json:"credentials_verified"`
}

// SelectiveDisclosureRequest for OpenID4.CreateSelectiveDisclosureRequest
type SelectiveDisclosureRequest struct {
	PresentationDefinition *PresentationDefinition `json:"presentation_definition"`
	SelectiveDisclosure    struct {
		RequiredFields     []string `json:"required_fields"`
		OptionalFields     []string `json:"optional_fields"`
		MinimumCredentials int      `json:"minimum_credentials,omitempty"`
	} `json:"selective_disclosure"`
}

// WalletCredentialOffer is a wallet-compatible offer URI
type WalletCredentialOffer struct {
	OfferURI   string `json:"offer_uri"`
	QRCodeData string `json:"qr_code_data"`
	ExpiresIn  int    `json:"expires_in"`
}

// WalletPresentation is a presentation submitted by a wallet
type WalletPresentation struct {
	VPToken                string          `json:"vp_token"`
	PresentationSubmission json.RawMessage `json:"presentation_submission"`
	WalletMetadata         *struct {
		WalletType    string          `json:"wallet_type"`
		WalletVersion string          `json:"wallet_version"`
		DeviceInfo    json.RawMessage `json:"device_info,omitempty"`
	} `json:"wallet_metadata,omitempty"`
}

// WalletPresentationResult reports the verification of a wallet presentation
type WalletPresentationResult struct {
	Verified            bool            `json:"verified"`
	VerificationDetails json.RawMessage `json:"verification_details"`
	SessionInfo         json.RawMessage `json:"session_info,omitempty"`
}

// SupportedFormats lists the OpenID4 capabilities of an issuer
type SupportedFormats struct {
	VCFormats           []string `json:"vc_formats"`
	VPFormats           []string `json:"vp_formats"`
	CryptographicSuites []string `json:"cryptographic_suites"`
	ProofTypes          []string `json:"proof_types"`
	Features            struct {
		DeferredCredential  bool `json:"deferred_credential"`
		BatchIssuance       bool `json:"batch_issuance"`
		SelectiveDisclosure bool `json:"selective_disclosure"`
		WalletIntegration   bool `json:"wallet_integration"`
	} `json:"features"`
}

// Wallet types

// WalletInfo describes the connected wallet
type WalletInfo struct {
	Address   string `json:"address"`
	Balance   string `json:"balance"`
	Network   string `json:"network"`
	Connected bool   `json:"connected"`
	Type      string `json:"type"`
}

// WalletTransaction is an on-chain transaction
type WalletTransaction struct {
	ID        string    `json:"id"`
	Hash      string    `json:"hash"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Value     string    `json:"value"`
	GasUsed   string    `json:"gasUsed,omitempty"`
	GasPrice  string    `json:"gasPrice,omitempty"`
	Status    string    `json:"status"`
	Timestamp Timestamp `json:"timestamp"`
	Network   string    `json:"network"`
	Type      string    `json:"type"`
}

// WalletConnection reports the state of a wallet connection
type WalletConnection struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
	Network   string `json:"network,omitempty"`
	Balance   string `json:"balance,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SendTransactionParams for Wallet.Send and Wallet.EstimateGas
type SendTransactionParams struct {
	To       string `json:"to"`
	Value    string `json:"value"`
	Data     string `json:"data,omitempty"`
	GasLimit string `json:"gasLimit,omitempty"`
	Network  string `json:"network,omitempty"`
}

// NetworkConfig for Wallet.AddNetwork
type NetworkConfig struct {
	ChainID        string   `json:"chainId"`
	ChainName      string   `json:"chainName"`
	RPCURLs        []string `json:"rpcUrls"`
	NativeCurrency struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
	} `json:"nativeCurrency"`
	BlockExplorerURLs []string `json:"blockExplorerUrls,omitempty"`
}

// TokenTransferParams for Wallet.TransferTokens
type TokenTransferParams struct {
	TokenAddress string `json:"tokenAddress"`
	To           string `json:"to"`
	Amount       string `json:"amount"`
	Network      string `json:"network,omitempty"`
}

// TokenApprovalParams for Wallet.ApproveTokens
type TokenApprovalParams struct {
	TokenAddress string `json:"tokenAddress"`
	Spender      string `json:"spender"`
	Amount       string `json:"amount"`
	Network      string `json:"network,omitempty"`
}

// NFTTransferParams for Wallet.TransferNFT
type NFTTransferParams struct {
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenId"`
	To              string `json:"to"`
	Network         string `json:"network,omitempty"`
}
