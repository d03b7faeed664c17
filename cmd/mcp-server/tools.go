package main

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ubeu-platform/ubeu-go/pkg/ubeu"
)

// ubeuTools holds the UBeU client and implements all tool handlers
type ubeuTools struct {
	client *ubeu.Client
}

// GetStatus tool - probes the platform services
type GetStatusInput struct {
	// No input parameters needed
}

type GetStatusOutput struct {
	Authenticated bool            `json:"authenticated" jsonschema:"Whether the client holds a valid session"`
	Version       string          `json:"version" jsonschema:"SDK version"`
	Environment   string          `json:"environment" jsonschema:"Configured environment"`
	Services      map[string]bool `json:"services" jsonschema:"Health of each platform service"`
}

func (t *ubeuTools) GetStatus(ctx context.Context, req *mcp.CallToolRequest, input GetStatusInput) (*mcp.CallToolResult, GetStatusOutput, error) {
	status := t.client.GetStatus(ctx)

	return nil, GetStatusOutput{
		Authenticated: status.Authenticated,
		Version:       status.Version,
		Environment:   status.Environment,
		Services: map[string]bool{
			"identity":    status.Services.Identity,
			"credentials": status.Services.Credentials,
			"issuer":      status.Services.Issuer,
			"enterprise":  status.Services.Enterprise,
			"openid4":     status.Services.OpenID4,
			"wallet":      status.Services.Wallet,
			"analytics":   status.Services.Analytics,
		},
	}, nil
}

// ResolveDID tool - resolves a DID
type ResolveDIDInput struct {
	DID string `json:"did" jsonschema:"DID to resolve (e.g. did:ubeu:alice)"`
}

type ResolveDIDOutput struct {
	DID        string `json:"did" jsonschema:"The resolved DID"`
	UserID     string `json:"userId" jsonschema:"Owning user ID"`
	Context    string `json:"context" jsonschema:"DID context (personal, business, ...)"`
	HCSTopicID string `json:"hcsTopicId,omitempty" jsonschema:"Hedera consensus topic anchoring the DID"`
	Active     bool   `json:"active" jsonschema:"Whether the DID is active"`
	CreatedAt  string `json:"createdAt,omitempty" jsonschema:"Creation time in RFC3339"`
}

func (t *ubeuTools) ResolveDID(ctx context.Context, req *mcp.CallToolRequest, input ResolveDIDInput) (*mcp.CallToolResult, ResolveDIDOutput, error) {
	if input.DID == "" {
		return nil, ResolveDIDOutput{}, fmt.Errorf("did is required")
	}

	did, err := t.client.Identity.ResolveDID(ctx, input.DID)
	if err != nil {
		return nil, ResolveDIDOutput{}, fmt.Errorf("failed to resolve DID: %w", err)
	}

	return nil, ResolveDIDOutput{
		DID:        did.DID,
		UserID:     did.UserID,
		Context:    string(did.Context),
		HCSTopicID: did.HCSTopicID,
		Active:     did.IsActive,
		CreatedAt:  did.CreatedAt.String(),
	}, nil
}

// CredentialEntry is the tool view of a verifiable credential
type CredentialEntry struct {
	ID           string                 `json:"id" jsonschema:"Credential ID"`
	Types        []string               `json:"types" jsonschema:"Credential types"`
	Issuer       string                 `json:"issuer" jsonschema:"Issuer DID"`
	IssuanceDate string                 `json:"issuanceDate,omitempty" jsonschema:"Issuance time in RFC3339"`
	Expired      bool                   `json:"expired" jsonschema:"Whether the expiration date has passed"`
	Subject      map[string]interface{} `json:"subject,omitempty" jsonschema:"Credential subject claims"`
}

func credentialEntry(vc *ubeu.VerifiableCredential, withSubject bool) CredentialEntry {
	entry := CredentialEntry{
		ID:           vc.ID,
		Types:        vc.Type,
		Issuer:       vc.IssuerID(),
		IssuanceDate: vc.IssuanceDate.String(),
	}
	if vc.ExpirationDate != nil && !vc.ExpirationDate.IsZero() {
		entry.Expired = vc.ExpirationDate.Before(time.Now())
	}
	if withSubject {
		entry.Subject = vc.CredentialSubject
	}
	return entry
}

// GetCredential tool - retrieves one credential
type GetCredentialInput struct {
	CredentialID string `json:"credentialId" jsonschema:"Credential ID"`
}

func (t *ubeuTools) GetCredential(ctx context.Context, req *mcp.CallToolRequest, input GetCredentialInput) (*mcp.CallToolResult, CredentialEntry, error) {
	if input.CredentialID == "" {
		return nil, CredentialEntry{}, fmt.Errorf("credentialId is required")
	}

	vc, err := t.client.Credentials.Get(ctx, input.CredentialID)
	if err != nil {
		return nil, CredentialEntry{}, fmt.Errorf("failed to fetch credential: %w", err)
	}
	return nil, credentialEntry(vc, true), nil
}

// VerifyCredential tool - verifies one credential
type VerifyCredentialInput struct {
	CredentialID string `json:"credentialId" jsonschema:"Credential ID"`
}

type VerifyCredentialOutput struct {
	CredentialID string `json:"credentialId" jsonschema:"Credential ID"`
	Valid        bool   `json:"valid" jsonschema:"Whether the credential verified"`
}

func (t *ubeuTools) VerifyCredential(ctx context.Context, req *mcp.CallToolRequest, input VerifyCredentialInput) (*mcp.CallToolResult, VerifyCredentialOutput, error) {
	if input.CredentialID == "" {
		return nil, VerifyCredentialOutput{}, fmt.Errorf("credentialId is required")
	}

	valid, err := t.client.Credentials.Verify(ctx, input.CredentialID)
	if err != nil {
		return nil, VerifyCredentialOutput{}, fmt.Errorf("failed to verify credential: %w", err)
	}
	return nil, VerifyCredentialOutput{CredentialID: input.CredentialID, Valid: valid}, nil
}

// ListCredentials tool - lists credentials with optional filters
type ListCredentialsInput struct {
	UserID string `json:"userId,omitempty" jsonschema:"Holder user ID (optional)"`
	Status string `json:"status,omitempty" jsonschema:"Credential status such as active or revoked (optional)"`
}

type ListCredentialsOutput struct {
	Credentials []CredentialEntry `json:"credentials" jsonschema:"List of credentials"`
	Count       int               `json:"count" jsonschema:"Number of credentials returned"`
}

func (t *ubeuTools) ListCredentials(ctx context.Context, req *mcp.CallToolRequest, input ListCredentialsInput) (*mcp.CallToolResult, ListCredentialsOutput, error) {
	credentials, err := t.client.Credentials.List(ctx, &ubeu.CredentialFilter{
		UserID: input.UserID,
		Status: input.Status,
	})
	if err != nil {
		return nil, ListCredentialsOutput{}, fmt.Errorf("failed to list credentials: %w", err)
	}

	entries := make([]CredentialEntry, 0, len(credentials))
	for _, vc := range credentials {
		entries = append(entries, credentialEntry(vc, false))
	}

	return nil, ListCredentialsOutput{
		Credentials: entries,
		Count:       len(entries),
	}, nil
}

// GetWalletBalance tool - reads a native balance
type GetWalletBalanceInput struct {
	Address string `json:"address" jsonschema:"Wallet address"`
	Network string `json:"network,omitempty" jsonschema:"Network name (optional, defaults to the connected network)"`
}

type GetWalletBalanceOutput struct {
	Address string `json:"address" jsonschema:"Wallet address"`
	Network string `json:"network,omitempty" jsonschema:"Network queried"`
	Balance string `json:"balance" jsonschema:"Balance in the network's native unit"`
}

func (t *ubeuTools) GetWalletBalance(ctx context.Context, req *mcp.CallToolRequest, input GetWalletBalanceInput) (*mcp.CallToolResult, GetWalletBalanceOutput, error) {
	if input.Address == "" {
		return nil, GetWalletBalanceOutput{}, fmt.Errorf("address is required")
	}

	balance, err := t.client.Wallet.Balance(ctx, input.Address, input.Network)
	if err != nil {
		return nil, GetWalletBalanceOutput{}, fmt.Errorf("failed to fetch balance: %w", err)
	}

	return nil, GetWalletBalanceOutput{
		Address: input.Address,
		Network: input.Network,
		Balance: balance,
	}, nil
}
