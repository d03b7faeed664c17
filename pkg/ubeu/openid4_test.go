package ubeu

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ubeu-platform/ubeu-go/internal/transport"
)

func validCredentialRequest() *CredentialRequest {
	return &CredentialRequest{CredentialRequest: &CredentialRequestBody{
		Format: "jwt_vc_json",
		CredentialDefinition: &CredentialDefinition{
			Type: []string{"VerifiableCredential", "EmployeeBadge"},
		},
	}}
}

func TestValidateCredentialRequest(t *testing.T) {
	tests := []struct {
		name   string
		req    *CredentialRequest
		errors []string
	}{
		{
			name: "valid",
			req:  validCredentialRequest(),
		},
		{
			name:   "missing body",
			req:    &CredentialRequest{},
			errors: []string{"Missing credential_request field"},
		},
		{
			name: "missing format and definition",
			req:  &CredentialRequest{CredentialRequest: &CredentialRequestBody{}},
			errors: []string{
				"Missing format in credential_request",
				"Missing credential_definition",
				"Invalid or missing credential types",
			},
		},
		{
			name: "missing types",
			req: &CredentialRequest{CredentialRequest: &CredentialRequestBody{
				Format:               "jwt_vc_json",
				CredentialDefinition: &CredentialDefinition{},
			}},
			errors: []string{"Invalid or missing credential types"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentialRequest(tt.req)
			if tt.errors == nil {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.errors, vErr.Errors)
		})
	}
}

func TestValidatePresentationDefinition(t *testing.T) {
	valid := &PresentationDefinition{
		ID: "pd-1",
		InputDescriptors: []InputDescriptor{
			{ID: "badge", Constraints: &Constraints{Fields: []Field{{Path: []string{"$.type"}}}}},
			{ID: "degree", Schema: json.RawMessage(`{"uri":"https://schema.example/degree"}`)},
		},
	}
	assert.NoError(t, ValidatePresentationDefinition(valid))

	err := ValidatePresentationDefinition(&PresentationDefinition{
		InputDescriptors: []InputDescriptor{{}, {ID: "ok", Constraints: &Constraints{}}},
	})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{
		"Missing presentation definition ID",
		"Input descriptor 0 missing ID",
		"Input descriptor 0 missing constraints or schema",
	}, vErr.Errors)

	err = ValidatePresentationDefinition(&PresentationDefinition{ID: "pd-2"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{"Missing or invalid input_descriptors"}, vErr.Errors)
}

func TestOpenID4Service_IssuerScopedPaths(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	mockTransport.On("Execute", mock.Anything, request("GET", "/api/v1/issuers/.well-known/openid-credential-issuer"), mock.Anything).
		Return(`{"success":true,"data":{"credential_issuer":"https://issuer.example","credential_endpoint":"https://issuer.example/credential"}}`, nil)
	mockTransport.On("Execute", mock.Anything, request("GET", "/api/v1/issuers/iss-1/openid4-capabilities"), mock.Anything).
		Return(`{"success":true,"data":{"vc_formats":["jwt_vc_json"],"features":{"batch_issuance":true}}}`, nil)

	meta, err := client.OpenID4.IssuerMetadata(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "https://issuer.example", meta.CredentialIssuer)

	formats, err := client.OpenID4.SupportedFormats(context.Background(), "iss-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"jwt_vc_json"}, formats.VCFormats)
	assert.True(t, formats.Features.BatchIssuance)

	mockTransport.AssertExpectations(t)
}

func TestOpenID4Service_IssueCredentialRejectsInvalid(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	_, err := client.OpenID4.IssueCredential(context.Background(), "", &CredentialRequest{})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	mockTransport.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenID4Service_GetPresentationRequestEscapesURI(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	uri := "https://verifier.example/req?id=1&x=2"
	mockTransport.On("Execute", mock.Anything, mock.MatchedBy(func(r *transport.Request) bool {
		return r.Path == "/api/v1/presentation-request" && r.Query.Get("uri") == uri
	}), mock.Anything).Return(`{"success":true,"data":{"presentation_definition":{"id":"pd-1","input_descriptors":[]},"nonce":"n-1"}}`, nil)

	req, err := client.OpenID4.GetPresentationRequest(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, "pd-1", req.PresentationDefinition.ID)
	assert.Equal(t, "n-1", req.Nonce)
}

func TestOpenID4Service_BatchIssue(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	mockTransport.On("Execute", mock.Anything, request("POST", "/api/v1/issuers/iss-1/credentials/batch-issue-openid4vci"), mock.Anything).
		Return(`{"success":true,"data":{"transaction_ids":["tx-1"],"status":"accepted"}}`, nil)
	mockTransport.On("Execute", mock.Anything, request("GET", "/api/v1/issuers/iss-1/batch-issuance/tx-1"), mock.Anything).
		Return(`{"success":true,"data":{"status":"completed","progress":{"total":1,"completed":1},"results":[{"recipient_id":"r-1","status":"completed"}]}}`, nil)

	issued := recordEvents(t, client, EventCredentialIssued)

	job, err := client.OpenID4.BatchIssue(context.Background(), "iss-1", []*BatchRequest{
		{RecipientID: "r-1", CredentialRequest: validCredentialRequest().CredentialRequest},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tx-1"}, job.TransactionIDs())

	require.NoError(t, job.Wait(context.Background(), time.Second))
	assert.Equal(t, BatchStatusCompleted, job.Status())
	assert.Len(t, issued(), 1)
}

func TestOpenID4Service_BatchIssueValidatesEachRequest(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	_, err := client.OpenID4.BatchIssue(context.Background(), "", []*BatchRequest{
		{RecipientID: "r-1", CredentialRequest: validCredentialRequest().CredentialRequest},
		{RecipientID: "r-2"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request 1")
	mockTransport.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}
