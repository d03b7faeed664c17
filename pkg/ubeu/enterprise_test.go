package ubeu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ubeu-platform/ubeu-go/internal/transport"
)

func TestEnterpriseService_AccountPaths(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	mockTransport.On("Execute", mock.Anything, request("GET", "/api/v1/enterprise/account"), mock.Anything).
		Return(`{"success":true,"data":{"id":"acct-self","companyName":"Acme"}}`, nil)
	mockTransport.On("Execute", mock.Anything, request("GET", "/api/v1/enterprise/accounts/acct-9"), mock.Anything).
		Return(`{"success":true,"data":{"id":"acct-9","companyName":"Globex"}}`, nil)
	mockTransport.On("Execute", mock.Anything, request("GET", "/api/v1/enterprise/usage"), mock.Anything).
		Return(`{"success":true,"data":{}}`, nil)
	mockTransport.On("Execute", mock.Anything, request("GET", "/api/v1/enterprise/accounts/acct-9/usage"), mock.Anything).
		Return(`{"success":true,"data":{}}`, nil)

	own, err := client.Enterprise.Account(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "acct-self", own.ID)

	other, err := client.Enterprise.Account(context.Background(), "acct-9")
	require.NoError(t, err)
	assert.Equal(t, "Globex", other.CompanyName)

	_, err = client.Enterprise.UsageMetrics(context.Background(), "")
	require.NoError(t, err)
	_, err = client.Enterprise.UsageMetrics(context.Background(), "acct-9")
	require.NoError(t, err)

	mockTransport.AssertExpectations(t)
}

func TestEnterpriseService_RegisterValidates(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	_, err := client.Enterprise.Register(context.Background(), &RegisterEnterpriseParams{CompanyName: "Acme"})
	assert.Error(t, err)
	mockTransport.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnterpriseService_VerifyDNSEmits(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)
	verified := recordEvents(t, client, EventDomainVerified)

	mockTransport.On("Execute", mock.Anything, request("POST", "/api/v1/enterprise/accounts/acct-1/dns-verification/verify"), mock.Anything).
		Return(`{"success":true,"data":{"verified":true}}`, nil)

	result, err := client.Enterprise.VerifyDNS(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Len(t, verified(), 1)
}

func TestEnterpriseService_BillingHistoryQuery(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	mockTransport.On("Execute", mock.Anything, mock.MatchedBy(func(r *transport.Request) bool {
		return r.Path == "/api/v1/enterprise/billing" &&
			r.Query.Get("status") == "paid" &&
			r.Query.Get("limit") == "3" &&
			!r.Query.Has("fromDate")
	}), mock.Anything).Return(`{"success":true,"data":[{"id":"inv-1","amount":4900,"currency":"USD","status":"paid","invoiceDate":"2024-04-01"}]}`, nil)

	invoices, err := client.Enterprise.BillingHistory(context.Background(), "", &BillingFilter{Status: "paid", Limit: 3})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, int64(4900), invoices[0].Amount)
	assert.Equal(t, 4, int(invoices[0].InvoiceDate.Month()))
}

func TestEnterpriseService_LifecycleRequiresAccount(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	_, err := client.Enterprise.Suspend(context.Background(), "", "fraud")
	assert.Error(t, err)
	_, err = client.Enterprise.Reactivate(context.Background(), "")
	assert.Error(t, err)
	_, err = client.Enterprise.Delete(context.Background(), "", "DELETE")
	assert.Error(t, err)

	mockTransport.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnterpriseService_Suspend(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newMockClient(mockTransport)

	mockTransport.On("Execute", mock.Anything, mock.MatchedBy(func(r *transport.Request) bool {
		body, ok := r.Body.(map[string]string)
		return ok && r.Path == "/api/v1/enterprise/accounts/acct-1/suspend" && body["reason"] == "unpaid"
	}), mock.Anything).Return(`{"success":true,"data":{"success":true,"status":"suspended"}}`, nil)

	change, err := client.Enterprise.Suspend(context.Background(), "acct-1", "unpaid")
	require.NoError(t, err)
	assert.Equal(t, "suspended", change.Status)
}
