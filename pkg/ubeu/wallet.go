package ubeu

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

const walletPath = "/api/v1/wallet"

// walletService implements WalletService
type walletService struct {
	client *Client
}

// Connect connects a wallet on a network
func (s *walletService) Connect(ctx context.Context, walletType, network string) (*WalletConnection, error) {
	body := map[string]string{"walletType": walletType}
	if network != "" {
		body["network"] = network
	}
	conn, err := call[*WalletConnection](ctx, s.client, post(walletPath+"/connect", body))
	if err != nil {
		return nil, annotate(err, "failed to connect wallet")
	}
	return conn, nil
}

// Disconnect disconnects the wallet
func (s *walletService) Disconnect(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, s.client, post(walletPath+"/disconnect", nil))
	return err
}

// Info describes the connected wallet
func (s *walletService) Info(ctx context.Context) (*WalletInfo, error) {
	return call[*WalletInfo](ctx, s.client, get(walletPath+"/info", nil))
}

// Balance returns the native balance of an address
func (s *walletService) Balance(ctx context.Context, address, network string) (string, error) {
	result, err := call[struct {
		Balance string `json:"balance"`
	}](ctx, s.client, get(walletPath+"/balance", queryOf("address", address, "network", network)))
	if err != nil {
		return "", err
	}
	return result.Balance, nil
}

// Send sends a native transaction
func (s *walletService) Send(ctx context.Context, params *SendTransactionParams) (*WalletTransaction, error) {
	if params == nil || params.To == "" {
		return nil, errors.New("recipient address is required")
	}
	tx, err := call[*WalletTransaction](ctx, s.client, post(walletPath+"/send", params))
	if err != nil {
		return nil, annotate(err, "failed to send transaction")
	}
	return tx, nil
}

// Sign signs a message with an address
func (s *walletService) Sign(ctx context.Context, message, address string) (string, error) {
	body := map[string]string{"message": message}
	if address != "" {
		body["address"] = address
	}
	result, err := call[struct {
		Signature string `json:"signature"`
	}](ctx, s.client, post(walletPath+"/sign", body))
	if err != nil {
		return "", err
	}
	return result.Signature, nil
}

// VerifySignature checks a message signature
func (s *walletService) VerifySignature(ctx context.Context, message, signature, address string) (bool, error) {
	result, err := call[struct {
		Valid bool `json:"valid"`
	}](ctx, s.client, post(walletPath+"/verify", map[string]string{
		"message":   message,
		"signature": signature,
		"address":   address,
	}))
	if err != nil {
		return false, err
	}
	return result.Valid, nil
}

// Transactions lists wallet transactions
func (s *walletService) Transactions(ctx context.Context, address string, limit, offset int) ([]*WalletTransaction, error) {
	q := pageQuery(queryOf("address", address), limit, offset)
	return call[[]*WalletTransaction](ctx, s.client, get(walletPath+"/transactions", q))
}

// Transaction retrieves a transaction by hash
func (s *walletService) Transaction(ctx context.Context, hash, network string) (*WalletTransaction, error) {
	if hash == "" {
		return nil, errors.New("transaction hash is required")
	}
	return call[*WalletTransaction](ctx, s.client, get(walletPath+"/transaction/"+url.PathEscape(hash), queryOf("network", network)))
}

// EstimateGas estimates the gas of a transaction
func (s *walletService) EstimateGas(ctx context.Context, params *SendTransactionParams) (string, error) {
	result, err := call[struct {
		GasEstimate string `json:"gasEstimate"`
	}](ctx, s.client, post(walletPath+"/estimate-gas", params))
	if err != nil {
		return "", err
	}
	return result.GasEstimate, nil
}

// GasPrice returns the current gas price of a network
func (s *walletService) GasPrice(ctx context.Context, network string) (string, error) {
	result, err := call[struct {
		GasPrice string `json:"gasPrice"`
	}](ctx, s.client, get(walletPath+"/gas-price", queryOf("network", network)))
	if err != nil {
		return "", err
	}
	return result.GasPrice, nil
}

// Networks lists the configured networks
func (s *walletService) Networks(ctx context.Context) ([]*NetworkConfig, error) {
	return call[[]*NetworkConfig](ctx, s.client, get(walletPath+"/networks", nil))
}

// SwitchNetwork switches the active network
func (s *walletService) SwitchNetwork(ctx context.Context, network string) error {
	_, err := call[json.RawMessage](ctx, s.client, post(walletPath+"/switch-network", map[string]string{"network": network}))
	return err
}

// AddNetwork adds a custom network
func (s *walletService) AddNetwork(ctx context.Context, network *NetworkConfig) error {
	_, err := call[json.RawMessage](ctx, s.client, post(walletPath+"/add-network", network))
	return err
}

// Tokens lists the tokens held by an address
func (s *walletService) Tokens(ctx context.Context, address, network string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(walletPath+"/tokens", queryOf("address", address, "network", network)))
}

// TokenBalance returns the token balance of a wallet
func (s *walletService) TokenBalance(ctx context.Context, tokenAddress, walletAddress, network string) (string, error) {
	result, err := call[struct {
		Balance string `json:"balance"`
	}](ctx, s.client, get(walletPath+"/token-balance", queryOf(
		"tokenAddress", tokenAddress,
		"walletAddress", walletAddress,
		"network", network,
	)))
	if err != nil {
		return "", err
	}
	return result.Balance, nil
}

// TransferTokens transfers tokens
func (s *walletService) TransferTokens(ctx context.Context, params *TokenTransferParams) (*WalletTransaction, error) {
	return call[*WalletTransaction](ctx, s.client, post(walletPath+"/transfer-tokens", params))
}

// ApproveTokens approves a spender
func (s *walletService) ApproveTokens(ctx context.Context, params *TokenApprovalParams) (*WalletTransaction, error) {
	return call[*WalletTransaction](ctx, s.client, post(walletPath+"/approve", params))
}

// TokenAllowance returns the allowance of a spender
func (s *walletService) TokenAllowance(ctx context.Context, tokenAddress, owner, spender, network string) (string, error) {
	result, err := call[struct {
		Allowance string `json:"allowance"`
	}](ctx, s.client, get(walletPath+"/token-allowance", queryOf(
		"tokenAddress", tokenAddress,
		"owner", owner,
		"spender", spender,
		"network", network,
	)))
	if err != nil {
		return "", err
	}
	return result.Allowance, nil
}

// NFTs lists the NFTs held by an address
func (s *walletService) NFTs(ctx context.Context, address, network string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(walletPath+"/nfts", queryOf("address", address, "network", network)))
}

// TransferNFT transfers an NFT
func (s *walletService) TransferNFT(ctx context.Context, params *NFTTransferParams) (*WalletTransaction, error) {
	return call[*WalletTransaction](ctx, s.client, post(walletPath+"/transfer-nft", params))
}

// Statistics returns wallet statistics for a time range
func (s *walletService) Statistics(ctx context.Context, address, timeRange string) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(walletPath+"/statistics", queryOf("address", address, "timeRange", timeRange)))
}

// Export exports wallet data
func (s *walletService) Export(ctx context.Context, address string, includeTransactions bool) (json.RawMessage, error) {
	q := queryOf("address", address)
	q.Set("includeTransactions", strconv.FormatBool(includeTransactions))
	return call[json.RawMessage](ctx, s.client, get(walletPath+"/export", q))
}

// ValidateAddress checks an address on a network
func (s *walletService) ValidateAddress(ctx context.Context, address, network string) (bool, error) {
	result, err := call[struct {
		Valid bool `json:"valid"`
	}](ctx, s.client, get(walletPath+"/validate/"+url.PathEscape(address), queryOf("network", network)))
	if err != nil {
		return false, err
	}
	return result.Valid, nil
}

// ConnectionStatus reports the wallet connection
func (s *walletService) ConnectionStatus(ctx context.Context) (*WalletConnection, error) {
	return call[*WalletConnection](ctx, s.client, get(walletPath+"/status", nil))
}

// Refresh reloads wallet state from the network
func (s *walletService) Refresh(ctx context.Context) (*WalletInfo, error) {
	return call[*WalletInfo](ctx, s.client, post(walletPath+"/refresh", nil))
}

// Notifications lists wallet notifications
func (s *walletService) Notifications(ctx context.Context, limit int) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, s.client, get(walletPath+"/notifications", pageQuery(nil, limit, 0)))
}

// MarkNotificationRead marks a notification as read
func (s *walletService) MarkNotificationRead(ctx context.Context, notificationID string) error {
	_, err := call[json.RawMessage](ctx, s.client, put(walletPath+"/notification/"+url.PathEscape(notificationID)+"/read", nil))
	return err
}
