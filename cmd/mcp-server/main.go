package main

import (
	"context"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ubeu-platform/ubeu-go/pkg/ubeu"
)

func main() {
	// Credentials come from the environment
	token := os.Getenv("UBEU_TOKEN")
	apiKey := os.Getenv("UBEU_API_KEY")
	if token == "" && apiKey == "" {
		log.Fatal("UBEU_TOKEN or UBEU_API_KEY environment variable is required")
	}

	client, err := ubeu.NewClient(&ubeu.ClientOptions{
		BaseURL:     os.Getenv("UBEU_BASE_URL"),
		Token:       token,
		APIKey:      apiKey,
		Environment: os.Getenv("UBEU_ENVIRONMENT"),
	})
	if err != nil {
		log.Fatalf("failed to initialize UBeU client: %v", err)
	}
	defer client.Close()

	impl := &mcp.Implementation{
		Name:    "ubeu",
		Version: ubeu.Version,
	}

	server := mcp.NewServer(impl, nil)
	registerTools(server, client)

	// Run server over stdio transport
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func registerTools(server *mcp.Server, client *ubeu.Client) {
	tools := &ubeuTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_status",
		Description: "Get the UBeU client status: whether it is authenticated, the SDK version, and which platform services answer their health checks.",
	}, tools.GetStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_did",
		Description: "Resolve a decentralized identifier (DID) to its record, including the owning user, context and Hedera topic.",
	}, tools.ResolveDID)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_credential",
		Description: "Get a verifiable credential by ID, including its types, issuer, issuance date and subject claims.",
	}, tools.GetCredential)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "verify_credential",
		Description: "Verify a verifiable credential by ID and report whether it is valid.",
	}, tools.VerifyCredential)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_credentials",
		Description: "List verifiable credentials, optionally filtered by holder user ID and status.",
	}, tools.ListCredentials)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_wallet_balance",
		Description: "Get the native token balance of a wallet address on a network.",
	}, tools.GetWalletBalance)
}
