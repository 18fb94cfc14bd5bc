// Package wallet dispatches reward payouts through an external signer
// service. The service holds the private key; this client only asks it to
// send a fixed-amount transaction and reports the resulting hash. Failures
// are surfaced to the caller, never retried.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const httpCallTimeout = 10 * time.Second

// Client implements domain.RewardDispatcher against the payout HTTP API.
type Client struct {
	baseURL   string
	apiKey    string
	amountWei string
	http      *http.Client
}

func NewClient(baseURL, apiKey, amountWei string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		amountWei: amountWei,
		http:      &http.Client{Timeout: httpCallTimeout},
	}
}

type payoutRequest struct {
	To        string `json:"to"`
	AmountWei string `json:"amountWei"`
}

type payoutResponse struct {
	TxHash string `json:"txHash"`
	Error  string `json:"error,omitempty"`
}

// Dispatch asks the signer service to pay the wallet and returns the
// transaction hash.
func (c *Client) Dispatch(ctx context.Context, wallet string) (string, error) {
	body, err := json.Marshal(payoutRequest{To: wallet, AmountWei: c.amountWei})
	if err != nil {
		return "", fmt.Errorf("marshal payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payouts", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute payout request: %w", err)
	}
	defer resp.Body.Close()

	var parsed payoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode payout response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != "" {
			return "", fmt.Errorf("payout service returned status %d: %s", resp.StatusCode, parsed.Error)
		}
		return "", fmt.Errorf("payout service returned status %d", resp.StatusCode)
	}
	if parsed.TxHash == "" {
		return "", fmt.Errorf("payout service returned no transaction hash")
	}

	return parsed.TxHash, nil
}
