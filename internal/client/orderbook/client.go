package orderbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// Client talks to the on-chain orderbook/listing relayer. The call is opaque:
// it either returns a transaction hash or fails. With no base URL or API key
// configured the client runs offline and listings are prepared locally only.
type Client struct {
	host       string
	apiKey     string
	offline    bool
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("orderbook API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, apiKey string, offline bool) *Client {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	return &Client{
		host:       host,
		apiKey:     strings.TrimSpace(apiKey),
		offline:    offline || host == "" || strings.TrimSpace(apiKey) == "",
		httpClient: httpClient,
	}
}

// Offline reports whether on-chain listing is disabled for this process.
func (c *Client) Offline() bool {
	return c == nil || c.offline
}

type CreateDutchAuctionRequest struct {
	TokenID         string `json:"tokenId,omitempty"`
	DomainID        string `json:"domainId,omitempty"`
	ReservePriceWei string `json:"reservePriceWei"`
}

type Listing struct {
	OrderID string `json:"orderId,omitempty"`
	TxHash  string `json:"txHash,omitempty"`
}

// CreateDutchAuction submits a Dutch-auction listing. Returns nil in offline
// mode so callers can proceed with a stub listing.
func (c *Client) CreateDutchAuction(ctx context.Context, tokenID, domainID string, reservePriceWei decimal.Decimal) (*Listing, error) {
	if c.Offline() {
		return nil, nil
	}
	payload, err := json.Marshal(CreateDutchAuctionRequest{
		TokenID:         tokenID,
		DomainID:        domainID,
		ReservePriceWei: reservePriceWei.String(),
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/listings/dutch", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	var listing Listing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return &listing, nil
}
