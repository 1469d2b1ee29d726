package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Domain is a tokenized domain name as seen by the indexer.
type Domain struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	TokenID string `json:"tokenId,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

// Client queries the domain-name subgraph. The upstream schema varies between
// deployments, so the client tries several query shapes and falls back to a
// canned domain list when the URL is unset or the endpoint rejects the key.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, url, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		url:        strings.TrimSpace(url),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
		logger:     logger,
	}
}

var queryShapes = []struct {
	name  string
	query string
}{
	{
		name: "items.tokens.tokenId",
		query: `query ListNamesTokens {
  names {
    items {
      name
      tokens {
        tokenId
        owner { id }
      }
    }
  }
}`,
	},
	{
		name: "items.nameOnly",
		query: `query ListNamesNameOnly {
  names {
    items {
      name
    }
  }
}`,
	},
	{
		name: "items.basic",
		query: `query ListNamesBasic {
  names {
    items {
      id
      name
    }
  }
}`,
	},
}

var unauthorizedRe = regexp.MustCompile(`(?i)401|UNAUTHENTICATED|api key is missing`)

// ListDomains returns the indexed domains. Mock fallback applies when no URL
// is configured or every shape fails looking unauthorized; other failures
// surface as errors.
func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	if c == nil || c.url == "" {
		if c != nil && c.logger != nil {
			c.logger.Info("subgraph url not set, using mock domains")
		}
		return MockDomains(), nil
	}

	var failures []string
	for _, shape := range queryShapes {
		raw, err := c.post(ctx, shape.query)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", shape.name, err))
			continue
		}
		var resp graphQLResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", shape.name, err))
			continue
		}
		if len(resp.Errors) > 0 {
			failures = append(failures, fmt.Sprintf("%s: %s", shape.name, resp.Errors[0].Message))
			continue
		}
		return flattenNames(resp.Data.Names), nil
	}

	combined := strings.Join(failures, " | ")
	if unauthorizedRe.MatchString(combined) {
		if c.logger != nil {
			c.logger.Warn("subgraph unauthorized, using mock domains", zap.String("errors", combined))
		}
		return MockDomains(), nil
	}
	return nil, fmt.Errorf("subgraph query failed, tried shapes: %s", combined)
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d %s", resp.StatusCode, string(body))
	}
	return body, nil
}

type graphQLResponse struct {
	Data struct {
		Names namesPayload `json:"names"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type namesPayload struct {
	Items []nameItem `json:"items"`
}

type nameItem struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Tokens []nameToken `json:"tokens"`
}

type nameToken struct {
	ID      string `json:"id"`
	TokenID string `json:"tokenId"`
	Owner   struct {
		ID string `json:"id"`
	} `json:"owner"`
	OwnerAddress string `json:"ownerAddress"`
}

func flattenNames(names namesPayload) []Domain {
	out := make([]Domain, 0, len(names.Items))
	for _, item := range names.Items {
		name := item.Name
		if name == "" {
			name = item.Label
		}
		if len(item.Tokens) == 0 {
			out = append(out, Domain{ID: item.ID, Name: name})
			continue
		}
		for _, t := range item.Tokens {
			tokenID := t.TokenID
			if tokenID == "" {
				tokenID = t.ID
			}
			owner := t.Owner.ID
			if owner == "" {
				owner = t.OwnerAddress
			}
			id := t.ID
			if id == "" {
				id = tokenID
			}
			out = append(out, Domain{
				ID:      id,
				Name:    name,
				TokenID: tokenID,
				Owner:   owner,
			})
		}
	}
	return out
}

// MockDomains mirrors the canned subgraph response used when the indexer is
// unreachable.
func MockDomains() []Domain {
	return []Domain{
		{ID: "1", Name: "alice.doma", TokenID: "1", Owner: "0xAbC000000000000000000000000000000000AbC0"},
		{ID: "2", Name: "bob.doma", TokenID: "2", Owner: "0xDef000000000000000000000000000000000Def0"},
	}
}
