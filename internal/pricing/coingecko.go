package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultCoinGeckoEndpoint = "https://api.coingecko.com/api/v3/simple/price"

// coinGeckoIDs maps ticker symbols to CoinGecko asset identifiers.
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"LTC":   "litecoin",
	"ETH":   "ethereum",
	"BCH":   "bitcoin-cash",
	"DOGE":  "dogecoin",
	"DASH":  "dash",
	"XRP":   "ripple",
	"TRX":   "tron",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"MATIC": "matic-network",
	"USDT":  "tether",
	"USDC":  "usd-coin",
}

// CoinGecko adapts the public CoinGecko simple price API. No credential is
// required.
type CoinGecko struct {
	client   HTTPDoer
	endpoint string
}

// NewCoinGecko constructs the adapter. When client is nil http.DefaultClient
// is used; an empty endpoint falls back to the public API.
func NewCoinGecko(client HTTPDoer, endpoint string) *CoinGecko {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultCoinGeckoEndpoint
	}
	return &CoinGecko{client: client, endpoint: endpoint}
}

func (c *CoinGecko) Name() string { return "coingecko" }

// USDPrice fetches the USD unit price for the symbol.
func (c *CoinGecko) USDPrice(ctx context.Context, symbol string) (float64, error) {
	id, ok := coinGeckoIDs[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("coingecko: unmapped symbol %q", symbol)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return 0, err
	}
	values := url.Values{}
	values.Set("ids", id)
	values.Set("vs_currencies", "usd")
	req.URL.RawQuery = values.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("coingecko: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("coingecko: decode: %w", err)
	}

	entry, ok := payload[id]
	if !ok || entry.USD <= 0 {
		return 0, fmt.Errorf("coingecko: no usd quote for %q", symbol)
	}

	return entry.USD, nil
}
