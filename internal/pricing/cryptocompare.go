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

const defaultCryptoCompareEndpoint = "https://min-api.cryptocompare.com/data/price"

// cryptoCompareSymbols maps ticker symbols to CryptoCompare identifiers.
// CryptoCompare mostly uses exchange tickers directly; the table exists so
// that divergent listings stay explicit.
var cryptoCompareSymbols = map[string]string{
	"BTC":   "BTC",
	"LTC":   "LTC",
	"ETH":   "ETH",
	"BCH":   "BCH",
	"DOGE":  "DOGE",
	"DASH":  "DASH",
	"XRP":   "XRP",
	"TRX":   "TRX",
	"SOL":   "SOL",
	"BNB":   "BNB",
	"MATIC": "MATIC",
	"USDT":  "USDT",
	"USDC":  "USDC",
}

// CryptoCompare adapts the CryptoCompare single-price API. The API key is
// optional for low-volume use and only attached when configured.
type CryptoCompare struct {
	client   HTTPDoer
	endpoint string
	apiKey   string
}

// NewCryptoCompare constructs the adapter.
func NewCryptoCompare(client HTTPDoer, endpoint, apiKey string) *CryptoCompare {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultCryptoCompareEndpoint
	}
	return &CryptoCompare{client: client, endpoint: endpoint, apiKey: strings.TrimSpace(apiKey)}
}

func (c *CryptoCompare) Name() string { return "cryptocompare" }

// USDPrice fetches the USD unit price for the symbol.
func (c *CryptoCompare) USDPrice(ctx context.Context, symbol string) (float64, error) {
	mapped, ok := cryptoCompareSymbols[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("cryptocompare: unmapped symbol %q", symbol)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return 0, err
	}
	values := url.Values{}
	values.Set("fsym", mapped)
	values.Set("tsyms", "USD")
	req.URL.RawQuery = values.Encode()
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("cryptocompare: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		USD float64 `json:"USD"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("cryptocompare: decode: %w", err)
	}
	if payload.USD <= 0 {
		return 0, fmt.Errorf("cryptocompare: no usd quote for %q", symbol)
	}

	return payload.USD, nil
}
