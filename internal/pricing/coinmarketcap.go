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

const defaultCoinMarketCapEndpoint = "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest"

// coinMarketCapSymbols maps ticker symbols to CoinMarketCap listing symbols.
var coinMarketCapSymbols = map[string]string{
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

// CoinMarketCap adapts the CoinMarketCap quotes API. A missing API key makes
// every lookup fail, which the resolver treats as an ordinary fall-through.
type CoinMarketCap struct {
	client   HTTPDoer
	endpoint string
	apiKey   string
}

// NewCoinMarketCap constructs the adapter.
func NewCoinMarketCap(client HTTPDoer, endpoint, apiKey string) *CoinMarketCap {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultCoinMarketCapEndpoint
	}
	return &CoinMarketCap{client: client, endpoint: endpoint, apiKey: strings.TrimSpace(apiKey)}
}

func (c *CoinMarketCap) Name() string { return "coinmarketcap" }

// USDPrice fetches the USD unit price for the symbol.
func (c *CoinMarketCap) USDPrice(ctx context.Context, symbol string) (float64, error) {
	if c.apiKey == "" {
		return 0, fmt.Errorf("coinmarketcap: api key not configured")
	}

	mapped, ok := coinMarketCapSymbols[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("coinmarketcap: unmapped symbol %q", symbol)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return 0, err
	}
	values := url.Values{}
	values.Set("symbol", mapped)
	values.Set("convert", "USD")
	req.URL.RawQuery = values.Encode()
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("coinmarketcap: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Data map[string]struct {
			Quote struct {
				USD struct {
					Price float64 `json:"price"`
				} `json:"USD"`
			} `json:"quote"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("coinmarketcap: decode: %w", err)
	}

	entry, ok := payload.Data[mapped]
	if !ok || entry.Quote.USD.Price <= 0 {
		return 0, fmt.Errorf("coinmarketcap: no usd quote for %q", symbol)
	}

	return entry.Quote.USD.Price, nil
}
