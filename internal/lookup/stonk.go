package lookup

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var tickerRe = regexp.MustCompile(`^[A-Za-z0-9.\-^=]{1,15}$`)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// Quote is the most recent close for a ticker.
type Quote struct {
	Ticker string
	Close  float64
}

func (q Quote) String() string { return fmt.Sprintf("%s: $%.2f", q.Ticker, q.Close) }

// Stonk fetches the latest non-empty close from the daily chart of ticker.
func (c *Client) Stonk(ctx context.Context, ticker string) (Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !tickerRe.MatchString(ticker) {
		return Quote{}, fmt.Errorf("%w: ticker %q", ErrBadRequest, ticker)
	}

	var resp chartResponse
	if err := c.getJSON(ctx, c.stonkBase+"/"+url.PathEscape(ticker), &resp); err != nil {
		return Quote{}, err
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return Quote{}, ErrNotFound
	}
	closes := resp.Chart.Result[0].Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return Quote{Ticker: ticker, Close: *closes[i]}, nil
		}
	}
	return Quote{}, ErrNotFound
}
