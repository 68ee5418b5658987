// Package binance is the REST and stream client shared by all three venues.
// One Client is constructed per venue from its resolved settings; there are
// no package-level singletons.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"binance-cli/internal/param"
	"binance-cli/internal/venue"
)

type AuthType int

const (
	AuthNone AuthType = iota
	AuthAPIKey
	AuthSigned
)

// depthLimits is the venue's enumerated set of valid order book depths.
var depthLimits = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

const defaultDepthLimit = 100

type Client struct {
	settings   venue.Settings
	recvWindow time.Duration
	httpClient *http.Client
	log        *logrus.Entry
}

type Options struct {
	HTTPTimeout time.Duration
	RecvWindow  time.Duration
	Log         *logrus.Logger
}

func NewClient(settings venue.Settings, opts Options) *Client {
	timeout := 15 * time.Second
	if opts.HTTPTimeout > 0 {
		timeout = opts.HTTPTimeout
	}
	recvWindow := 5000 * time.Millisecond
	if opts.RecvWindow > 0 {
		recvWindow = opts.RecvWindow
	}
	log := opts.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	return &Client{
		settings:   settings,
		recvWindow: recvWindow,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithField("venue", settings.ID),
	}
}

func (c *Client) Credentials() venue.Credentials { return c.settings.Credentials }
func (c *Client) Venue() venue.Descriptor        { return c.settings.Descriptor }

func (c *Client) Time(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/time", url.Values{}, AuthNone)
}

func (c *Client) ExchangeInfo(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/exchangeInfo", url.Values{}, AuthNone)
}

// Depth validates the limit against the venue's enumerated set before any
// request goes out; an absent limit falls back to the venue default of 100.
func (c *Client) Depth(ctx context.Context, symbol, limit string) (json.RawMessage, error) {
	n := defaultDepthLimit
	if strings.TrimSpace(limit) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil {
			return nil, fmt.Errorf("invalid depth limit %q, valid limits: %v", limit, depthLimits)
		}
		n = parsed
	}
	if !validDepthLimit(n) {
		return nil, fmt.Errorf("invalid depth limit %d, valid limits: %v", n, depthLimits)
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(n))
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/depth", params, AuthNone)
}

func validDepthLimit(n int) bool {
	for _, l := range depthLimits {
		if n == l {
			return true
		}
	}
	return false
}

func (c *Client) Trades(ctx context.Context, symbol string, opts param.Bag) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	applyBag(params, opts)
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/trades", params, AuthNone)
}

// HistoricalTrades is the one key-gated (but unsigned) lookup.
func (c *Client) HistoricalTrades(ctx context.Context, symbol string, opts param.Bag) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	applyBag(params, opts)
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/historicalTrades", params, AuthAPIKey)
}

func (c *Client) AggTrades(ctx context.Context, symbol string, opts param.Bag) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	applyBag(params, opts)
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/aggTrades", params, AuthNone)
}

func (c *Client) Klines(ctx context.Context, symbol, interval string, opts param.Bag) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	applyBag(params, opts)
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/klines", params, AuthNone)
}

func (c *Client) AvgPrice(ctx context.Context, symbol string) (json.RawMessage, error) {
	if !c.settings.HasAvgPrice {
		return nil, fmt.Errorf("avg price is not available on %s", c.settings.Label)
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/avgPrice", params, AuthNone)
}

func (c *Client) Ticker24hr(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/ticker/24hr", symbolParams(symbol), AuthNone)
}

func (c *Client) TickerPrice(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/ticker/price", symbolParams(symbol), AuthNone)
}

func (c *Client) BookTicker(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/ticker/bookTicker", symbolParams(symbol), AuthNone)
}

func (c *Client) Account(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.settings.AccountPath, url.Values{}, AuthSigned)
}

func (c *Client) NewOrder(ctx context.Context, symbol, side, orderType string, opts param.Bag) (json.RawMessage, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, errors.New("symbol is required. you can set it like: --symbol=BNBUSDT")
	}
	if strings.TrimSpace(side) == "" {
		return nil, errors.New("side is required. you can set it like: --side=BUY")
	}
	if strings.TrimSpace(orderType) == "" {
		return nil, errors.New("order type is required. you can set it like: --type=LIMIT")
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", strings.ToUpper(side))
	params.Set("type", strings.ToUpper(orderType))
	applyBag(params, opts)
	return c.doRequest(ctx, http.MethodPost, c.settings.PathPrefix+"/order", params, AuthSigned)
}

// OrderRef selects an order by exchange id or by the client id used when the
// order was placed. When both are set, OrderID wins; the venue is never sent
// both identifiers.
type OrderRef struct {
	OrderID           string
	OrigClientOrderID string
}

func (r OrderRef) apply(params url.Values) error {
	switch {
	case strings.TrimSpace(r.OrderID) != "":
		params.Set("orderId", strings.TrimSpace(r.OrderID))
	case strings.TrimSpace(r.OrigClientOrderID) != "":
		params.Set("origClientOrderId", strings.TrimSpace(r.OrigClientOrderID))
	default:
		return errors.New("either orderId or origClientOrderId must be sent")
	}
	return nil
}

func (c *Client) GetOrder(ctx context.Context, symbol string, ref OrderRef) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	if err := ref.apply(params); err != nil {
		return nil, err
	}
	return c.doRequest(ctx, http.MethodGet, c.settings.PathPrefix+"/order", params, AuthSigned)
}

func (c *Client) CancelOrder(ctx context.Context, symbol string, ref OrderRef) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	if err := ref.apply(params); err != nil {
		return nil, err
	}
	return c.doRequest(ctx, http.MethodDelete, c.settings.PathPrefix+"/order", params, AuthSigned)
}

func (c *Client) CancelAllOpenOrders(ctx context.Context, symbol string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	return c.doRequest(ctx, http.MethodDelete, c.settings.CancelAllPath, params, AuthSigned)
}

func symbolParams(symbol string) url.Values {
	params := url.Values{}
	if strings.TrimSpace(symbol) != "" {
		params.Set("symbol", symbol)
	}
	return params
}

// applyBag merges the normalized option bag into the request parameters.
func applyBag(params url.Values, bag param.Bag) {
	for k, v := range param.Normalize(bag) {
		params.Set(k, fmt.Sprint(v))
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, auth AuthType) (json.RawMessage, error) {
	if auth == AuthSigned {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		if c.recvWindow > 0 {
			params.Set("recvWindow", strconv.FormatInt(c.recvWindow.Milliseconds(), 10))
		}
		signature := sign(c.settings.Credentials.APISecret, params.Encode())
		params.Set("signature", signature)
	}
	var (
		req *http.Request
		err error
	)
	urlStr := c.settings.BaseURL + path
	if method == http.MethodGet || method == http.MethodDelete {
		if encoded := params.Encode(); encoded != "" {
			urlStr += "?" + encoded
		}
		req, err = http.NewRequestWithContext(ctx, method, urlStr, nil)
	} else {
		body := params.Encode()
		req, err = http.NewRequestWithContext(ctx, method, urlStr, strings.NewReader(body))
	}
	if err != nil {
		return nil, err
	}
	if method != http.MethodGet && method != http.MethodDelete {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if auth == AuthAPIKey || auth == AuthSigned {
		req.Header.Set("X-MBX-APIKEY", c.settings.Credentials.APIKey)
	}
	c.log.WithFields(logrus.Fields{"method": method, "path": path}).Debug("venue request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.log.WithField("status", resp.StatusCode).Debug("venue response")
	if resp.StatusCode/100 != 2 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func parseAPIError(status int, body []byte) error {
	apiErr := APIError{Status: status, Body: append([]byte(nil), body...)}
	var wire struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Msg != "" {
		apiErr.Code = wire.Code
		apiErr.Msg = wire.Msg
	}
	return apiErr
}

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
