// Package motilal is the REST delegator for the Motilal Oswal open API.
// One Client is held per authenticated account, mirroring the broker's
// one-token-per-login session model.
package motilal

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"main/internal/adapter"
	"main/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/pquerna/otp/totp"
	"github.com/yanun0323/errors"
)

const (
	_loginPath     = "/rest/login/v3/authdirectapi"
	_placePath     = "/rest/trans/v1/placeorder"
	_cancelPath    = "/rest/trans/v2/cancelorder"
	_orderBookPath = "/rest/book/v1/getorderbook"

	_statusSuccess = "SUCCESS"
)

// Config carries the static request attributes the broker expects.
type Config struct {
	BaseURL        string
	APIKey         string
	SourceID       string
	BrowserName    string
	BrowserVersion string
}

type Client struct {
	client *http.Client
	cfg    Config

	mu        sync.RWMutex
	authToken string
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		client: httpClient,
		cfg:    cfg,
	}
}

// Login authenticates the client's account and stores the session token.
// A TOTP second factor is generated when the credential record carries a
// secret.
func (c *Client) Login(ctx context.Context, cred adapter.Client) error {
	code := ""
	if cred.TOTPKey != "" {
		generated, err := totp.GenerateCode(cred.TOTPKey, time.Now())
		if err != nil {
			return errors.Wrap(err, "generate totp")
		}
		code = generated
	}

	body := loginRequest{
		UserID:     cred.UserID,
		Password:   cred.Password,
		SecondAuth: cred.PAN,
		TOTP:       code,
		VendorInfo: cred.UserID,
	}

	var resp loginResponse
	if err := c.post(ctx, _loginPath, cred.UserID, body, &resp); err != nil {
		return err
	}
	if resp.Status != _statusSuccess || resp.AuthToken == "" {
		return errors.Wrap(exception.ErrBrokerLoginFailed, resp.Message)
	}

	c.mu.Lock()
	c.authToken = resp.AuthToken
	c.mu.Unlock()
	return nil
}

// PlaceOrder submits a placement and returns the broker's order id.
func (c *Client) PlaceOrder(ctx context.Context, intent adapter.ChildOrderIntent) (string, error) {
	var resp placeOrderResponse
	if err := c.post(ctx, _placePath, intent.ClientCode, intent, &resp); err != nil {
		return "", err
	}
	if resp.Status != _statusSuccess {
		return "", errors.Wrap(exception.ErrBrokerStatus, resp.Message)
	}
	if resp.UniqueOrderID == "" {
		return "", exception.ErrBrokerEmptyOrderID
	}
	return resp.UniqueOrderID, nil
}

// CancelOrder submits a cancellation for a previously placed order.
func (c *Client) CancelOrder(ctx context.Context, orderID, clientCode string) (string, error) {
	body := cancelOrderRequest{
		ClientCode:    clientCode,
		UniqueOrderID: orderID,
	}

	var resp statusResponse
	if err := c.post(ctx, _cancelPath, clientCode, body, &resp); err != nil {
		return "", err
	}
	if resp.Status != _statusSuccess {
		return resp.Message, errors.Wrap(exception.ErrBrokerStatus, resp.Message)
	}
	return resp.Message, nil
}

// OrderBook fetches the account's current order book snapshot.
func (c *Client) OrderBook(ctx context.Context, clientCode string) ([]adapter.MasterOrder, error) {
	body := orderBookRequest{ClientCode: clientCode}

	var resp orderBookResponse
	if err := c.post(ctx, _orderBookPath, clientCode, body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != _statusSuccess {
		return nil, errors.Wrap(exception.ErrBrokerStatus, resp.Message)
	}
	return resp.Data, nil
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

func (c *Client) post(ctx context.Context, path, clientCode string, body any, out any) error {
	payload, err := sonic.ConfigFastest.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request body")
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	r.Header.Set("ApiKey", c.cfg.APIKey)
	r.Header.Set("SourceId", c.cfg.SourceID)
	r.Header.Set("browsername", c.cfg.BrowserName)
	r.Header.Set("browserversion", c.cfg.BrowserVersion)
	r.Header.Set("vendorinfo", clientCode)
	if token := c.token(); token != "" {
		r.Header.Set("Authorization", token)
	} else if path != _loginPath {
		return exception.ErrBrokerNotLoggedIn
	}

	res, err := c.client.Do(r)
	if err != nil {
		return errors.Wrapf(err, "post %s", path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "read response body of %s", path)
	}
	if err := sonic.ConfigFastest.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(exception.ErrBrokerDecodeBody, "%s: %s", path, err.Error())
	}
	return nil
}
