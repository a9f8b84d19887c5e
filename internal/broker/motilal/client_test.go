package motilal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"main/internal/adapter"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path    string
	headers http.Header
	body    map[string]any
}

func newBrokerServer(t *testing.T, respond func(path string) (int, string)) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		captured = append(captured, capturedRequest{
			path:    r.URL.Path,
			headers: r.Header.Clone(),
			body:    body,
		})
		status, payload := respond(r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func newLoggedInClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client := NewClient(server.Client(), Config{
		BaseURL:        server.URL,
		APIKey:         "key",
		SourceID:       "Desktop",
		BrowserName:    "chrome",
		BrowserVersion: "104",
	})
	err := client.Login(t.Context(), adapter.Client{Name: "Alice", UserID: "C1", Password: "pw", PAN: "ABCDE1234F"})
	require.NoError(t, err)
	return client
}

func TestLoginStoresToken(t *testing.T) {
	server, captured := newBrokerServer(t, func(string) (int, string) {
		return http.StatusOK, `{"status":"SUCCESS","message":"ok","AuthToken":"tok-1"}`
	})

	client := newLoggedInClient(t, server)
	assert.Equal(t, "tok-1", client.token())

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, _loginPath, req.path)
	assert.Equal(t, "key", req.headers.Get("ApiKey"))
	assert.Equal(t, "Desktop", req.headers.Get("SourceId"))
	assert.Equal(t, "C1", req.headers.Get("vendorinfo"))
	assert.Equal(t, "C1", req.body["userid"])
	assert.Equal(t, "ABCDE1234F", req.body["2FA"])
}

func TestLoginRejected(t *testing.T) {
	server, _ := newBrokerServer(t, func(string) (int, string) {
		return http.StatusOK, `{"status":"FAILED","message":"wrong password"}`
	})

	client := NewClient(server.Client(), Config{BaseURL: server.URL})
	err := client.Login(t.Context(), adapter.Client{UserID: "C1", Password: "bad"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "login rejected")
	assert.Empty(t, client.token())
}

func TestLoginGeneratesTOTPFromSecret(t *testing.T) {
	server, captured := newBrokerServer(t, func(string) (int, string) {
		return http.StatusOK, `{"status":"SUCCESS","AuthToken":"tok-1"}`
	})

	client := NewClient(server.Client(), Config{BaseURL: server.URL})
	err := client.Login(t.Context(), adapter.Client{UserID: "C1", TOTPKey: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	require.Len(t, *captured, 1)
	code, _ := (*captured)[0].body["totp"].(string)
	assert.Len(t, code, 6)
}

func TestCallsRequireLogin(t *testing.T) {
	server, captured := newBrokerServer(t, func(string) (int, string) {
		return http.StatusOK, `{"status":"SUCCESS"}`
	})

	client := NewClient(server.Client(), Config{BaseURL: server.URL})
	_, err := client.OrderBook(t.Context(), "C1")
	assert.ErrorIs(t, err, exception.ErrBrokerNotLoggedIn)
	_, err = client.PlaceOrder(t.Context(), adapter.ChildOrderIntent{ClientCode: "C1"})
	assert.ErrorIs(t, err, exception.ErrBrokerNotLoggedIn)
	assert.Empty(t, *captured)
}

func TestPlaceOrder(t *testing.T) {
	server, captured := newBrokerServer(t, func(path string) (int, string) {
		if path == _loginPath {
			return http.StatusOK, `{"status":"SUCCESS","AuthToken":"tok-1"}`
		}
		return http.StatusOK, `{"status":"SUCCESS","message":"ok","uniqueorderid":"ORD-9"}`
	})
	client := newLoggedInClient(t, server)

	orderID, err := client.PlaceOrder(t.Context(), adapter.ChildOrderIntent{
		ClientCode:    "C1",
		Exchange:      "NSE",
		SecurityID:    1594,
		Side:          "BUY",
		OrderType:     "STOPLOSS",
		Price:         decimal.NewFromFloat(1520.55),
		TriggerPrice:  decimal.NewFromFloat(1518.2),
		QuantityInLot: 10,
		AMOOrder:      "N",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", orderID)

	req := (*captured)[1]
	assert.Equal(t, _placePath, req.path)
	assert.Equal(t, "tok-1", req.headers.Get("Authorization"))
	assert.Equal(t, "C1", req.body["clientcode"])
	assert.Equal(t, float64(1594), req.body["symboltoken"])
	assert.Equal(t, float64(10), req.body["quantityinlot"])
	// Prices go out as bare JSON numbers, never quoted strings.
	assert.Equal(t, 1520.55, req.body["price"])
	assert.Equal(t, 1518.2, req.body["triggerprice"])
}

func TestPlaceOrderZeroPricesStayNumeric(t *testing.T) {
	server, captured := newBrokerServer(t, func(path string) (int, string) {
		if path == _loginPath {
			return http.StatusOK, `{"status":"SUCCESS","AuthToken":"tok-1"}`
		}
		return http.StatusOK, `{"status":"SUCCESS","uniqueorderid":"ORD-9"}`
	})
	client := newLoggedInClient(t, server)

	_, err := client.PlaceOrder(t.Context(), adapter.ChildOrderIntent{
		ClientCode:    "C1",
		OrderType:     "MARKET",
		QuantityInLot: 1,
	})
	require.NoError(t, err)

	req := (*captured)[1]
	assert.Equal(t, float64(0), req.body["price"])
	assert.Equal(t, float64(0), req.body["triggerprice"])
}

func TestPlaceOrderBrokerFailure(t *testing.T) {
	server, _ := newBrokerServer(t, func(path string) (int, string) {
		if path == _loginPath {
			return http.StatusOK, `{"status":"SUCCESS","AuthToken":"tok-1"}`
		}
		return http.StatusOK, `{"status":"ERROR","message":"margin shortfall"}`
	})
	client := newLoggedInClient(t, server)

	_, err := client.PlaceOrder(t.Context(), adapter.ChildOrderIntent{ClientCode: "C1"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "margin shortfall")
}

func TestPlaceOrderEmptyOrderID(t *testing.T) {
	server, _ := newBrokerServer(t, func(path string) (int, string) {
		if path == _loginPath {
			return http.StatusOK, `{"status":"SUCCESS","AuthToken":"tok-1"}`
		}
		return http.StatusOK, `{"status":"SUCCESS","message":"ok"}`
	})
	client := newLoggedInClient(t, server)

	_, err := client.PlaceOrder(t.Context(), adapter.ChildOrderIntent{ClientCode: "C1"})
	assert.ErrorIs(t, err, exception.ErrBrokerEmptyOrderID)
}

func TestCancelOrder(t *testing.T) {
	server, captured := newBrokerServer(t, func(path string) (int, string) {
		if path == _loginPath {
			return http.StatusOK, `{"status":"SUCCESS","AuthToken":"tok-1"}`
		}
		return http.StatusOK, `{"status":"SUCCESS","message":"cancelled"}`
	})
	client := newLoggedInClient(t, server)

	msg, err := client.CancelOrder(t.Context(), "ORD-9", "C1")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", msg)

	req := (*captured)[1]
	assert.Equal(t, _cancelPath, req.path)
	assert.Equal(t, "ORD-9", req.body["uniqueorderid"])
	assert.Equal(t, "C1", req.body["clientcode"])
}

func TestOrderBook(t *testing.T) {
	server, captured := newBrokerServer(t, func(path string) (int, string) {
		if path == _loginPath {
			return http.StatusOK, `{"status":"SUCCESS","AuthToken":"tok-1"}`
		}
		return http.StatusOK, `{
			"status": "SUCCESS",
			"data": [{
				"uniqueorderid": "1001",
				"recordinserttime": "15-Mar-2024 10:29:58",
				"orderstatus": "Confirm",
				"ordertype": "Market",
				"buyorsell": "Buy",
				"symboltoken": 1594,
				"exchange": "NSE",
				"orderqty": 10,
				"price": 1520.55,
				"triggerprice": 0
			}]
		}`
	})
	client := newLoggedInClient(t, server)

	orders, err := client.OrderBook(t.Context(), "C1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "1001", orders[0].UniqueOrderID)
	assert.Equal(t, "15-Mar-2024 10:29:58", orders[0].RecordInsertTime)
	assert.Equal(t, int64(1594), orders[0].SecurityID)
	assert.Equal(t, int64(10), orders[0].Quantity)
	// Numeric price fields decode straight off the wire.
	assert.True(t, orders[0].Price.Equal(decimal.NewFromFloat(1520.55)))
	assert.True(t, orders[0].TriggerPrice.IsZero())

	assert.Equal(t, _orderBookPath, (*captured)[1].path)
}

func TestDecodeFailure(t *testing.T) {
	server, _ := newBrokerServer(t, func(path string) (int, string) {
		if path == _loginPath {
			return http.StatusOK, `{"status":"SUCCESS","AuthToken":"tok-1"}`
		}
		return http.StatusOK, `<html>gateway timeout</html>`
	})
	client := newLoggedInClient(t, server)

	_, err := client.OrderBook(t.Context(), "C1")
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode response body")
}
