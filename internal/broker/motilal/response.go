package motilal

import "main/internal/adapter"

type loginRequest struct {
	UserID     string `json:"userid"`
	Password   string `json:"password"`
	SecondAuth string `json:"2FA"`
	TOTP       string `json:"totp"`
	VendorInfo string `json:"vendorinfo"`
}

type loginResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	AuthToken string `json:"AuthToken"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type placeOrderResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	UniqueOrderID string `json:"uniqueorderid"`
}

type cancelOrderRequest struct {
	ClientCode    string `json:"clientcode"`
	UniqueOrderID string `json:"uniqueorderid"`
}

type orderBookRequest struct {
	ClientCode string `json:"clientcode"`
}

type orderBookResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Data    []adapter.MasterOrder `json:"data"`
}
