package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// CallbackRequest is the body the payment provider posts.
type CallbackRequest struct {
	Data string `json:"data"`
	MAC  string `json:"mac"`
}

// CallbackData is the decoded data field of a callback.
type CallbackData struct {
	AppID          json.Number `json:"app_id"`
	AppTransID     string      `json:"app_trans_id"`
	AppTime        int64       `json:"app_time"`
	AppUser        string      `json:"app_user"`
	Amount         int64       `json:"amount"`
	EmbedData      string      `json:"embed_data"`
	Item           string      `json:"item"`
	ZpTransID      int64       `json:"zp_trans_id"`
	ServerTime     int64       `json:"server_time"`
	Channel        int         `json:"channel"`
	MerchantUserID string      `json:"merchant_user_id"`
}

// EmbedData is the merchant payload echoed back by the provider.
type EmbedData struct {
	OrderID     FlexibleString `json:"orderId"`
	RedirectURL string         `json:"redirecturl,omitempty"`
}

// FlexibleString decodes from either a JSON string or a JSON number.
type FlexibleString string

func (s *FlexibleString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexibleString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*s = FlexibleString(n.String())
	return nil
}

// CallbackSuccess is the provider envelope for an accepted callback.
type CallbackSuccess struct {
	Status string        `json:"status"`
	Data   OrderResponse `json:"data"`
}

// CallbackFailure is the provider envelope for a rejected callback.
type CallbackFailure struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

// PaymentData is what the gateway returns when a bank transfer is opened.
type PaymentData struct {
	ReturnCode       int    `json:"return_code"`
	ReturnMessage    string `json:"return_message"`
	SubReturnCode    int    `json:"sub_return_code"`
	SubReturnMessage string `json:"sub_return_message"`
	OrderURL         string `json:"order_url"`
	ZpTransToken     string `json:"zp_trans_token"`
	OrderToken       string `json:"order_token"`
	QRCode           string `json:"qr_code"`
	AppTransID       string `json:"app_trans_id"`
}

// PaymentResponse wraps gateway output for the API envelope.
type PaymentResponse struct {
	PaymentData *PaymentData `json:"paymentData"`
}
