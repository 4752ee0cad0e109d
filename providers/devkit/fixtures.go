package devkit

import "net/http"

// Canned PayPal responses for provider tests.

func AccessTokenScript(token string) TransportScript {
	return JSONScript(http.StatusOK, map[string]any{
		"scope":        "https://uri.paypal.com/services/payments/payment",
		"access_token": token,
		"token_type":   "Bearer",
		"app_id":       "APP-80W284485P519543T",
		"expires_in":   32400,
	})
}

func CreatedOrderScript(orderID string) TransportScript {
	return JSONScript(http.StatusCreated, map[string]any{
		"id":     orderID,
		"status": "CREATED",
	})
}

func SmartTokenScript(token string) TransportScript {
	return JSONScript(http.StatusOK, map[string]any{
		"ack":  "success",
		"data": map[string]any{"token": token},
	})
}

func SmartErrorScript() TransportScript {
	return JSONScript(http.StatusOK, map[string]any{
		"ack":  "error",
		"data": map[string]any{},
	})
}

func APIErrorScript(status int, name string, message string, debugID string) TransportScript {
	return JSONScript(status, map[string]any{
		"name":     name,
		"message":  message,
		"debug_id": debugID,
	})
}
