package httpapi

import "tradebridge/internal/domain"

// WebhookRequest is the JSON body posted by the TradingView alert webhook.
type WebhookRequest struct {
	Orders []domain.OrderIntent `json:"orders"`
}

// WebhookResponse summarizes the outcome of a processed batch.
type WebhookResponse struct {
	Status           string               `json:"status"`
	TotalOrders      int                  `json:"total_orders"`
	SuccessfulOrders int                  `json:"successful_orders"`
	FailedOrders     int                  `json:"failed_orders"`
	Results          []domain.OrderResult `json:"results"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Broker string `json:"broker"`
}
