package usecase

// Queued for the notification consumer after a subscription outcome.
type OrderConfirmationMsg struct {
	RequestID       string `json:"requestId"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ToteCount       int    `json:"toteCount"`
	SetupCost       int64  `json:"setupCost"`   // dollars
	MonthlyCost     int64  `json:"monthlyCost"` // dollars
	SubscriptionID  string `json:"subscriptionId,omitempty"`
	NextBillingDate string `json:"nextBillingDate,omitempty"`
	// "active" or "pending_manual_setup"
	SubscriptionStatus string `json:"subscriptionStatus"`
}
