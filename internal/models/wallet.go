package models

import "time"

// Fund transaction types as the backend records them.
const (
	FundsDeposit  = "deposit"
	FundsWithdraw = "withdraw"
)

// Wallet is the backend wallet balance response.
type Wallet struct {
	WalletBalance float64 `json:"walletBalance"`
}

// FundsTransaction is a single deposit or withdrawal.
type FundsTransaction struct {
	ID        string    `json:"_id"`
	Type      string    `json:"type"` // "deposit" or "withdraw"
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// FundsTransactionsResponse wraps the transaction history endpoint.
type FundsTransactionsResponse struct {
	Transactions []FundsTransaction `json:"transactions"`
}

// FundsRequest is the deposit/withdraw payload.
type FundsRequest struct {
	Amount float64 `json:"amount"`
}
