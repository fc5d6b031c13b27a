package models

import "leagueledger/internal/league"

// Record is one user's ledger entry as returned by the API. League is always
// recomputed from Tokens before a record leaves the service layer.
type Record struct {
	UserID       string        `json:"userId"`
	Tokens       int64         `json:"tokens"`
	League       league.League `json:"league"`
	IsRegistered bool          `json:"isRegistered"`
}

// AddRequest is the body of POST /tokens/add. Amount is a pointer so a
// missing field can be told apart from an explicit zero.
type AddRequest struct {
	UserID string `json:"userId"`
	Amount *int64 `json:"amount"`
}

// AddResponse is the body returned by POST /tokens/add.
type AddResponse struct {
	UserID   string        `json:"userId"`
	NewTotal int64         `json:"newTotal"`
	League   league.League `json:"league"`
}

// RegisterRequest is the body of POST /tokens/register.
type RegisterRequest struct {
	UserID string `json:"userId"`
}
