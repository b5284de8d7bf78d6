package api

// Account is the wire form of a ledger token account.
type Account struct {
	Address   string `json:"address"`
	Owner     string `json:"owner"`
	Mint      string `json:"mint"`
	Balance   uint64 `json:"balance,string"`
	CreatedAt int64  `json:"created_at"`
}

// OpenAccountRequest opens Owner's account for Mint. Payers may omit Owner
// and only open their own accounts.
type OpenAccountRequest struct {
	Owner string `json:"owner,omitempty"`
	Mint  string `json:"mint"`
}

type CreditRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount,string"`
}

type GetAccountRequest struct {
	Address string `json:"address"`
}

type AccountResponse struct {
	Account *Account `json:"account"`
}
