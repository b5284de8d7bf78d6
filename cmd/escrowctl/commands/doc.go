// Package commands defines the escrowctl CLI, a thin client for escrowd.
//
// Commands
//
//   - token          Mint a bearer token from the shared JWT secret
//   - init           Open a payment session
//   - deposit        Fund a session from the payer's token account
//   - refund         Return a funded session to its payer
//   - settle-direct  Pay a funded session to the merchant's account
//   - settle-fiat    Hand a funded session to the fiat bridge
//   - payout         Record the off-chain payout of a pending-fiat session
//   - get, list      Inspect sessions
//   - events         Print a session's transition log
//   - link           Print a wallet payment link for a session
//   - open-account, credit, get-account  Manage ledger accounts
//
// # Implementation
//
// The root command builds the Connect clients before any subcommand runs. The
// bearer token comes from --token or ESCROW_TOKEN and is attached by a client
// interceptor. Responses are printed as indented JSON.
package commands
