package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mmynk/escrowd/internal/models"
)

// PaymentLink builds a Solana Pay transfer request for funding s. The
// recipient is the settlement authority, so wallets derive the custody account
// from it and spl-token. The session record address is the reference.
func PaymentLink(s *models.Session, decimals uint8, label, message string) string {
	q := url.Values{}
	q.Set("amount", FormatAmount(s.Amount, decimals))
	q.Set("spl-token", s.TokenType.String())
	q.Set("reference", s.Address.String())
	if label != "" {
		q.Set("label", label)
	}
	if message != "" {
		q.Set("message", message)
	}
	if s.ReferenceID != "" {
		q.Set("memo", s.ReferenceID)
	}
	return "solana:" + s.SettlementAuthority.String() + "?" + q.Encode()
}

// FormatAmount renders base units as a decimal string without trailing zeros.
func FormatAmount(amount uint64, decimals uint8) string {
	digits := strconv.FormatUint(amount, 10)
	if decimals == 0 {
		return digits
	}
	d := int(decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	whole, frac := digits[:len(digits)-d], strings.TrimRight(digits[len(digits)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
