// internal/payments/ipn.go
package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// IPNPayload is the webhook body the gateway posts when an invoice's payment
// state changes. Amounts are denominated in the pay currency except
// PriceAmount, which is the invoiced USD value.
type IPNPayload struct {
	InvoiceID     json.Number `json:"invoice_id"`
	OrderID       string      `json:"order_id"`
	PaymentStatus string      `json:"payment_status"`
	ActuallyPaid  float64     `json:"actually_paid"`
	PayAmount     float64     `json:"pay_amount"`
	PriceAmount   float64     `json:"price_amount"`
}

// CanonicalizeIPN re-encodes a raw IPN body with its keys sorted, which is
// the form the gateway signs. The round trip through a generic map also
// re-renders numbers in Go's shortest form (25.0 becomes 25, trailing zeros
// drop); the gateway signs that same canonical rendering, so verification
// holds regardless of how the transport spelled the digits. A signer using
// any other number rendering will not verify against this basis.
func CanonicalizeIPN(raw []byte) ([]byte, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid IPN payload: %w", err)
	}
	// encoding/json marshals map keys in sorted order
	return json.Marshal(payload)
}

// VerifyIPNSignature checks the HMAC-SHA512 signature carried in the
// x-nowpayments-sig header against the canonicalized payload. A mismatch is
// fatal for the request; no state may change after a failed check.
func VerifyIPNSignature(raw []byte, signature, secret string) bool {
	canonical, err := CanonicalizeIPN(raw)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
