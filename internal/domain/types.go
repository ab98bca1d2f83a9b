package domain

import (
	"math/big"
	"regexp"
	"strings"
)

// PaymentScheme selects how a payment transaction is validated
type PaymentScheme string

const (
	// PaymentSchemeNative validates a native-currency (ETH) transfer read
	// directly off the transaction
	PaymentSchemeNative PaymentScheme = "native"
	// PaymentSchemeERC20 validates an ERC-20 transfer by decoding the
	// transaction calldata
	PaymentSchemeERC20 PaymentScheme = "erc20"
)

// Valid reports whether the scheme is a known payment scheme
func (s PaymentScheme) Valid() bool {
	return s == PaymentSchemeNative || s == PaymentSchemeERC20
}

var (
	txHashPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// IsValidTxHash reports whether s is a canonical Ethereum transaction hash
// (0x-prefixed, 32 bytes of hex)
func IsValidTxHash(s string) bool {
	return txHashPattern.MatchString(s)
}

// IsValidAddress reports whether s is a canonical Ethereum address
// (0x-prefixed, 20 bytes of hex)
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// NormalizeAddress lowercases an address for case-insensitive comparison.
// Addresses are compared normalized everywhere; the checksummed form is
// preserved only for storage and display.
func NormalizeAddress(s string) string {
	return strings.ToLower(s)
}

// SameAddress compares two addresses case-insensitively
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// Observation is the result of reading a transaction and its receipt off the
// chain. It is ephemeral: produced by the chain observer, consumed once by the
// payment validator and discarded.
type Observation struct {
	// Hash is the observed transaction hash
	Hash string
	// Succeeded is true when the receipt status is success
	Succeeded bool
	// Sender is the address that signed the transaction
	Sender string
	// Recipient is the transaction's `to` address (empty for contract creation)
	Recipient string
	// Value is the native amount transferred, in wei
	Value *big.Int
	// Calldata is the transaction input data (used by the ERC-20 scheme)
	Calldata []byte
}

// VerificationResult is the outcome of validating an observation against the
// payment rules. Either IsValid is true and Sender/Recipient/Amount are
// populated, or IsValid is false and Failure/Reason describe why.
type VerificationResult struct {
	IsValid bool
	// Failure is the sentinel error classifying the rejection (nil when valid)
	Failure error
	// Reason is a human-readable explanation suitable for API responses
	Reason string
	// Sender is the verified payer address
	Sender string
	// Recipient is the verified payment destination
	Recipient string
	// Amount is the verified payment amount in the currency's smallest unit
	Amount *big.Int
}

// Invalid builds a failed verification result
func Invalid(failure error, reason string) VerificationResult {
	return VerificationResult{IsValid: false, Failure: failure, Reason: reason}
}

// ButtonVisuals carries the optional visual attributes of an ownership.
// An image is mutually exclusive with color/emoji; callers check Exclusive.
type ButtonVisuals struct {
	ButtonColor    *string `json:"button_color"`
	ButtonEmoji    *string `json:"button_emoji"`
	ButtonImageURL *string `json:"button_image_url"`
}

// IsZero reports whether no visual attribute is set
func (v ButtonVisuals) IsZero() bool {
	return v.ButtonColor == nil && v.ButtonEmoji == nil && v.ButtonImageURL == nil
}

// Exclusive reports whether the image attribute is combined with
// color or emoji, which is not allowed
func (v ButtonVisuals) Exclusive() bool {
	if v.ButtonImageURL != nil && *v.ButtonImageURL != "" {
		if v.ButtonColor != nil && *v.ButtonColor != "" {
			return false
		}
		if v.ButtonEmoji != nil && *v.ButtonEmoji != "" {
			return false
		}
	}
	return true
}
