package payment

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mysterylink/button-server/internal/domain"
)

// ValidatorConfig holds the economic rules a payment must satisfy
type ValidatorConfig struct {
	// RecipientAddress is the address the payment must be sent to
	RecipientAddress string
	// TokenAddress is the ERC-20 contract the transfer must target (erc20 scheme only)
	TokenAddress string
	// MinimumAmount is the smallest accepted payment in the currency's smallest unit
	MinimumAmount *big.Int
	// Decimals is the display precision used in human-readable messages
	Decimals int
}

// Validator applies the payment rules to an observation and produces a
// verification result. Implementations are selected by configuration at
// startup, one per deployment.
//
//go:generate mockgen -source=validator.go -destination=../mocks/validator.go -package=mocks -mock_names=Validator=MockValidator
type Validator interface {
	Validate(obs *domain.Observation) domain.VerificationResult
}

// NewValidator builds the validator for the configured payment scheme
func NewValidator(scheme domain.PaymentScheme, cfg ValidatorConfig) (Validator, error) {
	switch scheme {
	case domain.PaymentSchemeNative:
		return &nativeValidator{cfg: cfg}, nil
	case domain.PaymentSchemeERC20:
		return &erc20Validator{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown payment scheme: %q", scheme)
	}
}

// nativeValidator validates a native-currency transfer: recipient and value
// are read directly off the transaction.
type nativeValidator struct {
	cfg ValidatorConfig
}

func (v *nativeValidator) Validate(obs *domain.Observation) domain.VerificationResult {
	if !obs.Succeeded {
		return domain.Invalid(domain.ErrTransactionFailed, "transaction failed on the blockchain")
	}

	if !domain.SameAddress(obs.Recipient, v.cfg.RecipientAddress) {
		return domain.Invalid(domain.ErrWrongRecipient, fmt.Sprintf(
			"payment must be sent to %s, but was sent to %s",
			domain.NormalizeAddress(v.cfg.RecipientAddress),
			domain.NormalizeAddress(obs.Recipient)))
	}

	if obs.Value == nil || obs.Value.Cmp(v.cfg.MinimumAmount) < 0 {
		return domain.Invalid(domain.ErrInsufficientAmount, fmt.Sprintf(
			"insufficient payment amount: required %s, sent %s",
			FormatAmount(v.cfg.MinimumAmount, v.cfg.Decimals),
			FormatAmount(obs.Value, v.cfg.Decimals)))
	}

	return domain.VerificationResult{
		IsValid:   true,
		Sender:    obs.Sender,
		Recipient: obs.Recipient,
		Amount:    new(big.Int).Set(obs.Value),
	}
}

// transferSelector is the 4-byte function selector of transfer(address,uint256)
var transferSelector = [4]byte{0xa9, 0x05, 0x9c, 0xbb}

// erc20Validator validates a token transfer by decoding the transaction's
// calldata for the transfer selector and extracting the destination and
// amount from the encoded arguments, then applying the same recipient and
// amount rules.
type erc20Validator struct {
	cfg ValidatorConfig
}

func (v *erc20Validator) Validate(obs *domain.Observation) domain.VerificationResult {
	if !obs.Succeeded {
		return domain.Invalid(domain.ErrTransactionFailed, "transaction failed on the blockchain")
	}

	// The transaction recipient is the token contract itself
	if !domain.SameAddress(obs.Recipient, v.cfg.TokenAddress) {
		return domain.Invalid(domain.ErrWrongRecipient, fmt.Sprintf(
			"payment must be a transfer on token contract %s, but the transaction targets %s",
			domain.NormalizeAddress(v.cfg.TokenAddress),
			domain.NormalizeAddress(obs.Recipient)))
	}

	dest, amount, err := decodeTransfer(obs.Calldata)
	if err != nil {
		return domain.Invalid(domain.ErrWrongRecipient, fmt.Sprintf(
			"transaction is not a token transfer: %v", err))
	}

	if !domain.SameAddress(dest, v.cfg.RecipientAddress) {
		return domain.Invalid(domain.ErrWrongRecipient, fmt.Sprintf(
			"payment must be sent to %s, but was sent to %s",
			domain.NormalizeAddress(v.cfg.RecipientAddress),
			domain.NormalizeAddress(dest)))
	}

	if amount.Cmp(v.cfg.MinimumAmount) < 0 {
		return domain.Invalid(domain.ErrInsufficientAmount, fmt.Sprintf(
			"insufficient payment amount: required %s, sent %s",
			FormatAmount(v.cfg.MinimumAmount, v.cfg.Decimals),
			FormatAmount(amount, v.cfg.Decimals)))
	}

	return domain.VerificationResult{
		IsValid:   true,
		Sender:    obs.Sender,
		Recipient: dest,
		Amount:    amount,
	}
}

// decodeTransfer extracts the destination and amount from
// transfer(address,uint256) calldata
func decodeTransfer(calldata []byte) (string, *big.Int, error) {
	if len(calldata) < 4+32+32 {
		return "", nil, fmt.Errorf("calldata too short (%d bytes)", len(calldata))
	}
	if [4]byte(calldata[:4]) != transferSelector {
		return "", nil, fmt.Errorf("unexpected function selector 0x%s", hex.EncodeToString(calldata[:4]))
	}

	dest := common.BytesToAddress(calldata[4+12 : 4+32])
	amount := new(big.Int).SetBytes(calldata[4+32 : 4+64])
	return dest.Hex(), amount, nil
}

// FormatAmount renders a smallest-unit integer as a decimal string for
// human-readable messages. Exact comparisons never use this form.
func FormatAmount(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	s := amount.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole := s[:len(s)-decimals]
	frac := strings.TrimRight(s[len(s)-decimals:], "0")

	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
