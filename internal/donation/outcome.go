package donation

import (
	"encoding/json"
	"strings"

	"github.com/ethpkg/donate/internal/provider"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// Status is the kind of an Outcome.
type Status string

// Outcome statuses.
const (
	StatusSubmitted Status = "submitted"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// Stage is a step of a donation attempt.
type Stage string

// Stages, in pipeline order.
const (
	StageIdle              Stage = "idle"
	StageResolvingProvider Stage = "resolving_provider"
	StageAcquiringAccounts Stage = "acquiring_accounts"
	StageCheckingNetwork   Stage = "checking_network"
	StageComputingPayment  Stage = "computing_payment"
	StageSubmitting        Stage = "submitting"
	StageClassified        Stage = "classified"
)

// deniedSignature is the message wallets use when the user declines signing.
const deniedSignature = "User denied transaction signature."

// Outcome is the terminal result of a donation attempt.
type Outcome struct {
	Status Status `json:"status"`
	TxHash string `json:"tx_hash,omitempty"`
	Reason string `json:"reason,omitempty"`
	// Stage is the last stage the attempt reached.
	Stage Stage `json:"stage"`
	Err   error `json:"-"`
}

// IsSubmitted reports whether the transaction was accepted by the wallet.
func (o *Outcome) IsSubmitted() bool {
	return o != nil && o.Status == StatusSubmitted
}

// Submitted builds a successful outcome.
func Submitted(txHash string) *Outcome {
	return &Outcome{Status: StatusSubmitted, TxHash: txHash, Stage: StageSubmitting}
}

// Rejected builds an outcome for an explicit user refusal.
func Rejected(stage Stage, err error) *Outcome {
	return &Outcome{Status: StatusRejected, Reason: donateerr.UserMessage(err), Stage: stage, Err: err}
}

// Failed builds an outcome for any other terminal error.
func Failed(stage Stage, err error) *Outcome {
	return &Outcome{Status: StatusFailed, Reason: donateerr.UserMessage(err), Stage: stage, Err: err}
}

// Classify maps the raw answer to eth_sendTransaction to an Outcome.
// It is pure: equal input gives an equal outcome.
func Classify(resp *provider.Response) *Outcome {
	switch {
	case resp == nil:
		return Failed(StageSubmitting, donateerr.ErrNoResponse)

	case resp.Error != nil && strings.Contains(resp.Error.Message, deniedSignature):
		return Rejected(StageSubmitting, donateerr.WithCause(donateerr.ErrTxDenied, resp.Error))

	case resp.Error != nil:
		msg := resp.Error.Message
		if msg == "" {
			msg = resp.Error.Error()
		}
		return Failed(StageSubmitting, donateerr.WithMessage(donateerr.WithCause(donateerr.ErrProviderError, resp.Error), msg))

	case resp.HasResult():
		return Submitted(decodeTxHash(resp.Result))

	default:
		return Failed(StageSubmitting, donateerr.ErrMalformedResult)
	}
}

func decodeTxHash(raw json.RawMessage) string {
	var hash string
	if err := json.Unmarshal(raw, &hash); err == nil {
		return hash
	}
	return strings.TrimSpace(string(raw))
}
