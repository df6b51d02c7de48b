package output

import (
	"fmt"
	"io"

	"github.com/ethpkg/donate/internal/donation"
)

// Receipt is what the donate command reports about an attempt.
type Receipt struct {
	Package   string `json:"package,omitempty"`
	Version   string `json:"version,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Network   string `json:"network,omitempty"`
	USD       string `json:"usd,omitempty"`
	Native    string `json:"eth,omitempty"`

	*donation.Outcome

	Error *ErrorDetail `json:"error,omitempty"`
}

// NewReceipt wraps out. The remaining fields are filled in by the caller.
func NewReceipt(out *donation.Outcome) *Receipt {
	r := &Receipt{Outcome: out}
	if out != nil && out.Err != nil {
		d := NewErrorDetail(out.Err)
		r.Error = &d
	}
	return r
}

// FormatReceipt writes r to w.
//
// In text mode a submitted donation thanks the user and prints the
// transaction hash, a refusal prints the wallet's reason as a warning, and
// a failure is rendered like any other error.
func FormatReceipt(w io.Writer, r *Receipt, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, r)
	}

	out := r.Outcome
	switch {
	case out == nil:
		return nil
	case out.IsSubmitted():
		Successf(w, "Thank you for your donation!")
		_, err := fmt.Fprintf(w, "Processing your transaction: %s\n", out.TxHash)
		return err
	case out.Status == donation.StatusRejected:
		Warnf(w, "%s", out.Reason)
		return nil
	default:
		return FormatError(w, out.Err, format)
	}
}
