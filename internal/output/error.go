package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// ErrorOutput is the JSON envelope for errors.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one error.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// NewErrorDetail flattens err into an ErrorDetail.
func NewErrorDetail(err error) ErrorDetail {
	var de *donateerr.DonateError
	if !donateerr.As(err, &de) {
		return ErrorDetail{Code: "GENERAL_ERROR", Message: err.Error(), ExitCode: donateerr.ExitGeneral}
	}
	d := ErrorDetail{
		Code:       de.Code,
		Message:    de.Message,
		Details:    de.Details,
		Suggestion: de.Suggestion,
		ExitCode:   de.ExitCode,
	}
	if de.Cause != nil {
		d.Cause = de.Cause.Error()
	}
	return d
}

// FormatError writes err to w. Nil errors write nothing.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}
	d := NewErrorDetail(err)
	if format == FormatJSON {
		return writeJSON(w, ErrorOutput{Error: d})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", d.Message)
	if len(d.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		keys := make([]string, 0, len(d.Details))
		for k := range d.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, d.Details[k])
		}
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", d.Suggestion)
	}
	_, werr := io.WriteString(w, sb.String())
	return werr
}
