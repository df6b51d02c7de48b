package output

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

// QRConfig configures terminal QR rendering.
type QRConfig struct {
	Level      qr.Level
	QuietZone  int
	HalfBlocks bool
}

// DefaultQRConfig suits payment URIs: medium error correction, since a
// misread value would send the wrong amount.
func DefaultQRConfig() QRConfig {
	return QRConfig{Level: qr.M, QuietZone: 1, HalfBlocks: true}
}

// RenderQR draws data as a QR code. Nothing is written unless w is a
// terminal; the caller prints the raw text alongside.
func RenderQR(w io.Writer, data string, cfg QRConfig) bool {
	if !IsTerminal(w) {
		return false
	}
	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          cfg.Level,
		Writer:         w,
		QuietZone:      cfg.QuietZone,
		HalfBlocks:     cfg.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return true
}
