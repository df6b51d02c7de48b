package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"rsc.io/qr"
)

func TestDefaultQRConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultQRConfig()
	assert.Equal(t, qr.M, cfg.Level)
	assert.True(t, cfg.HalfBlocks)
}

func TestRenderQR_NotATerminal(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	assert.False(t, RenderQR(&buf, "ethereum:0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed@3?value=1", DefaultQRConfig()))
	assert.Empty(t, buf.String())
}
