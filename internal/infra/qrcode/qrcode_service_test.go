package qrcode

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"medtrack/config"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecoveryLevel(t *testing.T) {
	tests := []struct {
		level string
		want  qrcode.RecoveryLevel
	}{
		{"L", qrcode.Low},
		{"low", qrcode.Low},
		{"M", qrcode.Medium},
		{"medium", qrcode.Medium},
		{"Q", qrcode.High},
		{"high", qrcode.High},
		{"H", qrcode.Highest},
		{" Highest ", qrcode.Highest},
		{"invalid", qrcode.Medium},
		{"", qrcode.Medium},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRecoveryLevel(tt.level))
		})
	}
}

func TestQRCodeService_Encode(t *testing.T) {
	service := NewQRCodeService(256, "M")

	qrBytes, err := service.Encode("1 Paracetamol 500mg - 10")
	require.NoError(t, err)
	require.Greater(t, len(qrBytes), 4)

	// PNG magic number
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}

func TestQRCodeService_Encode_DifferentSizes(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		service := NewQRCodeService(size, "M")

		qrBytes, err := service.Encode("order summary")
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(qrBytes))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
	}
}

func TestQRCodeService_Encode_Errors(t *testing.T) {
	service := NewQRCodeService(256, "H")

	_, err := service.Encode("")
	require.Error(t, err)

	_, err = service.Encode(strings.Repeat("x", 8000))
	require.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{}
	assert.NotNil(t, NewFromConfig(cfg))

	cfg.ApplyDefaults()
	service := NewFromConfig(cfg)

	qrBytes, err := service.Encode("hello")
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)
}
