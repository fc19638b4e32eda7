package qrtext

import (
	"strings"
	"testing"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/waha-client/internal/model"
)

const code = "2@abcdefghijklmnopqrstuvwxyz0123456789,ABCDEFGH=,IJKLMNOP=,QRSTUVWX="

func TestBitmapFromCode(t *testing.T) {
	bm, err := Bitmap(model.QRImage{Code: code})
	require.NoError(t, err)
	require.NotEmpty(t, bm)
	assert.Len(t, bm[0], len(bm), "square")
	assert.False(t, bm[0][0], "quiet zone is light")
	assert.True(t, bm[QuietZone][QuietZone], "finder pattern corner is dark")
}

func TestBitmapFromPNGMatchesEncoder(t *testing.T) {
	q, err := qrcode.New(code, qrcode.Medium)
	require.NoError(t, err)
	q.DisableBorder = false
	want := q.Bitmap()

	png, err := q.PNG(512)
	require.NoError(t, err)

	got, err := Bitmap(model.QRImage{Data: png, MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBitmapErrors(t *testing.T) {
	_, err := Bitmap(model.QRImage{})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Bitmap(model.QRImage{Data: []byte("not an image")})
	assert.Error(t, err)
}

func TestHalfBlocks(t *testing.T) {
	out := HalfBlocks([][]bool{
		{true, false, true, false},
		{true, true, false, false},
		{true, true},
	}, "> ")
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "> █▄▀ ", lines[0])
	assert.Equal(t, "> ▀▀", lines[1])
}
