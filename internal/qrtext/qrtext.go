// Package qrtext turns pairing QR codes into terminal text.
package qrtext

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"math"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/matheus3301/waha-client/internal/model"
)

// QuietZone is the blank border, in modules, around a rendered code.
const QuietZone = 4

var ErrEmpty = errors.New("qr: nothing to render")

// Bitmap returns the module grid of qr, true for dark modules, including
// the quiet zone. A raw code is encoded locally; otherwise the image is
// decoded and sampled.
func Bitmap(qr model.QRImage) ([][]bool, error) {
	if qr.Code != "" {
		q, err := qrcode.New(qr.Code, qrcode.Low)
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}
		q.DisableBorder = false
		return q.Bitmap(), nil
	}
	if len(qr.Data) == 0 {
		return nil, ErrEmpty
	}
	img, _, err := image.Decode(bytes.NewReader(qr.Data))
	if err != nil {
		return nil, fmt.Errorf("decode qr image: %w", err)
	}
	return sample(img)
}

// sample reads the modules of a rendered QR symbol. The module size is
// taken from the top edge of the top-left finder pattern, which is seven
// modules wide.
func sample(img image.Image) ([][]bool, error) {
	b := img.Bounds()
	dark := func(x, y int) bool {
		return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 128
	}

	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, -1, -1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !dark(x, y) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return nil, errors.New("qr image has no dark modules")
	}

	run := 0
	for x := minX; x <= maxX && dark(x, minY); x++ {
		run++
	}
	module := float64(run) / 7
	if module < 1 {
		return nil, errors.New("qr image too small")
	}
	n := int(math.Round(float64(maxX-minX+1) / module))
	if n < 21 {
		return nil, fmt.Errorf("qr image: %d modules is not a QR symbol", n)
	}
	module = float64(maxX-minX+1) / float64(n)

	size := n + 2*QuietZone
	grid := make([][]bool, size)
	for i := range grid {
		grid[i] = make([]bool, size)
	}
	for row := 0; row < n; row++ {
		y := minY + int((float64(row)+0.5)*module)
		for col := 0; col < n; col++ {
			x := minX + int((float64(col)+0.5)*module)
			if x <= maxX && y <= maxY {
				grid[row+QuietZone][col+QuietZone] = dark(x, y)
			}
		}
	}
	return grid, nil
}

// HalfBlocks draws bitmap with Unicode half blocks, two rows per line,
// each line prefixed with indent.
func HalfBlocks(bitmap [][]bool, indent string) string {
	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		sb.WriteString(indent)
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Render is Bitmap followed by HalfBlocks.
func Render(qr model.QRImage, indent string) (string, error) {
	bm, err := Bitmap(qr)
	if err != nil {
		return "", err
	}
	return HalfBlocks(bm, indent), nil
}
