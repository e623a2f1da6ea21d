package utils

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// GenerateSVGQRCode renders content as a 45mm square SVG using currentColor.
func GenerateSVGQRCode(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	qr.DisableBorder = true
	bitmap := qr.Bitmap()

	const totalSize = 45 // mm
	const blockSize = 1  // mm per module
	margin := (totalSize - len(bitmap)*blockSize) / 2
	if margin < 0 {
		margin = 0
	}

	var sb strings.Builder
	viewBox := totalSize
	if len(bitmap) > totalSize {
		viewBox = len(bitmap)
	}
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %[1]d %[1]d" width="%[2]dmm" height="%[2]dmm">`, viewBox, totalSize)
	for y := range bitmap {
		for x := range bitmap[y] {
			if bitmap[y][x] {
				fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="currentColor"/>`,
					x*blockSize+margin, y*blockSize+margin, blockSize, blockSize)
			}
		}
	}
	sb.WriteString(`</svg>`)

	return sb.String(), nil
}
