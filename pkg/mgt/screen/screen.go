/*
   MGTDrive - SAM Coupé / +D disk image tool and floppy emulator
   Copyright (c) 2022, The MGTDrive Authors

   This file is part of MGTDrive.

   MGTDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   MGTDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with MGTDrive. If not, see <http://www.gnu.org/licenses/>.
*/

// Package screen converts between common picture formats and SAM Coupé
// MODE 4 SCREEN$ dumps: 256x192 pixels, 4 bits per pixel, each pixel
// indexing a 16-entry palette of SAM colour values.
package screen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	// register the jpeg decoder for image.Decode
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

//
const (
	Width  = 256
	Height = 192

	// 4bpp bitmap, two pixels per byte
	bitmapLen = Width * Height / 2

	// bitmap, main palette, flash palette, mode byte
	FileLen = bitmapLen + 16 + 16 + 9

	Mode = 4
)

// defaultCLUT is the palette the converter dithers against: the first
// eight SAM colours in their dark variants, then the bright ones.
var defaultCLUT = [16]byte{
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x08, 0x19, 0x2a, 0x3b, 0x4c, 0x5d, 0x6e, 0x7f,
}

// SAMColor converts a 7-bit SAM palette value to RGB. Each channel has
// two dedicated bits plus the shared half-bright bit: bits 6-4 carry
// the high green/red/blue bits, bits 2-0 the low ones, bit 3 brightens
// all three.
func SAMColor(v byte) color.RGBA {

	half := (v >> 3) & 1
	channel := func(hi, lo byte) uint8 {
		return uint8(int(hi<<2|lo<<1|half) * 255 / 7)
	}

	return color.RGBA{
		R: channel((v>>5)&1, (v>>1)&1),
		G: channel((v>>6)&1, (v>>2)&1),
		B: channel((v>>4)&1, v&1),
		A: 0xff,
	}
}

//
func clutPalette() color.Palette {
	p := make(color.Palette, len(defaultCLUT))
	for i, v := range defaultCLUT {
		p[i] = SAMColor(v)
	}
	return p
}

// Convert turns a PNG or JPEG picture into a MODE 4 SCREEN$ dump:
// scaled to 256x192, dithered onto the default palette, packed two
// pixels per byte with the left pixel in the high nibble.
func Convert(picture []byte) ([]byte, error) {

	img, _, err := image.Decode(bytes.NewReader(picture))
	if err != nil {
		return nil, fmt.Errorf("cannot decode picture: %v", err)
	}

	bounds := image.Rect(0, 0, Width, Height)

	scaled := image.NewRGBA(bounds)
	draw.BiLinear.Scale(scaled, bounds, img, img.Bounds(), draw.Over, nil)

	paletted := image.NewPaletted(bounds, clutPalette())
	draw.FloydSteinberg.Draw(paletted, bounds, scaled, image.Point{})

	out := make([]byte, FileLen)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x += 2 {
			left := paletted.ColorIndexAt(x, y)
			right := paletted.ColorIndexAt(x+1, y)
			out[(y*Width+x)/2] = left<<4 | right
		}
	}

	copy(out[bitmapLen:], defaultCLUT[:])
	copy(out[bitmapLen+16:], defaultCLUT[:])
	out[FileLen-1] = Mode - 1

	return out, nil
}

// Export renders a MODE 4 SCREEN$ dump as PNG, using the palette
// stored in the dump.
func Export(dump []byte, w io.Writer) error {

	if len(dump) < bitmapLen+16 {
		return fmt.Errorf(
			"not a MODE %d screen: %d bytes, want at least %d",
			Mode, len(dump), bitmapLen+16)
	}

	palette := make(color.Palette, 16)
	for i := range palette {
		palette[i] = SAMColor(dump[bitmapLen+i] & 0x7f)
	}

	img := image.NewPaletted(image.Rect(0, 0, Width, Height), palette)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x += 2 {
			b := dump[(y*Width+x)/2]
			img.SetColorIndex(x, y, b>>4)
			img.SetColorIndex(x+1, y, b&0x0f)
		}
	}

	return png.Encode(w, img)
}
