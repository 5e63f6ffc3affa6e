// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpudev

import (
	"image"

	"golang.org/x/image/draw"
)

// flipY converts bottom-up RGBA8 rows into a top-down image.
func flipY(buf []uint8, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	stride := width * 4
	for y := 0; y < height; y++ {
		src := buf[(height-1-y)*stride : (height-y)*stride]
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], src)
	}
	return img
}

// Thumbnail scales img to fit within maxWidth x maxHeight, keeping its
// aspect ratio. Images that already fit are copied unscaled.
func Thumbnail(img image.Image, maxWidth, maxHeight int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxWidth && maxWidth > 0 {
		h = h * maxWidth / w
		w = maxWidth
	}
	if h > maxHeight && maxHeight > 0 {
		w = w * maxHeight / h
		h = maxHeight
	}
	w, h = max(w, 1), max(h, 1)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
