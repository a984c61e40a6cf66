package hashing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/corona10/goimagehash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"nodup/internal/models"
	"nodup/internal/structures"
)

var (
	ErrEmptyImage    = errors.New("empty image")
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

type HasherInterface interface {
	Hash(data []byte) (models.PerceptualHash, error)
}

// GradientHasher computes the 64-bit difference hash of an image: a 9x8
// grayscale grid where each bit says whether a pixel is darker than its right
// neighbour, most significant bit first.
type GradientHasher struct {
	maxBytes int
}

func NewGradientHasher(conf *structures.Config) HasherInterface {
	return &GradientHasher{maxBytes: conf.Dedup.MaxImageBytes}
}

func (h *GradientHasher) Hash(data []byte) (models.PerceptualHash, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if h.maxBytes > 0 && len(data) > h.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	dhash, err := goimagehash.DifferenceHash(flatten(img))
	if err != nil {
		return nil, fmt.Errorf("hash image: %w", err)
	}
	return models.HashFromUint64(dhash.GetHash()), nil
}

// flatten composites translucent images onto white so transparent areas hash
// the same as a white background instead of black.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Over)
	return canvas
}
