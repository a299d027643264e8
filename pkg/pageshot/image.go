package pageshot

import (
	"bytes"
	"fmt"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Image is an encoded screenshot as returned by the browser.
type Image []byte

// WriteFile writes the image to path, replacing any existing file. Missing
// parent directories are created.
func (img Image) WriteFile(path string) error {
	if len(img) == 0 {
		return ErrEmptyImage
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := file.Write(img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Layout of the band AddTextToImage appends below the screenshot.
const (
	imprintBand     = 36 // rule included
	imprintRule     = 1
	imprintMargin   = 8
	imprintFontSize = 13
)

// AddTextToImage returns a copy of the image with the origin of rawURL printed
// in a white band under it. Origins wider than the image are shortened.
func (img Image) AddTextToImage(rawURL string) (Image, error) {
	origin, err := pageOrigin(rawURL)
	if err != nil {
		return nil, err
	}

	shot, err := png.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	face, err := imprintFace()
	if err != nil {
		return nil, err
	}

	width, top := shot.Bounds().Dx(), shot.Bounds().Dy()
	dc := gg.NewContext(width, top+imprintBand)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(shot, 0, 0)

	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(0, float64(top), float64(width), imprintRule)
	dc.Fill()

	dc.SetFontFace(face)
	text := fitText(dc, origin, float64(width-2*imprintMargin))
	middle := float64(top) + imprintRule + float64(imprintBand-imprintRule)/2
	dc.DrawStringAnchored(text, float64(width)/2, middle, 0.5, 0.5)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// pageOrigin returns scheme://host for rawURL, leaving out the scheme's
// default port.
func pageOrigin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}

	host := u.Host
	switch port := u.Port(); {
	case port == "80" && u.Scheme == "http", port == "443" && u.Scheme == "https":
		host = u.Hostname()
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	}
	return u.Scheme + "://" + host, nil
}

// fitText trims s from the right until it fits in maxWidth pixels.
func fitText(dc *gg.Context, s string, maxWidth float64) string {
	if w, _ := dc.MeasureString(s); w <= maxWidth {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		short := string(runes) + "..."
		if w, _ := dc.MeasureString(short); w <= maxWidth {
			return short
		}
	}
	return ""
}

func imprintFace() (font.Face, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(ttf, &truetype.Options{Size: imprintFontSize}), nil
}
