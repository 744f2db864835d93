package fyne

import (
	"image"
	"image/draw"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"

	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// OffscreenCanvas is a double-buffered offscreen surface. Each transfer hands
// out the finished buffer and switches painting to the other one, so the
// displayed frame is never drawn into.
type OffscreenCanvas struct {
	buffers [2]*image.RGBA
	back    int
}

// NewOffscreenCanvas creates an empty offscreen canvas. Call Resize before painting.
func NewOffscreenCanvas() *OffscreenCanvas {
	return &OffscreenCanvas{}
}

// Resize sets the buffers to width x height and clears the one painted next.
// The displayed buffer is left alone unless the size changed.
func (c *OffscreenCanvas) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	front := c.buffers[1-c.back]
	if front == nil || front.Rect.Dx() != width || front.Rect.Dy() != height {
		c.buffers[1-c.back] = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	c.buffers[c.back] = resizeRGBA(c.buffers[c.back], width, height)
}

// Context returns the buffer the next frame is painted into.
func (c *OffscreenCanvas) Context() draw.Image {
	if c.buffers[c.back] == nil {
		c.Resize(0, 0)
	}
	return c.buffers[c.back]
}

// TransferToImageBitmap detaches the painted buffer and flips to the other one.
func (c *OffscreenCanvas) TransferToImageBitmap() image.Image {
	frame := c.Context()
	c.back = 1 - c.back
	return frame
}

// BitmapView shows transferred frames in a canvas.Image.
// It must be fed from the UI thread.
type BitmapView struct {
	image *canvas.Image
}

// NewBitmapView creates a renderer around an empty canvas.Image.
func NewBitmapView() *BitmapView {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest
	return &BitmapView{image: img}
}

// TransferFromImageBitmap displays bitmap.
func (v *BitmapView) TransferFromImageBitmap(bitmap image.Image) {
	v.image.Image = bitmap
	v.image.Refresh()
}

// Object returns the canvas object to place in a layout.
func (v *BitmapView) Object() *canvas.Image {
	return v.image
}

// DirectCanvas is an on-screen surface: frames are painted into the image
// the canvas.Image displays, then the image is refreshed.
type DirectCanvas struct {
	buf   *image.RGBA
	image *canvas.Image
}

// NewDirectCanvas creates an on-screen surface.
func NewDirectCanvas() *DirectCanvas {
	buf := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img := canvas.NewImageFromImage(buf)
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest
	return &DirectCanvas{buf: buf, image: img}
}

// Resize reallocates the pixel buffer when the size changed and clears it.
func (c *DirectCanvas) Resize(width, height int) {
	c.buf = resizeRGBA(c.buf, max(width, 0), max(height, 0))
	c.image.Image = c.buf
}

// Context returns the displayed image.
func (c *DirectCanvas) Context() draw.Image {
	return c.buf
}

// Invalidate repaints the canvas.Image.
func (c *DirectCanvas) Invalidate() {
	c.image.Refresh()
}

// Object returns the canvas object to place in a layout.
func (c *DirectCanvas) Object() *canvas.Image {
	return c.image
}

// resizeRGBA returns a cleared image of the given size, reusing buf when it
// already has it.
func resizeRGBA(buf *image.RGBA, width, height int) *image.RGBA {
	if buf != nil && buf.Rect.Dx() == width && buf.Rect.Dy() == height {
		clear(buf.Pix)
		return buf
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// ObjectViewport reports the pixel size of a canvas object on its window.
type ObjectViewport struct {
	object fyneapp.CanvasObject
	window fyneapp.Window
}

// NewObjectViewport measures object, scaled by window's canvas.
func NewObjectViewport(object fyneapp.CanvasObject, window fyneapp.Window) *ObjectViewport {
	return &ObjectViewport{object: object, window: window}
}

// Size returns the object's size in device pixels.
func (v *ObjectViewport) Size() (width, height int) {
	size := v.object.Size()
	scale := float32(1)
	if v.window != nil {
		if s := v.window.Canvas().Scale(); s > 0 {
			scale = s
		}
	}
	return int(size.Width * scale), int(size.Height * scale)
}

// ThemeScheme reads the light/dark preference from the app settings.
type ThemeScheme struct {
	app fyneapp.App
}

// NewThemeScheme creates a color scheme bound to app.
func NewThemeScheme(app fyneapp.App) *ThemeScheme {
	return &ThemeScheme{app: app}
}

// PrefersDark reports whether the current theme variant is dark.
func (s *ThemeScheme) PrefersDark() bool {
	return s.app.Settings().ThemeVariant() == theme.VariantDark
}

var (
	_ ports.OffscreenSurface = (*OffscreenCanvas)(nil)
	_ ports.BitmapRenderer   = (*BitmapView)(nil)
	_ ports.OnscreenSurface  = (*DirectCanvas)(nil)
	_ ports.Viewport         = (*ObjectViewport)(nil)
	_ ports.ColorScheme      = (*ThemeScheme)(nil)
)
