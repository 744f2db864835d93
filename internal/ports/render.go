package ports

import (
	"image"
	"image/draw"
)

// Surface is a 2D-paintable drawing target.
type Surface interface {
	// Resize sets the pixel size of the drawing target.
	// Resizing clears the content.
	Resize(width, height int)

	// Context returns the image to paint the current frame into.
	Context() draw.Image
}

// OffscreenSurface is a surface that is not on screen.
// Finished frames are handed to a BitmapRenderer.
type OffscreenSurface interface {
	Surface

	// TransferToImageBitmap detaches the finished frame.
	// The surface keeps its size and paints into a different buffer next.
	TransferToImageBitmap() image.Image
}

// BitmapRenderer is the on-screen sink for frames painted offscreen.
type BitmapRenderer interface {
	// TransferFromImageBitmap displays bitmap.
	TransferFromImageBitmap(bitmap image.Image)
}

// OnscreenSurface is a surface that is painted on screen directly.
type OnscreenSurface interface {
	Surface

	// Invalidate asks the toolkit to repaint after the frame was drawn.
	Invalidate()
}

// Viewport reports the current drawable size in pixels.
type Viewport interface {
	Size() (width, height int)
}

// ColorScheme reports the user's light/dark preference at the time of the call.
type ColorScheme interface {
	PrefersDark() bool
}

// FrameID identifies a pending frame callback.
type FrameID uint64

// FrameScheduler runs callbacks in step with the display refresh.
// Each registration fires once; a repeating animation re-registers itself.
type FrameScheduler interface {
	// RequestFrame schedules fn for the next refresh.
	RequestFrame(fn func()) FrameID

	// CancelFrame drops a pending callback. Unknown IDs are ignored.
	CancelFrame(id FrameID)
}
