package modal

import "github.com/hay-kot/lightbox/internal/core/page"

// Center returns the document position that puts a box of the given size in
// the middle of the visible viewport, scroll offsets included.
func Center(vp page.Viewport, width, height float64) (top, left float64) {
	top = float64(vp.Height)/2 - height/2 + float64(vp.ScrollY)
	left = float64(vp.Width)/2 - width/2 + float64(vp.ScrollX)
	return top, left
}
