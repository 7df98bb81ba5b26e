// Package render provides the render targets a capture draws into and the
// PNG encoder for the read-back pixels.
//
// This package contains:
// - Target and Surface interfaces for offscreen rendering
// - ImageTarget, an in-process software target that scales a scene image
// - ChromedpTarget, a headless Chrome target that screenshots a page
// - EncodePNG for writing RGBA32 or RGB24 images
// - LoadScene and ParseColor for building an ImageTarget from configuration
//
// Example usage:
//
//	target := NewImageTarget(&ImageTargetConfig{Scene: scene})
//	surface, err := target.NewSurface(2893, 4092)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	target.BindOffscreenSurface(surface)
//	if err := target.Render(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	img := image.NewNRGBA(image.Rect(0, 0, 2893, 4092))
//	err = target.ReadPixels(ctx, img)
package render
