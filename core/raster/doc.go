// Package raster derives thematic bitmaps from the province bitmap.
//
// A view recolours every pixel through a lookup table built from the
// province table: state, strategic region, or owner country. The scan order
// is fixed (rows outer, columns inner) and decides each entity's colour, so
// output is byte-for-byte reproducible.
//
// Rendering writes into a private buffer and honours cancellation once per
// row. A caller never sees a partially rendered image.
//
// # Usage
//
//	layers := raster.LoadLayers(roots, rep)
//	img, err := raster.Synthesize(ctx, layers.Provinces, model, raster.ViewState, nil)
package raster
