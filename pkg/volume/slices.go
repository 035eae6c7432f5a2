package volume

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"minkowski3d/pkg/minkowski"
)

// ExtractSlice renders the plane of g at position along axis as a black and
// white image: foreground is white.
func ExtractSlice(g *minkowski.Grid, axis string, position int) (*image.Gray, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.Gray

	switch axis {
	case "x", "X":
		// YZ plane
		if position >= g.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, g.Width)
		}
		img = image.NewGray(image.Rect(0, 0, g.Depth, g.Height))
		for y := 0; y < g.Height; y++ {
			for z := 0; z < g.Depth; z++ {
				img.SetGray(z, y, voxelColor(g.At(position, y, z)))
			}
		}

	case "y", "Y":
		// XZ plane
		if position >= g.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, g.Height)
		}
		img = image.NewGray(image.Rect(0, 0, g.Width, g.Depth))
		for z := 0; z < g.Depth; z++ {
			for x := 0; x < g.Width; x++ {
				img.SetGray(x, z, voxelColor(g.At(x, position, z)))
			}
		}

	case "z", "Z":
		// XY plane
		if position >= g.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, g.Depth)
		}
		img = image.NewGray(image.Rect(0, 0, g.Width, g.Height))
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				img.SetGray(x, y, voxelColor(g.At(x, y, position)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

func voxelColor(v uint8) color.Gray {
	if v != 0 {
		return color.Gray{Y: 255}
	}
	return color.Gray{Y: 0}
}

// SaveSlices writes every plane of g along axis to outputDir as PNG files
// named slice_<axis>_<position>.png. Slices saved along z load back with
// LoadSlices unchanged.
func SaveSlices(g *minkowski.Grid, axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = g.Width
	case "y", "Y":
		maxPos = g.Height
	case "z", "Z":
		maxPos = g.Depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := ExtractSlice(g, axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := saveImage(img, filename); err != nil {
			return fmt.Errorf("failed to save %s: %w", filename, err)
		}
	}
	return nil
}

func saveImage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
