// Package volume reads binary voxel volumes from disk: stacks of 2-D slice
// images or raw byte volumes.
package volume

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"minkowski3d/internal/models"
	"minkowski3d/pkg/minkowski"
)

// Options control how an input path is turned into a grid.
type Options struct {
	// Threshold is the grey level in [0,1] at or above which a slice pixel is
	// foreground.
	Threshold float64

	// Shape gives the extents of a raw volume file. Ignored for slice stacks.
	Shape minkowski.Shape
}

// Load reads a directory as a slice stack and any other path as a raw volume.
func Load(path string, opts Options) (*minkowski.Grid, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		grid, _, err := LoadSlices(path, opts.Threshold)
		return grid, err
	}
	return LoadRaw(path, opts.Shape)
}

// LoadRaw reads a volume stored as one byte per voxel, x varying fastest,
// then y, then z. Any non-zero byte is foreground.
func LoadRaw(path string, shape minkowski.Shape) (*minkowski.Grid, error) {
	grid, err := minkowski.NewGrid(shape.X, shape.Y, shape.Z)
	if err != nil {
		return nil, fmt.Errorf("raw volume %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) != len(grid.Data) {
		return nil, fmt.Errorf("raw volume %s has %d bytes, shape %s needs %d",
			path, len(data), shape, len(grid.Data))
	}
	for i, v := range data {
		if v != 0 {
			grid.Data[i] = 1
		}
	}
	return grid, nil
}

// LoadSlices reads every PNG or JPEG image in dir as one z-layer of a grid.
// Files are ordered by the number embedded in their names. All images must
// share the first image's dimensions.
func LoadSlices(dir string, threshold float64) (*minkowski.Grid, []models.Slice, error) {
	if threshold < 0 || threshold > 1 {
		return nil, nil, fmt.Errorf("threshold %.3f outside [0,1]", threshold)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var imageFiles []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(file.Name())) {
		case ".png", ".jpg", ".jpeg":
			imageFiles = append(imageFiles, file.Name())
		}
	}
	if len(imageFiles) == 0 {
		return nil, nil, fmt.Errorf("no PNG or JPEG images found in %s", dir)
	}

	sort.SliceStable(imageFiles, func(i, j int) bool {
		numI := extractNumber(imageFiles[i])
		numJ := extractNumber(imageFiles[j])
		if numI != numJ {
			return numI < numJ
		}
		return imageFiles[i] < imageFiles[j]
	})

	var grid *minkowski.Grid
	slices := make([]models.Slice, 0, len(imageFiles))
	for z, filename := range imageFiles {
		img, err := loadImage(filepath.Join(dir, filename))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load image %s: %w", filename, err)
		}
		bounds := img.Bounds()

		if grid == nil {
			grid, err = minkowski.NewGrid(bounds.Dx(), bounds.Dy(), len(imageFiles))
			if err != nil {
				return nil, nil, fmt.Errorf("image %s: %w", filename, err)
			}
		}
		if bounds.Dx() != grid.Width || bounds.Dy() != grid.Height {
			return nil, nil, fmt.Errorf("image %s is %dx%d, expected %dx%d",
				filename, bounds.Dx(), bounds.Dy(), grid.Width, grid.Height)
		}

		slice := models.Slice{Index: z, Filename: filename, Width: bounds.Dx(), Height: bounds.Dy()}
		for y := 0; y < grid.Height; y++ {
			for x := 0; x < grid.Width; x++ {
				if grey(img, bounds.Min.X+x, bounds.Min.Y+y) >= threshold {
					grid.Set(x, y, z, 1)
					slice.Foreground++
				}
			}
		}
		slices = append(slices, slice)
	}

	return grid, slices, nil
}

// ParseShape parses extents written as WxHxD.
func ParseShape(s string) (minkowski.Shape, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return minkowski.Shape{}, fmt.Errorf("invalid shape %q: want WxHxD", s)
	}
	var dims [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return minkowski.Shape{}, fmt.Errorf("invalid shape %q: extent %q", s, p)
		}
		dims[i] = n
	}
	return minkowski.Shape{X: dims[0], Y: dims[1], Z: dims[2]}, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

// loadImage decodes any registered image format
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// grey returns the luminance of the pixel at (x, y) in [0,1]
func grey(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535.0
}
