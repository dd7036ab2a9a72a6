package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Figure size shared by all charts
const (
	figureWidth  = 8 * vg.Inch
	figureHeight = 5 * vg.Inch
)

// supportedFormats are the output extensions gonum/plot can render
var supportedFormats = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".pdf": true, ".eps": true, ".tif": true, ".tiff": true,
}

// save renders p to path; the format follows the file extension
func save(p *plot.Plot, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported chart format %q (use .png, .svg or .pdf)", ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := p.Save(figureWidth, figureHeight, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("Chart saved")
	return nil
}
