package batchlog

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
)

// Only lines containing this substring are checked against inlineConfigRegex
const inlineConfigMarker = "BatchSize:"

// Inline configuration announcement, anywhere in the line
// Example: [18:11:40.002] [MultiCurlTest] BatchSize: 16 | MaxParallelBatches: 2
var inlineConfigRegex = regexp.MustCompile(`BatchSize:\s*(\d+)\s*\|\s*MaxParallelBatches:\s*(\d+)`)

// Configuration encoded in file or directory names
// Examples:
//   - run_bs32_max4.txt
//   - logs/BS16_MAX2/run3.txt
var pathConfigRegex = regexp.MustCompile(`(?i)bs(\d+)_max(\d+)`)

// ExtractInlineConfig extracts batch size and parallelism from a
// "BatchSize: <n> | MaxParallelBatches: <m>" announcement in the line
func ExtractInlineConfig(line string) (domain.RunConfig, bool) {
	if !strings.Contains(line, inlineConfigMarker) {
		return domain.RunConfig{}, false
	}

	matches := inlineConfigRegex.FindStringSubmatch(line)
	if matches == nil {
		return domain.RunConfig{}, false
	}

	return configFromMatch(matches)
}

// ExtractConfigFromPath infers batch size and parallelism from a bs<n>_max<m>
// token in the file name or its directory.
//
// The searched text is "<basename> <dirname>", so a token in the file name wins
// over one in the directory path.
func ExtractConfigFromPath(path string) (domain.RunConfig, bool) {
	combined := filepath.Base(path) + " " + filepath.Dir(path)

	matches := pathConfigRegex.FindStringSubmatch(combined)
	if matches == nil {
		return domain.RunConfig{}, false
	}

	return configFromMatch(matches)
}

// configFromMatch converts the two captured digit groups to a RunConfig
func configFromMatch(matches []string) (domain.RunConfig, bool) {
	batchSize, err := strconv.Atoi(matches[1])
	if err != nil {
		// Only possible on overflow
		return domain.RunConfig{}, false
	}
	maxParallel, err := strconv.Atoi(matches[2])
	if err != nil {
		return domain.RunConfig{}, false
	}

	return domain.RunConfig{
		BatchSize:   domain.IntPtr(batchSize),
		MaxParallel: domain.IntPtr(maxParallel),
	}, true
}
