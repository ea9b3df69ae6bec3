// Package config loads the immutable service settings from the
// environment. Every pipeline stage receives a *Settings at
// construction; nothing mutates it afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Settings holds every tunable of the model pipeline. Defaults match
// a 20 cm printable disk with 7.5 mm layers.
type Settings struct {
	AppName string

	// Request bounds.
	MinRadiusM   float64
	MaxRadiusM   float64
	MaxBuildings int

	// Upstream feature source.
	OverpassURL   string
	UserAgent     string
	TileSizeM     float64
	RetryAttempts int
	FetchWorkers  int
	FetchTimeoutS int

	// Physical layer dimensions (print-space meters).
	BaseThicknessM       float64
	GreenThicknessM      float64
	BuildingThicknessM   float64
	RoadGrooveDepthM     float64
	HighlightPegDepthM   float64
	TargetPrintDiameterM float64

	// World-space composition constants (meters on the ground).
	BasePaddingM     float64
	BuildingPaddingM float64
	RoadWidthM       float64
	ParkShrinkM      float64

	// Building height inference.
	DefaultHeightM float64
	LevelHeightM   float64
	MinHeightM     float64

	HighlightEnabled bool
	AllowedFormats   []string

	LogLevel string
	LogFile  string
	Port     string
}

// Load reads settings from the environment, falling back to defaults.
func Load() (*Settings, error) {
	s := &Settings{
		AppName:              "print3dhood",
		MinRadiusM:           envFloat("MIN_RADIUS_M", 50),
		MaxRadiusM:           envFloat("MAX_RADIUS_M", 750),
		MaxBuildings:         envInt("MAX_BUILDINGS", 250),
		OverpassURL:          envString("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		UserAgent:            envString("OVERPASS_USER_AGENT", "print3dhood/1.0 (contact: example@example.com)"),
		TileSizeM:            envFloat("OVERPASS_TILE_SIZE_M", 300),
		RetryAttempts:        envInt("OVERPASS_RETRIES", 3),
		FetchWorkers:         envInt("FETCH_WORKERS", 4),
		FetchTimeoutS:        envInt("FETCH_TIMEOUT_S", 120),
		BaseThicknessM:       envFloat("BASE_THICKNESS_M", 0.0075),
		GreenThicknessM:      envFloat("GREEN_LAYER_THICKNESS_M", 0.0075),
		BuildingThicknessM:   envFloat("BUILDING_LAYER_THICKNESS_M", 0.0075),
		RoadGrooveDepthM:     envFloat("ROAD_GROOVE_DEPTH_M", 0.0015),
		HighlightPegDepthM:   envFloat("HIGHLIGHT_PEG_DEPTH_M", 0.0045),
		TargetPrintDiameterM: envFloat("TARGET_PRINT_DIAMETER_M", 0.2),
		BasePaddingM:         envFloat("BASE_PADDING_M", 5.0),
		BuildingPaddingM:     envFloat("BUILDING_LAYER_PADDING_M", 2.5),
		RoadWidthM:           envFloat("ROAD_INDENT_WIDTH_M", 4.0),
		ParkShrinkM:          envFloat("PARK_INDENT_SHRINK_M", 1.0),
		DefaultHeightM:       envFloat("DEFAULT_HEIGHT_M", 10.0),
		LevelHeightM:         envFloat("LEVEL_HEIGHT_M", 3.0),
		MinHeightM:           envFloat("MIN_HEIGHT_M", 3.0),
		HighlightEnabled:     envBool("HIGHLIGHT_ENABLED", true),
		AllowedFormats:       []string{"stl"},
		LogLevel:             envString("LOG_LEVEL", "info"),
		LogFile:              envString("LOG_FILE", ""),
		Port:                 envString("PORT", "8080"),
	}

	if s.MinRadiusM <= 0 || s.MaxRadiusM < s.MinRadiusM {
		return nil, fmt.Errorf("invalid radius bounds: min=%v max=%v", s.MinRadiusM, s.MaxRadiusM)
	}
	if s.RetryAttempts < 1 {
		return nil, fmt.Errorf("OVERPASS_RETRIES must be at least 1, got %d", s.RetryAttempts)
	}
	if s.FetchWorkers < 1 {
		return nil, fmt.Errorf("FETCH_WORKERS must be at least 1, got %d", s.FetchWorkers)
	}
	if s.TileSizeM <= 0 {
		return nil, fmt.Errorf("OVERPASS_TILE_SIZE_M must be positive, got %v", s.TileSizeM)
	}
	return s, nil
}

// FormatAllowed reports whether the export format can be produced.
func (s *Settings) FormatAllowed(format string) bool {
	for _, f := range s.AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
