package pathgen

import (
	"fmt"
	"strconv"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
)

// Mode selects which structure a session is building.
type Mode string

const (
	ModeCurve  Mode = "curve" // preview-only sampling
	ModeRoad   Mode = "road"
	ModeBridge Mode = "bridge"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeCurve, ModeRoad, ModeBridge:
		return Mode(s), true
	}
	return "", false
}

// HeightMode controls how a bridge deck derives its elevation.
type HeightMode string

const (
	// HeightAuto follows the sampled curve's rounded Y per sample.
	HeightAuto HeightMode = "auto"
	// HeightFixed holds the first sample's elevation across the span.
	HeightFixed HeightMode = "fixed"
)

// Settings value ranges. Out-of-range values are rejected at this
// boundary; generators never clamp.
const (
	MinResolution = 0.1
	MaxResolution = 2.0

	MinWidth = 1
	MaxWidth = 32

	MinClearance = 1
	MaxClearance = 10
	MinFillBelow = 0
	MaxFillBelow = 20

	MinSupportSpacing  = 3
	MaxSupportSpacing  = 50
	MinSupportWidth    = 1
	MaxSupportWidth    = 10
	MinSupportMaxDepth = 1
	MaxSupportMaxDepth = 128
)

// CurveSettings is shared by every mode.
type CurveSettings struct {
	Resolution float64        `json:"resolution"`
	Algorithm  geom.Algorithm `json:"algorithm"`
}

// RoadSettings parameterizes the surface path generator.
type RoadSettings struct {
	CurveSettings
	Width int `json:"width"`

	Material       string `json:"material"`
	BorderMaterial string `json:"border_material"`
	CenterMaterial string `json:"center_material"`
	FillMaterial   string `json:"fill_material"`

	Stairs bool `json:"stairs"`
	Slabs  bool `json:"slabs"`

	TerrainAdapt bool `json:"terrain_adapt"`
	Clearance    int  `json:"clearance"`
	FillBelow    int  `json:"fill_below"`
}

// BridgeSettings parameterizes the elevated path generator. Bridges are
// always sampled with Catmull-Rom: the curve must pass through the
// operator's anchors exactly or pillar and ramp anchoring drifts, which
// the midpoint-anchored Bezier chain does not guarantee.
type BridgeSettings struct {
	Resolution float64 `json:"resolution"`
	Width      int     `json:"width"`

	DeckMaterial    string `json:"deck_material"`
	RailMaterial    string `json:"rail_material"`
	SupportMaterial string `json:"support_material"`

	Railings bool `json:"railings"`
	Ramps    bool `json:"ramps"`

	Supports        bool `json:"supports"`
	SupportSpacing  int  `json:"support_spacing"`
	SupportWidth    int  `json:"support_width"`
	SupportMaxDepth int  `json:"support_max_depth"`

	HeightMode HeightMode `json:"height_mode"`
}

func DefaultCurveSettings() CurveSettings {
	return CurveSettings{Resolution: 0.5, Algorithm: geom.AlgoCatmullRom}
}

func DefaultRoadSettings() RoadSettings {
	return RoadSettings{
		CurveSettings:  DefaultCurveSettings(),
		Width:          3,
		Material:       "COBBLESTONE",
		BorderMaterial: "STONE_BRICKS",
		CenterMaterial: "COBBLESTONE",
		FillMaterial:   "DIRT",
		Stairs:         true,
		Slabs:          true,
		TerrainAdapt:   true,
		Clearance:      3,
		FillBelow:      5,
	}
}

func DefaultBridgeSettings() BridgeSettings {
	return BridgeSettings{
		Resolution:      0.5,
		Width:           5,
		DeckMaterial:    "OAK_PLANKS",
		RailMaterial:    "OAK_FENCE",
		SupportMaterial: "OAK_LOG",
		Railings:        true,
		Ramps:           true,
		Supports:        true,
		SupportSpacing:  8,
		SupportWidth:    1,
		SupportMaxDepth: 40,
		HeightMode:      HeightAuto,
	}
}

func checkRange(key string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s: %d out of range [%d,%d]", key, v, lo, hi)
	}
	return nil
}

func checkMaterial(cat *blocks.Catalog, key, id string) error {
	if id == "" {
		return fmt.Errorf("%s: empty material", key)
	}
	if !cat.Has(id) {
		return fmt.Errorf("%s: unknown material %q", key, id)
	}
	return nil
}

func (s CurveSettings) Validate() error {
	if s.Resolution < MinResolution || s.Resolution > MaxResolution {
		return fmt.Errorf("resolution: %g out of range [%g,%g]", s.Resolution, MinResolution, MaxResolution)
	}
	if _, ok := geom.ParseAlgorithm(string(s.Algorithm)); !ok {
		return fmt.Errorf("algorithm: unknown %q", s.Algorithm)
	}
	return nil
}

func (s RoadSettings) Validate(cat *blocks.Catalog) error {
	if err := s.CurveSettings.Validate(); err != nil {
		return err
	}
	if err := checkRange("width", s.Width, MinWidth, MaxWidth); err != nil {
		return err
	}
	if err := checkRange("clearance", s.Clearance, MinClearance, MaxClearance); err != nil {
		return err
	}
	if err := checkRange("fill_below", s.FillBelow, MinFillBelow, MaxFillBelow); err != nil {
		return err
	}
	for key, id := range map[string]string{
		"material":        s.Material,
		"border_material": s.BorderMaterial,
		"center_material": s.CenterMaterial,
		"fill_material":   s.FillMaterial,
	} {
		if err := checkMaterial(cat, key, id); err != nil {
			return err
		}
	}
	return nil
}

func (s BridgeSettings) Validate(cat *blocks.Catalog) error {
	if s.Resolution < MinResolution || s.Resolution > MaxResolution {
		return fmt.Errorf("resolution: %g out of range [%g,%g]", s.Resolution, MinResolution, MaxResolution)
	}
	if err := checkRange("width", s.Width, MinWidth, MaxWidth); err != nil {
		return err
	}
	if err := checkRange("support_spacing", s.SupportSpacing, MinSupportSpacing, MaxSupportSpacing); err != nil {
		return err
	}
	if err := checkRange("support_width", s.SupportWidth, MinSupportWidth, MaxSupportWidth); err != nil {
		return err
	}
	if err := checkRange("support_max_depth", s.SupportMaxDepth, MinSupportMaxDepth, MaxSupportMaxDepth); err != nil {
		return err
	}
	if s.HeightMode != HeightAuto && s.HeightMode != HeightFixed {
		return fmt.Errorf("height_mode: unknown %q", s.HeightMode)
	}
	for key, id := range map[string]string{
		"deck_material":    s.DeckMaterial,
		"rail_material":    s.RailMaterial,
		"support_material": s.SupportMaterial,
	} {
		if err := checkMaterial(cat, key, id); err != nil {
			return err
		}
	}
	return nil
}

// Set applies one live key=value edit from the operator. Unknown keys
// and unparsable values are rejected; range and material checks happen
// in Validate before generation.
func (s *RoadSettings) Set(key, value string) error {
	switch key {
	case "resolution":
		return setFloat(&s.Resolution, key, value)
	case "algorithm":
		a, ok := geom.ParseAlgorithm(value)
		if !ok {
			return fmt.Errorf("algorithm: unknown %q", value)
		}
		s.Algorithm = a
		return nil
	case "width":
		return setInt(&s.Width, key, value)
	case "material":
		s.Material = value
	case "border_material":
		s.BorderMaterial = value
	case "center_material":
		s.CenterMaterial = value
	case "fill_material":
		s.FillMaterial = value
	case "stairs":
		return setBool(&s.Stairs, key, value)
	case "slabs":
		return setBool(&s.Slabs, key, value)
	case "terrain_adapt":
		return setBool(&s.TerrainAdapt, key, value)
	case "clearance":
		return setInt(&s.Clearance, key, value)
	case "fill_below":
		return setInt(&s.FillBelow, key, value)
	default:
		return fmt.Errorf("unknown road setting %q", key)
	}
	return nil
}

func (s *BridgeSettings) Set(key, value string) error {
	switch key {
	case "resolution":
		return setFloat(&s.Resolution, key, value)
	case "width":
		return setInt(&s.Width, key, value)
	case "deck_material":
		s.DeckMaterial = value
	case "rail_material":
		s.RailMaterial = value
	case "support_material":
		s.SupportMaterial = value
	case "railings":
		return setBool(&s.Railings, key, value)
	case "ramps":
		return setBool(&s.Ramps, key, value)
	case "supports":
		return setBool(&s.Supports, key, value)
	case "support_spacing":
		return setInt(&s.SupportSpacing, key, value)
	case "support_width":
		return setInt(&s.SupportWidth, key, value)
	case "support_max_depth":
		return setInt(&s.SupportMaxDepth, key, value)
	case "height_mode":
		switch HeightMode(value) {
		case HeightAuto, HeightFixed:
			s.HeightMode = HeightMode(value)
			return nil
		}
		return fmt.Errorf("height_mode: unknown %q", value)
	default:
		return fmt.Errorf("unknown bridge setting %q", key)
	}
	return nil
}

func (s *CurveSettings) Set(key, value string) error {
	switch key {
	case "resolution":
		return setFloat(&s.Resolution, key, value)
	case "algorithm":
		a, ok := geom.ParseAlgorithm(value)
		if !ok {
			return fmt.Errorf("algorithm: unknown %q", value)
		}
		s.Algorithm = a
		return nil
	default:
		return fmt.Errorf("unknown curve setting %q", key)
	}
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: not an integer: %q", key, value)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: not a number: %q", key, value)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, key, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: not a boolean: %q", key, value)
	}
	*dst = v
	return nil
}
