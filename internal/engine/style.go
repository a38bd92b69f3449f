package engine

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Style holds the visual constants of a frame. Geometry and hit testing never
// read it.
type Style struct {
	NeutralFill  string       `yaml:"neutralFill" json:"neutralFill"`
	HoverFill    string       `yaml:"hoverFill" json:"hoverFill"`
	SelectedFill string       `yaml:"selectedFill" json:"selectedFill"`
	StrokeColor  string       `yaml:"strokeColor" json:"strokeColor"`
	StrokeWidth  StrokeWidths `yaml:"strokeWidth" json:"strokeWidth"`
	LabelColor   string       `yaml:"labelColor" json:"labelColor"`
	LabelFont    string       `yaml:"labelFont" json:"labelFont"`
	LabelSize    float64      `yaml:"labelSize" json:"labelSize"`
}

// StrokeWidths are outline weights per room state.
type StrokeWidths struct {
	Neutral  float64 `yaml:"neutral" json:"neutral"`
	Hover    float64 `yaml:"hover" json:"hover"`
	Selected float64 `yaml:"selected" json:"selected"`
}

// DefaultStyle returns the stock palette.
func DefaultStyle() Style {
	return Style{
		NeutralFill:  "rgba(148, 163, 184, 0.18)",
		HoverFill:    "rgba(59, 130, 246, 0.35)",
		SelectedFill: "rgba(59, 130, 246, 0.35)",
		StrokeColor:  "rgba(59, 130, 246, 0.85)",
		StrokeWidth: StrokeWidths{
			Neutral:  2,
			Hover:    2.5,
			Selected: 3,
		},
		LabelColor: "rgba(15, 23, 42, 0.95)",
		LabelFont:  "600 12px ui-sans-serif, system-ui, -apple-system, 'Segoe UI'",
		LabelSize:  12,
	}
}

// ParseStyle overlays YAML on top of DefaultStyle. Keys that are absent keep
// their default value.
func ParseStyle(data []byte) (Style, error) {
	style := DefaultStyle()
	if err := yaml.Unmarshal(data, &style); err != nil {
		return Style{}, fmt.Errorf("parse style: %w", err)
	}
	if err := style.Validate(); err != nil {
		return Style{}, err
	}
	return style, nil
}

// LoadStyle reads a YAML style file. An empty path yields DefaultStyle.
func LoadStyle(path string) (Style, error) {
	if path == "" {
		return DefaultStyle(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("read style %s: %w", path, err)
	}
	return ParseStyle(data)
}

func (s Style) Validate() error {
	var errs []error
	if s.StrokeWidth.Neutral < 0 || s.StrokeWidth.Hover < 0 || s.StrokeWidth.Selected < 0 {
		errs = append(errs, errors.New("stroke widths must not be negative"))
	}
	if s.LabelSize <= 0 {
		errs = append(errs, errors.New("label size must be positive"))
	}
	for name, color := range map[string]string{
		"neutralFill":  s.NeutralFill,
		"hoverFill":    s.HoverFill,
		"selectedFill": s.SelectedFill,
		"strokeColor":  s.StrokeColor,
		"labelColor":   s.LabelColor,
	} {
		if color == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}
	return errors.Join(errs...)
}

// polygonStyle picks fill and stroke for a room in the given state.
func (s Style) polygonStyle(hovered, selected bool) PolygonStyle {
	ps := PolygonStyle{Fill: s.NeutralFill, Stroke: s.StrokeColor, StrokeWidth: s.StrokeWidth.Neutral}
	switch {
	case selected:
		ps.Fill = s.SelectedFill
		ps.StrokeWidth = s.StrokeWidth.Selected
		if hovered {
			ps.Fill = s.HoverFill
		}
	case hovered:
		ps.Fill = s.HoverFill
		ps.StrokeWidth = s.StrokeWidth.Hover
	}
	return ps
}

func (s Style) labelStyle() LabelStyle {
	return LabelStyle{Color: s.LabelColor, Font: s.LabelFont, Size: s.LabelSize}
}
