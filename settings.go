package vmix

import (
	"fmt"
	"maps"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// DefaultFadingEpsilon is the distance below which the live fading snaps to
// its target.
const DefaultFadingEpsilon = 1e-4

// ViewSettings holds the default placement of a view configuration group.
type ViewSettings struct {
	Scale       [3]float32 `yaml:"default_scale"`
	Translation [3]float32 `yaml:"default_translation"`
}

// Settings configures new sessions and the player.
type Settings struct {
	Width         int                     `yaml:"width"`
	Height        int                     `yaml:"height"`
	FadingEpsilon float64                 `yaml:"fading_epsilon"`
	Views         map[string]ViewSettings `yaml:"views"`

	RecordDir    string `yaml:"record_dir"`
	RecordFrames int    `yaml:"record_frames"`
}

// DefaultSettings returns a 1280x720 output with identity view placements.
func DefaultSettings() Settings {
	s := Settings{
		Width:         1280,
		Height:        720,
		FadingEpsilon: DefaultFadingEpsilon,
		Views:         make(map[string]ViewSettings, len(ViewModes)),
		RecordDir:     "recordings",
	}
	for _, m := range ViewModes {
		s.Views[m.String()] = ViewSettings{Scale: [3]float32{1, 1, 1}}
	}
	return s
}

// LoadSettings reads a YAML settings file. Missing keys keep their default
// values; a missing file yields DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("vmix: read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("vmix: parse settings %s: %w", path, err)
	}
	return s.normalized(), nil
}

// Save writes the settings as YAML.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("vmix: encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("vmix: write settings: %w", err)
	}
	return nil
}

// Resolution returns the output size as (width, height, 0).
func (s Settings) Resolution() mgl32.Vec3 {
	return mgl32.Vec3{float32(s.Width), float32(s.Height), 0}
}

// View returns the placement of the given view, identity when unset.
func (s Settings) View(mode ViewMode) ViewSettings {
	if v, ok := s.Views[mode.String()]; ok {
		return v
	}
	return ViewSettings{Scale: [3]float32{1, 1, 1}}
}

func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.FadingEpsilon <= 0 {
		s.FadingEpsilon = d.FadingEpsilon
	}
	if s.Views == nil {
		s.Views = d.Views
	} else {
		s.Views = maps.Clone(s.Views)
	}
	for name, v := range s.Views {
		if v.Scale == [3]float32{} {
			v.Scale = [3]float32{1, 1, 1}
			s.Views[name] = v
		}
	}
	return s
}
