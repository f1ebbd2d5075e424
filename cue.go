package vmix

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Cue is one step of a cue list.
//
//	fade       SetFading(Value, Now)
//	wait       let Frames frames go by
//	activate   activate Source, or the whole session when Source is empty
//	deactivate the opposite of activate
//	delete     delete the source called Source
//	record     attach a PNGRecorder writing Frames frames into Dir
//	stop       stop every recorder
type Cue struct {
	Action string  `yaml:"action"`
	Value  float64 `yaml:"value,omitempty"`
	Now    bool    `yaml:"now,omitempty"`
	Source string  `yaml:"source,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
	Label  string  `yaml:"label,omitempty"`
	Dir    string  `yaml:"dir,omitempty"`
}

type cueScript struct {
	Cues []Cue `yaml:"cues"`
}

// CueList plays a scripted sequence of session changes, one cue per frame
// unless a wait cue holds it. Call Step once per frame after Session.Update.
type CueList struct {
	cues      []Cue
	cursor    int
	waitCount int
	done      bool
}

// ParseCues parses a YAML (or JSON) cue script.
func ParseCues(data []byte) (*CueList, error) {
	var script cueScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse cue list: %w", err)
	}
	if len(script.Cues) == 0 {
		return nil, fmt.Errorf("parse cue list: no cues")
	}
	for i, c := range script.Cues {
		switch c.Action {
		case "fade", "wait", "activate", "deactivate", "record", "stop":
		case "delete":
			if c.Source == "" {
				return nil, fmt.Errorf("parse cue list: cue %d: delete needs a source", i)
			}
		default:
			return nil, fmt.Errorf("parse cue list: cue %d: unknown action %q", i, c.Action)
		}
	}
	return &CueList{cues: script.Cues}, nil
}

// LoadCues reads a cue script from a file.
func LoadCues(path string) (*CueList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cue list: %w", err)
	}
	return ParseCues(data)
}

// Done reports whether every cue was played.
func (c *CueList) Done() bool {
	return c.done
}

// Step plays the next cue on s, if no wait is pending.
func (c *CueList) Step(s *Session) {
	if c.done {
		return
	}
	if c.waitCount > 0 {
		c.waitCount--
		return
	}
	if c.cursor >= len(c.cues) {
		c.done = true
		return
	}

	cue := c.cues[c.cursor]
	c.cursor++

	switch cue.Action {
	case "fade":
		s.SetFading(cue.Value, cue.Now)
	case "wait":
		if cue.Frames > 0 {
			c.waitCount = cue.Frames - 1 // this frame counts as one
		}
	case "activate", "deactivate":
		on := cue.Action == "activate"
		if cue.Source == "" {
			s.SetActive(on)
		} else if src := s.Find(cue.Source); src != nil {
			src.SetActive(on)
		} else {
			Logger().Warn("cue source not found", "action", cue.Action, "source", cue.Source)
		}
	case "delete":
		if src := s.Find(cue.Source); src != nil {
			s.DeleteSource(src)
		} else {
			Logger().Warn("cue source not found", "action", cue.Action, "source", cue.Source)
		}
	case "record":
		dir := cue.Dir
		if dir == "" {
			dir = s.Settings().RecordDir
		}
		r := NewPNGRecorder(dir, cue.Label)
		r.MaxFrames = cue.Frames
		s.AddRecorder(r)
	case "stop":
		s.StopRecorders()
	}

	if c.cursor >= len(c.cues) && c.waitCount == 0 {
		c.done = true
	}
}
