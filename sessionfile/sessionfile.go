// Package sessionfile reads and writes vmix sessions as YAML documents.
//
// A document lists its sources front first:
//
//	version: 1
//	name: show
//	fading: 0
//	resolution: {width: 1280, height: 720}
//	sources:
//	  - kind: image
//	    name: logo
//	    path: media/logo.png
//	    geometry: {translation: [0.5, 0, 0], scale: [0.3, 0.3, 1]}
//	  - kind: session
//	    name: intro
//	    path: intro.yaml
//
// Relative paths are resolved against the directory of the document.
package sessionfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/vmix"
)

// Version is the document version written by Save.
const Version = 1

// MaxDepth bounds the nesting of session sources loading session files.
const MaxDepth = 8

// Source kinds.
const (
	KindImage   = "image"
	KindSession = "session"
	KindRender  = "render"
)

// Placement is the transform of a source subgraph in one view.
type Placement struct {
	Translation [3]float32 `yaml:"translation,flow,omitempty"`
	Rotation    [3]float32 `yaml:"rotation,flow,omitempty"`
	Scale       [3]float32 `yaml:"scale,flow,omitempty"`
}

// Resolution is the output frame size.
type Resolution struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SourceDoc describes one source.
type SourceDoc struct {
	Kind     string     `yaml:"kind"`
	Name     string     `yaml:"name"`
	Path     string     `yaml:"path,omitempty"`
	Inactive bool       `yaml:"inactive,omitempty"`
	Geometry *Placement `yaml:"geometry,omitempty"`
	Layer    *Placement `yaml:"layer,omitempty"`
	Mixing   *Placement `yaml:"mixing,omitempty"`
}

// Document is the YAML form of a session.
type Document struct {
	Version    int         `yaml:"version"`
	Name       string      `yaml:"name,omitempty"`
	Fading     float64     `yaml:"fading"`
	Resolution Resolution  `yaml:"resolution"`
	Sources    []SourceDoc `yaml:"sources"`
}

// Parse decodes and validates a document.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "parse session document")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Read reads and validates the document stored at path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read session %s", path)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "session %s", path)
	}
	return d, nil
}

// Validate checks the version, the source kinds and that names are set.
func (d *Document) Validate() error {
	if d.Version < 1 || d.Version > Version {
		return errors.Errorf("unsupported version %d", d.Version)
	}
	if d.Fading < 0 || d.Fading > 1 {
		return errors.Errorf("fading %v out of [0,1]", d.Fading)
	}
	for i, sd := range d.Sources {
		if sd.Name == "" {
			return errors.Errorf("source %d: missing name", i)
		}
		switch sd.Kind {
		case KindImage, KindSession:
			if sd.Path == "" {
				return errors.Errorf("source %q: %s source needs a path", sd.Name, sd.Kind)
			}
		case KindRender:
		default:
			return errors.Errorf("source %q: unknown kind %q", sd.Name, sd.Kind)
		}
	}
	return nil
}

type depthKey struct{}

func depth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

// Creator populates sessions from documents. It implements vmix.SessionCreator.
type Creator struct {
	// Options are applied to the nested sessions it loads.
	Options []vmix.SessionOption
}

// Load reads the document at path and adds its sources to s.
func (c Creator) Load(ctx context.Context, s *vmix.Session, path string) error {
	if depth(ctx) >= MaxDepth {
		return errors.Errorf("session %s: nesting deeper than %d", path, MaxDepth)
	}
	d, err := Read(path)
	if err != nil {
		return err
	}
	return c.Populate(ctx, s, d, filepath.Dir(path))
}

// Populate adds the sources of d to s. Relative paths are resolved in dir.
func (c Creator) Populate(ctx context.Context, s *vmix.Session, d *Document, dir string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "populate session")
	}
	if d.Resolution.Width > 0 && d.Resolution.Height > 0 {
		s.SetResolution(mgl32.Vec3{float32(d.Resolution.Width), float32(d.Resolution.Height), 0})
	}
	s.SetFading(d.Fading, true)

	nested := context.WithValue(ctx, depthKey{}, depth(ctx)+1)
	// AddSource inserts at the front: add back to front to keep the order.
	for i := len(d.Sources) - 1; i >= 0; i-- {
		sd := d.Sources[i]
		var src vmix.Source
		switch sd.Kind {
		case KindImage:
			src = vmix.NewImageSource(sd.Name, resolve(dir, sd.Path))
		case KindSession:
			ss := vmix.NewSessionSource(sd.Name)
			ss.Load(nested, resolve(dir, sd.Path), Loader(c.Options...))
			src = ss
		case KindRender:
			src = vmix.NewRenderSource(sd.Name, s)
		default:
			return errors.Errorf("source %q: unknown kind %q", sd.Name, sd.Kind)
		}
		apply(src, vmix.ViewGeometry, sd.Geometry)
		apply(src, vmix.ViewLayer, sd.Layer)
		apply(src, vmix.ViewMixing, sd.Mixing)
		if sd.Inactive {
			src.SetActive(false)
		}
		s.AddSource(src)
	}
	return nil
}

// Loader returns a vmix.SessionLoader reading session documents.
func Loader(opts ...vmix.SessionOption) vmix.SessionLoader {
	return vmix.NewSessionLoader(Creator{Options: opts}, opts...)
}

// Load creates a session from the document at path.
func Load(ctx context.Context, path string, opts ...vmix.SessionOption) (*vmix.Session, error) {
	return vmix.LoadSession(ctx, path, Creator{Options: opts}, opts...)
}

// Encode builds the document of s. Paths are made relative to dir when
// possible. The source list is read under the session lock.
func Encode(s *vmix.Session, dir string) (*Document, error) {
	res := s.Resolution()
	d := &Document{
		Version:    Version,
		Name:       nameOf(s.Filename()),
		Fading:     s.Fading(),
		Resolution: Resolution{Width: int(res.X()), Height: int(res.Y())},
	}

	s.Lock()
	defer s.Unlock()
	for _, src := range s.Sources() {
		sd := SourceDoc{
			Name:     src.Name(),
			Inactive: !src.Active(),
			Geometry: placement(src, vmix.ViewGeometry),
			Layer:    placement(src, vmix.ViewLayer),
			Mixing:   placement(src, vmix.ViewMixing),
		}
		switch v := src.(type) {
		case *vmix.ImageSource:
			sd.Kind, sd.Path = KindImage, relative(dir, v.Path())
		case *vmix.SessionSource:
			sd.Kind, sd.Path = KindSession, relative(dir, v.Path())
		case *vmix.RenderSource:
			sd.Kind = KindRender
		default:
			return nil, errors.Errorf("source %q: cannot encode %T", src.Name(), src)
		}
		d.Sources = append(d.Sources, sd)
	}
	return d, nil
}

// Save writes s to path and records path as the session filename.
func Save(s *vmix.Session, path string) error {
	d, err := Encode(s, filepath.Dir(path))
	if err != nil {
		return errors.Wrapf(err, "encode session %s", path)
	}
	d.Name = nameOf(path)
	data, err := yaml.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write session %s", path)
	}
	s.SetFilename(path)
	return nil
}

func apply(src vmix.Source, mode vmix.ViewMode, p *Placement) {
	g := src.Group(mode)
	if p == nil || g == nil {
		return
	}
	g.SetTranslation(mgl32.Vec3(p.Translation))
	g.SetRotation(mgl32.Vec3(p.Rotation))
	if p.Scale != [3]float32{} {
		g.SetScale(mgl32.Vec3(p.Scale))
	}
}

func placement(src vmix.Source, mode vmix.ViewMode) *Placement {
	g := src.Group(mode)
	if g == nil {
		return nil
	}
	p := &Placement{
		Translation: [3]float32(g.Translation),
		Rotation:    [3]float32(g.Rotation),
		Scale:       [3]float32(g.Scale),
	}
	if *p == (Placement{Scale: [3]float32{1, 1, 1}}) {
		return nil
	}
	return p
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func relative(dir, path string) string {
	if dir == "" || filepath.IsAbs(dir) != filepath.IsAbs(path) {
		return path
	}
	if rel, err := filepath.Rel(dir, path); err == nil {
		return rel
	}
	return path
}

func nameOf(filename string) string {
	base := filepath.Base(filename)
	if filename == "" || base == "." {
		return ""
	}
	return base[:len(base)-len(filepath.Ext(base))]
}
