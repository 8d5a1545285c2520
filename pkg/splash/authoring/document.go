// Package authoring prepares animations on a workstation: it reads and
// writes manifest documents, packs frames into packages and extracts frames
// from ordinary image files.
package authoring

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/provide-io/bootsplash/pkg/splash/playback"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// DefaultBackground fills the area around letterboxed frames.
const DefaultBackground = "#000000"

// FrameEntry is one frame of a manifest document.
type FrameEntry struct {
	Path       string `json:"path"`
	DurationUs uint32 `json:"duration_us,omitempty"`
}

// Document is a manifest as authored. Field order matches the keys the
// boot-time reader looks up.
type Document struct {
	LogicalWidth       uint32       `json:"logical_width"`
	LogicalHeight      uint32       `json:"logical_height"`
	Scaling            string       `json:"scaling"`
	Background         string       `json:"background"`
	MaxMemory          uint64       `json:"max_memory"`
	LoopCount          uint32       `json:"loop_count"`
	FrameDurationUs    uint32       `json:"frame_duration_us"`
	AllowKeySkip       bool         `json:"allow_key_skip"`
	MaxTotalDurationMs uint64       `json:"max_total_duration_ms"`
	Frames             []FrameEntry `json:"frames"`
}

// NewDocument returns a document holding the playback defaults.
func NewDocument() *Document {
	d := playback.Defaults()
	return &Document{
		LogicalWidth:       d.Width,
		LogicalHeight:      d.Height,
		Scaling:            d.Scaling,
		Background:         DefaultBackground,
		MaxMemory:          d.MaxMemory,
		LoopCount:          d.LoopCount,
		FrameDurationUs:    d.FrameDurationUs,
		AllowKeySkip:       d.AllowKeySkip,
		MaxTotalDurationMs: d.MaxTotalDurationMs,
	}
}

var backgroundPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseDocument reads a manifest document. Keys that are absent keep their
// defaults; at least one frame is required.
func ParseDocument(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, splasherr.Corruptf("manifest is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, splasherr.Corruptf("manifest is not a JSON object")
	}

	doc := NewDocument()
	uintField := func(key string, dst *uint32) {
		if v := root.Get(key); v.Exists() {
			*dst = uint32(v.Uint())
		}
	}
	uintField("logical_width", &doc.LogicalWidth)
	uintField("logical_height", &doc.LogicalHeight)
	uintField("loop_count", &doc.LoopCount)
	uintField("frame_duration_us", &doc.FrameDurationUs)
	if v := root.Get("max_memory"); v.Exists() {
		doc.MaxMemory = v.Uint()
	}
	if v := root.Get("max_total_duration_ms"); v.Exists() {
		doc.MaxTotalDurationMs = v.Uint()
	}
	if v := root.Get("allow_key_skip"); v.Exists() {
		doc.AllowKeySkip = v.Bool()
	}
	if v := root.Get("scaling"); v.Exists() {
		doc.Scaling = v.String()
	}
	if v := root.Get("background"); v.Exists() {
		doc.Background = v.String()
	}

	var frameErr error
	root.Get("frames").ForEach(func(_, frame gjson.Result) bool {
		path := frame.Get("path").String()
		if path == "" {
			frameErr = splasherr.Corruptf("frame %d has no path", len(doc.Frames))
			return false
		}
		doc.Frames = append(doc.Frames, FrameEntry{
			Path:       path,
			DurationUs: uint32(frame.Get("duration_us").Uint()),
		})
		return true
	})
	if frameErr != nil {
		return nil, frameErr
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks the document can be packed and played.
func (d *Document) Validate() error {
	if len(d.Frames) == 0 {
		return fmt.Errorf("%w: manifest has no frames", splasherr.ErrInvalidArgument)
	}
	if d.LogicalWidth == 0 || d.LogicalWidth > playback.MaxDimension ||
		d.LogicalHeight == 0 || d.LogicalHeight > playback.MaxDimension {
		return fmt.Errorf("%w: logical size %dx%d", splasherr.ErrOutOfRange, d.LogicalWidth, d.LogicalHeight)
	}
	if len(d.Scaling) > playback.MaxScalingBytes {
		return fmt.Errorf("%w: scaling tag %q longer than %d bytes", splasherr.ErrOutOfRange, d.Scaling, playback.MaxScalingBytes)
	}
	if d.Background != "" && !backgroundPattern.MatchString(d.Background) {
		return fmt.Errorf("%w: background %q, want #RRGGBB", splasherr.ErrInvalidArgument, d.Background)
	}
	return nil
}

// Compact encodes the document without whitespace, as embedded in packages.
func (d *Document) Compact() ([]byte, error) {
	return json.Marshal(d)
}

// Indented encodes the document for a loose manifest file.
func (d *Document) Indented() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
