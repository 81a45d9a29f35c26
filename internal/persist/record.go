// Package persist maps drills to and from the backend record format, where
// coordinates are normalized to the unit square.
package persist

import (
	"cmp"
	"encoding/base64"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/ivlev/drillanim/internal/drill"
)

// TranscodeStatus is the state of the server-side GIF to video conversion.
// The empty value stands for a null status.
type TranscodeStatus string

const (
	TranscodePending TranscodeStatus = "pending"
	TranscodeSuccess TranscodeStatus = "success"
	TranscodeError   TranscodeStatus = "error"
)

// Resolved reports whether polling can stop.
func (s TranscodeStatus) Resolved() bool {
	return s != TranscodePending
}

type ElementRecord struct {
	ID int64 `json:"id,omitempty"`
	// TrackID carries the editing-session id so that cross-frame identity
	// survives a reload.
	TrackID  string  `json:"track_id,omitempty"`
	IconPath string  `json:"icon_path"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
	Text     *string `json:"text"`
	Color    *string `json:"color"`
}

type FrameRecord struct {
	ID         int64           `json:"id,omitempty"`
	OrderIndex int             `json:"order_index"`
	Name       string          `json:"name,omitempty"`
	Elements   []ElementRecord `json:"elements"`
}

// DrillRecord is the create/update payload.
type DrillRecord struct {
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Speed           string        `json:"animation_speed,omitempty"`
	Frames          []FrameRecord `json:"frames"`
	ThumbnailBase64 string        `json:"thumbnailBase64,omitempty"`
	// AnimationGIF is omitted when unchanged so the server keeps its copy.
	AnimationGIF string `json:"animation_gif,omitempty"`
}

// DrillView is the read model returned by the backend.
type DrillView struct {
	ID int64 `json:"id"`
	DrillRecord
	AnimationVideoURL    string          `json:"animationVideoUrl,omitempty"`
	AnimationVideoStatus TranscodeStatus `json:"animationVideoStatus,omitempty"`
}

// StatusView is the body of the animation status endpoint.
type StatusView struct {
	AnimationVideoURL    string          `json:"animationVideoUrl,omitempty"`
	AnimationVideoStatus TranscodeStatus `json:"animationVideoStatus"`
}

func Normalize(x, y float64) (float64, float64) {
	return x / drill.CanvasWidth, y / drill.CanvasHeight
}

func Denormalize(nx, ny float64) (float64, float64) {
	return nx * drill.CanvasWidth, ny * drill.CanvasHeight
}

// EncodeArtifact wraps binary artifacts for the JSON payload.
func EncodeArtifact(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToRecord converts frames to the persisted shape. Artifacts are attached by the caller.
func ToRecord(meta drill.Meta, speed drill.Speed, frames []drill.Frame) DrillRecord {
	rec := DrillRecord{
		Title:       meta.Title,
		Description: meta.Description,
		Speed:       string(speed),
		Frames:      make([]FrameRecord, len(frames)),
	}
	for i, f := range frames {
		fr := FrameRecord{OrderIndex: i, Name: f.Name, Elements: make([]ElementRecord, len(f.Elements))}
		for j, e := range f.Elements {
			nx, ny := Normalize(e.X, e.Y)
			fr.Elements[j] = ElementRecord{
				TrackID:  e.ID,
				IconPath: drill.IconPath(e.Kind, e.Subtype),
				X:        nx,
				Y:        ny,
				Rotation: e.Rotation,
				Scale:    e.Size,
				Text:     optional(e.Text),
				Color:    optional(e.Color),
			}
		}
		rec.Frames[i] = fr
	}
	return rec
}

// idSpace namespaces element ids derived from backend identifiers.
var idSpace = uuid.MustParse("6f1c2d0e-8b5a-4c4e-9d43-1f7a2b9e5c10")

func derivedID(format string, args ...any) string {
	return uuid.NewSHA1(idSpace, []byte(fmt.Sprintf(format, args...))).String()
}

// FromRecord restores a drill from its read model. Element ids come from
// track_id when present, otherwise they are derived deterministically from the
// backend element id, or from the element position when the backend gave none.
func FromRecord(view DrillView) (*drill.Drill, error) {
	records := slices.Clone(view.Frames)
	slices.SortStableFunc(records, func(a, b FrameRecord) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})

	frames := make([]drill.Frame, len(records))
	for i, fr := range records {
		f := drill.Frame{Name: fr.Name, Elements: make([]drill.Element, len(fr.Elements))}
		if fr.ID != 0 {
			f.ID = derivedID("frame/%d", fr.ID)
		} else {
			f.ID = derivedID("drill/%d/frame/%d", view.ID, i)
		}
		for j, er := range fr.Elements {
			kind, subtype, err := drill.ParseIconPath(er.IconPath)
			if err != nil {
				return nil, fmt.Errorf("frame %d element %d: %w", fr.OrderIndex, j, err)
			}
			id := er.TrackID
			switch {
			case id != "":
			case er.ID != 0:
				id = derivedID("element/%d", er.ID)
			default:
				id = derivedID("drill/%d/frame/%d/element/%d", view.ID, i, j)
			}
			x, y := Denormalize(er.X, er.Y)
			f.Elements[j] = drill.Element{
				ID:       id,
				Kind:     kind,
				Subtype:  subtype,
				X:        x,
				Y:        y,
				Rotation: er.Rotation,
				Size:     er.Scale,
				Text:     deref(er.Text),
				Color:    deref(er.Color),
			}
		}
		frames[i] = f
	}

	speed, err := drill.ParseSpeed(view.Speed)
	if err != nil {
		speed = drill.SpeedRegular
	}
	meta := drill.Meta{Title: view.Title, Description: view.Description}
	return drill.Restore(meta, speed, frames, drill.UUIDSource{})
}
