// Package viewplan defines the seven fixed camera placements a mesh is
// rendered from: six axis-aligned views and one orthographic corner view.
package viewplan

import (
	"fmt"

	"github.com/ulassi/stl2png/pkg/math"
)

// Camera constants shared by every view.
const (
	EyeDistance      = 4
	FieldOfViewDeg   = 45
	NearPlane        = 0.1
	FarPlane         = 100
	OrthoHalfHeight  = 2.5
	defaultExtension = "png"
)

// Tag names a view in output file names.
type Tag string

// View tags in rendering order.
const (
	PosX   Tag = "px"
	NegX   Tag = "nx"
	PosY   Tag = "py"
	NegY   Tag = "ny"
	PosZ   Tag = "pz"
	NegZ   Tag = "nz"
	Corner Tag = "or"
)

// Projection selects the projection model of a view.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// String returns the projection name.
func (p Projection) String() string {
	switch p {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ViewDescriptor places the camera for one snapshot.
type ViewDescriptor struct {
	Tag        Tag
	Eye        math.Vec3
	Target     math.Vec3
	Up         math.Vec3
	Projection Projection
	View       math.Mat4
}

var views = [...]ViewDescriptor{
	newView(PosX, math.Vec3{X: EyeDistance}, math.Vec3{Y: 1}, Perspective),
	newView(NegX, math.Vec3{X: -EyeDistance}, math.Vec3{Y: 1}, Perspective),
	newView(PosY, math.Vec3{Y: EyeDistance}, math.Vec3{Z: 1}, Perspective),
	newView(NegY, math.Vec3{Y: -EyeDistance}, math.Vec3{Z: 1}, Perspective),
	newView(PosZ, math.Vec3{Z: EyeDistance}, math.Vec3{Y: 1}, Perspective),
	newView(NegZ, math.Vec3{Z: -EyeDistance}, math.Vec3{Y: 1}, Perspective),
	newView(Corner, math.Splat(EyeDistance), math.Vec3{Y: 1}, Orthographic),
}

func newView(tag Tag, eye, up math.Vec3, proj Projection) ViewDescriptor {
	return ViewDescriptor{
		Tag:        tag,
		Eye:        eye,
		Up:         up,
		Projection: proj,
		View:       math.LookAt(eye, math.Vec3{}, up),
	}
}

// Plan returns the seven views in rendering order. The slice is a fresh
// copy; callers may modify it.
func Plan() []ViewDescriptor {
	out := make([]ViewDescriptor, len(views))
	copy(out, views[:])
	return out
}

// Lookup returns the view with the given tag.
func Lookup(tag Tag) (ViewDescriptor, bool) {
	for _, v := range views {
		if v.Tag == tag {
			return v, true
		}
	}
	return ViewDescriptor{}, false
}

// Filter returns the planned views whose tags are listed, in plan order.
// An empty list selects every view.
func Filter(tags []string) ([]ViewDescriptor, error) {
	if len(tags) == 0 {
		return Plan(), nil
	}
	want := make(map[Tag]bool, len(tags))
	for _, t := range tags {
		if _, ok := Lookup(Tag(t)); !ok {
			return nil, fmt.Errorf("unknown view %q", t)
		}
		want[Tag(t)] = true
	}
	var out []ViewDescriptor
	for _, v := range views {
		if want[v.Tag] {
			out = append(out, v)
		}
	}
	return out, nil
}

// Aspect returns width/height, or 1 for a degenerate viewport.
func Aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// ProjectionMatrix returns the projection for a width x height viewport.
func (v ViewDescriptor) ProjectionMatrix(width, height int) math.Mat4 {
	aspect := Aspect(width, height)
	if v.Projection == Orthographic {
		hw := OrthoHalfHeight * aspect
		return math.Ortho(-hw, hw, -OrthoHalfHeight, OrthoHalfHeight, NearPlane, FarPlane)
	}
	return math.Perspective(math.Radians(FieldOfViewDeg), aspect, NearPlane, FarPlane)
}

// MVP returns projection · view · model.
func (v ViewDescriptor) MVP(model math.Mat4, width, height int) math.Mat4 {
	return v.ProjectionMatrix(width, height).Mul(v.View).Mul(model)
}

// FileName returns prefix + tag + "." + ext, e.g. "view_px.png".
func (t Tag) FileName(prefix, ext string) string {
	if ext == "" {
		ext = defaultExtension
	}
	return prefix + string(t) + "." + ext
}
