package models

import (
	"time"

	"github.com/jinzhu/copier"
)

// ============================================================
// Object types & tools
// ============================================================

type ObjectType string

const (
	TypeCube     ObjectType = "cube"
	TypeSphere   ObjectType = "sphere"
	TypeCylinder ObjectType = "cylinder"
	TypeCone     ObjectType = "cone"
	TypeTorus    ObjectType = "torus"
	TypePlane    ObjectType = "plane"
	TypePyramid  ObjectType = "pyramid"
	TypeText     ObjectType = "text"
)

// ObjectTypes lists every placeable type, in palette order.
var ObjectTypes = []ObjectType{
	TypeCube, TypeSphere, TypeCylinder, TypeCone,
	TypeTorus, TypePlane, TypePyramid, TypeText,
}

// Valid reports whether t belongs to the closed set of placeable types.
func (t ObjectType) Valid() bool {
	for _, known := range ObjectTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Tool string

const (
	ToolSelect Tool = "select"
	ToolMove   Tool = "move"
	ToolRotate Tool = "rotate"
	ToolScale  Tool = "scale"
)

// Valid reports whether t is one of the four interaction tools.
func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolMove, ToolRotate, ToolScale:
		return true
	}
	return false
}

// ============================================================
// Scene structures
// ============================================================

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Material struct {
	Color     string  `json:"color"`
	Metalness float64 `json:"metalness"`
	Roughness float64 `json:"roughness"`
	Opacity   float64 `json:"opacity"`
}

// SceneObject is a single placed 3D entity. ID and Type never change
// after creation; everything else is editable.
type SceneObject struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     ObjectType `json:"type"`
	Position Vector3    `json:"position"`
	Rotation Vector3    `json:"rotation"`
	Scale    Vector3    `json:"scale"`
	Material Material   `json:"material"`
	LayerID  string     `json:"layerId,omitempty"`
	Visible  *bool      `json:"visible,omitempty"` // nil means visible
}

// IsVisible treats the unset field as true.
func (o *SceneObject) IsVisible() bool {
	return o.Visible == nil || *o.Visible
}

// Clone returns a deep copy that shares no mutable state with o.
func (o SceneObject) Clone() SceneObject {
	var out SceneObject
	copier.CopyWithOption(&out, &o, copier.Option{DeepCopy: true})
	return out
}

// Scene is the ordered collection of placed objects.
type Scene struct {
	Objects []SceneObject `json:"objects"`
}

// Clone returns a deep copy that shares no mutable state with s.
func (s Scene) Clone() Scene {
	out := Scene{Objects: make([]SceneObject, 0, len(s.Objects))}
	for _, obj := range s.Objects {
		out.Objects = append(out.Objects, obj.Clone())
	}
	return out
}

// ObjectPatch carries a partial object update. Nil fields are left
// untouched; set fields replace the whole sub-object (position,
// material, ...) rather than merging into it.
type ObjectPatch struct {
	Name     *string   `json:"name,omitempty"`
	Position *Vector3  `json:"position,omitempty"`
	Rotation *Vector3  `json:"rotation,omitempty"`
	Scale    *Vector3  `json:"scale,omitempty"`
	Material *Material `json:"material,omitempty"`
	LayerID  *string   `json:"layerId,omitempty"`
	Visible  *bool     `json:"visible,omitempty"`
}

// Apply merges the patch into obj, top-level field by top-level field.
func (p ObjectPatch) Apply(obj *SceneObject) {
	if p.Name != nil {
		obj.Name = *p.Name
	}
	if p.Position != nil {
		obj.Position = *p.Position
	}
	if p.Rotation != nil {
		obj.Rotation = *p.Rotation
	}
	if p.Scale != nil {
		obj.Scale = *p.Scale
	}
	if p.Material != nil {
		obj.Material = *p.Material
	}
	if p.LayerID != nil {
		obj.LayerID = *p.LayerID
	}
	if p.Visible != nil {
		visible := *p.Visible
		obj.Visible = &visible
	}
}

// ============================================================
// Collaboration
// ============================================================

// Collaborator is one connected peer as shown in the roster.
type Collaborator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ============================================================
// Projects
// ============================================================

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Scene     Scene     `json:"scene"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultScene is the scene every new project starts from: a cube and
// a sphere so the canvas is never empty on first open.
func DefaultScene() Scene {
	return Scene{
		Objects: []SceneObject{
			{
				ID:       "cube-1",
				Name:     "Cube 1",
				Type:     TypeCube,
				Position: Vector3{X: 0, Y: 0, Z: 0},
				Rotation: Vector3{},
				Scale:    Vector3{X: 1, Y: 1, Z: 1},
				Material: Material{Color: "#4c6ef5", Metalness: 0.1, Roughness: 0.2, Opacity: 1.0},
			},
			{
				ID:       "sphere-1",
				Name:     "Sphere 1",
				Type:     TypeSphere,
				Position: Vector3{X: 2, Y: 0, Z: 0},
				Rotation: Vector3{},
				Scale:    Vector3{X: 1, Y: 1, Z: 1},
				Material: Material{Color: "#ae3ec9", Metalness: 0.1, Roughness: 0.2, Opacity: 1.0},
			},
		},
	}
}
