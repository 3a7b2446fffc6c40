// Package debug implements the debug overlay feed: timed text lines and
// drawable shapes accumulated during a tick. On the server the queue is
// drained into the next state update so annotations show up in connected
// clients without a dedicated channel; on the client received items are
// merged with locally produced ones and pruned as their lifetimes expire.
package debug

import (
	"fmt"

	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
)

// Color is an 8-bit RGBA color for overlay shapes.
type Color struct {
	R, G, B, A uint8
}

var (
	Red    = Color{255, 0, 0, 255}
	Green  = Color{0, 255, 0, 255}
	Blue   = Color{0, 0, 255, 255}
	Yellow = Color{255, 255, 0, 255}
	Cyan   = Color{0, 255, 255, 255}
	White  = Color{255, 255, 255, 255}
)

// ShapeKind selects the drawable primitive a Shape represents.
type ShapeKind uint8

const (
	KindLine ShapeKind = iota
	KindArrow
	KindCross
	KindRot
)

// Shape is one drawable overlay primitive with a remaining lifetime in
// seconds. Time 0 means "this frame only".
type Shape struct {
	Kind ShapeKind
	// A is the line start, arrow origin, cross center or pose position.
	A mathx.Vec3
	// B is the line end or the arrow direction. Unused by cross and rot.
	B mathx.Vec3
	// Rot is the pose orientation, used by KindRot only.
	Rot   mathx.Quat
	Scale float32
	Time  float32
	Color Color
}

// Context owns one process's overlay queues. It is created at process start,
// passed explicitly into tick functions and touched only by the game loop
// goroutine.
type Context struct {
	role   string
	texts  []string
	shapes []Shape
}

func NewContext(role string) *Context {
	return &Context{role: role}
}

func (c *Context) Role() string {
	return c.role
}

// Textf queues a text line for this frame, prefixed with the process role so
// server and client lines stay distinguishable on one screen.
func (c *Context) Textf(format string, args ...any) {
	c.texts = append(c.texts, c.role+" "+fmt.Sprintf(format, args...))
}

func (c *Context) Line(a, b mathx.Vec3, time float32, color Color) {
	c.shapes = append(c.shapes, Shape{Kind: KindLine, A: a, B: b, Time: time, Color: color})
}

func (c *Context) Arrow(origin, dir mathx.Vec3, time float32, color Color) {
	c.shapes = append(c.shapes, Shape{Kind: KindArrow, A: origin, B: dir, Time: time, Color: color})
}

func (c *Context) Cross(point mathx.Vec3, time float32, color Color) {
	c.shapes = append(c.shapes, Shape{Kind: KindCross, A: point, Time: time, Color: color})
}

// RotPose queues a coordinate-frame gizmo at the given position.
func (c *Context) RotPose(point mathx.Vec3, rot mathx.Quat, scale, time float32) {
	c.shapes = append(c.shapes, Shape{Kind: KindRot, A: point, Rot: rot, Scale: scale, Time: time, Color: White})
}

// Drain moves the accumulated queue out of the context, leaving it empty.
// The server calls this once per tick when building the update snapshot so
// nothing is sent twice.
func (c *Context) Drain() (texts []string, shapes []Shape) {
	texts, shapes = c.texts, c.shapes
	c.texts = nil
	c.shapes = nil
	return texts, shapes
}

// Merge appends items received from the remote side into the local queue.
func (c *Context) Merge(texts []string, shapes []Shape) {
	c.texts = append(c.texts, texts...)
	c.shapes = append(c.shapes, shapes...)
}

// Texts returns the current frame's text lines for display.
func (c *Context) Texts() []string {
	return c.texts
}

// Shapes returns the currently live shapes for drawing.
func (c *Context) Shapes() []Shape {
	return c.shapes
}

// Prune ends the frame: text lines live exactly one frame and are dropped,
// shape lifetimes are decremented and expired shapes removed.
func (c *Context) Prune(dt float32) {
	c.texts = c.texts[:0]
	live := c.shapes[:0]
	for _, s := range c.shapes {
		s.Time -= dt
		if s.Time > 0 {
			live = append(live, s)
		}
	}
	c.shapes = live
}
