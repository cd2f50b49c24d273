package canvas

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/geom"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/typeid"
)

// Tool identifies the active drawing tool.
type Tool string

const (
	ToolBrush   Tool = "brush"
	ToolLine    Tool = "line"
	ToolRect    Tool = "rect"
	ToolSquare  Tool = "square"
	ToolCircle  Tool = "circle"
	ToolEllipse Tool = "ellipse"
	ToolStar    Tool = "star"
	ToolEraser  Tool = "eraser"
	ToolText    Tool = "text"
	ToolFill    Tool = "fill"
)

// shapeKind maps a shape tool to its element kind.
func (t Tool) shapeKind() (scene.ShapeKind, bool) {
	switch t {
	case ToolLine:
		return scene.ShapeLine, true
	case ToolRect:
		return scene.ShapeRect, true
	case ToolSquare:
		return scene.ShapeSquare, true
	case ToolCircle:
		return scene.ShapeCircle, true
	case ToolEllipse:
		return scene.ShapeEllipse, true
	case ToolStar:
		return scene.ShapeStar, true
	}
	return "", false
}

// State is the session's current interaction state. States are mutually
// exclusive; every gesture returns to StateIdle.
type State string

const (
	StateIdle     State = "idle"
	StateDrawing  State = "drawing"
	StateErasing  State = "erasing"
	StateDragging State = "dragging"
	StateResizing State = "resizing"
	StatePanning  State = "panning"
	StateZooming  State = "zooming"
)

// Store is the persistence boundary the session saves through. Local disk,
// REST and cloud implementations all look the same from here.
type Store interface {
	Load(ctx context.Context, id string) (*scene.Drawing, error)
	Save(ctx context.Context, d *scene.Drawing, preview []byte) error
	Delete(ctx context.Context, id string) error
}

// ErrNotFound is returned by Store implementations for unknown drawings.
var ErrNotFound = errors.New("drawing not found")

// Gesture commit thresholds.
const (
	minShapeSize    = 5.0 // logical units a new shape must span
	minStrokePoints = 2
	minDragDistance = 1.0
)

// Config carries the environment-provided canvas defaults. Changing them
// does not affect a session already open.
type Config struct {
	BrushSize       float64
	EraserSize      float64
	FontSize        float64
	FontFamily      string
	StrokeColor     string
	FillColor       string
	BackgroundColor string

	AutoSave         bool
	AutoSaveDelay    time.Duration
	EraseCommitDelay time.Duration
	DoubleTapWindow  time.Duration
	LongPressDelay   time.Duration
}

// DefaultConfig returns the built-in canvas defaults.
func DefaultConfig() Config {
	return Config{
		BrushSize:        5,
		EraserSize:       20,
		FontSize:         16,
		FontFamily:       "sans-serif",
		StrokeColor:      "#000000",
		FillColor:        "#000000",
		BackgroundColor:  "#ffffff",
		AutoSave:         true,
		AutoSaveDelay:    2 * time.Second,
		EraseCommitDelay: 300 * time.Millisecond,
		DoubleTapWindow:  500 * time.Millisecond,
		LongPressDelay:   600 * time.Millisecond,
	}
}

// EventKind tags a session event.
type EventKind string

const (
	// EventSceneChanged fires whenever the visible scene mutated.
	EventSceneChanged EventKind = "scene.changed"
	// EventSaveRequested hands the host a deep-copied snapshot to persist.
	// The host must call SaveDone when finished; the session never runs two
	// saves concurrently.
	EventSaveRequested EventKind = "save.requested"
	// EventSaveFailed reports a persistence or export failure; the scene is
	// untouched and the save can be retried.
	EventSaveFailed EventKind = "save.failed"
	// EventTextMenu asks the host to show the edit/add/delete menu for a
	// tapped text element.
	EventTextMenu EventKind = "text.menu"
	// EventTextEdit asks the host to open content editing for a text
	// element (double-tap or long-press).
	EventTextEdit EventKind = "text.edit"
	// EventTextPrompt asks the host for new text content at PendingTextAt.
	EventTextPrompt EventKind = "text.prompt"
)

// Event is a session-to-host notification.
type Event struct {
	Kind      EventKind
	ElementID string
	Snapshot  *scene.Drawing
	Err       error
}

// timerSlot is an explicit cancellable scheduled task. Arming replaces any
// previous deadline; cancellation-on-transition is a single operation.
type timerSlot struct {
	deadline time.Time
	armed    bool
}

func (t *timerSlot) arm(at time.Time) {
	t.deadline = at
	t.armed = true
}

func (t *timerSlot) cancel() {
	t.armed = false
}

func (t *timerSlot) fire(now time.Time) bool {
	if t.armed && !now.Before(t.deadline) {
		t.armed = false
		return true
	}
	return false
}

// Session owns one open canvas: the live scene, its undo history, the
// active tool and all in-progress gesture state. It is single-threaded by
// contract; the owning event loop delivers pointer events, calls Tick to
// fire debounced work, and drains Events.
type Session struct {
	drawing *scene.Drawing
	history *History
	cfg     Config

	now   func() time.Time
	newID func() string

	tool  Tool
	state State

	selectedID string

	// brush / shape capture
	stroke     []geom.Point
	shapeStart geom.Point
	shapeEnd   geom.Point

	// drag / resize
	dragOriginal scene.Element
	dragAnchor   geom.Point
	dragOffset   geom.Point
	resizeCorner Corner
	resizeFixed  geom.Point
	resizeStart  geom.Rect

	// erase coalescing
	erasePrev  *geom.Point
	eraseDirty bool
	eraseTimer timerSlot

	// pan / zoom
	panLast         geom.Point
	pinchStartDist  float64
	pinchStartScale float64
	pinchCenter     geom.Point

	// text tap disambiguation
	lastTapID     string
	lastTapAt     time.Time
	longPress     timerSlot
	longPressID   string
	pendingTextAt geom.Point
	textPrompted  bool

	// auto-save
	saveTimer   timerSlot
	saving      bool
	savePending bool

	lastTimestamp int64

	events []Event
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the session's time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces element id generation (tests).
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

// NewSession opens a drawing for editing. The drawing becomes the first
// history snapshot.
func NewSession(d *scene.Drawing, cfg Config, opts ...Option) *Session {
	s := &Session{
		drawing: d,
		history: NewHistory(d),
		cfg:     cfg,
		now:     time.Now,
		newID:   typeid.NewElementID,
		tool:    ToolBrush,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Drawing returns the live scene. Callers must treat it as read-only;
// Snapshot returns an isolated copy.
func (s *Session) Drawing() *scene.Drawing { return s.drawing }

// Snapshot deep-copies the current scene.
func (s *Session) Snapshot() *scene.Drawing { return s.drawing.Clone() }

func (s *Session) State() State      { return s.state }
func (s *Session) Tool() Tool        { return s.tool }
func (s *Session) Selected() string  { return s.selectedID }
func (s *Session) CanUndo() bool     { return s.history.CanUndo() }
func (s *Session) CanRedo() bool     { return s.history.CanRedo() }
func (s *Session) HistoryLen() int   { return s.history.Len() }
func (s *Session) Events() []Event {
	out := s.events
	s.events = nil
	return out
}

// PendingTextAt is the canvas-local position of the last text prompt.
func (s *Session) PendingTextAt() geom.Point { return s.pendingTextAt }

// SetTool switches tools, cancelling any in-progress gesture. The eraser
// flushes its pending coalesced commit first since erasure already mutated
// the scene; everything else is discarded without touching history.
func (s *Session) SetTool(t Tool) {
	s.cancelGesture()
	s.longPress.cancel()
	s.lastTapID = ""
	s.tool = t
}

// Tick fires any due debounced work: the coalesced erase commit, the
// long-press timer and the auto-save debounce. The owning loop calls it
// whenever its clock advances.
func (s *Session) Tick() {
	now := s.now()

	if s.eraseTimer.fire(now) {
		s.commitErase()
	}
	if s.longPress.fire(now) {
		if s.longPressID != "" {
			s.emit(Event{Kind: EventTextEdit, ElementID: s.longPressID})
			s.longPressID = ""
		}
	}
	if s.saveTimer.fire(now) {
		s.requestSave()
	}
}

// --- single-touch gesture ---

// TouchStart begins a single-touch gesture at a screen-space position.
func (s *Session) TouchStart(screen geom.Point, pressure float64) {
	s.Tick()
	if s.state != StateIdle {
		return // racing events; ignore rather than error
	}

	local := s.drawing.CanvasTransform.Invert(screen)

	switch s.tool {
	case ToolEraser:
		s.state = StateErasing
		s.erasePrev = nil
		s.eraseAt(local, pressure)

	case ToolText:
		s.textTouch(local)

	case ToolFill:
		if !s.fillAt(local) && s.drawing.CanvasTransform.Scale > 1 {
			s.state = StatePanning
			s.panLast = screen
		}

	default: // brush and shape tools
		if hit := TopmostElementAt(local, s.drawing.Elements, DefaultHitTolerance); hit != nil {
			s.startDragOrResize(local, hit)
			return
		}
		s.selectedID = ""
		s.state = StateDrawing
		if s.tool == ToolBrush {
			s.stroke = []geom.Point{local}
		} else {
			s.shapeStart = local
			s.shapeEnd = local
		}
	}
}

// TouchMove continues the active gesture.
func (s *Session) TouchMove(screen geom.Point, pressure float64) {
	s.Tick()
	local := s.drawing.CanvasTransform.Invert(screen)

	switch s.state {
	case StateDrawing:
		if s.tool == ToolBrush {
			last := s.stroke[len(s.stroke)-1]
			if AcceptStrokePoint(last, local, s.cfg.BrushSize) {
				s.stroke = append(s.stroke, local)
			}
		} else {
			s.shapeEnd = local
		}

	case StateErasing:
		s.eraseAt(local, pressure)

	case StateDragging:
		s.moveSelection(local)

	case StateResizing:
		s.resizeSelection(local)

	case StatePanning:
		t := s.drawing.CanvasTransform
		t.TranslateX += screen.X - s.panLast.X
		t.TranslateY += screen.Y - s.panLast.Y
		s.drawing.CanvasTransform = t
		s.panLast = screen
		s.emit(Event{Kind: EventSceneChanged})
	}
}

// TouchEnd finishes the gesture, committing to history only when the
// result clears the relevant threshold.
func (s *Session) TouchEnd(screen geom.Point) {
	s.Tick()

	switch s.state {
	case StateDrawing:
		if s.tool == ToolBrush {
			s.commitStroke()
		} else {
			s.commitShape()
		}

	case StateErasing:
		s.eraseTimer.cancel()
		s.commitErase()
		s.erasePrev = nil

	case StateDragging, StateResizing:
		s.commitDrag()

	case StatePanning:
		// view-only, never touches history
	}

	// Lifting the finger ends the long-press window; only a held touch
	// promotes the tap to content editing.
	s.longPress.cancel()
	s.longPressID = ""

	s.stroke = nil
	s.dragOriginal = nil
	s.resizeCorner = CornerNone
	s.state = StateIdle
}

// --- pinch gesture ---

// PinchStart begins a two-finger zoom. Any other in-progress operation is
// cancelled first (the eraser flushes its pending commit).
func (s *Session) PinchStart(p1, p2 geom.Point) {
	s.cancelGesture()
	s.longPress.cancel()

	s.state = StateZooming
	s.pinchStartDist = p1.Distance(p2)
	s.pinchStartScale = s.drawing.CanvasTransform.Scale
	if s.pinchStartScale == 0 {
		s.pinchStartScale = 1
	}
	s.pinchCenter = p1.Midpoint(p2)
}

// PinchMove updates scale from the ratio of the current to the initial
// finger distance, and pans by half the centroid movement.
func (s *Session) PinchMove(p1, p2 geom.Point) {
	if s.state != StateZooming {
		return
	}

	t := s.drawing.CanvasTransform
	if dist := p1.Distance(p2); dist > 0 && s.pinchStartDist > 0 {
		t.Scale = geom.ClampCanvasScale(s.pinchStartScale * dist / s.pinchStartDist)
	}

	center := p1.Midpoint(p2)
	t.TranslateX += (center.X - s.pinchCenter.X) * 0.5
	t.TranslateY += (center.Y - s.pinchCenter.Y) * 0.5
	s.pinchCenter = center

	s.drawing.CanvasTransform = t
	s.emit(Event{Kind: EventSceneChanged})
}

// PinchEnd returns to idle; zoom never touches history.
func (s *Session) PinchEnd() {
	if s.state == StateZooming {
		s.state = StateIdle
	}
}

// --- drawing commits ---

func (s *Session) commitStroke() {
	if len(s.stroke) < minStrokePoints {
		return
	}

	el := &scene.PathElement{
		Attrs: scene.Attrs{
			ID:          s.newID(),
			StrokeColor: s.cfg.StrokeColor,
			StrokeWidth: s.cfg.BrushSize,
			Transform:   geom.Identity(),
			Timestamp:   s.timestamp(),
		},
		Curve: SmoothStroke(s.stroke),
	}
	s.drawing.Elements = append(s.drawing.Elements, el)
	s.commit()
}

func (s *Session) commitShape() {
	kind, ok := s.tool.shapeKind()
	if !ok {
		return
	}

	attrs := scene.Attrs{
		ID:          s.newID(),
		StrokeColor: s.cfg.StrokeColor,
		StrokeWidth: s.cfg.BrushSize,
		Transform:   geom.Identity(),
		Timestamp:   s.timestamp(),
	}

	var el *scene.ShapeElement
	if kind == scene.ShapeLine {
		if s.shapeStart.Distance(s.shapeEnd) < minShapeSize {
			return
		}
		el = &scene.ShapeElement{
			Attrs: attrs,
			Kind:  kind,
			X:     s.shapeStart.X, Y: s.shapeStart.Y,
			X2: s.shapeEnd.X, Y2: s.shapeEnd.Y,
		}
	} else {
		b := geom.RectFromPoints(s.shapeStart, s.shapeEnd)
		if kind == scene.ShapeSquare || kind == scene.ShapeCircle {
			side := math.Max(b.Width, b.Height)
			b.Width, b.Height = side, side
		}
		if b.Width < minShapeSize && b.Height < minShapeSize {
			return
		}
		el = &scene.ShapeElement{
			Attrs: attrs,
			Kind:  kind,
			X:     b.X, Y: b.Y,
			Width: b.Width, Height: b.Height,
		}
	}

	s.drawing.Elements = append(s.drawing.Elements, el)
	s.commit()
}

// --- erase ---

func (s *Session) eraseAt(local geom.Point, pressure float64) {
	elements, changed := EraseStep(s.drawing.Elements, local, s.erasePrev, s.cfg.EraserSize, pressure, s.newID)
	p := local
	s.erasePrev = &p

	if !changed {
		return
	}
	s.drawing.Elements = elements
	s.eraseDirty = true
	s.eraseTimer.arm(s.now().Add(s.cfg.EraseCommitDelay))
	s.emit(Event{Kind: EventSceneChanged})
}

// commitErase flushes the coalesced erase session: one history entry for
// the whole gesture no matter how many samples mutated the scene.
func (s *Session) commitErase() {
	if !s.eraseDirty {
		return
	}
	s.eraseDirty = false
	s.commit()
}

// --- drag / resize ---

func (s *Session) startDragOrResize(local geom.Point, hit scene.Element) {
	if sh, ok := hit.(*scene.ShapeElement); ok && hit.Attr().ID == s.selectedID {
		if corner := HandleAt(local, sh); corner != CornerNone {
			s.state = StateResizing
			s.resizeCorner = corner
			s.resizeStart = sh.Bounds()
			s.resizeFixed = oppositeCorner(s.resizeStart, corner)
			s.dragOriginal = hit.Clone()
			return
		}
	}

	s.selectedID = hit.Attr().ID
	s.state = StateDragging
	s.dragOriginal = hit.Clone()
	s.dragAnchor = ElementAnchor(hit)
	s.dragOffset = DragOffset(local, hit)
}

func oppositeCorner(b geom.Rect, c Corner) geom.Point {
	switch c {
	case CornerTopLeft:
		return geom.Pt(b.X+b.Width, b.Y+b.Height)
	case CornerTopRight:
		return geom.Pt(b.X, b.Y+b.Height)
	case CornerBottomLeft:
		return geom.Pt(b.X+b.Width, b.Y)
	default:
		return geom.Pt(b.X, b.Y)
	}
}

func (s *Session) moveSelection(local geom.Point) {
	if s.dragOriginal == nil {
		return
	}
	// Drag in progress disambiguates away from long-press editing.
	target := geom.Pt(local.X-s.dragOffset.X, local.Y-s.dragOffset.Y)
	if target.Distance(s.dragAnchor) > minDragDistance {
		s.longPress.cancel()
	}

	moved := translateElement(s.dragOriginal, target.X-s.dragAnchor.X, target.Y-s.dragAnchor.Y)
	s.drawing.ReplaceElement(moved)
	s.emit(Event{Kind: EventSceneChanged})
}

func (s *Session) resizeSelection(local geom.Point) {
	orig, ok := s.dragOriginal.(*scene.ShapeElement)
	if !ok {
		return
	}

	b := geom.RectFromPoints(s.resizeFixed, local)
	resized := orig.Clone().(*scene.ShapeElement)
	resized.X, resized.Y = b.X, b.Y
	resized.Width, resized.Height = b.Width, b.Height

	s.drawing.ReplaceElement(resized)
	s.emit(Event{Kind: EventSceneChanged})
}

// commitDrag records the drag/resize in history only when the element
// actually moved; a plain tap leaves no history entry.
func (s *Session) commitDrag() {
	if s.dragOriginal == nil {
		return
	}

	cur := s.drawing.ElementByID(s.dragOriginal.Attr().ID)
	if cur == nil {
		return
	}

	if s.state == StateResizing {
		sh, ok := cur.(*scene.ShapeElement)
		if !ok {
			return
		}
		b := sh.Bounds()
		if math.Abs(b.X-s.resizeStart.X) <= minDragDistance &&
			math.Abs(b.Y-s.resizeStart.Y) <= minDragDistance &&
			math.Abs(b.Width-s.resizeStart.Width) <= minDragDistance &&
			math.Abs(b.Height-s.resizeStart.Height) <= minDragDistance {
			s.drawing.ReplaceElement(s.dragOriginal)
			return
		}
	} else {
		if ElementAnchor(cur).Distance(s.dragAnchor) <= minDragDistance {
			s.drawing.ReplaceElement(s.dragOriginal)
			return
		}
	}

	s.commit()
}

// translateElement returns a copy of el moved by (dx, dy). Paths move by
// translating their stored curve so the persisted geometry stays in scene
// coordinates.
func translateElement(el scene.Element, dx, dy float64) scene.Element {
	switch e := el.(type) {
	case *scene.ShapeElement:
		out := e.Clone().(*scene.ShapeElement)
		out.X += dx
		out.Y += dy
		if out.Kind == scene.ShapeLine {
			out.X2 += dx
			out.Y2 += dy
		}
		return out
	case *scene.TextElement:
		out := e.Clone().(*scene.TextElement)
		out.X += dx
		out.Y += dy
		return out
	case *scene.PathElement:
		out := e.Clone().(*scene.PathElement)
		for i := range out.Curve {
			out.Curve[i].Ctrl.X += dx
			out.Curve[i].Ctrl.Y += dy
			out.Curve[i].End.X += dx
			out.Curve[i].End.Y += dy
		}
		return out
	}
	return el
}

// --- text tool ---

func (s *Session) textTouch(local geom.Point) {
	now := s.now()

	var hit *scene.TextElement
	for i := len(s.drawing.Elements) - 1; i >= 0; i-- {
		if t, ok := s.drawing.Elements[i].(*scene.TextElement); ok && HitElement(local, t, DefaultHitTolerance) {
			hit = t
			break
		}
	}

	if hit == nil {
		s.pendingTextAt = local
		s.textPrompted = true
		s.emit(Event{Kind: EventTextPrompt})
		return
	}

	id := hit.Attrs.ID
	if s.lastTapID == id && now.Sub(s.lastTapAt) <= s.cfg.DoubleTapWindow {
		s.lastTapID = ""
		s.longPress.cancel()
		s.emit(Event{Kind: EventTextEdit, ElementID: id})
		return
	}

	s.lastTapID = id
	s.lastTapAt = now
	s.selectedID = id
	s.longPressID = id
	s.longPress.arm(now.Add(s.cfg.LongPressDelay))
	s.emit(Event{Kind: EventTextMenu, ElementID: id})

	// The same touch may become a drag of the text element.
	s.state = StateDragging
	s.dragOriginal = hit.Clone()
	s.dragAnchor = ElementAnchor(hit)
	s.dragOffset = DragOffset(local, hit)
}

// PlaceText commits a new text element at the last prompted position.
// Empty text is discarded.
func (s *Session) PlaceText(text string) {
	if !s.textPrompted || text == "" {
		s.textPrompted = false
		return
	}
	s.textPrompted = false

	el := &scene.TextElement{
		Attrs: scene.Attrs{
			ID:          s.newID(),
			StrokeColor: s.cfg.StrokeColor,
			StrokeWidth: 1,
			Transform:   geom.Identity(),
			Timestamp:   s.timestamp(),
		},
		Text:       text,
		X:          s.pendingTextAt.X,
		Y:          s.pendingTextAt.Y,
		FontSize:   s.cfg.FontSize,
		FontFamily: s.cfg.FontFamily,
	}
	s.drawing.Elements = append(s.drawing.Elements, el)
	s.commit()
}

// UpdateText replaces a text element's content and commits.
func (s *Session) UpdateText(id, text string) {
	el, ok := s.drawing.ElementByID(id).(*scene.TextElement)
	if !ok {
		return
	}
	out := el.Clone().(*scene.TextElement)
	out.Text = text
	out.Timestamp = s.timestamp()
	s.drawing.ReplaceElement(out)
	s.commit()
}

// DeleteElement removes an element by id and commits.
func (s *Session) DeleteElement(id string) {
	i := s.drawing.IndexOf(id)
	if i < 0 {
		return
	}
	s.drawing.Elements = append(s.drawing.Elements[:i:i], s.drawing.Elements[i+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.commit()
}

// --- fill tool ---

// fillAt applies the single-shot fill: the topmost fillable element under
// the point gets the configured fill color. Ellipses use the normalized
// distance test here, stricter than the bounding-box selection rule.
func (s *Session) fillAt(local geom.Point) bool {
	for i := len(s.drawing.Elements) - 1; i >= 0; i-- {
		el := s.drawing.Elements[i]
		if !fillHit(local, el) {
			continue
		}

		out := el.Clone()
		switch e := out.(type) {
		case *scene.ShapeElement:
			e.FillColor = s.cfg.FillColor
		case *scene.PathElement:
			e.FillColor = s.cfg.FillColor
		default:
			continue
		}
		out = withTimestamp(out, s.timestamp())
		s.drawing.ReplaceElement(out)
		s.commit()
		return true
	}
	return false
}

func withTimestamp(el scene.Element, ts int64) scene.Element {
	switch e := el.(type) {
	case *scene.ShapeElement:
		e.Timestamp = ts
	case *scene.PathElement:
		e.Timestamp = ts
	case *scene.TextElement:
		e.Timestamp = ts
	}
	return el
}

func fillHit(p geom.Point, el scene.Element) bool {
	switch e := el.(type) {
	case *scene.ShapeElement:
		local := e.Attrs.Transform.Invert(p)
		b := e.Bounds()
		switch e.Kind {
		case scene.ShapeLine:
			return false
		case scene.ShapeCircle:
			return local.Distance(b.Center()) <= math.Max(b.Width, b.Height)/2
		case scene.ShapeEllipse:
			rx, ry := b.Width/2, b.Height/2
			if rx == 0 || ry == 0 {
				return false
			}
			c := b.Center()
			nx := (local.X - c.X) / rx
			ny := (local.Y - c.Y) / ry
			return nx*nx+ny*ny <= 1
		default:
			return b.Contains(local)
		}
	case *scene.PathElement:
		if !e.Curve.Closed() {
			return false
		}
		return pointInPolygon(e.Attrs.Transform.Invert(p), e.Curve.Vertices())
	}
	return false
}

// pointInPolygon is the even-odd ray crossing test.
func pointInPolygon(p geom.Point, poly []geom.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// --- history ---

// Undo steps the scene back one snapshot. The view transform survives
// undo: only content and background are restored. Selection is cleared so
// no stale reference outlives a removed element.
func (s *Session) Undo() {
	snap := s.history.Undo()
	if snap == nil {
		return
	}
	snap.CanvasTransform = s.drawing.CanvasTransform
	s.drawing = snap
	s.selectedID = ""
	s.afterMutation()
}

// Redo steps the scene forward one snapshot.
func (s *Session) Redo() {
	snap := s.history.Redo()
	if snap == nil {
		return
	}
	snap.CanvasTransform = s.drawing.CanvasTransform
	s.drawing = snap
	s.selectedID = ""
	s.afterMutation()
}

// Clear removes every element and commits.
func (s *Session) Clear() {
	if len(s.drawing.Elements) == 0 {
		return
	}
	s.drawing.Elements = nil
	s.commit()
}

// --- persistence ---

// Save forces a save request immediately, bypassing the auto-save debounce.
func (s *Session) Save() {
	s.saveTimer.cancel()
	s.requestSave()
}

// SaveDone reports the outcome of a previously requested save. Failures
// leave the scene and history untouched; a save requested while another
// was in flight runs now.
func (s *Session) SaveDone(err error) {
	s.saving = false
	if err != nil {
		s.emit(Event{Kind: EventSaveFailed, Err: err})
	}
	if s.savePending {
		s.savePending = false
		s.requestSave()
	}
}

func (s *Session) requestSave() {
	if s.saving {
		s.savePending = true
		return
	}
	s.saving = true
	s.emit(Event{Kind: EventSaveRequested, Snapshot: s.drawing.Clone()})
}

// --- internals ---

// commit snapshots the scene into history and schedules auto-save.
func (s *Session) commit() {
	s.history.Commit(s.drawing)
	s.afterMutation()
}

func (s *Session) afterMutation() {
	s.emit(Event{Kind: EventSceneChanged})
	if s.cfg.AutoSave {
		s.saveTimer.arm(s.now().Add(s.cfg.AutoSaveDelay))
	}
}

// cancelGesture aborts whatever gesture is in progress without committing,
// except the eraser whose already-applied mutations are flushed.
func (s *Session) cancelGesture() {
	switch s.state {
	case StateErasing:
		s.eraseTimer.cancel()
		s.commitErase()
		s.erasePrev = nil
	case StateDragging, StateResizing:
		if s.dragOriginal != nil {
			s.drawing.ReplaceElement(s.dragOriginal)
			s.emit(Event{Kind: EventSceneChanged})
		}
	}

	s.stroke = nil
	s.dragOriginal = nil
	s.resizeCorner = CornerNone
	s.state = StateIdle
}

// timestamp returns a creation timestamp, strictly monotonic so element
// ordering is stable even within one millisecond.
func (s *Session) timestamp() int64 {
	ts := s.now().UnixMilli()
	if ts <= s.lastTimestamp {
		ts = s.lastTimestamp + 1
	}
	s.lastTimestamp = ts
	return ts
}

func (s *Session) emit(ev Event) {
	s.events = append(s.events, ev)
}
