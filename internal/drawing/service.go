package drawing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/canvas"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/scene"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/store"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("drawing not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid canvas state")
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Drawing is the wire representation of a stored drawing.
type Drawing struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	PreviewImage string          `json:"previewImage"`
	CanvasState  json.RawMessage `json:"canvasState"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

// Summary is a gallery listing entry; no canvas state.
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PreviewImage string `json:"previewImage"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// decodeState validates a raw canvas payload as a structurally sound
// scene. Malformed geometry inside elements degrades to empty curves
// rather than failing; only document-level breakage is rejected.
func decodeState(raw json.RawMessage) (*scene.Drawing, error) {
	var d scene.Drawing
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &d, nil
}

func (s *Service) Create(ctx context.Context, ownerID, name, preview string, state json.RawMessage) (*Drawing, error) {
	id := typeid.NewDrawingID()

	var canvasState []byte
	if len(state) > 0 {
		doc, err := decodeState(state)
		if err != nil {
			return nil, err
		}
		doc.ID = id
		doc.Name = name
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal canvas state: %w", err)
		}
		canvasState = data
	} else {
		doc := scene.NewDrawing(id, name, 0, 0, "#ffffff")
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal canvas state: %w", err)
		}
		canvasState = data
	}

	row := &store.Drawing{
		ID:           id,
		OwnerID:      ownerID,
		Name:         name,
		PreviewImage: preview,
		CanvasState:  canvasState,
	}
	if err := s.store.CreateDrawing(ctx, row); err != nil {
		return nil, err
	}

	created, err := s.store.GetDrawing(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWire(created), nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Drawing, error) {
	row, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return toWire(row), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	rows, err := s.store.ListDrawings(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, len(rows))
	for i, r := range rows {
		out[i] = Summary{
			ID:           r.ID,
			Name:         r.Name,
			PreviewImage: r.PreviewImage,
			CreatedAt:    formatTime(r.CreatedAt),
			UpdatedAt:    formatTime(r.UpdatedAt),
		}
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, name, preview *string, state json.RawMessage) (*Drawing, error) {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return nil, err
	}

	var canvasState []byte
	if len(state) > 0 {
		doc, err := decodeState(state)
		if err != nil {
			return nil, err
		}
		doc.ID = id
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal canvas state: %w", err)
		}
		canvasState = data
	}

	if err := s.store.UpdateDrawing(ctx, id, name, preview, canvasState); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updated, err := s.store.GetDrawing(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWire(updated), nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteDrawing(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Preview returns the decoded PNG bytes of a drawing's preview image.
func (s *Service) Preview(ctx context.Context, id, userID string) ([]byte, error) {
	row, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if row.PreviewImage == "" {
		return nil, ErrNotFound
	}

	data, err := base64.StdEncoding.DecodeString(row.PreviewImage)
	if err != nil {
		return nil, fmt.Errorf("%w: preview is not valid base64", ErrInvalid)
	}
	return data, nil
}

// Scene loads and validates the drawing's scene for an export consumer.
func (s *Service) Scene(ctx context.Context, id, userID string) (*scene.Drawing, error) {
	row, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return decodeState(row.CanvasState)
}

func (s *Service) getOwned(ctx context.Context, id, userID string) (*store.Drawing, error) {
	row, err := s.store.GetDrawing(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if row.OwnerID != userID {
		return nil, ErrForbidden
	}
	return row, nil
}

func toWire(row *store.Drawing) *Drawing {
	return &Drawing{
		ID:           row.ID,
		Name:         row.Name,
		PreviewImage: row.PreviewImage,
		CanvasState:  json.RawMessage(row.CanvasState),
		CreatedAt:    formatTime(row.CreatedAt),
		UpdatedAt:    formatTime(row.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// SessionStore binds the persistence boundary for one user's editing
// session. Loads fall back to the caller on ErrNotFound or ErrInvalid; a
// save failure never touches in-memory state.
func (s *Service) SessionStore(userID string) canvas.Store {
	return &sessionStore{svc: s, userID: userID}
}

type sessionStore struct {
	svc    *Service
	userID string
}

func (a *sessionStore) Load(ctx context.Context, id string) (*scene.Drawing, error) {
	row, err := a.svc.getOwned(ctx, id, a.userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, canvas.ErrNotFound
		}
		return nil, err
	}
	doc, err := decodeState(row.CanvasState)
	if err != nil {
		return nil, canvas.ErrNotFound // invalid state loads as blank canvas
	}
	return doc, nil
}

func (a *sessionStore) Save(ctx context.Context, d *scene.Drawing, preview []byte) error {
	state, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal canvas state: %w", err)
	}

	var previewB64 *string
	if len(preview) > 0 {
		enc := base64.StdEncoding.EncodeToString(preview)
		previewB64 = &enc
	}

	err = a.svc.store.UpdateDrawing(ctx, d.ID, &d.Name, previewB64, state)
	if errors.Is(err, store.ErrNotFound) {
		// First save of a fresh canvas.
		return a.svc.store.CreateDrawing(ctx, &store.Drawing{
			ID:           d.ID,
			OwnerID:      a.userID,
			Name:         d.Name,
			PreviewImage: stringOrEmpty(previewB64),
			CanvasState:  state,
		})
	}
	return err
}

func (a *sessionStore) Delete(ctx context.Context, id string) error {
	err := a.svc.Delete(ctx, id, a.userID)
	if errors.Is(err, ErrNotFound) {
		return canvas.ErrNotFound
	}
	return err
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
