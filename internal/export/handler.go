package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sketchdeck/sketchdeck/backend-go/internal/auth"
	"github.com/sketchdeck/sketchdeck/backend-go/internal/drawing"
)

type Handler struct {
	drawings *drawing.Service
}

func NewHandler(drawings *drawing.Service) *Handler {
	return &Handler{drawings: drawings}
}

// ExportPDF renders a drawing to PDF and streams it as an attachment.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	drawingID := mux.Vars(r)["drawingId"]

	doc, err := h.drawings.Scene(r.Context(), drawingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, drawing.ErrNotFound):
			http.Error(w, "drawing not found", http.StatusNotFound)
		case errors.Is(err, drawing.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, drawing.ErrInvalid):
			http.Error(w, "drawing has no readable canvas state", http.StatusUnprocessableEntity)
		default:
			slog.Error("load drawing for export", "drawing", drawingID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	var buf bytes.Buffer
	if err := WriteDrawingPDF(&buf, doc); err != nil {
		slog.Error("render pdf", "drawing", drawingID, "error", err)
		http.Error(w, "pdf rendering failed", http.StatusInternalServerError)
		return
	}

	name := doc.Name
	if name == "" {
		name = "drawing"
	}
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())

	slog.Info("export complete", "drawing", drawingID, "size", buf.Len())
}
