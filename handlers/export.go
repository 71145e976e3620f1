package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jung-kurt/gofpdf"

	"marknotes/store"
)

// ExportPDF serves GET /note/{id}/pdf, rendering the owned note as a PDF
// attachment.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	noteID, err := pathNoteID(r)
	if err != nil {
		notFoundJSON(w)
		return
	}

	note, err := h.notes.GetByID(r.Context(), id.User.ID, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			notFoundJSON(w)
			return
		}
		h.serverError(w, "export note", err)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 10, note.Title, "", "C", false)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, note.Text, "", "L", false)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("note-%d.pdf", note.ID)))
	if err := pdf.Output(w); err != nil {
		h.log.Errorf("export note: write pdf: %v", err)
	}
}
