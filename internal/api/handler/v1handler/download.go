package v1handler

import (
	"io"
	"mime"
	"net/http"

	"verifier/pkg/logger"
	"verifier/pkg/serrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Download handles GET /download/{batch}/{name} by streaming the artifact
// back as a CSV attachment.
func (h Handler) Download(w http.ResponseWriter, r *http.Request) {
	batch, name := r.PathValue("batch"), r.PathValue("name")
	if _, err := uuid.Parse(batch); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrNotFound, err, "artifact not found"))

		return
	}

	rc, err := h.deps.Verifier.Artifact(r.Context(), batch+"/"+name)
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)

	if _, err = io.Copy(w, rc); err != nil {
		logger.Warn(r.Context(), "could not stream artifact", zap.String("name", name), zap.Error(err))
	}
}
