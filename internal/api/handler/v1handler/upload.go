package v1handler

import (
	"errors"
	"net/http"
	"strings"

	"verifier/internal/verifier"
	"verifier/pkg/domain"
	"verifier/pkg/serrors"

	"github.com/go-faster/jx"
)

// summaryURLFields names the download link field of each disposition.
var summaryURLFields = []struct { //nolint: gochecknoglobals
	disposition domain.Disposition
	field       string
}{
	{domain.DispositionValid, "validUrl"},
	{domain.DispositionInvalid, "invalidUrl"},
	{domain.DispositionCatchAll, "catchAllUrl"},
}

// DownloadURL returns the public link of the artifact stored under key.
func DownloadURL(publicURL, key string) string {
	return strings.TrimSuffix(publicURL, "/") + "/download/" + key
}

// EncodeSummary writes the upload response for s. A download link is present
// only for dispositions that produced an artifact.
func EncodeSummary(e *jx.Encoder, s *domain.Summary, publicURL string) {
	e.ObjStart()
	e.FieldStart("batchId")
	e.Str(s.BatchID.String())
	e.FieldStart("validCount")
	e.Int(s.ValidCount)
	e.FieldStart("invalidCount")
	e.Int(s.InvalidCount)
	e.FieldStart("catchAllCount")
	e.Int(s.CatchAllCount)
	for _, f := range summaryURLFields {
		if key, ok := s.Outputs[f.disposition]; ok {
			e.FieldStart(f.field)
			e.Str(DownloadURL(publicURL, key))
		}
	}
	e.ObjEnd()
}

// Upload handles POST /upload: a multipart form with the table in field
// "file" and the address column name in "emailColumn".
func (h Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.options.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.options.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(h.options.MultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.writeError(w, r, serrors.Wrap(serrors.ErrPayloadTooLarge, err, "upload exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, http.ErrNotMultipart):
			h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "No file uploaded"))
		default:
			h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not read upload"))
		}

		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "No file uploaded"))

		return
	}
	defer file.Close()

	summary, err := h.deps.Verifier.Verify(ctx, verifier.Request{
		Source:   file,
		Column:   r.FormValue("emailColumn"),
		FileName: header.Filename,
	})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	EncodeSummary(e, summary, h.options.PublicURL)

	writeJSON(w, http.StatusOK, e.Bytes())
}
