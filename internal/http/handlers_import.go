package http

import (
	"net/http"
	"strings"

	"cashledger/internal/export"
	"cashledger/internal/importer"
	applog "cashledger/internal/log"
)

type importResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Status   string   `json:"status"`
}

// handleImport accepts pasted sheet text, or an xlsx workbook when the
// request carries the spreadsheet content type.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mode, err := importer.ParseMergeMode(r.URL.Query().Get("mode"))
	if err != nil {
		ServiceError(err, "").Write(w)
		return
	}
	strict := queryBool(r, "strict", s.importStrict)

	var res importer.Result
	if strings.HasPrefix(r.Header.Get("Content-Type"), export.ContentTypeXLSX) {
		res, err = s.svc.ImportReader(r.Context(), mode, http.MaxBytesReader(w, r.Body, maxBodyBytes), strict)
	} else {
		var text string
		text, err = readText(w, r)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		res, err = s.svc.ImportText(r.Context(), mode, text, strict)
	}

	body := importResponse{
		Imported: len(res.Entries),
		Errors:   nonNil(res.Errors),
		Warnings: nonNil(res.Warnings),
		Status:   s.svc.Status(),
	}
	if err != nil {
		fields := applog.NewFields()
		fields[applog.FieldMergeMode] = string(mode)
		s.access.LogError(r.Context(), "Import failed", err, applog.ComponentImport, applog.OpImport, fields)
		body.Imported = 0
		NewJSONResponse().Status(statusFor(err)).Data(struct {
			importResponse
			Error string `json:"error"`
		}{body, err.Error()}).Write(w)
		return
	}
	NewJSONResponse().Data(body).Write(w)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
