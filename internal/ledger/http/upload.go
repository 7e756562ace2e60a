package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/glreport/internal/ledger/source"
	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
	"github.com/odyssey-erp/glreport/internal/platform/httpx"
)

const multipartMemory = 32 << 20

// parseUpload reads one file part per table. Form fields encoding, sheet
// and aliases (YAML, table -> field -> aliases) are optional.
func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) (tabular.Set, map[string]map[string][]string, error) {
	if r.ContentLength > h.maxUpload {
		return nil, nil, fmt.Errorf("upload exceeds %d bytes: %w", h.maxUpload, httpx.ErrTooLarge)
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, fmt.Errorf("upload exceeds %d bytes: %w", tooLarge.Limit, httpx.ErrTooLarge)
		}
		return nil, nil, fmt.Errorf("parse multipart form: %v: %w", err, httpx.ErrValidation)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	enc, err := tabular.ParseEncoding(r.FormValue("encoding"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	sheet := strings.TrimSpace(r.FormValue("sheet"))

	var overrides map[string]map[string][]string
	if raw := r.FormValue("aliases"); strings.TrimSpace(raw) != "" {
		if err := yaml.Unmarshal([]byte(raw), &overrides); err != nil {
			return nil, nil, fmt.Errorf("aliases: %v: %w", err, httpx.ErrValidation)
		}
	}

	set := make(tabular.Set)
	for field, files := range r.MultipartForm.File {
		name, ok := source.CanonicalTable(field)
		if !ok {
			return nil, nil, fmt.Errorf("unknown table %q: %w", field, httpx.ErrValidation)
		}
		if len(files) != 1 {
			return nil, nil, fmt.Errorf("table %q: expected one file, got %d: %w", name, len(files), httpx.ErrValidation)
		}
		if _, dup := set[name]; dup {
			return nil, nil, fmt.Errorf("table %q supplied twice: %w", name, httpx.ErrValidation)
		}
		fh, err := files[0].Open()
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", name, err)
		}
		t, err := tabular.Read(name, files[0].Filename, fh, enc, sheet)
		_ = fh.Close()
		if err != nil {
			return nil, nil, classifyLoadError(err)
		}
		set[name] = t
	}
	if len(set) == 0 {
		return nil, nil, fmt.Errorf("no table files in upload: %w", httpx.ErrValidation)
	}
	return set, overrides, nil
}
