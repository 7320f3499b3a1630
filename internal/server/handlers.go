package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MalithGihan/mindmap-service/internal/ingest"
	"github.com/MalithGihan/mindmap-service/internal/validate"
	"github.com/MalithGihan/mindmap-service/pkg/types"
)

type generateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type saveViewRequest struct {
	Name    string          `json:"name" validate:"required"`
	Prompt  string          `json:"prompt"`
	MapData json.RawMessage `json:"map_data" validate:"required"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"service":  "mindmap-service",
		"provider": s.synth.Provider(),
	})
}

func (s *Server) llmPing(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"ok": true, "provider": s.synth.Provider()}
	if s.opts.Pinger == nil {
		out["reachable"] = nil
		out["note"] = "provider does not support ping"
		writeJSON(w, http.StatusOK, out)
		return
	}
	err := s.opts.Pinger.Ping(r.Context())
	out["reachable"] = err == nil
	if err != nil {
		out["note"] = err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, uploadTooLarge(tooLarge.Limit, err))
			return
		}
		s.writeError(w, r, badRequest("invalid multipart form: "+err.Error(), err))
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, r, badRequest("No files uploaded", nil))
		return
	}

	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		b, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		files = append(files, ingest.File{Name: fh.Filename, Content: b})
	}

	docs, err := s.extract(r, files)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	uploaded := make([]types.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		if err := s.docs.AddDocument(r.Context(), d); err != nil {
			s.writeError(w, r, err)
			return
		}
		uploaded = append(uploaded, d.Summary())
	}
	all, err := s.docs.ListDocuments(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploaded": uploaded, "total_documents": len(all)})
}

// extract serves cached texts and runs the extractor on the rest. Every file name
// is checked before any extraction starts.
func (s *Server) extract(r *http.Request, files []ingest.File) ([]types.Document, error) {
	for _, f := range files {
		if _, err := ingest.DetectFormat(f.Name); err != nil {
			return nil, err
		}
	}

	docs := make([]types.Document, len(files))
	var missIdx []int
	var misses []ingest.File
	for i, f := range files {
		if s.cache != nil {
			if text, ok := s.cache.Get(f.Name, f.Content); ok {
				docs[i] = types.NewDocument(f.Name, text)
				continue
			}
		}
		missIdx = append(missIdx, i)
		misses = append(misses, f)
	}
	if len(misses) == 0 {
		return docs, nil
	}

	extracted, err := s.extractor.ExtractAll(r.Context(), misses)
	if err != nil {
		return nil, err
	}
	for j, d := range extracted {
		i := missIdx[j]
		docs[i] = d
		if s.cache != nil {
			s.cache.Put(misses[j].Name, misses[j].Content, d.Content)
		}
	}
	s.logger.Info("documents extracted",
		zap.Int("files", len(files)),
		zap.Int("cache_hits", len(files)-len(misses)))
	return docs, nil
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.ListDocuments(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]types.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (s *Server) clearDocuments(w http.ResponseWriter, r *http.Request) {
	if err := s.docs.ClearDocuments(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	docs, err := s.docs.ListDocuments(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(docs) == 0 {
		s.writeError(w, r, errNoDocuments)
		return
	}
	corpus, err := ingest.Aggregate(docs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	m, err := s.synth.Synthesize(r.Context(), corpus, req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) listViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.views.ListViews(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]types.ViewSummary, 0, len(views))
	for _, v := range views {
		out = append(out, v.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"views": out})
}

func (s *Server) saveView(w http.ResponseWriter, r *http.Request) {
	var req saveViewRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validate.MindMapJSON(req.MapData); err != nil {
		s.writeError(w, r, badRequest("invalid map_data: "+err.Error(), err))
		return
	}
	var m types.MindMap
	if err := json.Unmarshal(req.MapData, &m); err != nil {
		s.writeError(w, r, badRequest("invalid map_data: "+err.Error(), err))
		return
	}
	if err := m.Validate(); err != nil {
		s.writeError(w, r, badRequest("invalid map_data: "+err.Error(), err))
		return
	}

	v := types.NewView(req.Name, req.Prompt, m)
	if err := s.views.SaveView(r.Context(), v); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": v.ID, "name": v.Name})
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.GetView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) deleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.views.DeleteView(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// decode reads a JSON body and checks its validate tags.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON body: "+err.Error(), err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return badRequest(formatValidationError(err), err)
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
