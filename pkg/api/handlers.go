package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/termtree/pkg/buildinfo"
	"github.com/matzehuels/termtree/pkg/core/prune"
	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/graph"
	"github.com/matzehuels/termtree/pkg/pipeline"
)

// Request is the body of every POST route.
type Request struct {
	Rows         []term.Row       `json:"rows" validate:"required,min=1"`
	Dependencies []term.Term      `json:"dependencies,omitempty"`
	Derived      []term.Term      `json:"derived,omitempty"`
	Options      pipeline.Options `json:"options"`
}

func (req Request) input() pipeline.Input {
	return pipeline.Input{Rows: req.Rows, Dependencies: req.Dependencies, Derived: req.Derived}
}

// GraphResponse is the body of /v1/graph.
type GraphResponse struct {
	Graph  graph.Graph    `json:"graph"`
	Issues []term.Issue   `json:"issues"`
	Pruned prune.Result   `json:"pruned"`
	Stats  pipeline.Stats `json:"stats"`
}

// Content types of /v1/render.
var renderTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Build(r.Context(), req.input(), req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	issues := res.Issues
	if issues == nil {
		issues = []term.Issue{}
	}
	writeJSON(w, r, http.StatusOK, GraphResponse{
		Graph:  graph.FromDigraph(res.Graph),
		Issues: issues,
		Pruned: res.Pruned,
		Stats:  res.Stats,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	req.Options.Formats = []string{pipeline.FormatJSON}
	res, err := s.runner.Execute(r.Context(), req.input(), req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeBytes(w, http.StatusOK, renderTypes[pipeline.FormatJSON], res.Artifacts[pipeline.FormatJSON])
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	contentType, supported := renderTypes[format]
	if !supported {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidFormat, "format %q is not served over HTTP (must be svg, dot or json)", format))
		return
	}

	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	req.Options.Formats = []string{format}
	res, err := s.runner.Execute(r.Context(), req.input(), req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeBytes(w, http.StatusOK, contentType, res.Artifacts[format])
}

// decode reads and validates the request body. On failure it writes the
// error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", s.cfg.MaxBodyBytes))
			return req, false
		}
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "decode request: %v", err))
		return req, false
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request: %v", err))
		return req, false
	}
	if err := validateTerms(req.Dependencies, req.Derived); err != nil {
		s.fail(w, r, err)
		return req, false
	}
	return req, true
}

// validateTerms checks inline dependency and derived terms. An empty label
// is allowed; the id stands in for it.
func validateTerms(lists ...[]term.Term) error {
	for _, terms := range lists {
		for _, t := range terms {
			if err := errors.ValidateTermID(t.ID); err != nil {
				return err
			}
			if t.Label == "" {
				continue
			}
			if err := errors.ValidateLabel(t.Label); err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "term %s: %s", t.ID, errors.UserMessage(err))
			}
		}
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	writeJSON(w, r, status, errorBody(r, code, errors.UserMessage(err)))
}
