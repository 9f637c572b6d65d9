package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/postforge/postforge/pkg/workflow"
	"github.com/postforge/postforge/pkg/workflow/executors"
)

type workflowSnapshot struct {
	Nodes    []workflow.Node `json:"nodes"`
	Edges    []workflow.Edge `json:"edges"`
	Selected string          `json:"selected,omitempty"`
}

// handleGetWorkflow returns the full graph.
func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	snap := workflowSnapshot{
		Nodes: s.store.Nodes(),
		Edges: s.store.Edges(),
	}
	if sel, ok := s.store.Selected(); ok {
		snap.Selected = sel.ID
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleExportWorkflow renders the graph as Graphviz DOT.
func (s *Server) handleExportWorkflow(w http.ResponseWriter, r *http.Request) {
	dot := s.store.ExportDOT()
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Header().Set("Content-Disposition", `attachment; filename="workflow.dot"`)
	w.Write([]byte(dot))
}

type addNodeRequest struct {
	Kind      workflow.Kind           `json:"kind" validate:"required,oneof=ai social"`
	Operation workflow.AIOperation    `json:"operation,omitempty"`
	Platform  workflow.SocialPlatform `json:"platform,omitempty"`
}

// handleAddNode creates an AI or social node and places it on the canvas.
func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}

	var node *workflow.Node
	switch req.Kind {
	case workflow.KindAI:
		if !req.Operation.Valid() {
			writeError(w, fmt.Errorf("%w: unknown operation %q", errBadJSON, req.Operation))
			return
		}
		node = workflow.NewAINode(req.Operation)
	case workflow.KindSocial:
		if !req.Platform.Valid() {
			writeError(w, fmt.Errorf("%w: unknown platform %q", errBadJSON, req.Platform))
			return
		}
		node = workflow.NewSocialNode(req.Platform)
	}

	s.store.AddNode(node)
	created, _ := s.store.NodeByID(node.ID)
	writeJSON(w, http.StatusCreated, created)
}

// handleDeleteNode removes a node and its edges. Idempotent.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteNode(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// handlePatchNode shallow-merges a data patch into the node.
func (s *Server) handlePatchNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch workflow.DataPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if _, ok := s.store.NodeByID(id); !ok {
		writeError(w, &executors.NotFoundError{NodeID: id})
		return
	}
	s.store.UpdateNodeData(id, patch)
	node, _ := s.store.NodeByID(id)
	writeJSON(w, http.StatusOK, node)
}

// handleNodeConnections returns the node's direct upstream and downstream
// neighbours.
func (s *Server) handleNodeConnections(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.NodeByID(id); !ok {
		writeError(w, &executors.NotFoundError{NodeID: id})
		return
	}
	writeJSON(w, http.StatusOK, s.store.Connections(id))
}

type connectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// handleConnect adds a directed edge.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	edge := s.store.Connect(req.Source, req.Target)
	writeJSON(w, http.StatusCreated, edge)
}

// handleDisconnect removes an edge. Idempotent.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.store.Disconnect(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type changesRequest struct {
	Nodes []workflow.NodeChange `json:"nodes,omitempty"`
	Edges []workflow.EdgeChange `json:"edges,omitempty"`
}

// handleApplyChanges batch-applies canvas deltas (drag, select, remove).
func (s *Server) handleApplyChanges(w http.ResponseWriter, r *http.Request) {
	var req changesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.store.ApplyNodeChanges(req.Nodes)
	s.store.ApplyEdgeChanges(req.Edges)
	w.WriteHeader(http.StatusNoContent)
}

type selectionRequest struct {
	ID string `json:"id"`
}

// handleSetSelection tracks the focused node; an empty ID clears it.
func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.store.SetSelected(req.ID)
	w.WriteHeader(http.StatusNoContent)
}

// runNodeRequest is the executor request plus a base64 audio attachment for
// transcription nodes.
type runNodeRequest struct {
	executors.Request
	AudioBase64 string `json:"audio,omitempty"`
}

// handleRunNode executes the node's action and returns the outcome. Audio
// outcomes stream back as MP3; everything else is JSON. An empty body is an
// empty request: social and chained nodes run off node data alone.
func (s *Server) handleRunNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req runNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	if req.AudioBase64 != "" {
		audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: audio is not valid base64", errBadJSON))
			return
		}
		req.Request.Audio = audio
	}

	outcome, err := s.runner.Run(r.Context(), id, req.Request)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(outcome.Audio) > 0 {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Disposition", `attachment; filename="speech.mp3"`)
		w.Write(outcome.Audio)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
