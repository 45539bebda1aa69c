// Package server exposes the reconstructed topology over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/srlabs/srtopo/pkg/topology"
)

// Config holds server configuration.
type Config struct {
	Logger *slog.Logger
	Graph  *topology.Graph
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Graph == nil {
		return errors.New("graph is required")
	}
	return nil
}

// Server answers topology queries over HTTP against an immutable graph
// snapshot.
type Server struct {
	log   *slog.Logger
	graph *topology.Graph
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Server{log: cfg.Logger, graph: cfg.Graph}, nil
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/topology", s.getTopology)
	r.Get("/api/topology/path", s.getPath)
	r.Get("/api/topology/matrix", s.getMatrix)

	return r
}

type nodeResponse struct {
	SystemID string `json:"system_id"`
	Hostname string `json:"hostname"`
	Host     string `json:"host,omitempty"`
	NodeSID  uint32 `json:"node_sid"`
	SRGBBase uint32 `json:"srgb_base"`
	SRGBSize uint32 `json:"srgb_range"`
}

type linkResponse struct {
	ID             string `json:"id"`
	LocalSystemID  string `json:"local_system_id"`
	PeerSystemID   string `json:"peer_system_id"`
	LocalInterface string `json:"local_interface"`
	PeerInterface  string `json:"peer_interface"`
	Metric         uint32 `json:"metric"`
	AdjSID         uint32 `json:"adj_sid"`
}

type topologyResponse struct {
	Nodes []nodeResponse `json:"nodes"`
	Links []linkResponse `json:"links"`
}

type pathResponse struct {
	Hops []nodeResponse `json:"hops"`
	Text string         `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) getTopology(w http.ResponseWriter, r *http.Request) {
	resp := topologyResponse{
		Nodes: make([]nodeResponse, 0),
		Links: make([]linkResponse, 0),
	}
	for _, n := range s.graph.Nodes() {
		resp.Nodes = append(resp.Nodes, toNodeResponse(n))
	}
	for _, l := range s.graph.DirectedLinks() {
		resp.Links = append(resp.Links, linkResponse{
			ID:             l.ID.String(),
			LocalSystemID:  l.Local.SystemID,
			PeerSystemID:   l.Peer.SystemID,
			LocalInterface: l.LocalInterface,
			PeerInterface:  l.PeerInterface,
			Metric:         l.Metric,
			AdjSID:         l.AdjSID,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getPath(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query parameters 'from' and 'to' are required"})
		return
	}

	path, err := s.graph.ShortestPath(from, to)
	if err != nil {
		var une *topology.UnknownNodeError
		var npe *topology.NoPathError
		switch {
		case errors.As(err, &une):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		case errors.As(err, &npe):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		default:
			s.log.Error("path query failed", "from", from, "to", to, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	resp := pathResponse{
		Hops: make([]nodeResponse, 0, len(path)),
		Text: topology.FormatPath(path),
	}
	for _, n := range path {
		resp.Hops = append(resp.Hops, toNodeResponse(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getMatrix(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.graph.AdjacencyMatrixText()))
}

func toNodeResponse(n *topology.Node) nodeResponse {
	return nodeResponse{
		SystemID: n.SystemID,
		Hostname: n.Name,
		Host:     n.Host,
		NodeSID:  n.NodeSID,
		SRGBBase: n.SRGB.Base,
		SRGBSize: n.SRGB.Size,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
