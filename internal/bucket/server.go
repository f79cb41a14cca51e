package bucket

import (
	"io"
	"net/http"
	"strconv"

	"github.com/kbecker/mrs/internal/shared/logging"
)

// Server exposes a slave's (or the master's, for locally-partitioned source
// buckets) Store over HTTP, per spec.md §4.4.
type Server struct {
	addr   string
	store  *Store
	logger logging.Logger
	srv    *http.Server
}

// NewServer builds a bucket HTTP server bound to addr, serving store.
func NewServer(addr string, store *Store, logger logging.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{addr: addr, store: store, logger: logger}
	mux.HandleFunc("GET /bucket/{dataset_id}/{source_index}/{split_index}", s.handleGet)
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Addr returns the address the server was configured to listen on.
func (s *Server) Addr() string {
	return s.addr
}

// Start blocks serving HTTP until Stop is called, returning
// http.ErrServerClosed in that case.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	return s.srv.Close()
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	datasetID, err := strconv.ParseInt(r.PathValue("dataset_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid dataset_id", http.StatusBadRequest)
		return
	}
	sourceIndex, err := strconv.Atoi(r.PathValue("source_index"))
	if err != nil {
		http.Error(w, "invalid source_index", http.StatusBadRequest)
		return
	}
	splitIndex, err := strconv.Atoi(r.PathValue("split_index"))
	if err != nil {
		http.Error(w, "invalid split_index", http.StatusBadRequest)
		return
	}
	generation := 0
	if g := r.URL.Query().Get("gen"); g != "" {
		generation, err = strconv.Atoi(g)
		if err != nil {
			http.Error(w, "invalid gen", http.StatusBadRequest)
			return
		}
	}

	ref := Ref{DatasetID: datasetID, SourceIndex: sourceIndex, SplitIndex: splitIndex, Generation: generation}
	rc, err := s.store.Open(ref)
	switch err {
	case nil:
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := io.Copy(w, rc); err != nil {
			s.logger.Warn("bucket stream interrupted", "dataset_id", datasetID, "source_index", sourceIndex, "split_index", splitIndex, "error", err)
		}
	case ErrUnknownBucket:
		http.Error(w, "unknown bucket", http.StatusNotFound)
	case ErrBucketDeleted:
		http.Error(w, "bucket deleted or superseded", http.StatusGone)
	default:
		s.logger.Error("bucket open failed", "dataset_id", datasetID, "source_index", sourceIndex, "split_index", splitIndex, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
