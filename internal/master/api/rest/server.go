// Package rest exposes a read-only status API on the master, generalized
// from the teacher's internal/coordinator/api/rest (same route/middleware
// pattern) to the dataset-graph/task/slave shapes of this job driver. It is
// an ambient observability surface, not part of the job-driver contract in
// spec.md §6.
package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kbecker/mrs/internal/master/core"
	"github.com/kbecker/mrs/internal/shared/config"
	"github.com/kbecker/mrs/internal/shared/logging"
)

type API struct {
	scheduler *core.Scheduler
}

func NewAPI(scheduler *core.Scheduler) *API {
	return &API{scheduler: scheduler}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets", a.listDatasets)
	mux.HandleFunc("GET /api/datasets/{id}", a.getDataset)
	mux.HandleFunc("GET /api/datasets/{id}/tasks", a.getDatasetTasks)
	mux.HandleFunc("GET /api/slaves", a.listSlaves)
	mux.HandleFunc("GET /api/status", a.getStatus)
}

func (a *API) listDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := a.scheduler.AllDatasets()
	out := make([]DatasetDTO, 0, len(datasets))
	for _, d := range datasets {
		progress, _ := a.scheduler.Progress(d.ID)
		out = append(out, toDatasetDTO(d, progress))
	}
	a.respondJSON(w, http.StatusOK, ListDatasetsResponse{Datasets: out})
}

func (a *API) getDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		a.respondError(w, http.StatusBadRequest, "invalid dataset id", "")
		return
	}
	d, ok := a.scheduler.Dataset(id)
	if !ok {
		a.respondError(w, http.StatusNotFound, "dataset not found", "")
		return
	}
	progress, _ := a.scheduler.Progress(id)
	a.respondJSON(w, http.StatusOK, toDatasetDTO(d, progress))
}

func (a *API) getDatasetTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		a.respondError(w, http.StatusBadRequest, "invalid dataset id", "")
		return
	}
	if _, ok := a.scheduler.Dataset(id); !ok {
		a.respondError(w, http.StatusNotFound, "dataset not found", "")
		return
	}
	tasks := a.scheduler.TasksForDataset(id)
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	a.respondJSON(w, http.StatusOK, GetTasksResponse{Tasks: out})
}

func (a *API) listSlaves(w http.ResponseWriter, r *http.Request) {
	slaves := a.scheduler.AllSlaves()
	out := make([]SlaveDTO, 0, len(slaves))
	for _, s := range slaves {
		out = append(out, toSlaveDTO(s))
	}
	a.respondJSON(w, http.StatusOK, ListSlavesResponse{Slaves: out})
}

func (a *API) getStatus(w http.ResponseWriter, r *http.Request) {
	aborted, reason := a.scheduler.Aborted()
	a.respondJSON(w, http.StatusOK, AbortStatusResponse{Aborted: aborted, Reason: reason})
}

func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (a *API) respondError(w http.ResponseWriter, statusCode int, errMsg string, message string) {
	a.respondJSON(w, statusCode, ErrorResponse{Error: errMsg, Message: message, Code: statusCode})
}

func parseID(s string) (int64, bool) {
	var id int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		id = id*10 + int64(c-'0')
	}
	return id, len(s) > 0
}

func NewServer(cfg config.RESTConfig, scheduler *core.Scheduler, logger logging.Logger) *http.Server {
	api := NewAPI(scheduler)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := ChainMiddleware(
		mux,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	)

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 15 * time.Second
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
