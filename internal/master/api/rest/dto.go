package rest

import "time"

// DatasetDTO mirrors core.Dataset for the read-only status API, generalized
// from the teacher's GetJobResponse/JobSummary shape to a dataset-graph node.
type DatasetDTO struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Sources     []int64   `json:"sources"`
	NumSplits   int       `json:"num_splits"`
	FanOut      int       `json:"fan_out"`
	State       string    `json:"state"`
	Closed      bool      `json:"closed"`
	Progress    float64   `json:"progress"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TaskDTO mirrors core.Task.
type TaskDTO struct {
	DatasetID  int64      `json:"dataset_id"`
	SplitIndex int        `json:"split_index"`
	Attempt    int        `json:"attempt"`
	Generation int        `json:"generation"`
	State      string     `json:"state"`
	AssignedTo string     `json:"assigned_to,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// SlaveDTO mirrors core.SlaveInfo.
type SlaveDTO struct {
	ID            string    `json:"id"`
	Endpoint      string    `json:"endpoint"`
	Capacity      int       `json:"capacity"`
	State         string    `json:"state"`
	Running       int       `json:"running"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	MissedBeats   int       `json:"missed_beats"`
}

type ListDatasetsResponse struct {
	Datasets []DatasetDTO `json:"datasets"`
}

type GetTasksResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}

type ListSlavesResponse struct {
	Slaves []SlaveDTO `json:"slaves"`
}

type AbortStatusResponse struct {
	Aborted bool   `json:"aborted"`
	Reason  string `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
