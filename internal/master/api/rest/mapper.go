package rest

import (
	"github.com/kbecker/mrs/internal/master/core"
)

func toDatasetDTO(d *core.Dataset, progress float64) DatasetDTO {
	return DatasetDTO{
		ID:          d.ID,
		Kind:        string(d.Kind),
		Sources:     d.Sources,
		NumSplits:   d.NumSplits,
		FanOut:      d.FanOut,
		State:       string(d.State),
		Closed:      d.Closed,
		Progress:    progress,
		SubmittedAt: d.SubmittedAt,
	}
}

func toTaskDTO(t *core.Task) TaskDTO {
	return TaskDTO{
		DatasetID:  t.DatasetID,
		SplitIndex: t.SplitIndex,
		Attempt:    t.Attempt,
		Generation: t.Generation,
		State:      string(t.State),
		AssignedTo: t.AssignedTo,
		CreatedAt:  t.CreatedAt,
		AssignedAt: t.AssignedAt,
		EndedAt:    t.EndedAt,
		LastError:  t.LastError,
	}
}

func toSlaveDTO(s *core.SlaveInfo) SlaveDTO {
	return SlaveDTO{
		ID:            s.ID,
		Endpoint:      s.Endpoint,
		Capacity:      s.Capacity,
		State:         string(s.State),
		Running:       s.Running,
		LastHeartbeat: s.LastHeartbeat,
		MissedBeats:   s.MissedBeats,
	}
}
