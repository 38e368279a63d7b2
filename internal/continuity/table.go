package continuity

import (
	"strings"

	"github.com/roach88/linebuild/internal/model"
)

// TransferCost is the time and complexity weight of one transfer kind.
type TransferCost struct {
	Seconds int     `json:"seconds" mapstructure:"seconds"`
	Weight  float64 `json:"weight" mapstructure:"weight"`
}

// TransferTable maps a transfer kind to its cost. A kind missing from the
// table costs nothing.
type TransferTable map[model.TransferKind]TransferCost

// DefaultTransferTable returns the built-in transfer costs.
func DefaultTransferTable() TransferTable {
	return TransferTable{
		model.TransferSameStation:  {Seconds: 15, Weight: 0.5},
		model.TransferInterStation: {Seconds: 45, Weight: 1},
		model.TransferInterPod:     {Seconds: 90, Weight: 2},
	}
}

// PodAssigner maps a station to the physical pod it belongs to.
type PodAssigner interface {
	PodOf(stationID string) (pod string, ok bool)
}

// PodMap is a static station -> pod assignment. Station ids are matched
// case-insensitively.
type PodMap map[string]string

// NewPodMap builds a PodMap with normalized station keys.
func NewPodMap(assign map[string]string) PodMap {
	m := make(PodMap, len(assign))
	for station, pod := range assign {
		m[stationKey(station)] = pod
	}
	return m
}

// PodOf implements PodAssigner.
func (m PodMap) PodOf(stationID string) (string, bool) {
	pod, ok := m[stationID]
	if !ok {
		pod, ok = m[stationKey(stationID)]
	}
	return pod, ok && pod != ""
}

func stationKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Classify returns the transfer kind for moving between two locations that
// differ. Stations in different pods are inter-pod only when both stations
// have a pod assignment.
func Classify(from, to model.Location, pods PodAssigner) model.TransferKind {
	if from.StationID == to.StationID {
		return model.TransferSameStation
	}
	if pods != nil {
		fp, fok := pods.PodOf(from.StationID)
		tp, tok := pods.PodOf(to.StationID)
		if fok && tok && fp != tp {
			return model.TransferInterPod
		}
	}
	return model.TransferInterStation
}
