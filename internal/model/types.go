package model

import (
	"fmt"
	"time"
)

// DefaultTrack is the track key used when a work unit declares none.
const DefaultTrack = "default"

// Build is one versioned line build: its work units and the assemblies that
// flow between them. A build exclusively owns its assembly list.
type Build struct {
	ID         string      `json:"id" yaml:"id"`
	ItemID     string      `json:"item_id" yaml:"item_id"`
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	ItemType   string      `json:"item_type,omitempty" yaml:"item_type,omitempty"`
	Version    int         `json:"version" yaml:"version"`
	Status     BuildStatus `json:"status" yaml:"status"`
	WorkUnits  []WorkUnit  `json:"work_units" yaml:"work_units"`
	Assemblies []Assembly  `json:"assemblies" yaml:"assemblies"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" yaml:"updated_at"`
}

// WorkUnit is one atomic kitchen-work step.
//
// OrderIndex is an advisory hint only; the true order is derived from
// DependsOn by the graph package.
type WorkUnit struct {
	ID         string       `json:"id" yaml:"id"`
	OrderIndex int          `json:"order_index" yaml:"order_index"`
	TrackID    string       `json:"track_id,omitempty" yaml:"track_id,omitempty"`
	Action     Action       `json:"action" yaml:"action"`
	Target     Target       `json:"target" yaml:"target"`
	Equipment  *Equipment   `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	From       *Location    `json:"from,omitempty" yaml:"from,omitempty"`
	To         *Location    `json:"to,omitempty" yaml:"to,omitempty"`
	Time       *Timing      `json:"time,omitempty" yaml:"time,omitempty"`
	DependsOn  DepList      `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Inputs     []AssemblyIO `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs    []AssemblyIO `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Track returns the unit's track key, or DefaultTrack when none is set.
func (u WorkUnit) Track() string {
	if u.TrackID == "" {
		return DefaultTrack
	}
	return u.TrackID
}

// Action describes what a unit does.
type Action struct {
	Family      ActionFamily `json:"family" yaml:"family"`
	TechniqueID string       `json:"technique_id,omitempty" yaml:"technique_id,omitempty"`
}

// Target is what the action is applied to.
type Target struct {
	Name       string `json:"name" yaml:"name"`
	AssemblyID string `json:"assembly_id,omitempty" yaml:"assembly_id,omitempty"`
}

// Equipment names the appliance a unit runs on and an optional program preset.
type Equipment struct {
	Appliance string `json:"appliance" yaml:"appliance"`
	PresetID  string `json:"preset_id,omitempty" yaml:"preset_id,omitempty"`
}

// Timing is an explicitly authored duration.
type Timing struct {
	DurationSeconds int  `json:"duration_seconds" yaml:"duration_seconds"`
	Active          bool `json:"active" yaml:"active"`
}

// Location is a station plus a place inside it.
type Location struct {
	StationID string      `json:"station_id" yaml:"station_id"`
	Sub       SubLocation `json:"sub" yaml:"sub"`
}

// SubLocation is a place inside a station, e.g. equipment "waterbath".
type SubLocation struct {
	Kind SubLocationKind `json:"kind" yaml:"kind"`
	ID   string          `json:"id,omitempty" yaml:"id,omitempty"`
}

// Equal reports whether two locations name the same station and sub-location.
func (l Location) Equal(o Location) bool {
	return l.StationID == o.StationID && l.Sub == o.Sub
}

// String renders a location as "station/kind:id".
func (l Location) String() string {
	if l.Sub.ID == "" {
		return fmt.Sprintf("%s/%s", l.StationID, l.Sub.Kind)
	}
	return fmt.Sprintf("%s/%s:%s", l.StationID, l.Sub.Kind, l.Sub.ID)
}

// AssemblyIO declares that a unit consumes or produces an assembly.
// From/To override the unit's own locations when set.
type AssemblyIO struct {
	AssemblyID string       `json:"assembly_id" yaml:"assembly_id"`
	From       *Location    `json:"from,omitempty" yaml:"from,omitempty"`
	To         *Location    `json:"to,omitempty" yaml:"to,omitempty"`
	External   *ExternalRef `json:"external,omitempty" yaml:"external,omitempty"`
}

// ExternalRef marks an assembly owned by another build version.
type ExternalRef struct {
	BuildID string `json:"build_id" yaml:"build_id"`
	Version int    `json:"version" yaml:"version"`
}

// Assembly is a material or intermediate product flowing between work units.
type Assembly struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Group         string   `json:"group,omitempty" yaml:"group,omitempty"`
	SubAssemblies []string `json:"sub_assemblies,omitempty" yaml:"sub_assemblies,omitempty"`
}
