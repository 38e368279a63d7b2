package model

import "time"

// DerivedTransfer is a synthetic movement of one assembly from a producer's
// output location to a consumer's input location. It is always recomputed
// and never persisted as authored state.
type DerivedTransfer struct {
	ID              string       `json:"id"`
	AssemblyID      string       `json:"assembly_id"`
	ProducerID      string       `json:"producer_id"`
	ConsumerID      string       `json:"consumer_id"`
	From            Location     `json:"from"`
	To              Location     `json:"to"`
	Kind            TransferKind `json:"kind"`
	DurationSeconds int          `json:"duration_seconds"`
	Weight          float64      `json:"weight"`
}

// TransferIDPrefix starts the id of every derived transfer.
const TransferIDPrefix = "xfer:"

// TransferID returns the deterministic id of the transfer moving assembly
// from producer to consumer.
func TransferID(assemblyID, producerID, consumerID string) string {
	return TransferIDPrefix + assemblyID + ":" + producerID + ":" + consumerID
}

// ComplexityScore is a cacheable derived view of a build's work-unit list.
type ComplexityScore struct {
	Overall     float64            `json:"overall"`
	Factors     map[string]float64 `json:"factors"`
	Rationale   string             `json:"rationale"`
	Fingerprint string             `json:"fingerprint"`
}

// MigrationResult is the outcome of migrating one legacy item. A re-run
// produces a new result; results are never updated.
type MigrationResult struct {
	LegacyID  string            `json:"legacy_id"`
	WorkUnits []WorkUnit        `json:"work_units"`
	Issues    []ValidationIssue `json:"issues"`
	Status    MigrationStatus   `json:"status"`
	Error     string            `json:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// MigrationCounts tallies a job's items by outcome.
type MigrationCounts struct {
	Legacy    int `json:"legacy"`
	Converted int `json:"converted"`
	Review    int `json:"review"`
	Failed    int `json:"failed"`
}

// MigrationJob is the migration job document.
type MigrationJob struct {
	ID      string            `json:"id"`
	Counts  MigrationCounts   `json:"counts"`
	Status  JobStatus         `json:"status"`
	Results []MigrationResult `json:"results"`
	Error   string            `json:"error,omitempty"`
}
