package model

import "strings"

// ActionFamily classifies what a work unit does.
type ActionFamily string

const (
	FamilyPrep     ActionFamily = "prep"
	FamilyHeat     ActionFamily = "heat"
	FamilyTransfer ActionFamily = "transfer"
	FamilyAssemble ActionFamily = "assemble"
	FamilyPortion  ActionFamily = "portion"
	FamilyPackage  ActionFamily = "package"
	FamilyHold     ActionFamily = "hold"
	FamilyCheck    ActionFamily = "check"
)

// ActionFamilies lists every known family in declaration order.
var ActionFamilies = []ActionFamily{
	FamilyPrep, FamilyHeat, FamilyTransfer, FamilyAssemble,
	FamilyPortion, FamilyPackage, FamilyHold, FamilyCheck,
}

// IsValid reports whether f is one of the known action families.
func (f ActionFamily) IsValid() bool {
	for _, known := range ActionFamilies {
		if f == known {
			return true
		}
	}
	return false
}

// SubLocationKind is the kind of place inside a station.
type SubLocationKind string

const (
	SubEquipment   SubLocationKind = "equipment"
	SubStorage     SubLocationKind = "storage"
	SubWorkSurface SubLocationKind = "work_surface"
	SubWindow      SubLocationKind = "window"
)

// IsValid reports whether k is a known sub-location kind.
func (k SubLocationKind) IsValid() bool {
	switch k {
	case SubEquipment, SubStorage, SubWorkSurface, SubWindow:
		return true
	}
	return false
}

// BuildStatus is the publication state of a build document.
type BuildStatus string

const (
	StatusDraft     BuildStatus = "draft"
	StatusPublished BuildStatus = "published"
	StatusArchived  BuildStatus = "archived"
)

// IsValid reports whether s is a known build status.
func (s BuildStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Tier is a high/medium/low trust classification.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierHigh:
		return TierHigh, true
	case TierMedium:
		return TierMedium, true
	case TierLow:
		return TierLow, true
	}
	return "", false
}

// Threshold returns the acceptance threshold for the tier when it is used as
// a migration confidence gate: high=85, medium=70, low=50.
func (t Tier) Threshold() int {
	switch t {
	case TierHigh:
		return 85
	case TierMedium:
		return 70
	case TierLow:
		return 50
	}
	return 85
}

// ExtractionScore maps a per-unit extraction confidence to a numeric score.
// A unit with no recorded confidence scores 100.
func ExtractionScore(t *Tier) int {
	if t == nil {
		return 100
	}
	switch *t {
	case TierHigh:
		return 90
	case TierMedium:
		return 75
	case TierLow:
		return 50
	}
	return 100
}

// TransferKind classifies a derived transfer.
type TransferKind string

const (
	TransferSameStation  TransferKind = "same_station"
	TransferInterStation TransferKind = "inter_station"
	TransferInterPod     TransferKind = "inter_pod"
)

// MigrationStatus is the routing outcome for one legacy item.
type MigrationStatus string

const (
	MigrationSuccess      MigrationStatus = "success"
	MigrationReviewNeeded MigrationStatus = "review_needed"
	MigrationFailed       MigrationStatus = "failed"
)

// JobStatus is the lifecycle state of a migration job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobComplete   JobStatus = "complete"
	JobFailed     JobStatus = "failed"
)
