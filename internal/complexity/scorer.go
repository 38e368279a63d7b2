package complexity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roach88/linebuild/internal/model"
)

// Factor names.
const (
	FactorUnitCount       = "unit_count"
	FactorTrackCount      = "track_count"
	FactorCriticalPath    = "critical_path_minutes"
	FactorTransferLoad    = "transfer_load"
	FactorEquipment       = "equipment_variety"
	FactorConditional     = "conditional_ratio"
	FactorCrossTrackEdges = "cross_track_edges"
)

// Factors lists every factor in report order.
var Factors = []string{
	FactorUnitCount,
	FactorTrackCount,
	FactorCriticalPath,
	FactorTransferLoad,
	FactorEquipment,
	FactorConditional,
	FactorCrossTrackEdges,
}

// Config holds per-factor weights and caps. A factor with a non-positive
// weight does not contribute; one with a non-positive cap scores zero.
type Config struct {
	Weights map[string]float64 `json:"weights" mapstructure:"weights"`
	Caps    map[string]float64 `json:"caps" mapstructure:"caps"`
}

// DefaultConfig returns the built-in weights and caps.
func DefaultConfig() Config {
	return Config{
		Weights: map[string]float64{
			FactorUnitCount:       1,
			FactorTrackCount:      0.75,
			FactorCriticalPath:    1.5,
			FactorTransferLoad:    1,
			FactorEquipment:       0.75,
			FactorConditional:     0.5,
			FactorCrossTrackEdges: 1,
		},
		Caps: map[string]float64{
			FactorUnitCount:       40,
			FactorTrackCount:      6,
			FactorCriticalPath:    30,
			FactorTransferLoad:    10,
			FactorEquipment:       8,
			FactorConditional:     1,
			FactorCrossTrackEdges: 10,
		},
	}
}

// Inputs are the derived facts a score is computed from.
type Inputs struct {
	Units               []model.WorkUnit
	Assemblies          []model.Assembly
	CriticalPathSeconds int
	Transfers           []model.DerivedTransfer
}

// Scorer computes complexity scores.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Raw returns the unscaled factor values.
func Raw(in Inputs) map[string]float64 {
	units := make(map[string]model.WorkUnit, len(in.Units))
	var ids []string
	for _, u := range in.Units {
		if _, dup := units[u.ID]; dup {
			continue
		}
		units[u.ID] = u
		ids = append(ids, u.ID)
	}

	tracks := make(map[string]bool)
	appliances := make(map[string]bool)
	deps, conditional, cross := 0, 0, 0
	for _, id := range ids {
		u := units[id]
		tracks[u.Track()] = true
		if u.Equipment != nil && u.Equipment.Appliance != "" {
			appliances[strings.ToLower(u.Equipment.Appliance)] = true
		}
		seen := make(map[string]bool, len(u.DependsOn))
		for _, d := range u.DependsOn {
			dep, ok := units[d.DepID()]
			if !ok || seen[d.DepID()] {
				continue
			}
			seen[d.DepID()] = true
			deps++
			if _, isCond := d.(model.ConditionalDep); isCond {
				conditional++
			}
			if dep.Track() != u.Track() {
				cross++
			}
		}
	}

	load := 0.0
	for _, t := range in.Transfers {
		load += t.Weight
	}

	ratio := 0.0
	if deps > 0 {
		ratio = float64(conditional) / float64(deps)
	}

	return map[string]float64{
		FactorUnitCount:       float64(len(ids)),
		FactorTrackCount:      float64(len(tracks)),
		FactorCriticalPath:    float64(in.CriticalPathSeconds) / 60,
		FactorTransferLoad:    load,
		FactorEquipment:       float64(len(appliances)),
		FactorConditional:     ratio,
		FactorCrossTrackEdges: float64(cross),
	}
}

// Score computes the complexity score of a build.
func (s *Scorer) Score(in Inputs) (model.ComplexityScore, error) {
	fp, err := model.Fingerprint(in.Units, in.Assemblies)
	if err != nil {
		return model.ComplexityScore{}, fmt.Errorf("score: %w", err)
	}

	raw := Raw(in)
	factors := make(map[string]float64, len(Factors))
	sum, total := 0.0, 0.0
	for _, name := range Factors {
		f := scale(raw[name], s.cfg.Caps[name])
		factors[name] = f
		if w := s.cfg.Weights[name]; w > 0 {
			sum += w * f
			total += w
		}
	}

	overall := 0.0
	if total > 0 {
		overall = round1(math.Max(0, math.Min(100, sum/total)))
	}

	return model.ComplexityScore{
		Overall:     overall,
		Factors:     factors,
		Rationale:   s.rationale(overall, factors),
		Fingerprint: fp,
	}, nil
}

// rationale names up to three factors with the largest weighted
// contribution, ties broken by name.
func (s *Scorer) rationale(overall float64, factors map[string]float64) string {
	type contrib struct {
		name  string
		value float64
	}
	var top []contrib
	for _, name := range Factors {
		if w := s.cfg.Weights[name]; w > 0 && factors[name] > 0 {
			top = append(top, contrib{name, w * factors[name]})
		}
	}
	if len(top) == 0 {
		return fmt.Sprintf("overall %.1f: no complexity drivers", overall)
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].value != top[j].value {
			return top[i].value > top[j].value
		}
		return top[i].name < top[j].name
	})
	if len(top) > 3 {
		top = top[:3]
	}

	parts := make([]string, len(top))
	for i, c := range top {
		parts[i] = fmt.Sprintf("%s %.1f", c.name, factors[c.name])
	}
	return fmt.Sprintf("overall %.1f: driven by %s", overall, strings.Join(parts, ", "))
}

func scale(raw, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return round1(math.Min(raw/limit, 1) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
