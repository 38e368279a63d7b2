package continuity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/linebuild/internal/model"
)

// Stats summarizes one continuity pass. Self-referential pairs are counted
// only in SelfReferences.
type Stats struct {
	Pairs            int                        `json:"pairs"`
	Continuous       int                        `json:"continuous"`
	Bridged          int                        `json:"bridged"`
	Unlocated        int                        `json:"unlocated"`
	Transfers        int                        `json:"transfers"`
	ByKind           map[model.TransferKind]int `json:"by_kind"`
	SelfReferences   int                        `json:"self_references"`
	MissingProducers int                        `json:"missing_producers"`
	TransferSeconds  int                        `json:"transfer_seconds"`
	TransferWeight   float64                    `json:"transfer_weight"`
}

// Result is the outcome of a continuity pass.
type Result struct {
	Transfers []model.DerivedTransfer `json:"transfers"`
	Issues    []model.ValidationIssue `json:"issues"`
	Stats     Stats                   `json:"stats"`
}

// Checker derives transfers from producer/consumer location mismatches.
type Checker struct {
	table TransferTable
	pods  PodAssigner
}

// NewChecker creates a checker. pods may be nil, in which case no transfer
// is ever classified inter-pod.
func NewChecker(table TransferTable, pods PodAssigner) *Checker {
	return &Checker{table: table, pods: pods}
}

type producer struct {
	unit *model.WorkUnit
	out  model.AssemblyIO
}

// Check walks every consumer input in ascending unit id order, then in
// declaration order, and compares the consumer's pickup location with the
// producer's drop-off location. Unit locations stand in for IO locations
// that are not declared.
//
// Inputs marked external are skipped. An input naming an assembly absent
// from the build is an E104 error; one with no producer is an E103
// warning. Neither stops the pass.
//
// A consumer already fed through a synthetic transfer unit (see Splice)
// is compared against that unit's drop-off location.
func (c *Checker) Check(units []model.WorkUnit, assemblies []model.Assembly) Result {
	known := make(map[string]bool, len(assemblies))
	for _, a := range assemblies {
		known[a.ID] = true
	}

	byID := make(map[string]*model.WorkUnit, len(units))
	producers := make(map[string]producer)
	var issues []model.ValidationIssue
	for i := range units {
		u := &units[i]
		if _, dup := byID[u.ID]; !dup {
			byID[u.ID] = u
		}
		if IsSynthetic(*u) {
			continue
		}
		for j, out := range u.Outputs {
			if out.External != nil {
				continue
			}
			if !known[out.AssemblyID] {
				issues = append(issues, unknownAssembly(u.ID, fmt.Sprintf("outputs[%d].assembly_id", j), out.AssemblyID))
				continue
			}
			producers[out.AssemblyID] = producer{unit: u, out: out}
		}
	}

	consumers := make([]*model.WorkUnit, 0, len(units))
	seen := make(map[string]bool, len(units))
	for i := range units {
		u := &units[i]
		if seen[u.ID] || IsSynthetic(*u) {
			continue
		}
		seen[u.ID] = true
		consumers = append(consumers, u)
	}
	sort.SliceStable(consumers, func(i, j int) bool { return consumers[i].ID < consumers[j].ID })

	res := Result{Transfers: []model.DerivedTransfer{}}
	res.Stats.ByKind = make(map[model.TransferKind]int)
	for _, consumer := range consumers {
		for j, in := range consumer.Inputs {
			if in.External != nil {
				continue
			}
			field := fmt.Sprintf("inputs[%d].assembly_id", j)
			if !known[in.AssemblyID] {
				issues = append(issues, unknownAssembly(consumer.ID, field, in.AssemblyID))
				continue
			}
			p, ok := producers[in.AssemblyID]
			if !ok {
				res.Stats.MissingProducers++
				issues = append(issues, model.ValidationIssue{
					Kind:     model.KindStructural,
					Severity: model.SeverityWarning,
					Code:     model.CodeMissingProducer,
					UnitID:   consumer.ID,
					Field:    field,
					Message:  fmt.Sprintf("no unit produces assembly %q", in.AssemblyID),
				})
				continue
			}
			if p.unit.ID == consumer.ID {
				res.Stats.SelfReferences++
				continue
			}
			res.Stats.Pairs++

			from := pick(p.out.To, p.unit.To)
			if bridge, ok := byID[model.TransferID(in.AssemblyID, p.unit.ID, consumer.ID)]; ok && IsSynthetic(*bridge) {
				from = bridge.To
				res.Stats.Bridged++
			}
			to := pick(in.From, consumer.From)
			if from == nil || to == nil {
				res.Stats.Unlocated++
				continue
			}
			if from.Equal(*to) {
				res.Stats.Continuous++
				continue
			}

			kind := Classify(*from, *to, c.pods)
			cost := c.table[kind]
			res.Transfers = append(res.Transfers, model.DerivedTransfer{
				ID:              model.TransferID(in.AssemblyID, p.unit.ID, consumer.ID),
				AssemblyID:      in.AssemblyID,
				ProducerID:      p.unit.ID,
				ConsumerID:      consumer.ID,
				From:            *from,
				To:              *to,
				Kind:            kind,
				DurationSeconds: cost.Seconds,
				Weight:          cost.Weight,
			})
			res.Stats.Transfers++
			res.Stats.ByKind[kind]++
			res.Stats.TransferSeconds += cost.Seconds
			res.Stats.TransferWeight += cost.Weight
		}
	}

	model.SortIssues(issues)
	res.Issues = issues
	if res.Issues == nil {
		res.Issues = []model.ValidationIssue{}
	}
	return res
}

// IsSynthetic reports whether u was created by Splice.
func IsSynthetic(u model.WorkUnit) bool {
	return u.Action.Family == model.FamilyTransfer && strings.HasPrefix(u.ID, model.TransferIDPrefix)
}

func pick(primary, fallback *model.Location) *model.Location {
	if primary != nil {
		return primary
	}
	return fallback
}

func unknownAssembly(unitID, field, assemblyID string) model.ValidationIssue {
	return model.ValidationIssue{
		Kind:     model.KindStructural,
		Severity: model.SeverityError,
		Code:     model.CodeUnknownAssembly,
		UnitID:   unitID,
		Field:    field,
		Message:  fmt.Sprintf("assembly %q is not in the build and not marked external", assemblyID),
	}
}
