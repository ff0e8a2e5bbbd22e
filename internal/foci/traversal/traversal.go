// Package traversal resolves an entity's full ownership graph.
//
// The walk starts at the target entity with a cumulative percentage of 100
// and follows ownership relations outward to all direct and indirect owners,
// multiplying percentages down each tier. It is an explicit worklist rather
// than recursion: cycle and depth detection are a set-membership check and a
// counter check, and the call stack stays flat on deep graphs.
package traversal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	focimodels "turbofcl/internal/foci/models"
	ownershipmodels "turbofcl/internal/ownership/models"
	ownershipstore "turbofcl/internal/ownership/store"
	id "turbofcl/pkg/domain"
	dErrors "turbofcl/pkg/domain-errors"
	"turbofcl/pkg/requestcontext"
)

// Config bounds the traversal. All values are correctness or cost guards;
// see each field.
type Config struct {
	// VotingControlThreshold is the direct or voting percentage at which a
	// foreign relation becomes a control candidate.
	VotingControlThreshold decimal.Decimal

	// MaxDepth is the hard cap: a graph deeper than this fails with a
	// structural error. Correctness guard.
	MaxDepth int

	// FanOutDepth bounds expansion cost on deep-but-wide graphs: at or
	// beyond this depth only the largest entity-owner stake of each node is
	// expanded further; the remaining relations are still recorded. Cost
	// control, not a correctness guard.
	FanOutDepth int

	// MaxFetches bounds the total number of relation fetches per traversal
	// so a pathological (acyclic but huge) graph cannot run unbounded.
	MaxFetches int
}

// DefaultConfig returns the standard guard values.
func DefaultConfig() Config {
	return Config{
		VotingControlThreshold: decimal.NewFromInt(10),
		MaxDepth:               10,
		FanOutDepth:            5,
		MaxFetches:             256,
	}
}

var oneHundred = decimal.NewFromInt(100)

// Traverser walks ownership graphs. Safe for concurrent use: all traversal
// state is local to each Traverse call.
type Traverser struct {
	relations ownershipstore.Store
	cfg       Config
	logger    *slog.Logger
}

// Option configures the Traverser.
type Option func(*Traverser)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Traverser) { t.logger = logger }
}

func WithConfig(cfg Config) Option {
	return func(t *Traverser) { t.cfg = cfg }
}

func New(relations ownershipstore.Store, opts ...Option) (*Traverser, error) {
	if relations == nil {
		return nil, fmt.Errorf("ownership relation store is required")
	}
	t := &Traverser{
		relations: relations,
		cfg:       DefaultConfig(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// node is one worklist entry: an entity whose owners are still to be fetched.
type node struct {
	entityID   id.EntityID
	depth      int
	cumulative decimal.Decimal
}

// Traverse resolves the ownership graph rooted at entityID as of the
// request-scoped date.
//
// Failure modes (all CodeStructural): re-encountering a visited entity
// (cycle), a node deeper than MaxDepth, or exceeding the fetch budget.
// Cycles are never resolved silently.
func (t *Traverser) Traverse(ctx context.Context, entityID id.EntityID) (*focimodels.OwnershipAnalysis, error) {
	asOf := requestcontext.Now(ctx)

	visited := make(map[id.EntityID]struct{})
	var details []focimodels.RelationDetail
	var candidates []focimodels.ControlCandidate
	totalForeign := decimal.Zero
	maxDepth := 0
	fetches := 0

	// LIFO worklist keeps the walk depth-first, matching the order in which
	// the relation store returns owners (largest stake first).
	stack := []node{{entityID: entityID, depth: 0, cumulative: oneHundred}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStructural, "traversal cancelled")
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.depth > t.cfg.MaxDepth {
			return nil, dErrors.Newf(dErrors.CodeStructural,
				"ownership chain exceeds maximum depth %d at entity %s", t.cfg.MaxDepth, cur.entityID)
		}
		if _, seen := visited[cur.entityID]; seen {
			return nil, dErrors.Newf(dErrors.CodeStructural,
				"circular ownership detected at entity %s", cur.entityID)
		}
		visited[cur.entityID] = struct{}{}

		if fetches >= t.cfg.MaxFetches {
			return nil, dErrors.Newf(dErrors.CodeStructural,
				"traversal fetch budget %d exceeded", t.cfg.MaxFetches)
		}
		fetches++

		relations, err := t.relations.ActiveRelationsFor(ctx, cur.entityID, asOf)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStorage, "fetch ownership relations")
		}

		if cur.depth > maxDepth && len(relations) > 0 {
			maxDepth = cur.depth
		}

		var expand []node
		for _, rel := range relations {
			effective := rel.OwnershipPercentage.Div(oneHundred).Mul(cur.cumulative)
			detail := relationDetail(rel, effective, cur.depth)
			details = append(details, detail)

			if rel.IsForeign {
				totalForeign = totalForeign.Add(effective)
				if cand, ok := t.controlCandidate(rel, detail); ok {
					candidates = append(candidates, cand)
				}
			}

			if rel.OwnerEntityID != nil {
				expand = append(expand, node{
					entityID:   *rel.OwnerEntityID,
					depth:      cur.depth + 1,
					cumulative: effective,
				})
			}
		}

		// Beyond the fan-out depth, follow only the largest stake of each
		// node. Chains still traverse to the hard cap; wide sub-trees stop.
		if cur.depth >= t.cfg.FanOutDepth && len(expand) > 1 {
			expand = expand[:1]
		}

		// Push in reverse so the largest stake pops first.
		for i := len(expand) - 1; i >= 0; i-- {
			stack = append(stack, expand[i])
		}
	}

	if totalForeign.GreaterThan(oneHundred) {
		totalForeign = oneHundred
	}

	analysis := &focimodels.OwnershipAnalysis{
		EntityID:              entityID,
		TotalRelations:        len(details),
		OwnershipTiers:        maxDepth + 1,
		TotalForeignOwnership: totalForeign,
		ControlCandidates:     candidates,
		ComplexityScore:       complexityScore(details, maxDepth),
		Relations:             details,
		AnalyzedAt:            asOf,
	}

	t.logger.DebugContext(ctx, "ownership traversal complete",
		"entity_id", entityID,
		"relations", analysis.TotalRelations,
		"tiers", analysis.OwnershipTiers,
		"foreign_pct", analysis.TotalForeignOwnership,
		"fetches", fetches,
	)
	return analysis, nil
}

// controlCandidate flags a foreign relation whose holder is controlling
// outright or whose direct/voting stake meets the control threshold.
func (t *Traverser) controlCandidate(rel ownershipmodels.OwnershipRelation, detail focimodels.RelationDetail) (focimodels.ControlCandidate, bool) {
	meetsThreshold := rel.OwnershipPercentage.GreaterThanOrEqual(t.cfg.VotingControlThreshold) ||
		(rel.VotingPercentage != nil && rel.VotingPercentage.GreaterThanOrEqual(t.cfg.VotingControlThreshold))
	if !rel.IsControlling && !meetsThreshold {
		return focimodels.ControlCandidate{}, false
	}

	controlType := focimodels.ControlOwnership
	controlPct := rel.OwnershipPercentage
	if rel.VotingPercentage != nil {
		controlType = focimodels.ControlVoting
		if rel.VotingPercentage.GreaterThan(controlPct) {
			controlPct = *rel.VotingPercentage
		}
	}

	return focimodels.ControlCandidate{
		Owner:             detail,
		ControlType:       controlType,
		ControlPercentage: controlPct,
	}, true
}

func relationDetail(rel ownershipmodels.OwnershipRelation, effective decimal.Decimal, depth int) focimodels.RelationDetail {
	ownerID := "INDIVIDUAL"
	if rel.OwnerEntityID != nil {
		ownerID = rel.OwnerEntityID.String()
	}
	ownerName := rel.OwnerName
	if ownerName == "" {
		ownerName = "Entity Owner"
	}
	return focimodels.RelationDetail{
		OwnerID:             ownerID,
		OwnerName:           ownerName,
		OwnerType:           rel.OwnerType,
		DirectPercentage:    rel.OwnershipPercentage,
		EffectivePercentage: effective,
		VotingPercentage:    rel.VotingPercentage,
		IsForeign:           rel.IsForeign,
		IsControlling:       rel.IsControlling,
		RelationshipType:    rel.RelationshipType,
		Citizenship:         rel.Citizenship,
		Depth:               depth,
	}
}

// complexityScore rates structural complexity, capped at 100:
// 2 per relation, 5 per foreign owner, 3 per controlling owner,
// 10 per tier of depth, 2 per distinct owner type.
func complexityScore(details []focimodels.RelationDetail, maxDepth int) int {
	score := len(details) * 2

	ownerTypes := make(map[ownershipmodels.OwnerType]struct{})
	for _, rel := range details {
		if rel.IsForeign {
			score += 5
		}
		if rel.IsControlling {
			score += 3
		}
		ownerTypes[rel.OwnerType] = struct{}{}
	}
	score += maxDepth * 10
	score += len(ownerTypes) * 2

	if score > 100 {
		score = 100
	}
	return score
}
