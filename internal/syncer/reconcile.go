package syncer

import (
	"shufflepod/internal/media"
)

// RenameOp moves a kept episode's file to its fresh canonical name,
// typically after its queue position shifted.
type RenameOp struct {
	UUID    string
	OldName string
	NewName string
}

// Plan is the diff between the remote queue and the local library.
// Derived fresh every run from current state, never persisted. The
// Delete, Rename, and Download sets are pairwise disjoint by UUID and,
// together with the untouched keeps, partition the union of local and
// remote UUIDs.
type Plan struct {
	Delete   []media.LocalEntry
	Rename   []RenameOp
	Download []media.Episode

	// Duplicates lists UUIDs that appeared more than once in the remote
	// queue. The first occurrence wins; the caller should log these as a
	// data-quality warning.
	Duplicates []string
}

// Empty reports whether the plan requires no work.
func (p Plan) Empty() bool {
	return len(p.Delete) == 0 && len(p.Rename) == 0 && len(p.Download) == 0
}

// Reconcile computes the plan that converges the local library onto the
// remote queue. Pure set algebra on UUIDs, no I/O:
//
//   - local but not remote: delete
//   - remote but not local: download
//   - both: rename when the on-disk name differs from the canonical
//     name computed from fresh remote data (order can shift between
//     runs even when the episode itself is unchanged)
//
// After applying the plan, running Reconcile again with unchanged remote
// state yields an empty plan.
func Reconcile(episodes []media.Episode, local map[string]media.LocalEntry) Plan {
	var plan Plan

	remote := make(map[string]media.Episode, len(episodes))
	duplicated := make(map[string]bool)
	for _, ep := range episodes {
		if _, seen := remote[ep.UUID]; seen {
			if !duplicated[ep.UUID] {
				duplicated[ep.UUID] = true
				plan.Duplicates = append(plan.Duplicates, ep.UUID)
			}
			continue
		}
		remote[ep.UUID] = ep
	}

	for uuid, entry := range local {
		if _, keep := remote[uuid]; !keep {
			plan.Delete = append(plan.Delete, entry)
		}
	}

	// Walk the queue in order so Download and Rename come out in a
	// stable order for logs; the executor does not rely on it. Each
	// UUID is planned at most once, so later duplicates are skipped
	// even when they are byte-identical to the first occurrence.
	planned := make(map[string]bool, len(remote))
	for _, ep := range episodes {
		if planned[ep.UUID] {
			continue
		}
		planned[ep.UUID] = true

		entry, exists := local[ep.UUID]
		if !exists {
			plan.Download = append(plan.Download, ep)
			continue
		}

		if canonical := ep.Filename(); entry.Name != canonical {
			plan.Rename = append(plan.Rename, RenameOp{
				UUID:    ep.UUID,
				OldName: entry.Name,
				NewName: canonical,
			})
		}
	}

	return plan
}
