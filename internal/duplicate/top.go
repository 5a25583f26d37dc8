package duplicate

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"vidup/internal/index"
	"vidup/internal/logging"
	"vidup/internal/scene"
)

// slot is one file's position in the pairing arena.
type slot struct {
	id     index.FileID
	scenes []scene.ID
	// weights accumulates shared duration against files in later slots.
	weights map[int]uint64
}

// Top returns the file pairs that share the most scene duration, considering
// only the limit longest fingerprints that occur more than once. Every pair
// is reported once, heaviest first. The limit bounds the fingerprints
// considered, not the number of pairs.
func (e *Engine) Top(ctx context.Context, limit int) ([]Relation, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	hashes, err := e.idx.TopHashes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top: %w", err)
	}

	var found []index.Scene
	for _, hc := range hashes {
		if found, err = e.idx.ScenesByHash(ctx, hc.ID, found); err != nil {
			return nil, fmt.Errorf("top: %w", err)
		}
		e.logger.Debug("shared scene",
			logging.String("scene", hc.ID.String()),
			logging.Int("occurrences", hc.Count),
		)
	}

	// Worklist of distinct files, ascending; position in the worklist is the
	// arena index.
	worklist := make([]index.FileID, 0, len(found))
	for _, sc := range found {
		worklist = append(worklist, sc.FileID)
	}
	slices.Sort(worklist)
	worklist = slices.Compact(worklist)

	arena := make([]slot, len(worklist))
	slotOf := make(map[index.FileID]int, len(worklist))
	for i, id := range worklist {
		arena[i] = slot{id: id, weights: make(map[int]uint64)}
		slotOf[id] = i
	}
	holders := make(map[scene.ID][]int)
	for _, sc := range found {
		i := slotOf[sc.FileID]
		arena[i].scenes = append(arena[i].scenes, sc.ID)
		holders[sc.ID] = append(holders[sc.ID], i)
	}

	present := make([]bool, len(arena))
	for i := range present {
		present[i] = true
	}
	for i := range arena {
		present[i] = false
		for _, sid := range arena[i].scenes {
			for _, j := range holders[sid] {
				if !present[j] {
					continue
				}
				arena[i].weights[j] += uint64(sid.DurationMs)
			}
		}
	}

	var relations []Relation
	for i := range arena {
		for j, weight := range arena[i].weights {
			relations = append(relations, Relation{A: arena[i].id, B: arena[j].id, DurationMs: weight})
		}
	}
	sort.SliceStable(relations, func(a, b int) bool {
		ra, rb := relations[a], relations[b]
		if ra.DurationMs != rb.DurationMs {
			return ra.DurationMs > rb.DurationMs
		}
		if ra.A != rb.A {
			return ra.A < rb.A
		}
		return ra.B < rb.B
	})

	for i := range relations {
		if relations[i].NameA, err = e.fileName(ctx, relations[i].A); err != nil {
			return nil, err
		}
		if relations[i].NameB, err = e.fileName(ctx, relations[i].B); err != nil {
			return nil, err
		}
	}
	return relations, nil
}
