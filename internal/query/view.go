package query

import "github.com/preston-bernstein/prospect-scout/internal/domain/players"

// View is the full set of list controls a caller can apply.
type View struct {
	Query     string
	Criteria  Criteria
	SavedOnly bool
	Page      int
	PageSize  int
}

// Apply runs search, filter, the saved-only restriction, rank and paginate
// in that order. isSaved may be nil when SavedOnly is false.
func Apply(items []players.Player, v View, isSaved func(id string) bool) Page {
	out := Filter(Search(items, v.Query), v.Criteria)
	if v.SavedOnly {
		kept := out[:0]
		for _, p := range out {
			if isSaved != nil && isSaved(p.ID) {
				kept = append(kept, p)
			}
		}
		out = kept
	}
	return Paginate(Rank(out), v.PageSize, v.Page)
}

// Resolve looks ids up in items, keeping the order of ids. Ids with no
// matching player are returned in missing.
func Resolve(items []players.Player, ids []string) (found []players.Player, missing []string) {
	found, missing = []players.Player{}, []string{}
	if len(ids) == 0 {
		return found, missing
	}
	byID := make(map[string]players.Player, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			found = append(found, p)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}
