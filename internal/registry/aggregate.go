package registry

import (
	"sort"
	"time"

	"github.com/Presto-io/template-registry/internal/config"
)

// Aggregate merges freshly processed entries with surviving prior
// entries into the next index snapshot. Prior entries are carried over
// only when not superseded by a fresh one. Categories are deduplicated
// and only categories with at least one member survive.
func Aggregate(fresh []Entry, prior *Index, build *config.Build, now time.Time) *Index {
	updated := make(map[string]bool, len(fresh))
	entries := make([]Entry, 0, len(fresh)+len(prior.Templates))

	for _, e := range fresh {
		updated[e.Name] = true
		entries = append(entries, e)
	}
	for _, e := range prior.Templates {
		if !updated[e.Name] {
			entries = append(entries, e)
		}
	}

	seen := make(map[string]config.CategoryLabel)
	for i := range entries {
		id, label := build.CategoryLabelOrOther(entries[i].Category)
		entries[i].Category = id
		seen[id] = label
	}

	categories := make([]Category, 0, len(seen))
	for id, label := range seen {
		categories = append(categories, Category{ID: id, Label: label})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return &Index{
		Version:    SchemaVersion,
		UpdatedAt:  now.UTC().Format("2006-01-02T15:04:05Z"),
		Categories: categories,
		Templates:  entries,
	}
}
