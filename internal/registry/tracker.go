package registry

// Tracker decides whether a candidate needs (re-)processing by comparing
// its declared version against the prior published index. The comparison
// is exact string equality, not semantic ordering: any change in the
// declared version, including a downgrade, triggers reprocessing.
type Tracker struct {
	prior map[string]string
	force bool
}

// NewTracker creates a tracker over the prior index snapshot.
// With force set, every candidate is eligible regardless of version.
func NewTracker(prior *Index, force bool) *Tracker {
	return &Tracker{prior: prior.Versions(), force: force}
}

// ShouldProcess reports whether the named candidate at the declared
// version needs processing.
func (t *Tracker) ShouldProcess(name, version string) bool {
	if t.force {
		return true
	}
	recorded, ok := t.prior[name]
	return !ok || recorded != version
}
