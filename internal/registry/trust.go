package registry

import "github.com/Presto-io/template-registry/internal/config"

// Trust classifies a published entry. It is computed by the pipeline,
// never asserted by the untrusted source.
type Trust string

const (
	// TrustOfficial marks templates owned by the designated organization.
	TrustOfficial Trust = "official"
	// TrustVerified marks templates present in the allow-list at their
	// pinned version.
	TrustVerified Trust = "verified"
	// TrustCommunity is everything else.
	TrustCommunity Trust = "community"
	// TrustUnrecorded applies only to templates sideloaded outside this
	// pipeline; the builder never emits it.
	TrustUnrecorded Trust = "unrecorded"
)

// ComputeTrust is a pure function over (owner, allow-list membership).
// Rules are evaluated in fixed priority order; the first match wins:
//
//  1. owner equals the designated organization ⇒ official
//  2. allow-list pins this name at exactly this version ⇒ verified
//  3. otherwise ⇒ community
func ComputeTrust(owner, name, version, organization string, allow config.AllowList) Trust {
	if owner == organization {
		return TrustOfficial
	}
	if pinned, ok := allow.PinnedVersion(name); ok && pinned == version {
		return TrustVerified
	}
	return TrustCommunity
}
