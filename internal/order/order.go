// Package order holds the static table that places plugin priority tiers on a
// single scheduling axis. Lower values initialize earlier.
package order

import "github.com/toyz/pluginmeta/internal/models"

// Tier names a priority bucket on the order axis
type Tier string

const (
	NuxtPreAll   Tier = "nuxt-pre-all"
	UserRevivers Tier = "user-revivers"
	NuxtRevivers Tier = "nuxt-revivers"
	UserPre      Tier = "user-pre"
	NuxtDefault  Tier = "nuxt-default"
	UserDefault  Tier = "user-default"
	NuxtPost     Tier = "nuxt-post"
	UserPost     Tier = "user-post"
	NuxtPostAll  Tier = "nuxt-post-all"
)

var tiers = []struct {
	tier  Tier
	value int
}{
	{NuxtPreAll, -50},
	{UserRevivers, -40},
	{NuxtRevivers, -30},
	{UserPre, -20},
	{NuxtDefault, -10},
	{UserDefault, 0},
	{NuxtPost, 10},
	{UserPost, 20},
	{NuxtPostAll, 30},
}

// Value returns the order of a tier and whether the tier is known
func Value(t Tier) (int, bool) {
	for _, entry := range tiers {
		if entry.tier == t {
			return entry.value, true
		}
	}
	return 0, false
}

// MustValue is Value for tiers declared in this package
func MustValue(t Tier) int {
	v, ok := Value(t)
	if !ok {
		panic("order: unknown tier " + string(t))
	}
	return v
}

// TierOf names the tier sitting exactly at value. Orders between tiers
// report false.
func TierOf(value int) (Tier, bool) {
	for _, entry := range tiers {
		if entry.value == value {
			return entry.tier, true
		}
	}
	return "", false
}

// ForEnforce maps an author-facing enforce label onto the user tiers.
// Unknown or empty labels resolve to the user default tier.
func ForEnforce(e models.Enforce) int {
	switch e {
	case models.EnforcePre:
		return MustValue(UserPre)
	case models.EnforcePost:
		return MustValue(UserPost)
	default:
		return MustValue(UserDefault)
	}
}
