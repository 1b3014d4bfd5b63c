package models

import (
	"sort"
	"time"
)

// ClubMembership is one element of a user/coach/player club-association list.
// Each entry carries its own status and category set, independent of sibling
// entries at other clubs.
type ClubMembership struct {
	ClubID     string    `json:"clubId"`
	ClubName   string    `json:"nombreClub"`
	Categories []string  `json:"categorias"`
	Status     Status    `json:"status"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// MembershipPatch describes a partial change to a single membership entry.
// Nil fields are left untouched.
type MembershipPatch struct {
	ClubName   *string
	Categories []string
	Status     *Status
}

// UpsertMembership merges the patch into the entry matching clubID, or
// appends a new entry when absent. List order is preserved and a clubId never
// appears twice. Every approval and category-merge flow goes through here.
func UpsertMembership(list []ClubMembership, clubID string, patch MembershipPatch) []ClubMembership {
	now := time.Now().UTC()
	out := make([]ClubMembership, len(list))
	copy(out, list)

	for i := range out {
		if out[i].ClubID != clubID {
			continue
		}
		if patch.ClubName != nil {
			out[i].ClubName = *patch.ClubName
		}
		if patch.Categories != nil {
			out[i].Categories = patch.Categories
		}
		if patch.Status != nil {
			out[i].Status = *patch.Status
		}
		out[i].UpdatedAt = now
		return out
	}

	entry := ClubMembership{ClubID: clubID, UpdatedAt: now}
	if patch.ClubName != nil {
		entry.ClubName = *patch.ClubName
	}
	entry.Categories = patch.Categories
	if patch.Status != nil {
		entry.Status = *patch.Status
	}
	return append(out, entry)
}

// RemoveMembership drops the entry matching clubID, preserving the order of
// the remaining entries.
func RemoveMembership(list []ClubMembership, clubID string) []ClubMembership {
	out := make([]ClubMembership, 0, len(list))
	for _, m := range list {
		if m.ClubID != clubID {
			out = append(out, m)
		}
	}
	return out
}

// FindMembership returns the entry matching clubID, if any.
func FindMembership(list []ClubMembership, clubID string) (ClubMembership, bool) {
	for _, m := range list {
		if m.ClubID == clubID {
			return m, true
		}
	}
	return ClubMembership{}, false
}

// MembershipClubIDs derives the flat clubIds mirror kept on user, coach and
// player documents so membership queries can use array-contains.
func MembershipClubIDs(list []ClubMembership) []string {
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.ClubID)
	}
	return ids
}

// CategoryDiff returns the requested categories missing from the current set,
// sorted for stable confirmation prompts.
func CategoryDiff(current, requested []string) []string {
	have := make(map[string]bool, len(current))
	for _, c := range current {
		have[c] = true
	}
	var missing []string
	for _, c := range requested {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

// MergeCategories appends the missing categories, keeping the current order.
func MergeCategories(current, requested []string) []string {
	out := make([]string, len(current))
	copy(out, current)
	return append(out, CategoryDiff(current, requested)...)
}
