package command

import (
	"regexp"
	"sort"
	"strconv"
)

var (
	taskIDRefRe    = regexp.MustCompile(`\btask_[0-9a-f]{16}\b`)
	shorthandRefRe = regexp.MustCompile(`\[([A-Z][A-Z0-9]*)-([0-9]+)\]`)
)

// Reference is a task reference found in external text. Exactly one of
// the two shapes is populated: PublicID for the strict task-id form, or
// Prefix+Seq for the bracketed shorthand, which addresses a task by its
// per-board sequence number.
type Reference struct {
	Raw      string
	PublicID string
	Prefix   string
	Seq      uint64
}

// ExtractReferences scans text for task references and returns them
// de-duplicated, in first-seen order.
func ExtractReferences(text string) []Reference {
	type hit struct {
		offset int
		ref    Reference
	}
	var hits []hit

	for _, loc := range taskIDRefRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		hits = append(hits, hit{loc[0], Reference{Raw: raw, PublicID: raw}})
	}
	for _, loc := range shorthandRefRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		prefix := text[loc[2]:loc[3]]
		seq, err := strconv.ParseUint(text[loc[4]:loc[5]], 10, 64)
		if err != nil {
			continue
		}
		hits = append(hits, hit{loc[0], Reference{Raw: raw, Prefix: prefix, Seq: seq}})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].offset < hits[j].offset })

	seen := make(map[string]struct{}, len(hits))
	refs := make([]Reference, 0, len(hits))
	for _, h := range hits {
		if _, dup := seen[h.ref.Raw]; dup {
			continue
		}
		seen[h.ref.Raw] = struct{}{}
		refs = append(refs, h.ref)
	}
	return refs
}
