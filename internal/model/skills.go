package model

import (
    "strings"
    "unicode"

    "golang.org/x/text/runes"
    "golang.org/x/text/transform"
    "golang.org/x/text/unicode/norm"
)

// skillKey folds a skill to the form used for duplicate detection:
// trimmed, lower-cased and stripped of combining marks, so "Golang",
// " golang " and "Gölang" collide.
func skillKey(s string) string {
    t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
    folded, _, err := transform.String(t, strings.TrimSpace(s))
    if err != nil {
        folded = strings.TrimSpace(s)
    }
    return strings.ToLower(folded)
}

// NormalizeSkills trims every skill, drops empty entries and removes
// duplicates while keeping the first spelling and the original order.
func NormalizeSkills(in []string) []string {
    out := make([]string, 0, len(in))
    seen := make(map[string]struct{}, len(in))
    for _, s := range in {
        s = strings.TrimSpace(s)
        if s == "" {
            continue
        }
        k := skillKey(s)
        if _, ok := seen[k]; ok {
            continue
        }
        seen[k] = struct{}{}
        out = append(out, s)
    }
    return out
}

// HasSkill reports whether skills already contains s under skillKey folding.
func HasSkill(skills []string, s string) bool {
    k := skillKey(s)
    for _, existing := range skills {
        if skillKey(existing) == k {
            return true
        }
    }
    return false
}

// RemoveSkill returns skills without any entry equal to s under skillKey
// folding.
func RemoveSkill(skills []string, s string) []string {
    k := skillKey(s)
    out := make([]string, 0, len(skills))
    for _, existing := range skills {
        if skillKey(existing) != k {
            out = append(out, existing)
        }
    }
    return out
}
