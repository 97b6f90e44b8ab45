package models

import "strings"

// NormalizeTags turns raw tag input into a tag set. Every argument may hold
// several comma separated tags; pieces are trimmed, blanks are dropped and
// duplicates are removed ignoring case. The first spelling seen wins, so
// "Work, work" normalizes to ["Work"].
func NormalizeTags(raw ...string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, chunk := range raw {
		for _, piece := range strings.Split(chunk, ",") {
			tag := strings.TrimSpace(piece)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags renders a tag set the way it is written in exports.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
