package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeContains turns a free-text term into a LIKE pattern matching it as a
// literal substring.
func LikeContains(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
