// Package service holds the shared entity-resolution logic the
// reconciliation pipelines run on: name normalization, party resolution
// with a run-scoped cache, and politician matching.
package service

import "strings"

// NormalizeName strips half-width and full-width spaces from a name.
// Source feeds pad names inconsistently ("山田 太郎" vs "山田　太郎" vs
// "山田太郎"); everything else in the name is preserved as-is.
func NormalizeName(name string) string {
	return strings.NewReplacer(" ", "", "　", "").Replace(name)
}
