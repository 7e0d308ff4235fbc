package schema

import "strings"

// Separator qualifies a table identifier with its owning connection:
// "reporting__users" names table "users" on connection "reporting".
//
// Table names that themselves contain the separator are ambiguous; the
// identifier is always split at the first occurrence.
const Separator = "__"

// SplitIdentifier splits a qualified identifier into its connection prefix
// and bare table name. ok is false when identifier carries no prefix, in
// which case table is identifier unchanged.
func SplitIdentifier(identifier string) (connection, table string, ok bool) {
	connection, table, ok = strings.Cut(identifier, Separator)
	if !ok {
		return "", identifier, false
	}
	return connection, table, true
}

// BareName strips any connection prefix from identifier.
func BareName(identifier string) string {
	_, table, _ := SplitIdentifier(identifier)
	return table
}

// Qualify joins a connection and table into a qualified identifier.
func Qualify(connection, table string) string {
	return connection + Separator + table
}
