package database

import (
	"strconv"
	"strings"
)

// semanticTypes maps lower-cased backend type tokens (modifiers stripped)
// to the backend-neutral names exposed in descriptors.
var semanticTypes = map[string]string{
	"int":       "integer",
	"int4":      "integer",
	"integer":   "integer",
	"mediumint": "integer",
	"serial":    "integer",
	"serial4":   "integer",

	"bigint":    "bigint",
	"int8":      "bigint",
	"bigserial": "bigint",
	"serial8":   "bigint",

	"smallint":    "smallint",
	"int2":        "smallint",
	"smallserial": "smallint",
	"year":        "smallint",

	"varchar":           "string",
	"character varying": "string",
	"char":              "string",
	"character":         "string",
	"bpchar":            "string",
	"nvarchar":          "string",
	"nchar":             "string",
	"enum":              "string",
	"set":               "string",
	"inet":              "string",
	"cidr":              "string",

	"text":       "text",
	"tinytext":   "text",
	"mediumtext": "text",
	"longtext":   "text",
	"clob":       "text",
	"citext":     "text",

	"bool":    "boolean",
	"boolean": "boolean",
	"bit":     "boolean",

	"decimal": "decimal",
	"numeric": "decimal",
	"money":   "decimal",

	"float":            "float",
	"float4":           "float",
	"float8":           "float",
	"real":             "float",
	"double":           "float",
	"double precision": "float",

	"date": "date",

	"datetime":                    "datetime",
	"timestamp":                   "datetime",
	"timestamp without time zone": "datetime",

	"timestamptz":              "datetimetz",
	"timestamp with time zone": "datetimetz",

	"time":                   "time",
	"timetz":                 "time",
	"time without time zone": "time",
	"time with time zone":    "time",

	"json":  "json",
	"jsonb": "json",

	"binary":    "binary",
	"varbinary": "binary",

	"blob":       "blob",
	"tinyblob":   "blob",
	"mediumblob": "blob",
	"longblob":   "blob",
	"bytea":      "blob",

	"uuid":             "guid",
	"uniqueidentifier": "guid",
}

// TypeInfo is a backend type token split into its parts.
type TypeInfo struct {
	Base     string // lower-cased token without modifiers, e.g. "varchar"
	Args     []int  // numeric modifiers, e.g. [10 2] for decimal(10,2)
	Unsigned bool
}

// ParseType splits tokens such as "VARCHAR(255)", "decimal(10,2)" or
// "int(11) unsigned". Non-numeric modifiers (enum values) are dropped.
func ParseType(dbType string) TypeInfo {
	t := strings.ToLower(strings.TrimSpace(dbType))
	var info TypeInfo

	for _, suffix := range []string{" unsigned zerofill", " unsigned", " zerofill"} {
		if strings.HasSuffix(t, suffix) {
			info.Unsigned = strings.Contains(suffix, "unsigned")
			t = strings.TrimSuffix(t, suffix)
			break
		}
	}

	if open := strings.IndexByte(t, '('); open >= 0 {
		rest := t[open+1:]
		tail := ""
		if end := strings.IndexByte(rest, ')'); end >= 0 {
			tail = strings.TrimSpace(rest[end+1:])
			rest = rest[:end]
		}
		for _, part := range strings.Split(rest, ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				info.Args = append(info.Args, n)
			}
		}
		// "timestamp(6) with time zone" keeps its suffix.
		t = strings.TrimSpace(t[:open])
		if tail != "" {
			t += " " + tail
		}
	}

	if strings.HasSuffix(t, "[]") {
		t = "array"
	}
	info.Base = t
	return info
}

// NormalizeType returns the semantic name for a backend type token.
// Unknown tokens are returned lower-cased without modifiers.
func NormalizeType(dbType string) string {
	info := ParseType(dbType)
	// MySQL 8.0.19+ only reports a display width for tinyint(1), the
	// conventional boolean.
	if info.Base == "tinyint" {
		if len(info.Args) == 1 && info.Args[0] == 1 {
			return "boolean"
		}
		return "smallint"
	}
	if s, ok := semanticTypes[info.Base]; ok {
		return s
	}
	return info.Base
}

// Normalize derives Type, Unsigned and any missing Length / Precision /
// Scale from DBType. Values already reported by the backend are kept.
func (c *Column) Normalize() {
	info := ParseType(c.DBType)
	c.Type = NormalizeType(c.DBType)
	c.Unsigned = c.Unsigned || info.Unsigned

	switch c.Type {
	case "string", "binary":
		if c.Length == nil && len(info.Args) > 0 {
			c.Length = intPtr(info.Args[0])
		}
	case "decimal":
		if c.Precision == nil && len(info.Args) > 0 {
			c.Precision = intPtr(info.Args[0])
		}
		if c.Scale == nil && len(info.Args) > 1 {
			c.Scale = intPtr(info.Args[1])
		}
	}
}

func intPtr(n int) *int { return &n }
