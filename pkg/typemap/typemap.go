// SPDX-License-Identifier: Apache-2.0

// Package typemap implements TypeMapper: pure functions translating
// Oracle type, default-expression and identifier artifacts into their
// PostgreSQL equivalents. Every mapping is total: unhandled inputs are
// returned as an Unmapped value the caller treats as a warning, never as
// an error.
package typemap

import (
	"fmt"
	"regexp"
	"strings"
)

// Unmapped wraps an input the mapper could not translate. Callers attach it
// to the relevant CreationOutcome as a warning rather than aborting.
type Unmapped struct {
	Input  string
	Reason string
}

func (u Unmapped) String() string {
	return fmt.Sprintf("unmapped %q: %s", u.Input, u.Reason)
}

// ColumnTypeInput is the subset of model.Column needed to compute the
// mapped PostgreSQL type, decoupled from pkg/model to keep this package
// dependency-free and trivially unit-testable.
type ColumnTypeInput struct {
	OracleType string
	Length     *int
	Precision  *int
	Scale      *int
	CharUsed   string // "CHAR" | "BYTE"
}

// MapColumnType maps an Oracle column type to its PostgreSQL equivalent.
// The second return value is nil on a successful mapping, or an *Unmapped
// describing why the type could not be translated; the caller should then
// fall back to `text`, the safest universal type, rather than failing the
// whole table creation over one unmapped column.
func MapColumnType(in ColumnTypeInput) (string, *Unmapped) {
	t := strings.ToUpper(strings.TrimSpace(in.OracleType))

	switch {
	case t == "NUMBER":
		if in.Precision == nil {
			return "numeric", nil
		}
		return mapNumber(*in.Precision, scaleOrZero(in.Scale)), nil

	case strings.HasPrefix(t, "FLOAT"):
		return "double precision", nil

	case t == "BINARY_FLOAT":
		return "real", nil
	case t == "BINARY_DOUBLE":
		return "double precision", nil

	case t == "VARCHAR2", t == "VARCHAR":
		n := lengthOrDefault(in.Length, 4000)
		return fmt.Sprintf("varchar(%d)", n), nil
	case t == "NVARCHAR2":
		n := lengthOrDefault(in.Length, 4000)
		return fmt.Sprintf("varchar(%d)", n), nil
	case t == "CHAR":
		n := lengthOrDefault(in.Length, 1)
		return fmt.Sprintf("char(%d)", n), nil
	case t == "NCHAR":
		n := lengthOrDefault(in.Length, 1)
		return fmt.Sprintf("char(%d)", n), nil

	case t == "CLOB", t == "NCLOB", t == "LONG":
		return "text", nil
	case t == "BLOB", t == "RAW", t == "LONG RAW", t == "BFILE":
		return "bytea", nil

	case t == "DATE":
		return "timestamp(0)", nil
	case strings.HasPrefix(t, "TIMESTAMP"):
		switch {
		case strings.Contains(t, "WITH LOCAL TIME ZONE"):
			return "timestamptz", nil
		case strings.Contains(t, "WITH TIME ZONE"):
			return "timestamptz", nil
		default:
			p := precisionFromTimestamp(t)
			return fmt.Sprintf("timestamp(%d)", p), nil
		}

	case t == "INTERVAL YEAR TO MONTH":
		return "interval year to month", nil
	case strings.HasPrefix(t, "INTERVAL DAY") && strings.Contains(t, "TO SECOND"):
		return "interval day to second", nil

	case t == "XMLTYPE":
		return "xml", nil
	case t == "ROWID", t == "UROWID":
		return "text", nil

	default:
		// User-defined object type: identically-named composite type in
		// the same (lower-cased) schema. We cannot resolve the schema
		// here (MapColumnType is pure over the column alone); the caller
		// (TableCreator) substitutes the schema-qualified composite type
		// name when it recognizes t as a known ObjectDataType. Otherwise
		// this is a genuine unmapped type.
		return "text", &Unmapped{Input: in.OracleType, Reason: "no direct PostgreSQL equivalent; defaulted to text"}
	}
}

func mapNumber(precision, scale int) string {
	if scale > 0 {
		return fmt.Sprintf("numeric(%d,%d)", precision, scale)
	}
	switch {
	case precision <= 4:
		return "smallint"
	case precision <= 9:
		return "integer"
	case precision <= 18:
		return "bigint"
	default:
		return fmt.Sprintf("numeric(%d)", precision)
	}
}

func scaleOrZero(s *int) int {
	if s == nil {
		return 0
	}
	return *s
}

func lengthOrDefault(l *int, def int) int {
	if l == nil || *l <= 0 {
		return def
	}
	return *l
}

var timestampPrecisionRe = regexp.MustCompile(`\((\d+)\)`)

func precisionFromTimestamp(t string) int {
	m := timestampPrecisionRe.FindStringSubmatch(t)
	if len(m) != 2 {
		return 6
	}
	var p int
	_, _ = fmt.Sscanf(m[1], "%d", &p)
	return p
}

// ObjectTypeName returns the schema-qualified composite type name for a
// user-defined Oracle object type, used by TableCreator when a column's
// OracleType names a known ObjectDataType rather than a builtin.
func ObjectTypeName(schema, typeName string) string {
	return MapIdent(schema) + "." + MapIdent(typeName)
}

// pgReservedWords is a representative subset of PostgreSQL reserved
// keywords; MapIdent quotes an identifier that collides with one of these
// or that contains characters outside [a-z0-9_].
var pgReservedWords = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "asymmetric": true, "both": true,
	"case": true, "cast": true, "check": true, "collate": true, "column": true,
	"constraint": true, "create": true, "current_date": true, "current_role": true,
	"current_time": true, "current_timestamp": true, "current_user": true,
	"default": true, "deferrable": true, "desc": true, "distinct": true,
	"do": true, "else": true, "end": true, "except": true, "false": true,
	"fetch": true, "for": true, "foreign": true, "from": true, "grant": true,
	"group": true, "having": true, "in": true, "initially": true, "intersect": true,
	"into": true, "leading": true, "limit": true, "localtime": true,
	"localtimestamp": true, "new": true, "not": true, "null": true, "off": true,
	"offset": true, "old": true, "on": true, "only": true, "or": true,
	"order": true, "placing": true, "primary": true, "references": true,
	"returning": true, "select": true, "session_user": true, "some": true,
	"symmetric": true, "table": true, "then": true, "to": true, "trailing": true,
	"true": true, "union": true, "unique": true, "user": true, "using": true,
	"variadic": true, "when": true, "where": true, "window": true, "with": true,
	"level": true, "type": true, "view": true, "comment": true, "sequence": true,
}

var validUnquotedIdentRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// MapIdent normalizes an Oracle identifier for use in PostgreSQL: Oracle
// identifiers are upper-cased by default and quoted when mixed-case; the
// mapper lower-cases unconditionally and quotes only when the lower-cased
// identifier is a PostgreSQL reserved word or contains characters that are
// not valid in an unquoted PostgreSQL identifier. MapIdent is idempotent:
// MapIdent(MapIdent(id)) == MapIdent(id) for any input id, because it first strips any enclosing double quotes before
// normalizing.
func MapIdent(id string) string {
	trimmed := strings.TrimSpace(id)
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	lower := strings.ToLower(trimmed)

	if validUnquotedIdentRe.MatchString(lower) && !pgReservedWords[lower] {
		return lower
	}
	escaped := strings.ReplaceAll(lower, `"`, `""`)
	return `"` + escaped + `"`
}

// DefaultMappingResult is the outcome of mapping an Oracle DEFAULT expression.
type DefaultMappingResult struct {
	Expression string
	Unmapped   *Unmapped
}

var numericLiteralRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
var stringLiteralRe = regexp.MustCompile(`^'(?:[^']|'')*'$`)
var nextvalRe = regexp.MustCompile(`(?i)^\s*(?:([A-Za-z0-9_$#"]+)\.)?([A-Za-z0-9_$#"]+)\.NEXTVAL\s*$`)

// MapDefault recognizes a fixed set of Oracle default expressions. When it
// cannot recognize expr, it returns an Unmapped warning and the column
// should be created without a default (the caller records this in
// CreationOutcome.UnmappedDefaults).
func MapDefault(expr, schema string) DefaultMappingResult {
	trimmed := strings.TrimSpace(expr)
	upper := strings.ToUpper(trimmed)

	switch upper {
	case "SYSDATE", "SYSTIMESTAMP":
		return DefaultMappingResult{Expression: "CURRENT_TIMESTAMP"}
	case "USER":
		return DefaultMappingResult{Expression: "CURRENT_USER"}
	}

	if numericLiteralRe.MatchString(trimmed) || stringLiteralRe.MatchString(trimmed) {
		return DefaultMappingResult{Expression: trimmed}
	}

	if m := nextvalRe.FindStringSubmatch(trimmed); len(m) == 3 {
		seqSchema := schema
		if m[1] != "" {
			seqSchema = strings.Trim(m[1], `"`)
		}
		seqName := MapIdent(strings.Trim(m[2], `"`))
		return DefaultMappingResult{Expression: fmt.Sprintf("nextval('%s.%s')", MapIdent(seqSchema), seqName)}
	}

	return DefaultMappingResult{Unmapped: &Unmapped{Input: expr, Reason: "default expression not in the fixed recognizer table"}}
}

// FlattenPackageName applies the uniform flattening convention:
// package-qualified PL/SQL names are always flattened with an underscore,
// never preserved as "pkg.func".
func FlattenPackageName(packageName, objectName string) string {
	if packageName == "" {
		return MapIdent(objectName)
	}
	return MapIdent(packageName) + "_" + MapIdent(objectName)
}
