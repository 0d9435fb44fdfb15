// SPDX-License-Identifier: Apache-2.0

// Package model holds the canonical, database-agnostic representations of
// the Oracle objects extracted by pkg/extract and consumed by pkg/create,
// pkg/transfer and pkg/compat.
package model

import "time"

// Schema is an Oracle schema (user) that is in scope for migration.
type Schema struct {
	Name string
}

// Synonym is an Oracle synonym, possibly pointing across a database link.
type Synonym struct {
	Owner       string
	SynonymName string
	TargetOwner string
	TargetName  string
	DBLink      string
}

// IsRemote reports whether the synonym targets an object over a database link.
func (s Synonym) IsRemote() bool {
	return s.DBLink != ""
}

// ObjectVariable is a single attribute of an Oracle object type.
type ObjectVariable struct {
	Name      string
	DataType  string
	Length    *int
	Precision *int
	Scale     *int
}

// ObjectDataType is an Oracle user-defined object type (CREATE TYPE ... AS OBJECT).
type ObjectDataType struct {
	Schema    string
	Name      string
	Variables []ObjectVariable
}

// Sequence is an Oracle sequence.
type Sequence struct {
	Schema     string
	Name       string
	StartValue int64
	MinValue   int64
	MaxValue   int64
	Increment  int64
	Cycle      bool
	CacheSize  int64
	LastNumber int64
}

// Column is a single column of a Table, in stable positional order.
type Column struct {
	Name              string
	OracleType        string
	Length            *int
	Precision         *int
	Scale             *int
	CharUsed          string // "CHAR" | "BYTE", meaningful for VARCHAR2/CHAR
	Nullable          bool
	DefaultExpression *string
	PositionOrdinal   int
}

// ConstraintType mirrors Oracle's ALL_CONSTRAINTS.CONSTRAINT_TYPE values.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "P"
	ConstraintUnique     ConstraintType = "U"
	ConstraintForeignKey ConstraintType = "R"
	ConstraintCheck      ConstraintType = "C"
)

// Constraint is an Oracle table constraint.
type Constraint struct {
	Schema               string
	TableName            string
	ConstraintName       string
	ConstraintType       ConstraintType
	Columns              []string
	ReferencedSchema     string
	ReferencedTable      string
	ReferencedColumns    []string
	CheckExpression      string
	Deferrable           bool
	InitiallyDeferred    bool
	Validated            bool // Oracle ENABLE VALIDATE vs ENABLE NOVALIDATE
}

// Table is an Oracle table. PostgreSQL tables are created without
// constraints. No extractor fills Constraints; the ConstraintExtractor
// publishes constraints separately under state.KeyConstraints.
type Table struct {
	Schema      string
	Name        string
	Tablespace  string
	Columns     []Column
	Constraints []Constraint
}

// ViewColumn describes one projected column of a view.
type ViewColumn struct {
	Name     string
	DataType string
}

// View is an Oracle view.
type View struct {
	Schema            string
	ViewName          string
	Columns           []ViewColumn
	OracleDefinitionSQL string
	TranslatedSQL     string
}

// ObjectType distinguishes a FunctionOrProcedure's Oracle kind.
type ObjectType string

const (
	ObjectTypeFunction  ObjectType = "FUNCTION"
	ObjectTypeProcedure ObjectType = "PROCEDURE"
)

// Parameter is a single argument of a FunctionOrProcedure or TypeMethod.
type Parameter struct {
	Name     string
	DataType string
	Mode     string // IN | OUT | IN OUT
}

// Signature is the call signature of a PL/SQL unit, holding Oracle data
// type names; they are mapped when a stub is generated.
type Signature struct {
	Parameters []Parameter
	ReturnType string // empty for PROCEDURE
}

// FunctionOrProcedure is a standalone or package-member Oracle PL/SQL unit.
// Package-qualified names are flattened as "package_objectname" on the
// PostgreSQL side (see TypeMapper.FlattenPackageName).
type FunctionOrProcedure struct {
	Schema      string
	ObjectName  string
	PackageName string
	ObjectType  ObjectType
	Signature   Signature
}

// FlattenedName returns the PostgreSQL-side function name.
func (f FunctionOrProcedure) FlattenedName() string {
	if f.PackageName == "" {
		return f.ObjectName
	}
	return f.PackageName + "_" + f.ObjectName
}

// TypeMethod is a method declared on an Oracle object type.
type TypeMethod struct {
	Schema        string
	TypeName      string
	MethodName    string
	MethodType    string // MAP, ORDER, MEMBER, STATIC, CONSTRUCTOR
	Instantiable  string // YES | NO
	Signature     Signature
	Body          string
}

// TriggerType mirrors Oracle's ALL_TRIGGERS.TRIGGER_TYPE timing component.
type TriggerType string

const (
	TriggerBefore  TriggerType = "BEFORE"
	TriggerAfter   TriggerType = "AFTER"
	TriggerInstead TriggerType = "INSTEAD OF"
)

// TriggerLevel mirrors Oracle's row/statement distinction.
type TriggerLevel string

const (
	TriggerRow       TriggerLevel = "ROW"
	TriggerStatement TriggerLevel = "STATEMENT"
)

// Trigger is an Oracle trigger.
type Trigger struct {
	Schema       string
	TriggerName  string
	TableName    string
	TriggerType  TriggerType
	TriggerLevel TriggerLevel
	Event        string // INSERT | UPDATE | DELETE, possibly combined with " OR "
	Body         string
}

// RowCountStatus distinguishes a successfully counted table from one whose
// COUNT(*) failed (timed out, lacked privileges, etc).
type RowCountStatus string

const (
	RowCountOK    RowCountStatus = "OK"
	RowCountError RowCountStatus = "ERROR"
)

// RowCount is the source row count for a single table, gathered before
// DataTransfer so the engine can classify transferred/partial/skipped.
type RowCount struct {
	Schema    string
	TableName string
	RowCount  int64
	Status    RowCountStatus
}

// SkippedItem is an item a Creator declined to create, with the reason.
type SkippedItem[T any] struct {
	Item   T
	Reason string
}

// ErrorItem is an item a Creator failed to create.
type ErrorItem[T any] struct {
	Item          T
	ErrorMessage  string
	SQLStatement  string
}

// CreationOutcome is the uniform result shape produced by every Creator.
type CreationOutcome[T any] struct {
	Created             []T
	Skipped             []SkippedItem[T]
	Errors              []ErrorItem[T]
	UnmappedDefaults    []UnmappedDefault
	ExecutionTimestamp  time.Time
}

// UnmappedDefault records a column whose Oracle DEFAULT expression the
// TypeMapper could not translate; the column is created without a default.
type UnmappedDefault struct {
	Table         string
	Column        string
	OracleDefault string
}

// IsSuccessful reports whether no items failed during creation.
func (o CreationOutcome[T]) IsSuccessful() bool {
	return len(o.Errors) == 0
}

// NewCreationOutcome returns an empty outcome stamped with the given time.
func NewCreationOutcome[T any](now time.Time) *CreationOutcome[T] {
	return &CreationOutcome[T]{ExecutionTimestamp: now}
}

// AddCreated records a successfully created item.
func (o *CreationOutcome[T]) AddCreated(item T) {
	o.Created = append(o.Created, item)
}

// AddSkipped records a benignly-skipped item (e.g. "already exists").
func (o *CreationOutcome[T]) AddSkipped(item T, reason string) {
	o.Skipped = append(o.Skipped, SkippedItem[T]{Item: item, Reason: reason})
}

// AddError records a failed item; sqlStatement must be non-empty so a
// caller can always show what DDL/DML actually failed.
func (o *CreationOutcome[T]) AddError(item T, errorMessage, sqlStatement string) {
	o.Errors = append(o.Errors, ErrorItem[T]{Item: item, ErrorMessage: errorMessage, SQLStatement: sqlStatement})
}

// CreatedCount, SkippedCount and ErrorCount back the JobResultSummarizer shape.
func (o CreationOutcome[T]) CreatedCount() int { return len(o.Created) }
func (o CreationOutcome[T]) SkippedCount() int { return len(o.Skipped) }
func (o CreationOutcome[T]) ErrorCount() int   { return len(o.Errors) }
