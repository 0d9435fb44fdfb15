// SPDX-License-Identifier: Apache-2.0

package typemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oragres/migrator/pkg/typemap"
)

func intp(i int) *int { return &i }

func TestMapColumnType_Number(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   typemap.ColumnTypeInput
		want string
	}{
		{
			name: "NUMBER(10,0) maps to bigint",
			in:   typemap.ColumnTypeInput{OracleType: "NUMBER", Precision: intp(10), Scale: intp(0)},
			want: "bigint",
		},
		{
			name: "NUMBER(5,2) maps to numeric(5,2)",
			in:   typemap.ColumnTypeInput{OracleType: "NUMBER", Precision: intp(5), Scale: intp(2)},
			want: "numeric(5,2)",
		},
		{
			name: "NUMBER with no precision maps to numeric",
			in:   typemap.ColumnTypeInput{OracleType: "NUMBER"},
			want: "numeric",
		},
		{
			name: "NUMBER(4,0) maps to smallint",
			in:   typemap.ColumnTypeInput{OracleType: "NUMBER", Precision: intp(4), Scale: intp(0)},
			want: "smallint",
		},
		{
			name: "NUMBER(9,0) maps to integer",
			in:   typemap.ColumnTypeInput{OracleType: "NUMBER", Precision: intp(9), Scale: intp(0)},
			want: "integer",
		},
		{
			name: "NUMBER(30,0) maps to numeric(30)",
			in:   typemap.ColumnTypeInput{OracleType: "NUMBER", Precision: intp(30), Scale: intp(0)},
			want: "numeric(30)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unmapped := typemap.MapColumnType(tt.in)
			assert.Nil(t, unmapped)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapColumnType_LobsAndDates(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"CLOB":      "text",
		"NCLOB":     "text",
		"LONG":      "text",
		"BLOB":      "bytea",
		"RAW":       "bytea",
		"LONG RAW":  "bytea",
		"BFILE":     "bytea",
		"DATE":      "timestamp(0)",
		"XMLTYPE":   "xml",
		"ROWID":     "text",
		"UROWID":    "text",
	}

	for oracleType, want := range cases {
		t.Run(oracleType, func(t *testing.T) {
			got, unmapped := typemap.MapColumnType(typemap.ColumnTypeInput{OracleType: oracleType})
			assert.Nil(t, unmapped)
			assert.Equal(t, want, got)
		})
	}
}

func TestMapColumnType_TimestampWithTimeZone(t *testing.T) {
	t.Parallel()

	got, unmapped := typemap.MapColumnType(typemap.ColumnTypeInput{OracleType: "TIMESTAMP(6) WITH TIME ZONE"})
	assert.Nil(t, unmapped)
	assert.Equal(t, "timestamptz", got)
}

func TestMapColumnType_UnknownFallsBackToTextAsUnmapped(t *testing.T) {
	t.Parallel()

	got, unmapped := typemap.MapColumnType(typemap.ColumnTypeInput{OracleType: "SOME_WEIRD_ORACLE_TYPE"})
	assert.Equal(t, "text", got)
	if assert.NotNil(t, unmapped) {
		assert.Equal(t, "SOME_WEIRD_ORACLE_TYPE", unmapped.Input)
	}
}

func TestMapDefault_Sysdate(t *testing.T) {
	t.Parallel()

	result := typemap.MapDefault("SYSDATE", "hr")
	assert.Nil(t, result.Unmapped)
	assert.Equal(t, "CURRENT_TIMESTAMP", result.Expression)
}

func TestMapDefault_Nextval(t *testing.T) {
	t.Parallel()

	result := typemap.MapDefault("HR.EMP_SEQ.NEXTVAL", "hr")
	assert.Nil(t, result.Unmapped)
	assert.Equal(t, "nextval('hr.emp_seq')", result.Expression)

	result = typemap.MapDefault("EMP_SEQ.NEXTVAL", "hr")
	assert.Nil(t, result.Unmapped)
	assert.Equal(t, "nextval('hr.emp_seq')", result.Expression)
}

func TestMapDefault_Unmapped(t *testing.T) {
	t.Parallel()

	result := typemap.MapDefault("PKG.F()", "hr")
	assert.Empty(t, result.Expression)
	if assert.NotNil(t, result.Unmapped) {
		assert.Equal(t, "PKG.F()", result.Unmapped.Input)
	}
}

func TestMapIdent_LowercasesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	ids := []string{"EMPLOYEES", "MixedCase", `"Already Quoted"`, "ORDER", "simple_name"}
	for _, id := range ids {
		once := typemap.MapIdent(id)
		twice := typemap.MapIdent(once)
		assert.Equal(t, once, twice, "MapIdent should be idempotent for %q", id)
	}
}

func TestMapIdent_QuotesReservedWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"order"`, typemap.MapIdent("ORDER"))
	assert.Equal(t, "employees", typemap.MapIdent("EMPLOYEES"))
}

func TestFlattenPackageName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pkg_func", typemap.FlattenPackageName("PKG", "FUNC"))
	assert.Equal(t, "standalone_func", typemap.FlattenPackageName("", "STANDALONE_FUNC"))
}
