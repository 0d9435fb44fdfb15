// SPDX-License-Identifier: Apache-2.0

package create

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oragres/migrator/internal/testutils"
	"github.com/oragres/migrator/pkg/model"
)

func TestConstraintAddDDL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		constraint model.Constraint
		wantDDL    string
		// guardsAgainst names the Postgres violation class this constraint
		// shape is meant to surface once rows are transferred, wiring the
		// shared error-code constants into the create package's own tests.
		guardsAgainst string
	}{
		{
			name: "primary key",
			constraint: model.Constraint{
				Schema: "hr", TableName: "employees", ConstraintName: "pk_employees",
				ConstraintType: model.ConstraintPrimaryKey, Columns: []string{"id"},
			},
			wantDDL:       `ALTER TABLE hr.employees ADD CONSTRAINT pk_employees PRIMARY KEY (id)`,
			guardsAgainst: testutils.UniqueViolationErrorCode,
		},
		{
			name: "unique",
			constraint: model.Constraint{
				Schema: "hr", TableName: "employees", ConstraintName: "uq_email",
				ConstraintType: model.ConstraintUnique, Columns: []string{"email"},
			},
			wantDDL:       `ALTER TABLE hr.employees ADD CONSTRAINT uq_email UNIQUE (email)`,
			guardsAgainst: testutils.UniqueViolationErrorCode,
		},
		{
			name: "foreign key is added not valid",
			constraint: model.Constraint{
				Schema: "hr", TableName: "employees", ConstraintName: "fk_dept",
				ConstraintType: model.ConstraintForeignKey, Columns: []string{"dept_id"},
				ReferencedSchema: "hr", ReferencedTable: "departments", ReferencedColumns: []string{"id"},
			},
			wantDDL:       `ALTER TABLE hr.employees ADD CONSTRAINT fk_dept FOREIGN KEY (dept_id) REFERENCES hr.departments (id) NOT VALID`,
			guardsAgainst: testutils.FKViolationErrorCode,
		},
		{
			name: "check is added not valid",
			constraint: model.Constraint{
				Schema: "hr", TableName: "employees", ConstraintName: "chk_salary",
				ConstraintType: model.ConstraintCheck, CheckExpression: `"SALARY" > 0`,
			},
			wantDDL:       `ALTER TABLE hr.employees ADD CONSTRAINT chk_salary CHECK ("SALARY" > 0) NOT VALID`,
			guardsAgainst: testutils.CheckViolationErrorCode,
		},
		{
			name: "deferrable foreign key",
			constraint: model.Constraint{
				Schema: "hr", TableName: "employees", ConstraintName: "fk_dept",
				ConstraintType: model.ConstraintForeignKey, Columns: []string{"dept_id"},
				ReferencedSchema: "hr", ReferencedTable: "departments", ReferencedColumns: []string{"id"},
				Deferrable: true, InitiallyDeferred: true,
			},
			wantDDL:       `ALTER TABLE hr.employees ADD CONSTRAINT fk_dept FOREIGN KEY (dept_id) REFERENCES hr.departments (id) NOT VALID DEFERRABLE INITIALLY DEFERRED`,
			guardsAgainst: testutils.FKViolationErrorCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.guardsAgainst)
			assert.Equal(t, tt.wantDDL, constraintAddDDL(tt.constraint))
		})
	}
}

func TestNeedsValidateStep(t *testing.T) {
	t.Parallel()

	assert.False(t, needsValidateStep(model.Constraint{ConstraintType: model.ConstraintPrimaryKey}))
	assert.False(t, needsValidateStep(model.Constraint{ConstraintType: model.ConstraintUnique}))
	assert.True(t, needsValidateStep(model.Constraint{ConstraintType: model.ConstraintForeignKey}))
	assert.True(t, needsValidateStep(model.Constraint{ConstraintType: model.ConstraintCheck}))
}
