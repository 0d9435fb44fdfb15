// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"sort"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
)

// ConstraintExtractor reads ALL_CONSTRAINTS/ALL_CONS_COLUMNS, resolving
// foreign key referenced tables/columns via the constraint's r_constraint_name.
type ConstraintExtractor struct{}

func NewConstraintExtractor(arg any) (job.Job, error) { return ConstraintExtractor{}, nil }

func (ConstraintExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpConstraintExtract, Database: job.DatabaseOracle, FriendlyName: "Extract constraints"}
}

type rawConstraint struct {
	owner, name              string
	table                    string
	ctype                    string
	searchCondition          string
	status, validated, deferred string
	rOwner, rName            string
}

func (ConstraintExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	raw := map[string]*rawConstraint{}
	var order []string
	byName := map[string]*rawConstraint{} // owner.constraintName -> raw, for FK resolution

	err := query(ctx, conns, `
		SELECT OWNER, CONSTRAINT_NAME, TABLE_NAME, CONSTRAINT_TYPE,
		       NVL(SEARCH_CONDITION_VC, ''), STATUS, VALIDATED, NVL(DEFERRABLE, 'NOT DEFERRABLE'),
		       NVL(R_OWNER, ''), NVL(R_CONSTRAINT_NAME, '')
		FROM ALL_CONSTRAINTS
		WHERE CONSTRAINT_TYPE IN ('P','U','R','C')
		ORDER BY OWNER, TABLE_NAME, CONSTRAINT_NAME`, nil, func(r rows) error {
		for r.Next() {
			c := &rawConstraint{}
			if err := r.Scan(&c.owner, &c.name, &c.table, &c.ctype, &c.searchCondition,
				&c.status, &c.validated, &c.deferred, &c.rOwner, &c.rName); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_CONSTRAINTS row", err)
			}
			if !filter.all && !filter.includes(c.owner) {
				continue
			}
			key := c.owner + "." + c.name
			raw[key] = c
			byName[key] = c
			order = append(order, key)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	cols := map[string][]string{} // owner.constraintName -> ordered column names
	err = query(ctx, conns, `
		SELECT OWNER, CONSTRAINT_NAME, COLUMN_NAME
		FROM ALL_CONS_COLUMNS
		ORDER BY OWNER, CONSTRAINT_NAME, POSITION`, nil, func(r rows) error {
		for r.Next() {
			var owner, name, column string
			if err := r.Scan(&owner, &name, &column); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_CONS_COLUMNS row", err)
			}
			key := owner + "." + name
			cols[key] = append(cols[key], column)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	result := make([]model.Constraint, 0, len(order))
	for _, key := range order {
		c := raw[key]
		mc := model.Constraint{
			Schema:            c.owner,
			TableName:         c.table,
			ConstraintName:    c.name,
			ConstraintType:    model.ConstraintType(c.ctype),
			Columns:           cols[key],
			CheckExpression:   c.searchCondition,
			Deferrable:        c.deferred != "NOT DEFERRABLE",
			Validated:         c.validated == "VALIDATED",
		}
		if c.ctype == "R" {
			if ref, ok := byName[c.rOwner+"."+c.rName]; ok {
				mc.ReferencedSchema = ref.owner
				mc.ReferencedTable = ref.table
				mc.ReferencedColumns = cols[c.rOwner+"."+c.rName]
			}
		}
		result = append(result, mc)
	}

	// Stable P < U < R < C ordering across all tables (every P before any
	// U, and so on), matching the order pkg/create applies them in.
	sort.SliceStable(result, func(i, j int) bool {
		return constraintRank(result[i].ConstraintType) < constraintRank(result[j].ConstraintType)
	})

	reporter.Report(100, "constraint extraction", "")
	state.Put(st, state.KeyConstraints, result)

	return job.Success(result, map[string]any{"constraintCount": len(result)})
}

func constraintRank(t model.ConstraintType) int {
	switch t {
	case model.ConstraintPrimaryKey:
		return 0
	case model.ConstraintUnique:
		return 1
	case model.ConstraintForeignKey:
		return 2
	case model.ConstraintCheck:
		return 3
	default:
		return 4
	}
}
