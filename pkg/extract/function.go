// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
)

// FunctionExtractor reads ALL_PROCEDURES (one row per standalone or
// package-member unit) joined against ALL_ARGUMENTS for parameters,
// flattening package members the way TypeMapper.FlattenPackageName does on
// the PostgreSQL side.
type FunctionExtractor struct{}

func NewFunctionExtractor(arg any) (job.Job, error) { return FunctionExtractor{}, nil }

func (FunctionExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpFunctionExtract, Database: job.DatabaseOracle, FriendlyName: "Extract functions and procedures"}
}

func (FunctionExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	units := map[string]*model.FunctionOrProcedure{}
	var order []string

	err := query(ctx, conns, `
		SELECT OWNER, NVL(OBJECT_NAME, ''), NVL(PROCEDURE_NAME, OBJECT_NAME)
		FROM ALL_PROCEDURES
		WHERE PROCEDURE_NAME IS NOT NULL OR OBJECT_TYPE IN ('FUNCTION', 'PROCEDURE')
		ORDER BY OWNER, OBJECT_NAME, PROCEDURE_NAME`, nil, func(r rows) error {
		for r.Next() {
			var owner, packageName, procName string
			if err := r.Scan(&owner, &packageName, &procName); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_PROCEDURES row", err)
			}
			if !filter.all && !filter.includes(owner) {
				continue
			}
			pkg := packageName
			if pkg == procName {
				pkg = "" // standalone units list themselves as OBJECT_NAME too
			}
			key := owner + "." + pkg + "." + procName
			units[key] = &model.FunctionOrProcedure{
				Schema:      owner,
				ObjectName:  procName,
				PackageName: pkg,
				ObjectType:  model.ObjectTypeProcedure,
			}
			order = append(order, key)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	err = query(ctx, conns, `
		SELECT OWNER, NVL(PACKAGE_NAME, ''), OBJECT_NAME, ARGUMENT_NAME, DATA_TYPE, IN_OUT, POSITION
		FROM ALL_ARGUMENTS
		ORDER BY OWNER, PACKAGE_NAME, OBJECT_NAME, POSITION`, nil, func(r rows) error {
		for r.Next() {
			var owner, pkg, objectName, argName, dataType, inOut string
			var position int
			if err := r.Scan(&owner, &pkg, &objectName, &argName, &dataType, &inOut, &position); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_ARGUMENTS row", err)
			}
			u, ok := units[owner+"."+pkg+"."+objectName]
			if !ok {
				continue
			}
			if position == 0 && argName == "" {
				// Oracle lists the function's own return type as position 0.
				u.ObjectType = model.ObjectTypeFunction
				u.Signature.ReturnType = dataType
				continue
			}
			u.Signature.Parameters = append(u.Signature.Parameters, model.Parameter{
				Name: argName, DataType: dataType, Mode: inOut,
			})
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	result := make([]model.FunctionOrProcedure, 0, len(order))
	for _, key := range order {
		result = append(result, *units[key])
	}

	reporter.Report(100, "function/procedure extraction", "")
	state.Put(st, state.KeyFunctions, result)

	return job.Success(result, map[string]any{"functionCount": len(result)})
}
