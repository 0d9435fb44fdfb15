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

// TypeMethodExtractor reads ALL_TYPE_METHODS for methods declared on
// user-defined object types. Method bodies are not exposed by the data
// dictionary, so Body is filled in later by source translation tooling
// outside this system's scope; extraction here only establishes the
// method's identity and signature.
type TypeMethodExtractor struct{}

func NewTypeMethodExtractor(arg any) (job.Job, error) { return TypeMethodExtractor{}, nil }

func (TypeMethodExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpTypeMethodExtract, Database: job.DatabaseOracle, FriendlyName: "Extract type methods"}
}

func (TypeMethodExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	methods := map[string]*model.TypeMethod{}
	var order []string

	err := query(ctx, conns, `
		SELECT OWNER, TYPE_NAME, METHOD_NAME, METHOD_TYPE, INSTANTIABLE
		FROM ALL_TYPE_METHODS
		ORDER BY OWNER, TYPE_NAME, METHOD_NO`, nil, func(r rows) error {
		for r.Next() {
			var owner, typeName, methodName, methodType, instantiable string
			if err := r.Scan(&owner, &typeName, &methodName, &methodType, &instantiable); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_TYPE_METHODS row", err)
			}
			if !filter.all && !filter.includes(owner) {
				continue
			}
			key := owner + "." + typeName + "." + methodName
			methods[key] = &model.TypeMethod{
				Schema: owner, TypeName: typeName, MethodName: methodName,
				MethodType: methodType, Instantiable: instantiable,
			}
			order = append(order, key)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	err = query(ctx, conns, `
		SELECT OWNER, TYPE_NAME, METHOD_NAME, PARAM_NAME, PARAM_TYPE_NAME, PARAM_MODE
		FROM ALL_METHOD_PARAMS
		ORDER BY OWNER, TYPE_NAME, METHOD_NAME, PARAM_NO`, nil, func(r rows) error {
		for r.Next() {
			var owner, typeName, methodName, paramName, paramType, mode string
			if err := r.Scan(&owner, &typeName, &methodName, &paramName, &paramType, &mode); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_METHOD_PARAMS row", err)
			}
			m, ok := methods[owner+"."+typeName+"."+methodName]
			if !ok {
				continue
			}
			m.Signature.Parameters = append(m.Signature.Parameters, model.Parameter{
				Name: paramName, DataType: paramType, Mode: mode,
			})
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	result := make([]model.TypeMethod, 0, len(order))
	for _, key := range order {
		result = append(result, *methods[key])
	}

	reporter.Report(100, "type method extraction", "")
	state.Put(st, state.KeyTypeMethods, result)

	return job.Success(result, map[string]any{"typeMethodCount": len(result)})
}
