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

// ObjectTypeExtractor reads ALL_TYPES/ALL_TYPE_ATTRS for user-defined
// object types (CREATE TYPE ... AS OBJECT), excluding collection types
// which this system does not migrate.
type ObjectTypeExtractor struct{}

func NewObjectTypeExtractor(arg any) (job.Job, error) { return ObjectTypeExtractor{}, nil }

func (ObjectTypeExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpObjectTypeExtract, Database: job.DatabaseOracle, FriendlyName: "Extract object types"}
}

func (ObjectTypeExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	types := map[string]*model.ObjectDataType{}
	var order []string

	err := query(ctx, conns, `
		SELECT OWNER, TYPE_NAME FROM ALL_TYPES
		WHERE TYPECODE = 'OBJECT'
		ORDER BY OWNER, TYPE_NAME`, nil, func(r rows) error {
		for r.Next() {
			var owner, name string
			if err := r.Scan(&owner, &name); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_TYPES row", err)
			}
			if !filter.all && !filter.includes(owner) {
				continue
			}
			key := owner + "." + name
			types[key] = &model.ObjectDataType{Schema: owner, Name: name}
			order = append(order, key)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	err = query(ctx, conns, `
		SELECT OWNER, TYPE_NAME, ATTR_NAME, ATTR_TYPE_NAME, LENGTH, PRECISION, SCALE
		FROM ALL_TYPE_ATTRS
		ORDER BY OWNER, TYPE_NAME, ATTR_NO`, nil, func(r rows) error {
		for r.Next() {
			var owner, name, attrName, attrType string
			var length, precision, scale *int
			if err := r.Scan(&owner, &name, &attrName, &attrType, &length, &precision, &scale); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_TYPE_ATTRS row", err)
			}
			t, ok := types[owner+"."+name]
			if !ok {
				continue
			}
			t.Variables = append(t.Variables, model.ObjectVariable{
				Name: attrName, DataType: attrType, Length: length, Precision: precision, Scale: scale,
			})
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	result := make([]model.ObjectDataType, 0, len(order))
	for _, key := range order {
		result = append(result, *types[key])
	}

	reporter.Report(100, "object type extraction", "")
	state.Put(st, state.KeyObjectTypes, result)

	return job.Success(result, map[string]any{"objectTypeCount": len(result)})
}
