// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"strings"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
)

// TriggerExtractor reads ALL_TRIGGERS, splitting Oracle's combined
// TRIGGER_TYPE column ("BEFORE EACH ROW") into TriggerType/TriggerLevel.
type TriggerExtractor struct{}

func NewTriggerExtractor(arg any) (job.Job, error) { return TriggerExtractor{}, nil }

func (TriggerExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpTriggerExtract, Database: job.DatabaseOracle, FriendlyName: "Extract triggers"}
}

func (TriggerExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	var triggers []model.Trigger
	err := query(ctx, conns, `
		SELECT OWNER, TRIGGER_NAME, TABLE_NAME, TRIGGER_TYPE, TRIGGERING_EVENT, TRIGGER_BODY
		FROM ALL_TRIGGERS
		WHERE BASE_OBJECT_TYPE = 'TABLE'
		ORDER BY OWNER, TABLE_NAME, TRIGGER_NAME`, nil, func(r rows) error {
		for r.Next() {
			var owner, name, table, triggerType, event, body string
			if err := r.Scan(&owner, &name, &table, &triggerType, &event, &body); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_TRIGGERS row", err)
			}
			if !filter.all && !filter.includes(owner) {
				continue
			}
			t := model.Trigger{
				Schema: owner, TriggerName: name, TableName: table, Event: event, Body: body,
			}
			t.TriggerType, t.TriggerLevel = splitTriggerType(triggerType)
			triggers = append(triggers, t)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	reporter.Report(100, "trigger extraction", "")
	state.Put(st, state.KeyTriggers, triggers)

	return job.Success(triggers, map[string]any{"triggerCount": len(triggers)})
}

func splitTriggerType(oracleType string) (model.TriggerType, model.TriggerLevel) {
	level := model.TriggerStatement
	if strings.Contains(oracleType, "EACH ROW") {
		level = model.TriggerRow
	}

	switch {
	case strings.HasPrefix(oracleType, "BEFORE"):
		return model.TriggerBefore, level
	case strings.HasPrefix(oracleType, "INSTEAD OF"):
		return model.TriggerInstead, level
	default:
		return model.TriggerAfter, level
	}
}
