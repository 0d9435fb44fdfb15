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

// SequenceExtractor reads ALL_SEQUENCES.
type SequenceExtractor struct{}

func NewSequenceExtractor(arg any) (job.Job, error) { return SequenceExtractor{}, nil }

func (SequenceExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpSequenceExtract, Database: job.DatabaseOracle, FriendlyName: "Extract sequences"}
}

func (SequenceExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	var sequences []model.Sequence
	err := query(ctx, conns, `
		SELECT SEQUENCE_OWNER, SEQUENCE_NAME, MIN_VALUE, MAX_VALUE, INCREMENT_BY,
		       CYCLE_FLAG, CACHE_SIZE, LAST_NUMBER
		FROM ALL_SEQUENCES
		ORDER BY SEQUENCE_OWNER, SEQUENCE_NAME`, nil, func(r rows) error {
		for r.Next() {
			var s model.Sequence
			var cycleFlag string
			if err := r.Scan(&s.Schema, &s.Name, &s.MinValue, &s.MaxValue, &s.Increment,
				&cycleFlag, &s.CacheSize, &s.LastNumber); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_SEQUENCES row", err)
			}
			s.Cycle = cycleFlag == "Y"
			s.StartValue = s.LastNumber
			if filter.all || filter.includes(s.Schema) {
				sequences = append(sequences, s)
			}
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	reporter.Report(100, "sequence extraction", "")
	state.Put(st, state.KeySequences, sequences)

	return job.Success(sequences, map[string]any{"sequenceCount": len(sequences)})
}
