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

// SynonymExtractor reads ALL_SYNONYMS, including remote synonyms over a
// database link (see Synonym.IsRemote()).
type SynonymExtractor struct{}

func NewSynonymExtractor(arg any) (job.Job, error) { return SynonymExtractor{}, nil }

func (SynonymExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpSynonymExtract, Database: job.DatabaseOracle, FriendlyName: "Extract synonyms"}
}

func (SynonymExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	var synonyms []model.Synonym
	err := query(ctx, conns, `
		SELECT OWNER, SYNONYM_NAME, TABLE_OWNER, TABLE_NAME, NVL(DB_LINK, '')
		FROM ALL_SYNONYMS
		ORDER BY OWNER, SYNONYM_NAME`, nil, func(r rows) error {
		for r.Next() {
			var s model.Synonym
			if err := r.Scan(&s.Owner, &s.SynonymName, &s.TargetOwner, &s.TargetName, &s.DBLink); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_SYNONYMS row", err)
			}
			if filter.all || filter.includes(s.Owner) {
				synonyms = append(synonyms, s)
			}
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	reporter.Report(100, "synonym extraction", "")
	state.Put(st, state.KeySynonyms, synonyms)

	return job.Success(synonyms, map[string]any{"synonymCount": len(synonyms)})
}
