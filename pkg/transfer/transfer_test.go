// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/model"
)

func TestHasLobColumnDetectsEveryLobVariant(t *testing.T) {
	t.Parallel()

	for _, oracleType := range []string{"CLOB", "NCLOB", "BLOB", "LONG", "LONG RAW", "BFILE", "clob"} {
		table := model.Table{Columns: []model.Column{{OracleType: oracleType}}}
		assert.Truef(t, hasLobColumn(table), "expected %s to be detected as a LOB column", oracleType)
	}
}

func TestHasLobColumnFalseForOrdinaryTypes(t *testing.T) {
	t.Parallel()

	table := model.Table{Columns: []model.Column{{OracleType: "NUMBER"}, {OracleType: "VARCHAR2"}}}
	assert.False(t, hasLobColumn(table))
}

func TestQuoteAllWrapsEveryIdentifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{`"ID"`, `"NAME"`}, quoteAll([]string{"ID", "NAME"}))
}

func TestMaxReturnsLargerValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, max(5, 2))
	assert.Equal(t, 5, max(2, 5))
}

func TestTransferTableSkipsWhenSourceRowCountUnavailable(t *testing.T) {
	t.Parallel()

	e := Engine{}
	table := model.Table{Schema: "HR", Name: "EMPLOYEES"}
	rc := model.RowCount{Status: model.RowCountError}

	out := e.transferTable(nil, nil, config.Config{}, table, rc)
	assert.Equal(t, "SKIPPED", out.Status)
	assert.Contains(t, out.ErrorMessage, "row count unavailable")
}

func TestTransferTableSkipsLobTablesWhenExcluded(t *testing.T) {
	t.Parallel()

	e := Engine{}
	table := model.Table{
		Schema: "HR", Name: "DOCS",
		Columns: []model.Column{{OracleType: "BLOB"}},
	}
	rc := model.RowCount{Status: model.RowCountOK, RowCount: 10}
	cfg := config.Config{ExcludeLobData: true}

	out := e.transferTable(nil, nil, cfg, table, rc)
	assert.Equal(t, "SKIPPED", out.Status)
	assert.Contains(t, out.ErrorMessage, "exclude.lob-data")
}
