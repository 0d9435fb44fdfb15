// SPDX-License-Identifier: Apache-2.0

package compat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oragres/migrator/pkg/compat"
)

func TestDefaultCatalogueValidatesAgainstSchema(t *testing.T) {
	t.Parallel()

	err := compat.ValidateCatalogue(compat.DefaultCatalogue())
	assert.NoError(t, err)
}

func TestDefaultCatalogueCoversAllSupportTiers(t *testing.T) {
	t.Parallel()

	tiers := make(map[compat.SupportTier]bool)
	for _, e := range compat.DefaultCatalogue() {
		tiers[e.Tier] = true
	}

	assert.True(t, tiers[compat.TierFull])
	assert.True(t, tiers[compat.TierPartial])
	assert.True(t, tiers[compat.TierStub])
}

func TestValidateCatalogueRejectsEmptyTier(t *testing.T) {
	t.Parallel()

	entries := []compat.Entry{
		{OracleFunction: "SUBSTR", Tier: ""},
	}

	err := compat.ValidateCatalogue(entries)
	require.Error(t, err)
}

func TestValidateCatalogueRejectsUnknownTier(t *testing.T) {
	t.Parallel()

	entries := []compat.Entry{
		{OracleFunction: "SUBSTR", Tier: compat.SupportTier("BOGUS")},
	}

	err := compat.ValidateCatalogue(entries)
	require.Error(t, err)
}

func TestValidateCatalogueAcceptsEmptyCatalogue(t *testing.T) {
	t.Parallel()

	err := compat.ValidateCatalogue(nil)
	assert.NoError(t, err)
}
