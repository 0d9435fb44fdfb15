// SPDX-License-Identifier: Apache-2.0

package migerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oragres/migrator/pkg/migerr"
)

func TestInfoErrorIncludesCauseWhenPresent(t *testing.T) {
	t.Parallel()

	cause := errors.New("ORA-00942: table or view does not exist")
	info := migerr.Wrap(migerr.KindSQL, "extracting ALL_TABLES", cause)

	assert.Contains(t, info.Error(), "SQL_ERROR")
	assert.Contains(t, info.Error(), "extracting ALL_TABLES")
	assert.Contains(t, info.Error(), "ORA-00942")
}

func TestInfoErrorOmitsCauseWhenAbsent(t *testing.T) {
	t.Parallel()

	info := migerr.New(migerr.KindConfig, "oracle.url is required")
	assert.Equal(t, "CONFIG_ERROR: oracle.url is required", info.Error())
}

func TestInfoUnwrapsToCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	info := migerr.Wrap(migerr.KindConnection, "dialing postgres", cause)

	assert.ErrorIs(t, info, cause)
}

func TestUnknownOperationErrorUnwrapsViaErrorsAs(t *testing.T) {
	t.Parallel()

	original := migerr.UnknownOperationError{Database: "oracle", Kind: "BOGUS_PHASE"}
	wrapped := errors.Join(errors.New("dispatch failed"), original)

	var target migerr.UnknownOperationError
	require := assert.New(t)
	require.True(errors.As(wrapped, &target))
	require.Equal("oracle", target.Database)
	require.Equal("BOGUS_PHASE", target.Kind)
}

func TestTypedErrorsProduceNonEmptyMessages(t *testing.T) {
	t.Parallel()

	cases := []error{
		migerr.ConfigError{Key: "postgre.url", Reason: "missing"},
		migerr.ConnectionError{Database: "oracle", Cause: errors.New("timeout")},
		migerr.JobNotFoundError{JobID: "abc-123"},
		migerr.JobNotReadyError{JobID: "abc-123"},
		migerr.UnknownOperationError{Database: "oracle", Kind: "BOGUS"},
		migerr.PhaseFailedError{Phase: "TABLE_CREATE", Reason: "abort policy triggered"},
	}

	for _, err := range cases {
		assert.NotEmpty(t, err.Error())
	}
}

func TestConnectionErrorUnwrapsToCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("i/o timeout")
	err := migerr.ConnectionError{Database: "postgres", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "postgres")
}
