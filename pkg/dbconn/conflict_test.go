// SPDX-License-Identifier: Apache-2.0

package dbconn_test

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/oragres/migrator/pkg/dbconn"
)

func TestClassifyConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantReason string
		wantIsConflict bool
	}{
		{
			name:           "duplicate table",
			err:            &pq.Error{Code: "42P07"},
			wantReason:     "table already exists",
			wantIsConflict: true,
		},
		{
			name:           "duplicate object",
			err:            &pq.Error{Code: "42710"},
			wantReason:     "object already exists",
			wantIsConflict: true,
		},
		{
			name:           "unrelated postgres error",
			err:            &pq.Error{Code: "42601"},
			wantIsConflict: false,
		},
		{
			name:           "non-pq error",
			err:            errors.New("boom"),
			wantIsConflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, isConflict := dbconn.ClassifyConflict(tt.err)
			assert.Equal(t, tt.wantIsConflict, isConflict)
			if tt.wantIsConflict {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}
