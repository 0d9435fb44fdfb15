// SPDX-License-Identifier: Apache-2.0

package dbconn

import (
	"errors"

	"github.com/lib/pq"
)

// conflictCodes are the SQLSTATEs treated as a "known conflict" — benign,
// produces a skip rather than an error.
var conflictCodes = map[pq.ErrorCode]string{
	"42P06": "schema already exists",
	"42P07": "table already exists",
	"42710": "object already exists",
	"42723": "function already exists",
	"42P16": "invalid table definition (duplicate constraint)",
	"23505": "unique violation (already exists)",
}

// ClassifyConflict reports whether err is a known "already exists"
// conflict and, if so, the reason string Creators attach to the skipped
// item.
func ClassifyConflict(err error) (reason string, isConflict bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	reason, ok := conflictCodes[pqErr.Code]
	return reason, ok
}
