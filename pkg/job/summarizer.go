// SPDX-License-Identifier: Apache-2.0

package job

import (
	"reflect"
	"time"
)

// Summary is the uniform shape every job result is rendered into for API
// consumers, regardless of which OperationKind produced it.
type Summary struct {
	Status             State         `json:"status"`
	JobID              ID            `json:"jobId"`
	OperationKind      OperationKind `json:"operationKind"`
	IsSuccessful       bool          `json:"isSuccessful"`
	CreatedCount       int           `json:"createdCount"`
	SkippedCount       int           `json:"skippedCount"`
	ErrorCount         int           `json:"errorCount"`
	ItemCount          int           `json:"itemCount"`
	Summary            any           `json:"summary,omitempty"`
	ExecutionTimestamp time.Time     `json:"executionTimestamp"`
}

// outcomeCounts is satisfied by model.CreationOutcome[T] for any T, without
// this package importing pkg/model and thereby coupling the job subsystem
// to the data model of any one phase.
type outcomeCounts interface {
	CreatedCount() int
	SkippedCount() int
	ErrorCount() int
}

// Summarize projects a Descriptor into the uniform Summary shape. When the
// job's Payload implements outcomeCounts (i.e. it is a
// model.CreationOutcome[T]), its counts are folded in and ItemCount is their
// sum. When Payload is instead a plain slice (an extractor's result),
// ItemCount is its length. Otherwise all counts default to zero and callers
// fall back to Result.Summary alone.
func Summarize(d Descriptor) Summary {
	s := Summary{
		Status:             d.State,
		JobID:              d.ID,
		OperationKind:      d.Kind,
		ExecutionTimestamp: d.SubmittedAt,
	}
	if d.FinishedAt != nil {
		s.ExecutionTimestamp = *d.FinishedAt
	}

	if d.Result == nil {
		return s
	}

	s.IsSuccessful = d.Result.Successful
	s.Summary = d.Result.Summary

	if oc, ok := d.Result.Payload.(outcomeCounts); ok {
		s.CreatedCount = oc.CreatedCount()
		s.SkippedCount = oc.SkippedCount()
		s.ErrorCount = oc.ErrorCount()
		s.ItemCount = s.CreatedCount + s.SkippedCount + s.ErrorCount
	} else if v := reflect.ValueOf(d.Result.Payload); v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) {
		// Extractors return a plain slice payload rather than a
		// CreationOutcome; its length is the phase's item count.
		s.ItemCount = v.Len()
	}

	return s
}
