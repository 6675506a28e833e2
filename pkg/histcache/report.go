/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package histcache pkg/histcache/report.go
package histcache

import (
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/histcache/pkg/models"
)

// report accumulates an OperationReport and stamps the duration when the
// outcome is decided.
type report struct {
	op    *models.OperationReport
	start time.Time
}

func newReport() *report {
	return &report{
		op:    &models.OperationReport{OperationID: uuid.NewString()},
		start: time.Now(),
	}
}

func (r *report) finish(result models.OperationResult, msg string, errs ...string) *models.OperationReport {
	r.op.Result = result
	r.op.Message = msg
	r.op.Errors = append(r.op.Errors, errs...)
	r.op.DurationMs = time.Since(r.start).Milliseconds()

	return r.op
}

func (r *report) success(msg string) *models.OperationReport {
	return r.finish(models.ResultSuccess, msg)
}

func (r *report) partial(msg string, errs ...string) *models.OperationReport {
	return r.finish(models.ResultPartialSuccess, msg, errs...)
}

func (r *report) failure(msg string) *models.OperationReport {
	return r.finish(models.ResultFailure, msg, msg)
}

func (r *report) notFound(msg string) *models.OperationReport {
	return r.finish(models.ResultNotFound, msg)
}
