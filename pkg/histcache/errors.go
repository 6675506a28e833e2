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

package histcache

import (
	"errors"
)

var (
	errNotInitialized       = errors.New("cache manager not initialized; call Initialize first")
	errEntityIDRequired     = errors.New("entity_id is required")
	errInvalidRange         = errors.New("time range start must not be after end")
	errStageStartRequired   = errors.New("stage scale requires a stage start time")
	errUnknownScale         = errors.New("unknown time scale")
	errMaxAgeInvalid        = errors.New("max_age_months must be positive")
	errMaxPointsInvalid     = errors.New("max_points_per_entity must be positive")
	errMaxSizeInvalid       = errors.New("max_total_size_bytes must be positive")
	errBatchSizeInvalid     = errors.New("batch_size must be positive")
	errFormatVersionMissing = errors.New("format_version is required")
)
