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

package storage

import (
	"errors"
)

var (
	// ErrBlobNotFound is returned by BlobStore.Read for an absent blob.
	ErrBlobNotFound = errors.New("blob not found")

	errEmptyKey      = errors.New("key must not be empty")
	errUnsafeKey     = errors.New("key contains path elements")
	errRootRequired  = errors.New("storage root directory is required")
	errNatsURLNeeded = errors.New("nats_url is required")
	errBucketNeeded  = errors.New("bucket is required")
)
