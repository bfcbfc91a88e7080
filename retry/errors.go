/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package retry

import "errors"

// ErrSyncFailure is reported when the retry budget is exhausted across
// every host and every cycle without producing a usable response.
var ErrSyncFailure = errors.New("retry: failed to sync time")

// ErrCancelled marks a task that was stopped cooperatively; it is never
// surfaced to a listener, only returned to a caller that explicitly waits
// on the task.
var ErrCancelled = errors.New("retry: cancelled")
