// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package arena

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for the conditions the core reports. Callers compare with
// errors.Is; everything else the core returns wraps one of these or is a
// plain wrapped error from a lower layer.
var (
	// ErrDuplicateIdentity is returned when inserting a participant whose
	// identity is already present in the pool. Caller bug, reject the request.
	ErrDuplicateIdentity = errors.New("participant identity already present")

	// ErrNotFound is returned when removing a participant that is not in the
	// pool.
	ErrNotFound = errors.New("participant not found")

	// ErrInvalidConfiguration is returned at construction for rule values the
	// engine cannot run with, e.g. a match size below 2.
	ErrInvalidConfiguration = errors.New("invalid matchmaking configuration")
)

// Errorf wraps a sentinel with formatted detail while keeping errors.Is
// working against the sentinel.
func Errorf(sentinel error, format string, args ...interface{}) error {
	return errors.Wrap(sentinel, fmt.Sprintf(format, args...))
}
