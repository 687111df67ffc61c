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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
		ok    bool
	}{
		{"minimal pair rules", Rules{MatchSize: 2}, true},
		{"squad rules", Rules{MaxRatingDelta: 150, HistoryWindow: 5, MatchSize: 4}, true},
		{"match size too small", Rules{MatchSize: 1}, false},
		{"match size zero", Rules{}, false},
		{"negative rating delta", Rules{MaxRatingDelta: -1, MatchSize: 2}, false},
		{"negative history window", Rules{HistoryWindow: -1, MatchSize: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidConfiguration)
			}
		})
	}
}
