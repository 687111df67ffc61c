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

package set

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	require := require.New(t)

	require.True(Contains([]string{"a", "b", "c"}, "b"))
	require.False(Contains([]string{"a", "b", "c"}, "d"))
	require.False(Contains(nil, "a"))
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want bool
	}{
		{"disjoint", []string{"a", "b"}, []string{"c", "d"}, false},
		{"shared", []string{"a", "b"}, []string{"b", "c"}, true},
		{"emptyLeft", nil, []string{"a"}, false},
		{"emptyRight", []string{"a"}, nil, false},
		{"bothEmpty", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Intersects(tt.a, tt.b))
			require.Equal(t, tt.want, Intersects(tt.b, tt.a))
		})
	}
}

func TestIntersection(t *testing.T) {
	require := require.New(t)

	require.Equal([]string{"b", "c"}, Intersection([]string{"c", "b", "a"}, []string{"b", "c", "d"}))
	require.Nil(Intersection([]string{"a"}, []string{"b"}))
}

func TestHasDuplicates(t *testing.T) {
	require := require.New(t)

	require.False(HasDuplicates(nil))
	require.False(HasDuplicates([]string{"a", "b", "c"}))
	require.True(HasDuplicates([]string{"a", "b", "a"}))
}
