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

// Package set provides operations on participant identity sets.
package set

// Contains reports whether id is present in ids.
func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Intersects reports whether the two identity sets share any member.
func Intersects(a []string, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	hash := make(map[string]bool, len(a))
	for _, v := range a {
		hash[v] = true
	}

	for _, v := range b {
		if hash[v] {
			return true
		}
	}

	return false
}

// Intersection returns the members present in both identity sets, in the
// order they appear in b.
func Intersection(a []string, b []string) (out []string) {
	hash := make(map[string]bool, len(a))
	for _, v := range a {
		hash[v] = true
	}

	for _, v := range b {
		if hash[v] {
			out = append(out, v)
		}
	}

	return out
}

// HasDuplicates reports whether any identity appears more than once.
func HasDuplicates(ids []string) bool {
	hash := make(map[string]bool, len(ids))
	for _, v := range ids {
		if hash[v] {
			return true
		}
		hash[v] = true
	}
	return false
}
