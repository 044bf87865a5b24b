// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package accessstorage

import (
	"fmt"
)

// AccessKind is the strength of an access. Modify subsumes Read.
type AccessKind int

const (
	// Read is a read-only access
	Read AccessKind = iota
	// Modify is an access that may write
	Modify
)

func (k AccessKind) String() string {
	if k == Modify {
		return "modify"
	}
	return "read"
}

// MayConflict returns true when two accesses of kinds a and b conflict if they overlap, i.e. when one of them is a
// Modify.
func MayConflict(a AccessKind, b AccessKind) bool {
	return a == Modify || b == Modify
}

// updateAccessKind sets *k to the join of *k and other and returns true if *k changed.
func updateAccessKind(k *AccessKind, other AccessKind) bool {
	if *k == Read && other == Modify {
		*k = Modify
		return true
	}
	return false
}

// StorageAccessInfo is the unit stored per location in a summary: the storage, the strongest kind of access to it
// and whether all the accesses have no nested conflict.
type StorageAccessInfo struct {
	Storage AccessStorage
	Kind    AccessKind

	// NoNestedConflict is true when none of the accesses to the storage may overlap with a conflicting access
	// to the same storage.
	NoNestedConflict bool
}

// NewStorageAccessInfo returns the info for a single access.
func NewStorageAccessInfo(storage AccessStorage, kind AccessKind, noNestedConflict bool) StorageAccessInfo {
	return StorageAccessInfo{Storage: storage, Kind: kind, NoNestedConflict: noNestedConflict}
}

// MergeFrom merges the access kind and the nested conflict flag of other into info. Both infos must be about the
// same storage. Returns true if info changed.
func (info *StorageAccessInfo) MergeFrom(other StorageAccessInfo) bool {
	if info.Storage != other.Storage {
		panic(fmt.Sprintf("cannot merge access info of %s into %s", other.Storage, info.Storage))
	}
	changed := updateAccessKind(&info.Kind, other.Kind)
	if info.NoNestedConflict && !other.NoNestedConflict {
		info.NoNestedConflict = false
		changed = true
	}
	return changed
}

func (info StorageAccessInfo) String() string {
	s := "[" + info.Kind.String() + "] "
	if info.NoNestedConflict {
		s += "[no_nested_conflict] "
	}
	return s + info.Storage.String()
}
