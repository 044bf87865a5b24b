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
	"io"
	"strings"

	"github.com/yosr-maker/swift/internal/funcutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DefaultMaxStorageAccesses is the number of distinct storages a summary can hold before it is replaced by the
// worst-case summary. Merging summaries is linear in their size and is repeated for every call edge of every
// iteration in recursive components.
const DefaultMaxStorageAccesses = 200

// AccessStorageResult is the summary of the accesses of a function: a set of accesses keyed by storage and one
// optional access kind for all the accesses whose storage is unidentified.
//
// The worst-case result has no storage access and an unidentified Modify access: the function may read or write
// anything. Merging anything into a worst-case result leaves it unchanged.
type AccessStorageResult struct {
	storageAccessSet   map[AccessStorage]StorageAccessInfo
	unidentifiedAccess funcutil.Optional[AccessKind]
	maxAccesses        int
}

// NewAccessStorageResult returns an empty result. If maxAccesses is not positive, DefaultMaxStorageAccesses is used.
func NewAccessStorageResult(maxAccesses int) *AccessStorageResult {
	if maxAccesses <= 0 {
		maxAccesses = DefaultMaxStorageAccesses
	}
	return &AccessStorageResult{
		storageAccessSet:   map[AccessStorage]StorageAccessInfo{},
		unidentifiedAccess: funcutil.None[AccessKind](),
		maxAccesses:        maxAccesses,
	}
}

// IsEmpty returns true when the result records no access at all.
func (r *AccessStorageResult) IsEmpty() bool {
	return len(r.storageAccessSet) == 0 && r.unidentifiedAccess.IsNone()
}

// Len returns the number of storages in the result, not counting the unidentified accesses.
func (r *AccessStorageResult) Len() int {
	return len(r.storageAccessSet)
}

// HasUnidentifiedAccess returns true when some access of the function could not be attributed to a storage.
func (r *AccessStorageResult) HasUnidentifiedAccess() bool {
	return r.unidentifiedAccess.IsSome()
}

// UnidentifiedAccess returns the kind of the unidentified accesses, if any.
func (r *AccessStorageResult) UnidentifiedAccess() funcutil.Optional[AccessKind] {
	return r.unidentifiedAccess
}

// HasWorstEffects returns true when the result is the worst-case result.
func (r *AccessStorageResult) HasWorstEffects() bool {
	return len(r.storageAccessSet) == 0 && r.unidentifiedAccess.ValueOr(Read) == Modify
}

// SetWorstEffects sets the result to the worst-case result.
func (r *AccessStorageResult) SetWorstEffects() {
	r.storageAccessSet = map[AccessStorage]StorageAccessInfo{}
	r.unidentifiedAccess = funcutil.Some(Modify)
}

// Clear resets the result to the empty result.
func (r *AccessStorageResult) Clear() {
	r.storageAccessSet = map[AccessStorage]StorageAccessInfo{}
	r.unidentifiedAccess = funcutil.None[AccessKind]()
}

// Lookup returns the access info of storage, if the result has one.
func (r *AccessStorageResult) Lookup(storage AccessStorage) (StorageAccessInfo, bool) {
	info, ok := r.storageAccessSet[storage]
	return info, ok
}

// Accesses returns the storage accesses of the result, ordered by their textual representation.
func (r *AccessStorageResult) Accesses() []StorageAccessInfo {
	infos := maps.Values(r.storageAccessSet)
	slices.SortFunc(infos, func(a, b StorageAccessInfo) bool { return a.String() < b.String() })
	return infos
}

// UpdateUnidentifiedAccess joins kind into the unidentified access slot. Returns true if the slot changed.
func (r *AccessStorageResult) UpdateUnidentifiedAccess(kind AccessKind) bool {
	if r.unidentifiedAccess.IsNone() {
		r.unidentifiedAccess = funcutil.Some(kind)
		return true
	}
	current := r.unidentifiedAccess.Value()
	if updateAccessKind(&current, kind) {
		r.unidentifiedAccess = funcutil.Some(current)
		return true
	}
	return false
}

// AddAccess records one access of kind to storage. Unidentified accesses are folded into the unidentified access
// slot, the other ones are inserted or merged into the existing entry of the storage. Returns true if the result
// changed.
func (r *AccessStorageResult) AddAccess(info StorageAccessInfo) bool {
	if info.Storage.Kind() == Unidentified {
		return r.UpdateUnidentifiedAccess(info.Kind)
	}
	existing, ok := r.storageAccessSet[info.Storage]
	if !ok {
		r.storageAccessSet[info.Storage] = info
		return true
	}
	changed := existing.MergeFrom(info)
	r.storageAccessSet[info.Storage] = existing
	return changed
}

// MergeFrom merges other into r. Both results must be relative to the same function, or to callees of the same call
// site, so that their argument indices coincide. Returns true if r changed.
func (r *AccessStorageResult) MergeFrom(other *AccessStorageResult) bool {
	return r.MergeAccesses(other, funcutil.Some[AccessStorage])
}

// MergeAccesses merges other into r, mapping each storage of other with transform first. Storages that are mapped to
// none are dropped. Returns true if r changed.
//
// If r holds more than its maximum number of accesses, r is set to the worst-case result instead.
// Merging into a worst-case result does nothing.
// r and other may be the same result, for recursive functions.
func (r *AccessStorageResult) MergeAccesses(other *AccessStorageResult,
	transform func(AccessStorage) funcutil.Optional[AccessStorage]) bool {
	if len(r.storageAccessSet) > r.maxAccesses {
		r.SetWorstEffects()
		return true
	}
	if r.HasWorstEffects() {
		return false
	}

	// Inserting in the map while ranging over it may or may not visit the new entries, so the accesses of other are
	// copied first.
	otherAccesses := maps.Values(other.storageAccessSet)
	otherUnidentified := other.unidentifiedAccess

	changed := false
	for _, otherInfo := range otherAccesses {
		mapped := transform(otherInfo.Storage)
		if mapped.IsNone() {
			continue
		}
		info := otherInfo
		info.Storage = mapped.Value()
		changed = r.AddAccess(info) || changed
	}
	if otherUnidentified.IsSome() {
		changed = r.UpdateUnidentifiedAccess(otherUnidentified.Value()) || changed
	}
	if len(r.storageAccessSet) > r.maxAccesses {
		r.SetWorstEffects()
		changed = true
	}
	return changed
}

// HasNoNestedConflict returns the nested conflict flag of the access to storage.
// The storage must be uniquely identified, the result must not have unidentified accesses and must contain an access
// to storage; otherwise HasNoNestedConflict panics.
func (r *AccessStorageResult) HasNoNestedConflict(storage AccessStorage) bool {
	if !IsUniquelyIdentified(storage) {
		panic(fmt.Sprintf("nested conflict query on storage that is not uniquely identified: %s", storage))
	}
	if r.HasUnidentifiedAccess() {
		panic("nested conflict query on a result with unidentified accesses")
	}
	info, ok := r.storageAccessSet[storage]
	if !ok {
		panic(fmt.Sprintf("nested conflict lookup failed for %s", storage))
	}
	return info.NoNestedConflict
}

// MayConflictWith returns true if an access of kind to storage may conflict with some access in r.
func (r *AccessStorageResult) MayConflictWith(kind AccessKind, storage AccessStorage) bool {
	if r.unidentifiedAccess.IsSome() && MayConflict(kind, r.unidentifiedAccess.Value()) {
		return true
	}
	for _, info := range r.storageAccessSet {
		if !MayConflict(kind, info.Kind) {
			continue
		}
		if !IsDistinctFrom(storage, info.Storage) {
			return true
		}
	}
	return false
}

// Print writes one line per storage access, and a last line for the unidentified accesses.
func (r *AccessStorageResult) Print(w io.Writer) {
	for _, info := range r.Accesses() {
		fmt.Fprintf(w, "  %s\n", info)
	}
	if r.unidentifiedAccess.IsSome() {
		fmt.Fprintf(w, "  unidentified accesses: %s\n", r.unidentifiedAccess.Value())
	}
}

func (r *AccessStorageResult) String() string {
	var b strings.Builder
	r.Print(&b)
	return b.String()
}
