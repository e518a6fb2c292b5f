// Package borrowstate implements the four-map state machine the borrow
// checker symbolically evaluates a function body against. Grounded in
// borrowchecker/BorrowState.hpp: every tracked AccessPath lives in
// exactly one of unused/used/moved/unmoved at a time.
package borrowstate

import (
	"fmt"

	"github.com/rowlandz/miscr/internal/accesspath"
	"github.com/rowlandz/miscr/internal/location"
)

// Status is which of the four disjoint maps a path currently lives in.
type Status uint8

const (
	Unused Status = iota
	Used
	Moved
	Unmoved
)

func (s Status) String() string {
	switch s {
	case Unused:
		return "unused"
	case Used:
		return "used"
	case Moved:
		return "moved"
	case Unmoved:
		return "unmoved"
	default:
		return "?"
	}
}

// State tracks the status of every owned-reference access path
// currently in scope, plus the location each path's current status
// began at (introduction site for unused, move site for moved).
type State struct {
	status map[string]Status
	paths  map[string]accesspath.AccessPath
	locs   map[string]location.Location
}

// New creates an empty State.
func New() *State {
	return &State{
		status: make(map[string]Status),
		paths:  make(map[string]accesspath.AccessPath),
		locs:   make(map[string]location.Location),
	}
}

// Clone returns a deep-enough copy of s for branch-local mutation.
func (s *State) Clone() *State {
	c := New()
	for k, v := range s.status {
		c.status[k] = v
	}
	for k, v := range s.paths {
		c.paths[k] = v
	}
	for k, v := range s.locs {
		c.locs[k] = v
	}
	return c
}

func key(p accesspath.AccessPath) string {
	return accesspath.String(p)
}

// Seed introduces p as unused at loc, the initial state for a binding
// (or one of its loose extensions) brought into scope.
func (s *State) Seed(p accesspath.AccessPath, loc location.Location) {
	k := key(p)
	s.status[k] = Unused
	s.paths[k] = p
	s.locs[k] = loc
}

// StatusOf returns p's current status and whether it's tracked at all
// (an untracked path is typically a borrowed reference or a primitive,
// neither of which participates in move tracking).
func (s *State) StatusOf(p accesspath.AccessPath) (Status, bool) {
	st, ok := s.status[key(p)]
	return st, ok
}

// Use marks p as consumed. Reading a moved path, or reading a path
// that has already been used and not restored since, is an error:
// a unique reference may only be consumed once along any path.
func (s *State) Use(p accesspath.AccessPath) error {
	k := key(p)
	st, ok := s.status[k]
	if !ok {
		return nil // untracked: borrowed or primitive, not move-checked
	}
	if st == Moved {
		return &ErrUseOfMoved{Path: p}
	}
	if st == Used {
		return &ErrAlreadyUsed{Path: p, IntroLoc: s.locs[k]}
	}
	s.status[k] = Used
	return nil
}

// Move transitions p from unused/used/unmoved to moved at loc. Moving
// an already-moved path is an error.
func (s *State) Move(p accesspath.AccessPath, loc location.Location) error {
	k := key(p)
	st, ok := s.status[k]
	if !ok {
		return nil
	}
	if st == Moved {
		return &ErrUseOfMoved{Path: p}
	}
	s.status[k] = Moved
	s.locs[k] = loc
	return nil
}

// Unmove restores p to unmoved at loc, the only legal transition out
// of moved.
func (s *State) Unmove(p accesspath.AccessPath, loc location.Location) error {
	k := key(p)
	st, ok := s.status[k]
	if !ok {
		return nil
	}
	if st != Moved {
		return &ErrNotMoved{Path: p}
	}
	s.status[k] = Unmoved
	s.locs[k] = loc
	return nil
}

// Rebase renames every path currently tracked with oldPrefix as a
// structural prefix so it is tracked under newPrefix instead,
// preserving status and location. This is how a let-binding gives a
// stable, name-keyed identity to what may otherwise be an anonymous
// synthetic path (a call result, a move result): two branches that
// each `let x = ...` independently end up tracking the same
// owned-reference obligations under the same ROOT(x) key, which is
// what makes branch-merge comparison (see MergeBranches) meaningful.
func (s *State) Rebase(apm *accesspath.Manager, oldPrefix, newPrefix accesspath.AccessPath) {
	type renamed struct {
		oldKey, newKey string
		path           accesspath.AccessPath
	}
	var changes []renamed
	for k, p := range s.paths {
		np := apm.ReplacePrefix(p, oldPrefix, newPrefix)
		if nk := key(np); nk != k {
			changes = append(changes, renamed{k, nk, np})
		}
	}
	for _, c := range changes {
		s.status[c.newKey] = s.status[c.oldKey]
		s.paths[c.newKey] = c.path
		s.locs[c.newKey] = s.locs[c.oldKey]
		delete(s.status, c.oldKey)
		delete(s.paths, c.oldKey)
		delete(s.locs, c.oldKey)
	}
}

// FinalCheck reports every path left in a state that obligates the
// caller: `moved` (never restored) or `unused` (never consumed).
// Used at function exit and could equally be used at any other scope
// boundary that closes off a set of owned bindings.
func (s *State) FinalCheck() []error {
	var errs []error
	for k, st := range s.status {
		switch st {
		case Moved:
			errs = append(errs, &ErrNotRestored{Path: s.paths[k]})
		case Unused:
			errs = append(errs, &ErrNeverUsed{Path: s.paths[k], Loc: s.locs[k]})
		}
	}
	return errs
}

// MergeBranches reconciles two post-branch states (then/else) against
// the shared pre-branch state, producing the three specific
// diagnostics the original distinguishes, and returns the merged state
// to continue evaluation after the branch.
//
// A path absent from pre but present in both post-branch states
// (introduced independently inside both branches) is treated the same
// as one that was `unused` in pre for the "not used in both branches"
// check. A path present in only one post-branch state is carried into
// the merged state as that branch left it, with no consistency check.
func MergeBranches(pre, thenState, elseState *State) (*State, []error) {
	var errs []error
	merged := pre.Clone()

	seen := make(map[string]bool)
	for k := range thenState.status {
		seen[k] = true
	}
	for k := range elseState.status {
		seen[k] = true
	}

	for k := range seen {
		preSt, preOk := pre.status[k]
		thenSt, thenOk := thenState.status[k]
		elseSt, elseOk := elseState.status[k]
		path := pathOf(thenState, elseState, k)

		if !thenOk || !elseOk {
			// Introduced in only one branch by a binding whose scope
			// doesn't extend past it (e.g. a loose extension of a
			// local the other branch never declares): carry it
			// through as-is, no cross-branch consistency applies.
			if thenOk {
				merged.status[k] = thenSt
				merged.paths[k] = path
				merged.locs[k] = thenState.locs[k]
			} else if elseOk {
				merged.status[k] = elseSt
				merged.paths[k] = path
				merged.locs[k] = elseState.locs[k]
			}
			continue
		}

		if thenSt == elseSt {
			merged.status[k] = thenSt
			merged.paths[k] = path
			merged.locs[k] = pickLoc(thenState, elseState, k)
			continue
		}

		// Diverged. Classify by what changed relative to the
		// pre-branch state, matching BorrowState::merge's specific
		// wording.
		thenConsumed := thenSt == Used || thenSt == Moved
		elseConsumed := elseSt == Used || elseSt == Moved
		if (!preOk || preSt == Unused) && thenConsumed != elseConsumed {
			errs = append(errs, &ErrInconsistentBranch{Path: path, Reason: "not used in both branches"})
			merged.status[k] = Unused
			merged.paths[k] = path
			merged.locs[k] = pickLoc(thenState, elseState, k)
			continue
		}
		thenRestored := thenSt == Unmoved
		elseRestored := elseSt == Unmoved
		if preOk && preSt == Moved && thenRestored != elseRestored {
			errs = append(errs, &ErrInconsistentBranch{Path: path, Reason: "not replaced in both branches"})
			merged.status[k] = Moved
			merged.paths[k] = path
			merged.locs[k] = pickLoc(thenState, elseState, k)
			continue
		}
		errs = append(errs, &ErrInconsistentBranch{Path: path, Reason: "inconsistent treatment across branches"})
		merged.status[k] = thenSt
		merged.paths[k] = path
		merged.locs[k] = pickLoc(thenState, elseState, k)
	}

	return merged, errs
}

func pathOf(a, b *State, k string) accesspath.AccessPath {
	if p, ok := a.paths[k]; ok {
		return p
	}
	return b.paths[k]
}

func pickLoc(a, b *State, k string) location.Location {
	if l, ok := a.locs[k]; ok {
		return l
	}
	return b.locs[k]
}

// ErrUseOfMoved reports reading a path that has been moved and not yet
// restored.
type ErrUseOfMoved struct {
	Path accesspath.AccessPath
}

func (e *ErrUseOfMoved) Error() string {
	return fmt.Sprintf("use of moved value '%s'", accesspath.String(e.Path))
}

// ErrAlreadyUsed reports a second consumption of a unique reference
// along the same access path.
type ErrAlreadyUsed struct {
	Path     accesspath.AccessPath
	IntroLoc location.Location
}

func (e *ErrAlreadyUsed) Error() string {
	return fmt.Sprintf("'%s' was already used, cannot be used again", accesspath.String(e.Path))
}

// ErrNotMoved reports an unmove applied to a path that was never
// moved.
type ErrNotMoved struct {
	Path accesspath.AccessPath
}

func (e *ErrNotMoved) Error() string {
	return fmt.Sprintf("cannot restore '%s': it was never moved", accesspath.String(e.Path))
}

// ErrNotRestored reports a path left moved at function exit.
type ErrNotRestored struct {
	Path accesspath.AccessPath
}

func (e *ErrNotRestored) Error() string {
	return fmt.Sprintf("'%s' was moved and never restored", accesspath.String(e.Path))
}

// ErrNeverUsed reports a unique reference that was introduced but
// never consumed before its scope ended.
type ErrNeverUsed struct {
	Path accesspath.AccessPath
	Loc  location.Location
}

func (e *ErrNeverUsed) Error() string {
	return fmt.Sprintf("unique reference '%s' was never used", accesspath.String(e.Path))
}

// ErrInconsistentBranch reports a three-way merge mismatch across an
// if's two arms.
type ErrInconsistentBranch struct {
	Path   accesspath.AccessPath
	Reason string
}

func (e *ErrInconsistentBranch) Error() string {
	return fmt.Sprintf("'%s' %s", accesspath.String(e.Path), e.Reason)
}
