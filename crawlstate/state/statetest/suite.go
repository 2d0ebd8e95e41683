package statetest

import (
	"errors"

	check "gopkg.in/check.v1"

	"github.com/mycok/uCrawl/crawlstate/state"
)

// BaseSuite defines a set of re-usable tests that can be executed against
// any concrete type that implements the state.Store interface.
type BaseSuite struct {
	store state.Store
}

// SetStore sets BaseSuite's store field.
func (s *BaseSuite) SetStore(store state.Store) {
	s.store = store
}

// TestLoadMissing verifies that a never-saved set loads as empty.
func (s *BaseSuite) TestLoadMissing(c *check.C) {
	urls, err := s.store.Load("never-saved", state.Visited)
	c.Assert(err, check.IsNil)
	c.Assert(urls, check.HasLen, 0)
}

// TestSaveAndLoad verifies the round trip of both kinds.
func (s *BaseSuite) TestSaveAndLoad(c *check.C) {
	visited := []string{"http://a.com", "http://a.com/x", "https://b.org/y"}
	excluded := []string{"http://a.com/private"}

	c.Assert(s.store.Save("loc", state.Visited, visited), check.IsNil)
	c.Assert(s.store.Save("loc", state.Excluded, excluded), check.IsNil)

	got, err := s.store.Load("loc", state.Visited)
	c.Assert(err, check.IsNil)
	c.Assert(got, check.DeepEquals, visited)

	got, err = s.store.Load("loc", state.Excluded)
	c.Assert(err, check.IsNil)
	c.Assert(got, check.DeepEquals, excluded)
}

// TestSaveOverwrites verifies that Save replaces the previous contents.
func (s *BaseSuite) TestSaveOverwrites(c *check.C) {
	c.Assert(s.store.Save("loc", state.Visited, []string{"http://a.com/1", "http://a.com/2"}), check.IsNil)
	c.Assert(s.store.Save("loc", state.Visited, []string{"http://a.com/3"}), check.IsNil)

	got, err := s.store.Load("loc", state.Visited)
	c.Assert(err, check.IsNil)
	c.Assert(got, check.DeepEquals, []string{"http://a.com/3"})
}

// TestLocationsAreIsolated verifies that sets saved under different
// locations do not mix.
func (s *BaseSuite) TestLocationsAreIsolated(c *check.C) {
	c.Assert(s.store.Save("one", state.Visited, []string{"http://one.com"}), check.IsNil)
	c.Assert(s.store.Save("two", state.Visited, []string{"http://two.com"}), check.IsNil)

	got, err := s.store.Load("one", state.Visited)
	c.Assert(err, check.IsNil)
	c.Assert(got, check.DeepEquals, []string{"http://one.com"})
}

// TestUnknownKind verifies that unknown kinds are rejected.
func (s *BaseSuite) TestUnknownKind(c *check.C) {
	_, err := s.store.Load("loc", state.Kind("bogus"))
	c.Assert(errors.Is(err, state.ErrUnknownKind), check.Equals, true)

	err = s.store.Save("loc", state.Kind("bogus"), nil)
	c.Assert(errors.Is(err, state.ErrUnknownKind), check.Equals, true)
}
