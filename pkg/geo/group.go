package geo

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Group is a named set of element offsets of a single owner class.
type Group struct {
	name    string
	owner   Owner
	members map[Offset]struct{}
}

// NewGroup creates an empty group.
func NewGroup(owner Owner, name string) *Group {
	return &Group{
		name:    name,
		owner:   owner,
		members: make(map[Offset]struct{}),
	}
}

func (g *Group) Name() string { return g.name }
func (g *Group) Owner() Owner { return g.owner }
func (g *Group) Len() int     { return len(g.members) }

// IsEmpty reports whether the group has no members.
func (g *Group) IsEmpty() bool {
	return len(g.members) == 0
}

// Add inserts offsets into the group.
func (g *Group) Add(offs ...Offset) {
	for _, o := range offs {
		g.members[o] = struct{}{}
	}
}

// Remove deletes offsets from the group.
func (g *Group) Remove(offs ...Offset) {
	for _, o := range offs {
		delete(g.members, o)
	}
}

// Contains reports group membership.
func (g *Group) Contains(o Offset) bool {
	_, ok := g.members[o]
	return ok
}

// Offsets returns the members in ascending order.
func (g *Group) Offsets() []Offset {
	offs := lo.Keys(g.members)
	slices.Sort(offs)
	return offs
}

// Copy returns an independent copy of the group.
func (g *Group) Copy() *Group {
	c := NewGroup(g.owner, g.name)
	for o := range g.members {
		c.members[o] = struct{}{}
	}
	return c
}

// ---------------------------------------------------------------------------
// Pattern parsing
// ---------------------------------------------------------------------------

// GroupError reports a malformed group pattern.
type GroupError struct {
	Pattern string
	Token   string
	Reason  string
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("invalid group %q: token %q: %s", e.Pattern, e.Token, e.Reason)
}

var (
	groupNamePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	groupRangePattern = regexp.MustCompile(`^(\d+)(?:-(\d+)(?::(\d+))?)?$`)
)

// ParseGroup resolves a selection pattern against d. Tokens are separated
// by whitespace and applied left to right:
//
//	name     members of the named group
//	N        the element at offset N
//	A-B      offsets A through B inclusive
//	A-B:S    every S-th offset from A through B
//	*        every element
//	^token   removes the token's elements instead of adding them
//
// An empty pattern returns a nil group, meaning every element. Offsets
// that do not refer to live elements are ignored.
func ParseGroup(d Detail, owner Owner, pattern string) (*Group, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil
	}

	var live []Offset
	switch owner {
	case OwnerPoint:
		live = d.PointRange(nil).Offsets()
	case OwnerPrimitive:
		live = d.PrimitiveRange(nil).Offsets()
	default:
		return nil, &GroupError{Pattern: pattern, Token: "", Reason: fmt.Sprintf("%s groups are not supported", owner)}
	}

	g := NewGroup(owner, "")
	for _, tok := range strings.Fields(pattern) {
		apply := g.Add
		body := tok
		if strings.HasPrefix(body, "^") {
			apply = g.Remove
			body = body[1:]
		}
		bad := func(reason string) error {
			return &GroupError{Pattern: pattern, Token: tok, Reason: reason}
		}

		switch {
		case body == "*":
			apply(live...)

		case groupRangePattern.MatchString(body):
			m := groupRangePattern.FindStringSubmatch(body)
			lo64, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return nil, bad(err.Error())
			}
			hi64 := lo64
			if m[2] != "" {
				if hi64, err = strconv.ParseInt(m[2], 10, 64); err != nil {
					return nil, bad(err.Error())
				}
			}
			step := int64(1)
			if m[3] != "" {
				if step, err = strconv.ParseInt(m[3], 10, 64); err != nil {
					return nil, bad(err.Error())
				}
			}
			if hi64 < lo64 {
				return nil, bad("range end precedes start")
			}
			if step <= 0 {
				return nil, bad("step must be positive")
			}
			apply(liveInRange(live, lo64, hi64, step)...)

		case groupNamePattern.MatchString(body):
			named := d.Group(owner, body)
			if named == nil {
				return nil, bad(fmt.Sprintf("no %s group named %q", owner, body))
			}
			apply(named.Offsets()...)

		default:
			return nil, bad("unrecognized token")
		}
	}
	return g, nil
}

// liveInRange returns the offsets of live, which is sorted, that fall in
// [lo, hi] and lie a whole number of steps past lo.
func liveInRange(live []Offset, lo, hi, step int64) []Offset {
	start, _ := slices.BinarySearch(live, Offset(lo))
	var out []Offset
	for _, o := range live[start:] {
		if int64(o) > hi {
			break
		}
		if (int64(o)-lo)%step == 0 {
			out = append(out, o)
		}
	}
	return out
}
