package roster

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gov-dx-sandbox/team-roster/pkg/client"
)

const msgLoadMembersFailed = "Failed to load team members. Please try again."

// EmptyReason explains an empty member list
type EmptyReason int

const (
	EmptyNone EmptyReason = iota
	EmptyNoMembers
	EmptyNoMatches
)

// Message is the text shown for the empty list
func (r EmptyReason) Message() string {
	switch r {
	case EmptyNoMembers:
		return "No team members yet"
	case EmptyNoMatches:
		return "No members match your search"
	default:
		return ""
	}
}

// ListResult is what the list view renders
type ListResult struct {
	State       State[[]client.Member]
	EmptyReason EmptyReason
	Query       string
}

// ListView fetches members once per Load and filters them locally
type ListView struct {
	api API

	mu      sync.Mutex
	state   State[[]client.Member]
	members []client.Member
	query   string
}

func NewListView(api API) *ListView {
	return &ListView{api: api, state: Loading[[]client.Member]()}
}

// Load fetches the member list, replacing any previous data
func (v *ListView) Load(ctx context.Context) ListResult {
	v.mu.Lock()
	v.state = Loading[[]client.Member]()
	v.mu.Unlock()

	members, err := v.api.ListMembers(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		slog.Warn("Failed to load members", "error", err)
		v.members = nil
		v.state = Failed[[]client.Member](msgLoadMembersFailed)
		return v.resultLocked()
	}
	v.members = members
	v.state = Loaded(members)
	return v.resultLocked()
}

// SetQuery filters the loaded members by a case-insensitive match on name or role
func (v *ListView) SetQuery(query string) ListResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = query
	return v.resultLocked()
}

// ClearQuery removes the search filter
func (v *ListView) ClearQuery() ListResult {
	return v.SetQuery("")
}

// Result returns the current view without refetching
func (v *ListView) Result() ListResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resultLocked()
}

func (v *ListView) resultLocked() ListResult {
	result := ListResult{State: v.state, Query: v.query}
	if v.state.Status() != StatusLoaded {
		return result
	}

	if len(v.members) == 0 {
		result.State = Empty[[]client.Member]()
		result.EmptyReason = EmptyNoMembers
		return result
	}

	filtered := FilterMembers(v.members, v.query)
	if len(filtered) == 0 {
		result.State = Empty[[]client.Member]()
		result.EmptyReason = EmptyNoMatches
		return result
	}
	result.State = Loaded(filtered)
	return result
}

// FilterMembers keeps members whose name or role contains query, ignoring case.
// A blank query keeps everyone.
func FilterMembers(members []client.Member, query string) []client.Member {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return members
	}
	filtered := make([]client.Member, 0, len(members))
	for _, m := range members {
		if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.Role), q) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
