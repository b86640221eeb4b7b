package roster

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gov-dx-sandbox/team-roster/pkg/client"
)

const msgLoadMemberFailed = "Failed to load member details. Please try again."

// DetailView loads a single member; an unknown id yields an empty state
type DetailView struct {
	api API

	mu    sync.Mutex
	id    string
	state State[client.Member]
}

func NewDetailView(api API) *DetailView {
	return &DetailView{api: api, state: Loading[client.Member]()}
}

// Load fetches the member with id
func (v *DetailView) Load(ctx context.Context, id string) State[client.Member] {
	v.mu.Lock()
	v.id = id
	v.state = Loading[client.Member]()
	v.mu.Unlock()

	member, err := v.api.GetMember(ctx, id)

	var next State[client.Member]
	switch {
	case err == nil:
		next = Loaded(*member)
	case client.IsNotFound(err):
		next = Empty[client.Member]()
	default:
		slog.Warn("Failed to load member", "member_id", id, "error", err)
		next = Failed[client.Member](msgLoadMemberFailed)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.id == id {
		v.state = next
	}
	return next
}

// Retry reloads the last requested member
func (v *DetailView) Retry(ctx context.Context) State[client.Member] {
	v.mu.Lock()
	id := v.id
	v.mu.Unlock()
	return v.Load(ctx, id)
}

func (v *DetailView) State() State[client.Member] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}
