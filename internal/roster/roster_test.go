package roster

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/gov-dx-sandbox/team-roster/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	members   []client.Member
	listErr   error
	getErr    error
	addErr    error
	listCalls int
	added     []client.NewMember
	images    []string
	available map[string]bool
}

func (f *fakeAPI) ListMembers(ctx context.Context) ([]client.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]client.Member(nil), f.members...), nil
}

func (f *fakeAPI) GetMember(ctx context.Context, id string) (*client.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, m := range f.members {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, &client.Error{Category: client.CategoryNotFound, Status: 404, Message: "Resource not found"}
}

func (f *fakeAPI) AddMember(ctx context.Context, m client.NewMember, image client.Image) (*client.Member, error) {
	data, err := io.ReadAll(image.Data)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, m)
	f.images = append(f.images, string(data))
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &client.Member{ID: "665f1c2e8b3e4a0012345678", Name: m.Name, Role: m.Role, Email: m.Email, ProfileImage: "1-x.png"}, nil
}

func (f *fakeAPI) ImageURL(filename string) string {
	return "http://localhost:5000/api/uploads/" + filename
}

func (f *fakeAPI) ImageAvailable(ctx context.Context, filename string) bool {
	return f.available[filename]
}

func team() []client.Member {
	return []client.Member{
		{ID: "1", Name: "Ayush Panwar", Role: "Full Stack Developer"},
		{ID: "2", Name: "Harhit Rustagi", Role: "Frontend Developer"},
		{ID: "3", Name: "Siddharth Patni", Role: "Backend Developer"},
	}
}

func TestState(t *testing.T) {
	loaded := Loaded(42)
	v, ok := loaded.Data()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, StatusLoaded, loaded.Status())

	failed := Failed[int]("nope")
	_, ok = failed.Data()
	assert.False(t, ok)
	assert.Equal(t, "nope", failed.Message())
	assert.Equal(t, "error", failed.Status().String())

	assert.Equal(t, StatusEmpty, Empty[int]().Status())
	assert.Equal(t, StatusLoading, Loading[int]().Status())
}

func TestListView_LoadAndFilter(t *testing.T) {
	api := &fakeAPI{members: team()}
	view := NewListView(api)
	assert.Equal(t, StatusLoading, view.Result().State.Status())

	result := view.Load(context.Background())
	members, ok := result.State.Data()
	require.True(t, ok)
	assert.Len(t, members, 3)

	result = view.SetQuery("FRONTEND")
	members, ok = result.State.Data()
	require.True(t, ok)
	require.Len(t, members, 1)
	assert.Equal(t, "Harhit Rustagi", members[0].Name)

	result = view.SetQuery("siddharth")
	members, _ = result.State.Data()
	require.Len(t, members, 1)
	assert.Equal(t, "3", members[0].ID)

	result = view.SetQuery("designer")
	assert.Equal(t, StatusEmpty, result.State.Status())
	assert.Equal(t, EmptyNoMatches, result.EmptyReason)
	assert.Equal(t, "No members match your search", result.EmptyReason.Message())

	result = view.ClearQuery()
	members, _ = result.State.Data()
	assert.Len(t, members, 3)
	assert.Equal(t, 1, api.listCalls, "filtering never refetches")
}

func TestListView_NoMembers(t *testing.T) {
	view := NewListView(&fakeAPI{})

	result := view.Load(context.Background())
	assert.Equal(t, StatusEmpty, result.State.Status())
	assert.Equal(t, EmptyNoMembers, result.EmptyReason)
	assert.Equal(t, "No team members yet", result.EmptyReason.Message())

	result = view.SetQuery("anyone")
	assert.Equal(t, EmptyNoMembers, result.EmptyReason)
}

func TestListView_LoadFailure(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("Network error")}
	view := NewListView(api)

	result := view.Load(context.Background())
	assert.Equal(t, StatusError, result.State.Status())
	assert.Equal(t, "Failed to load team members. Please try again.", result.State.Message())

	api.listErr = nil
	api.members = team()
	result = view.Load(context.Background())
	assert.Equal(t, StatusLoaded, result.State.Status())
}

func TestDetailView(t *testing.T) {
	api := &fakeAPI{members: team()}
	view := NewDetailView(api)

	state := view.Load(context.Background(), "2")
	member, ok := state.Data()
	require.True(t, ok)
	assert.Equal(t, "Harhit Rustagi", member.Name)

	state = view.Load(context.Background(), "unknown")
	assert.Equal(t, StatusEmpty, state.Status())
	assert.Equal(t, StatusEmpty, view.State().Status())
}

func TestDetailView_Retry(t *testing.T) {
	api := &fakeAPI{members: team(), getErr: &client.Error{Category: client.CategoryServer, Message: "Server error. Please try again later."}}
	view := NewDetailView(api)

	state := view.Load(context.Background(), "1")
	assert.Equal(t, StatusError, state.Status())
	assert.Equal(t, "Failed to load member details. Please try again.", state.Message())

	api.getErr = nil
	state = view.Retry(context.Background())
	member, ok := state.Data()
	require.True(t, ok)
	assert.Equal(t, "1", member.ID)
}

func TestMemberForm_Validate(t *testing.T) {
	form := NewMemberForm(&fakeAPI{})

	form.SetFields(client.NewMember{Name: "Ada", Role: "Engineer"})
	assert.ErrorIs(t, form.Validate(), ErrRequiredFields)
	assert.EqualError(t, form.Validate(), "Please fill in all required fields.")

	form.SetFields(client.NewMember{Name: "Ada", Role: "Engineer", Email: "ada@example.com"})
	assert.ErrorIs(t, form.Validate(), ErrImageRequired)
	assert.EqualError(t, form.Validate(), "Please upload a profile image.")

	form.SetImage(&FormImage{Filename: "ada.png", ContentType: "image/png", Data: []byte("png")})
	assert.NoError(t, form.Validate())
}

func TestMemberForm_SubmitSuccessClearsForm(t *testing.T) {
	api := &fakeAPI{}
	form := NewMemberForm(api)
	form.SetFields(client.NewMember{Name: "Ada", Role: "Engineer", Email: "ada@example.com", Bio: "Engines"})
	form.SetImage(&FormImage{Filename: "ada.png", ContentType: "image/png", Data: []byte("png")})

	result, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", result.Member.Name)
	assert.Equal(t, RedirectDelay, result.RedirectAfter)
	assert.Equal(t, "/members", result.RedirectTo)
	assert.Equal(t, "Team member added successfully!", result.Message)

	assert.Equal(t, client.NewMember{}, form.Fields())
	assert.Nil(t, form.Image())
	require.Len(t, api.added, 1)
	assert.Equal(t, "Engines", api.added[0].Bio)
}

func TestMemberForm_SubmitFailureKeepsData(t *testing.T) {
	api := &fakeAPI{addErr: &client.Error{Category: client.CategoryBadRequest, Message: "Invalid request: Member with this email already exists"}}
	form := NewMemberForm(api)
	fields := client.NewMember{Name: "Ada", Role: "Engineer", Email: "ada@example.com"}
	image := &FormImage{Filename: "ada.png", ContentType: "image/png", Data: []byte("png")}
	form.SetFields(fields)
	form.SetImage(image)

	result, err := form.Submit(context.Background())
	assert.Nil(t, result)
	var submitErr *SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, "Failed to add team member. Please try again.", submitErr.Message)
	assert.Equal(t, client.CategoryBadRequest, client.CategoryOf(err))

	assert.Equal(t, fields, form.Fields())
	assert.Equal(t, image, form.Image())

	api.addErr = nil
	_, err = form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"png", "png"}, api.images, "the image is resent in full")
}

func TestMemberForm_SubmitInvalidDoesNotCallAPI(t *testing.T) {
	api := &fakeAPI{}
	form := NewMemberForm(api)

	_, err := form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrRequiredFields)
	assert.Empty(t, api.added)
}

func TestImageSource(t *testing.T) {
	api := &fakeAPI{available: map[string]bool{"ada.png": true}}

	assert.Equal(t, "http://localhost:5000/api/uploads/ada.png", ImageSource(context.Background(), api, "ada.png"))
	assert.Equal(t, client.PlaceholderImageURL, ImageSource(context.Background(), api, "gone.png"))
	assert.Equal(t, client.PlaceholderImageURL, ImageSource(context.Background(), api, ""))
}
