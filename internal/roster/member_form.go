package roster

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gov-dx-sandbox/team-roster/pkg/client"
)

// RedirectDelay is how long the success message shows before returning to the list
const RedirectDelay = 2 * time.Second

// MembersPath is where a successful submission redirects
const MembersPath = "/members"

const (
	msgRequiredFields = "Please fill in all required fields."
	msgImageRequired  = "Please upload a profile image."
	msgAddFailed      = "Failed to add team member. Please try again."
	msgAddSucceeded   = "Team member added successfully!"
)

var (
	ErrRequiredFields = errors.New(msgRequiredFields)
	ErrImageRequired  = errors.New(msgImageRequired)
	ErrSubmitting     = errors.New("a submission is already in progress")
)

// FormImage is the selected profile image, held in memory so a failed submit can be retried
type FormImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitResult describes a successful submission
type SubmitResult struct {
	Member        *client.Member
	Message       string
	RedirectTo    string
	RedirectAfter time.Duration
}

// SubmitError is a failed submission; the form keeps its data
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// MemberForm holds the add-member form
type MemberForm struct {
	api API

	mu         sync.Mutex
	fields     client.NewMember
	image      *FormImage
	submitting bool
}

func NewMemberForm(api API) *MemberForm {
	return &MemberForm{api: api}
}

// SetFields replaces the text fields
func (f *MemberForm) SetFields(fields client.NewMember) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = fields
}

// SetImage selects the profile image; nil clears it
func (f *MemberForm) SetImage(image *FormImage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = image
}

// Fields returns the current text fields
func (f *MemberForm) Fields() client.NewMember {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Image returns the selected image, nil when none is set
func (f *MemberForm) Image() *FormImage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.image
}

// Validate requires name, role and email, then an image
func (f *MemberForm) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *MemberForm) validateLocked() error {
	if strings.TrimSpace(f.fields.Name) == "" || strings.TrimSpace(f.fields.Role) == "" ||
		strings.TrimSpace(f.fields.Email) == "" {
		return ErrRequiredFields
	}
	if f.image == nil || len(f.image.Data) == 0 {
		return ErrImageRequired
	}
	return nil
}

// Submit validates and sends the form. On success the form is cleared;
// on failure every field and the image are kept for another attempt.
func (f *MemberForm) Submit(ctx context.Context) (*SubmitResult, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitting
	}
	if err := f.validateLocked(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	fields := f.fields
	image := *f.image
	f.submitting = true
	f.mu.Unlock()

	member, err := f.api.AddMember(ctx, fields, client.Image{
		Filename:    image.Filename,
		ContentType: image.ContentType,
		Data:        bytes.NewReader(image.Data),
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		slog.Warn("Failed to add member", "error", err)
		return nil, &SubmitError{Message: msgAddFailed, Err: err}
	}

	f.fields = client.NewMember{}
	f.image = nil
	return &SubmitResult{
		Member:        member,
		Message:       msgAddSucceeded,
		RedirectTo:    MembersPath,
		RedirectAfter: RedirectDelay,
	}, nil
}
