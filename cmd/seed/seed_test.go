package main

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/gov-dx-sandbox/team-roster/internal/services"
	"github.com/gov-dx-sandbox/team-roster/internal/testutil"
	"github.com/gov-dx-sandbox/team-roster/internal/uploads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeedFile_Default(t *testing.T) {
	members, err := parseSeedFile(defaultMembers)
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, "Ayush Panwar", members[0].Name)
	assert.Equal(t, "Full Stack Developer", members[0].Role)
	assert.Equal(t, "ayush.panwar@example.com", members[0].Email)
	assert.Equal(t, "+91 98765 43210", members[0].Phone)
	assert.Equal(t, "Backend Developer", members[2].Role)
	for _, m := range members {
		assert.NoError(t, m.Validate(), m.Email)
	}
}

func TestParseSeedFile_Invalid(t *testing.T) {
	_, err := parseSeedFile([]byte("members: []"))
	assert.Error(t, err)

	_, err = parseSeedFile([]byte("members: [unterminated"))
	assert.Error(t, err)
}

func TestPlaceholderAvatar(t *testing.T) {
	data, err := placeholderAvatar(64)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.LessOrEqual(t, int64(len(data)), uploads.MaxUploadSize)
}

func TestSeedMembers_IsIdempotent(t *testing.T) {
	repo := testutil.NewMockRepository()
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)
	service := services.NewMemberService(repo, store)

	members, err := parseSeedFile(defaultMembers)
	require.NoError(t, err)

	report, err := seedMembers(context.Background(), service, store, members)
	require.NoError(t, err)
	assert.Equal(t, seedReport{Created: 3}, report)

	listed, err := repo.ListMembers(context.Background())
	require.NoError(t, err)
	for _, m := range listed {
		assert.True(t, store.Exists(m.ProfileImage), m.Email)
	}

	report, err = seedMembers(context.Background(), service, store, members)
	require.NoError(t, err)
	assert.Equal(t, seedReport{Skipped: 3}, report)
	assert.Equal(t, 3, repo.Count())
}
