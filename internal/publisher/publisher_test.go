package publisher

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/christophergentle/avatarclock/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccount struct {
	nextID    string
	photos    []Photo
	uploaded  []string
	deleted   []Photo
	uploadErr error
	listErr   error
	deleteErr error
}

func (f *fakeAccount) UploadProfilePhoto(_ context.Context, path string) (Photo, error) {
	if f.uploadErr != nil {
		return Photo{}, f.uploadErr
	}
	f.uploaded = append(f.uploaded, path)
	photo := Photo{ID: f.nextID}
	f.photos = append([]Photo{photo}, f.photos...)
	return photo, nil
}

func (f *fakeAccount) ListProfilePhotos(context.Context) ([]Photo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.photos, nil
}

func (f *fakeAccount) DeleteProfilePhoto(_ context.Context, photo Photo) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, photo)
	return nil
}

func newStore(t *testing.T, lastID string) *cache.Store {
	t.Helper()

	ctx := context.Background()
	store := cache.Open(ctx, cache.NewFileBackend(filepath.Join(t.TempDir(), "cache.json")), nil)
	if lastID != "" {
		require.NoError(t, store.Set(ctx, cache.FieldLastUploadedAvatarID, lastID))
	}
	return store
}

func TestPublishFirstUpload(t *testing.T) {
	account := &fakeAccount{nextID: "100"}
	store := newStore(t, "")

	require.NoError(t, New(account, store, nil).Publish(context.Background(), "assets/upload.png"))

	assert.Equal(t, []string{"assets/upload.png"}, account.uploaded)
	assert.Empty(t, account.deleted)
	assert.Equal(t, "100", store.Get(cache.FieldLastUploadedAvatarID))
}

func TestPublishDeletesPreviousUpload(t *testing.T) {
	previous := Photo{ID: "5384823497153582031", Ref: "prev"}
	account := &fakeAccount{
		nextID: "5384823497153582032",
		photos: []Photo{previous, {ID: "1"}},
	}
	store := newStore(t, "5384823497153582031")

	require.NoError(t, New(account, store, nil).Publish(context.Background(), "upload.png"))

	assert.Equal(t, []Photo{previous}, account.deleted)
	assert.Equal(t, "5384823497153582032", store.Get(cache.FieldLastUploadedAvatarID))
}

func TestPublishSkipsDeleteWhenPreviousNotListed(t *testing.T) {
	account := &fakeAccount{nextID: "7", photos: []Photo{{ID: "3"}}}
	store := newStore(t, "42")

	require.NoError(t, New(account, store, nil).Publish(context.Background(), "upload.png"))

	assert.Empty(t, account.deleted)
	assert.Equal(t, "7", store.Get(cache.FieldLastUploadedAvatarID))
}

func TestPublishStoresNewIDWhenDeleteFails(t *testing.T) {
	account := &fakeAccount{
		nextID:    "8",
		photos:    []Photo{{ID: "42"}},
		deleteErr: errors.New("FLOOD_WAIT"),
	}
	store := newStore(t, "42")

	err := New(account, store, nil).Publish(context.Background(), "upload.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLOOD_WAIT")
	assert.Equal(t, "8", store.Get(cache.FieldLastUploadedAvatarID))
}

func TestPublishStoresNewIDWhenListFails(t *testing.T) {
	account := &fakeAccount{nextID: "9", listErr: errors.New("timeout")}
	store := newStore(t, "42")

	err := New(account, store, nil).Publish(context.Background(), "upload.png")
	require.Error(t, err)
	assert.Equal(t, "9", store.Get(cache.FieldLastUploadedAvatarID))
}

func TestPublishUploadFailureKeepsCache(t *testing.T) {
	account := &fakeAccount{uploadErr: errors.New("network down"), photos: []Photo{{ID: "42"}}}
	store := newStore(t, "42")

	err := New(account, store, nil).Publish(context.Background(), "upload.png")
	require.Error(t, err)
	assert.Empty(t, account.deleted)
	assert.Equal(t, "42", store.Get(cache.FieldLastUploadedAvatarID))
}

func TestIDsEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"9007199254740993", "9007199254740993", true},
		// Both round to the same float64; they must still differ.
		{"9007199254740993", "9007199254740992", false},
		{"-5", "-5", true},
		{"0042", "42", true},
		{"bafkreiabc", "bafkreiabc", true},
		{"bafkreiabc", "bafkreiabd", false},
		{"42", "bafkrei42", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IDsEqual(tt.a, tt.b), "IDsEqual(%q, %q)", tt.a, tt.b)
	}
}
