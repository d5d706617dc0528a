package client

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/atproto/client"
	"github.com/bluesky-social/indigo/lex/util"
	"go.uber.org/zap"

	"github.com/christophergentle/avatarclock/internal/publisher"
)

const (
	DefaultBlueskyHost = "https://bsky.social"

	profileCollection = "app.bsky.actor.profile"
	profileRecordKey  = "self"
)

type BlueskyConfig struct {
	Host     string
	Handle   string
	Password string
}

// BlueskyAccount sets the avatar on the app.bsky.actor.profile/self record.
// Bluesky keeps no photo history: the list holds only the current avatar and
// replaced blobs are garbage-collected by the PDS once unreferenced.
type BlueskyAccount struct {
	client util.LexClient
	handle string
	logger *zap.Logger
}

// ConnectBluesky logs in with an app password.
func ConnectBluesky(ctx context.Context, cfg BlueskyConfig, logger *zap.Logger) (*BlueskyAccount, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	host := cfg.Host
	if host == "" {
		host = DefaultBlueskyHost
	}

	authClient, err := client.LoginWithPasswordHost(ctx, host, cfg.Handle, cfg.Password, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	logger.Info("Successfully authenticated with Bluesky", zap.String("handle", cfg.Handle))

	return &BlueskyAccount{client: authClient, handle: cfg.Handle, logger: logger}, nil
}

func (a *BlueskyAccount) UploadProfilePhoto(ctx context.Context, path string) (publisher.Photo, error) {
	file, err := os.Open(path)
	if err != nil {
		return publisher.Photo{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	uploaded, err := atproto.RepoUploadBlob(ctx, a.client, file)
	if err != nil {
		return publisher.Photo{}, fmt.Errorf("failed to upload blob: %w", err)
	}

	profile, swap, err := a.currentProfile(ctx)
	if err != nil {
		return publisher.Photo{}, err
	}
	profile.Avatar = uploaded.Blob

	_, err = atproto.RepoPutRecord(ctx, a.client, &atproto.RepoPutRecord_Input{
		Repo:       a.handle,
		Collection: profileCollection,
		Rkey:       profileRecordKey,
		Record:     &util.LexiconTypeDecoder{Val: profile},
		SwapRecord: swap,
	})
	if err != nil {
		return publisher.Photo{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return blobPhoto(uploaded.Blob), nil
}

func (a *BlueskyAccount) ListProfilePhotos(ctx context.Context) ([]publisher.Photo, error) {
	profile, _, err := a.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile.Avatar == nil {
		return nil, nil
	}
	return []publisher.Photo{blobPhoto(profile.Avatar)}, nil
}

// DeleteProfilePhoto is a no-op: an avatar blob disappears once no record references it.
func (a *BlueskyAccount) DeleteProfilePhoto(_ context.Context, photo publisher.Photo) error {
	a.logger.Debug("Leaving blob to PDS garbage collection", zap.String("cid", photo.ID))
	return nil
}

// currentProfile returns the profile record and its CID for a swap-guarded
// write. A missing record yields an empty profile and a nil CID.
func (a *BlueskyAccount) currentProfile(ctx context.Context) (*bsky.ActorProfile, *string, error) {
	out, err := atproto.RepoGetRecord(ctx, a.client, "", profileCollection, a.handle, profileRecordKey)
	if err != nil {
		if isRecordNotFound(err) {
			return &bsky.ActorProfile{}, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get profile record: %w", err)
	}

	if out.Value == nil {
		return &bsky.ActorProfile{}, out.Cid, nil
	}
	profile, ok := out.Value.Val.(*bsky.ActorProfile)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected profile record type %T", out.Value.Val)
	}
	return profile, out.Cid, nil
}

func isRecordNotFound(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Name == "RecordNotFound"
}

func blobPhoto(blob *util.LexBlob) publisher.Photo {
	return publisher.Photo{ID: blob.Ref.String(), Ref: blob}
}
