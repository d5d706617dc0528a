package publisher

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/christophergentle/avatarclock/internal/cache"
	"go.uber.org/zap"
)

// Photo is a profile photo on the remote account.
type Photo struct {
	// ID is the decimal (or, for some backends, opaque) photo identifier.
	ID string
	// Ref carries whatever the backend needs to delete the photo later.
	Ref any
}

// Account is the remote profile the avatar is published to.
type Account interface {
	UploadProfilePhoto(ctx context.Context, path string) (Photo, error)
	ListProfilePhotos(ctx context.Context) ([]Photo, error)
	DeleteProfilePhoto(ctx context.Context, photo Photo) error
}

// Publisher replaces the account's profile photo and removes the previous upload.
type Publisher struct {
	account Account
	store   *cache.Store
	logger  *zap.Logger
}

// New creates a publisher that remembers uploads in store.
func New(account Account, store *cache.Store, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{account: account, store: store, logger: logger}
}

// Publish uploads path as the new profile photo, deletes the photo uploaded
// by the previous cycle and records the new ID. The new ID is recorded even
// when removing the old photo fails.
func (p *Publisher) Publish(ctx context.Context, path string) error {
	p.logger.Info("Updating avatar...")

	uploaded, err := p.account.UploadProfilePhoto(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to upload profile photo: %w", err)
	}
	p.logger.Info("Avatar updated", zap.String("photo_id", uploaded.ID))

	var cleanupErr error
	if previous := p.store.Get(cache.FieldLastUploadedAvatarID); previous != "" {
		cleanupErr = p.removePrevious(ctx, previous)
	}

	storeErr := p.store.Set(ctx, cache.FieldLastUploadedAvatarID, uploaded.ID)
	if storeErr != nil {
		storeErr = fmt.Errorf("failed to remember uploaded photo: %w", storeErr)
	}

	return errors.Join(cleanupErr, storeErr)
}

func (p *Publisher) removePrevious(ctx context.Context, previousID string) error {
	p.logger.Info("Removing old profile photo", zap.String("photo_id", previousID))

	photos, err := p.account.ListProfilePhotos(ctx)
	if err != nil {
		return fmt.Errorf("failed to list profile photos: %w", err)
	}

	for _, photo := range photos {
		if !IDsEqual(photo.ID, previousID) {
			continue
		}
		if err := p.account.DeleteProfilePhoto(ctx, photo); err != nil {
			return fmt.Errorf("failed to delete profile photo %s: %w", previousID, err)
		}
		p.logger.Info("Old profile photo deleted", zap.String("photo_id", previousID))
		return nil
	}

	p.logger.Debug("Previous profile photo no longer listed", zap.String("photo_id", previousID))
	return nil
}

// IDsEqual compares two identifiers as arbitrary-precision integers when both
// are decimal, and as plain strings otherwise.
func IDsEqual(a, b string) bool {
	x, okA := new(big.Int).SetString(a, 10)
	y, okB := new(big.Int).SetString(b, 10)
	if okA && okB {
		return x.Cmp(y) == 0
	}
	return a == b
}
