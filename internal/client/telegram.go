package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/christophergentle/avatarclock/internal/cache"
	"github.com/christophergentle/avatarclock/internal/publisher"
)

// DefaultConnectionRetries matches the retry budget the bot has always used.
const DefaultConnectionRetries = 100

var errSignUpUnsupported = errors.New("sign up is not supported, register the account in an official app first")

// profilePhotoPageSize is how many recent profile photos are scanned for the previous upload.
const profilePhotoPageSize = 100

// TelegramConfig is the application identity registered at my.telegram.org.
type TelegramConfig struct {
	AppID             int
	AppHash           string
	ConnectionRetries int
}

// RunTelegram connects, logs in if the cached session is missing or rejected,
// and calls fn with the account. The connection is closed when fn returns.
func RunTelegram(ctx context.Context, cfg TelegramConfig, store *cache.Store, creds CredentialProvider, logger *zap.Logger, fn func(ctx context.Context, account *TelegramAccount) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := cfg.ConnectionRetries
	if retries <= 0 {
		retries = DefaultConnectionRetries
	}

	client := telegram.NewClient(cfg.AppID, cfg.AppHash, telegram.Options{
		SessionStorage: &SessionStorage{store: store, logger: logger},
		Logger:         logger.Named("telegram"),
		MaxRetries:     retries,
		RetryInterval:  5 * time.Second,
	})

	return client.Run(ctx, func(ctx context.Context) error {
		if err := authorize(ctx, client.Auth(), creds, logger); err != nil {
			return err
		}

		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current user: %w", err)
		}
		logger.Info("You should now be connected.", zap.String("username", self.Username), zap.Int64("user_id", self.ID))

		return fn(ctx, NewTelegramAccount(client.API()))
	})
}

// authClient is the part of the gotd auth client used at startup.
type authClient interface {
	auth.FlowClient
	Status(ctx context.Context) (*auth.Status, error)
}

// authorize resumes the cached session when the server still accepts it and
// otherwise runs the interactive flow: phone, code, then password for 2FA accounts.
func authorize(ctx context.Context, c authClient, creds CredentialProvider, logger *zap.Logger) error {
	status, err := c.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth status: %w", err)
	}
	if status.Authorized {
		logger.Info("Resumed cached session")
		return nil
	}

	logger.Info("No valid session, starting interactive login")
	flow := auth.NewFlow(userAuthenticator{creds: creds}, auth.SendCodeOptions{})
	if err := flow.Run(ctx, c); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	return nil
}

// SessionStorage keeps the gotd session in the cache's session field.
type SessionStorage struct {
	store  *cache.Store
	logger *zap.Logger
}

func (s *SessionStorage) LoadSession(_ context.Context) ([]byte, error) {
	data := s.store.Get(cache.FieldSession)
	if data == "" {
		return nil, session.ErrNotFound
	}
	if !json.Valid([]byte(data)) {
		s.logger.Warn("Ignoring cached session in unknown format")
		return nil, session.ErrNotFound
	}
	return []byte(data), nil
}

func (s *SessionStorage) StoreSession(ctx context.Context, data []byte) error {
	return s.store.Set(ctx, cache.FieldSession, string(data))
}

// userAuthenticator adapts a CredentialProvider to the gotd login flow.
// The flow only asks for the password when the account has 2FA enabled.
type userAuthenticator struct {
	creds CredentialProvider
}

func (a userAuthenticator) Phone(ctx context.Context) (string, error) {
	return a.creds.Phone(ctx)
}

func (a userAuthenticator) Password(ctx context.Context) (string, error) {
	return a.creds.Password(ctx)
}

func (a userAuthenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.creds.Code(ctx)
}

func (a userAuthenticator) AcceptTermsOfService(context.Context, tg.HelpTermsOfService) error {
	return errSignUpUnsupported
}

func (a userAuthenticator) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errSignUpUnsupported
}

// telegramAPI is the part of tg.Client used for profile photos.
type telegramAPI interface {
	PhotosUploadProfilePhoto(ctx context.Context, request *tg.PhotosUploadProfilePhotoRequest) (*tg.PhotosPhoto, error)
	PhotosGetUserPhotos(ctx context.Context, request *tg.PhotosGetUserPhotosRequest) (tg.PhotosPhotosClass, error)
	PhotosDeletePhotos(ctx context.Context, id []tg.InputPhotoClass) ([]int64, error)
}

// fileUploader turns a local file into an uploaded input file.
type fileUploader interface {
	FromPath(ctx context.Context, path string) (tg.InputFileClass, error)
}

// TelegramAccount publishes profile photos for the logged-in user.
type TelegramAccount struct {
	api      telegramAPI
	uploader fileUploader
}

func NewTelegramAccount(api *tg.Client) *TelegramAccount {
	return &TelegramAccount{api: api, uploader: uploader.NewUploader(api)}
}

func (a *TelegramAccount) UploadProfilePhoto(ctx context.Context, path string) (publisher.Photo, error) {
	file, err := a.uploader.FromPath(ctx, path)
	if err != nil {
		return publisher.Photo{}, fmt.Errorf("failed to upload %s: %w", path, err)
	}

	result, err := a.api.PhotosUploadProfilePhoto(ctx, &tg.PhotosUploadProfilePhotoRequest{File: file})
	if err != nil {
		return publisher.Photo{}, err
	}

	photo, ok := result.Photo.(*tg.Photo)
	if !ok {
		return publisher.Photo{}, fmt.Errorf("unexpected photo type %T in upload response", result.Photo)
	}
	return toPhoto(photo), nil
}

func (a *TelegramAccount) ListProfilePhotos(ctx context.Context) ([]publisher.Photo, error) {
	result, err := a.api.PhotosGetUserPhotos(ctx, &tg.PhotosGetUserPhotosRequest{
		UserID: &tg.InputUserSelf{},
		Limit:  profilePhotoPageSize,
	})
	if err != nil {
		return nil, err
	}

	var classes []tg.PhotoClass
	switch r := result.(type) {
	case *tg.PhotosPhotos:
		classes = r.Photos
	case *tg.PhotosPhotosSlice:
		classes = r.Photos
	default:
		return nil, fmt.Errorf("unexpected photos response %T", result)
	}

	photos := make([]publisher.Photo, 0, len(classes))
	for _, class := range classes {
		if photo, ok := class.(*tg.Photo); ok {
			photos = append(photos, toPhoto(photo))
		}
	}
	return photos, nil
}

func (a *TelegramAccount) DeleteProfilePhoto(ctx context.Context, photo publisher.Photo) error {
	input, ok := photo.Ref.(*tg.InputPhoto)
	if !ok {
		return fmt.Errorf("photo %s has no telegram reference", photo.ID)
	}

	_, err := a.api.PhotosDeletePhotos(ctx, []tg.InputPhotoClass{input})
	return err
}

func toPhoto(photo *tg.Photo) publisher.Photo {
	return publisher.Photo{
		ID: strconv.FormatInt(photo.ID, 10),
		Ref: &tg.InputPhoto{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
		},
	}
}
