package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bluesky-social/indigo/atproto/client"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/christophergentle/avatarclock/internal/publisher"
)

func TestIsRecordNotFound(t *testing.T) {
	notFound := &client.APIError{StatusCode: 400, Name: "RecordNotFound", Message: "Could not locate record"}
	assert.True(t, isRecordNotFound(notFound))
	assert.True(t, isRecordNotFound(fmt.Errorf("failed to get record: %w", notFound)))
	assert.False(t, isRecordNotFound(&client.APIError{StatusCode: 400, Name: "InvalidRequest"}))
	assert.False(t, isRecordNotFound(errors.New("RecordNotFound")))
}

func TestBlueskyDeleteIsNoop(t *testing.T) {
	account := &BlueskyAccount{logger: zap.NewNop()}
	assert.NoError(t, account.DeleteProfilePhoto(context.Background(), publisher.Photo{ID: "bafkrei"}))
}
