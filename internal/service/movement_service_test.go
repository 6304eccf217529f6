package service

import (
	"alcyxob/boxing-app/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newMovementService(env *testEnv) MovementService {
	return NewMovementService(env.repos.Movements, env.files, zap.NewNop(), 1<<20)
}

func TestCreateMovementRendersTextBlocks(t *testing.T) {
	env := newTestEnv(t)
	svc := newMovementService(env)

	m, err := svc.CreateMovement(env.ctx, MovementInput{
		MovementName: " Jab ",
		MovementContent: []domain.MovementContent{
			{Type: domain.ContentText, Value: "Snap it **back**"},
			{Type: domain.ContentVideo, URL: "https://cdn.test/jab.mp4", HTML: "<b>ignored</b>"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jab", m.MovementName)
	assert.Contains(t, m.MovementContent[0].HTML, "<strong>back</strong>")
	assert.Empty(t, m.MovementContent[1].HTML)

	stored, err := svc.GetMovement(env.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.MovementContent, stored.MovementContent)
}

func TestMovementValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := newMovementService(env)

	_, err := svc.CreateMovement(env.ctx, MovementInput{})
	assert.ErrorIs(t, err, ErrMovementNameRequired)

	_, err = svc.CreateMovement(env.ctx, MovementInput{
		MovementName:    "Hook",
		MovementContent: []domain.MovementContent{{Type: "audio"}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetMovement(env.ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrMovementNotFound)
}

func TestUpdateAndDeleteMovement(t *testing.T) {
	env := newTestEnv(t)
	svc := newMovementService(env)

	m, err := svc.CreateMovement(env.ctx, MovementInput{MovementName: "Cross"})
	require.NoError(t, err)

	m, err = svc.AddMedia(env.ctx, m.ID, Upload{Name: "cross.png", Data: tinyPNG(t)})
	require.NoError(t, err)
	require.Len(t, m.Media, 1)
	assert.Equal(t, domain.ContentImage, m.Media[0].Type)
	assert.Equal(t, "cross.png", m.Media[0].OriginalName)
	key := m.Media[0].FileID
	assert.True(t, env.files.Has(key))

	link, err := svc.MediaLink(env.ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "memory://"+key, link.URL)
	_, err = svc.MediaLink(env.ctx, m.ID, 1)
	assert.ErrorIs(t, err, ErrMediaNotFound)

	updated, err := svc.UpdateMovement(env.ctx, m.ID, MovementInput{MovementName: "Straight right", MovementDesc: "rear hand"})
	require.NoError(t, err)
	assert.Equal(t, "Straight right", updated.MovementName)
	assert.Len(t, updated.Media, 1, "update keeps uploaded media")

	_, err = svc.AddMedia(env.ctx, m.ID, Upload{Name: "notes.txt", Data: []byte("hello")})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteMovement(env.ctx, m.ID))
	assert.False(t, env.files.Has(key))
	assert.ErrorIs(t, svc.DeleteMovement(env.ctx, m.ID), ErrMovementNotFound)
}
