package services

import (
	"testing"

	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListModules(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.services.Module.CreateModule(env.db, dto.CreateModuleRequest{
		Title:       "Study Abroad",
		Description: "University and graduate programs",
		Category:    "education",
		Fields: map[string]interface{}{
			"destination": map[string]interface{}{"type": "text", "required": true},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Study Abroad", created.Title)

	listed, err := env.services.Module.ListModules(env.db)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Contains(t, listed[0].Fields, "destination")
}

func TestGetModuleNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Module.GetModule(env.db, 42)
	requireAppErrorCode(t, err, apperrors.CodeModuleNotFound)
}
