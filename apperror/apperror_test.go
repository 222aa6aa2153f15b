package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t, "Erro ao conectar: connection refused",
		Wrap(KindConnection, "Erro ao conectar", cause).Error())
	assert.Equal(t, "connection refused", Wrap(KindQuery, "", cause).Error())
	assert.Equal(t, "Estado não encontrado", New(KindNotFound, "Estado não encontrado").Error())
	assert.Equal(t, "ValidationError", (&Error{Kind: KindValidation}).Error())
	assert.Equal(t, "QueryError", Wrap(KindQuery, "", errors.New("")).Error())
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(KindQuery, "x", nil))
}

func TestKindOfThroughWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("alerts: %w", Wrap(KindConnection, "down", cause))

	assert.Equal(t, KindConnection, KindOf(err))
	assert.True(t, Is(err, KindConnection))
	assert.False(t, Is(err, KindQuery))
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, KindUnknown, KindOf(cause))
	assert.False(t, Is(nil, KindUnknown))
}
