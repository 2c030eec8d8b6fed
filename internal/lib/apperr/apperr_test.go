package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusUnprocessableEntity},
		{KindBusinessRule, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindRateLimit, http.StatusTooManyRequests},
		{KindInfrastructure, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
		{Kind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestError_IsMatchesWrappedSentinel(t *testing.T) {
	sentinel := BusinessRule("Недостаточно средств на балансе")
	cause := errors.New("balance 10 < price 20")

	err := fmt.Errorf("services.subscription.Purchase: %w", sentinel.Wrap(cause))

	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, BusinessRule("Подписка уже неактивна")))
	assert.Equal(t, KindBusinessRule, KindOf(err))
}

func TestError_WithDetailsDoesNotMutateOriginal(t *testing.T) {
	base := Validation("Ошибка валидации входных данных")

	withDetails := base.WithDetails(map[string]any{"field": "email"})

	assert.Nil(t, base.Details)
	assert.Equal(t, "email", withDetails.Details["field"])
	assert.True(t, errors.Is(withDetails, base))
}

func TestFrom_UnknownErrorBecomesInternal(t *testing.T) {
	got := From(errors.New("pq: connection reset"))

	require.NotNil(t, got)
	assert.Equal(t, KindInternal, got.Kind)
	assert.NotContains(t, got.Message, "connection reset")
}

func TestInfrastructure_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	err := Infrastructure("Ошибка подключения к базе данных", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, err.Kind.HTTPStatus())
	assert.Contains(t, err.Error(), "refused")
}
