package rigs

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nhgate/internal/repository/api/nicehash"
)

type apiMock struct {
	mock.Mock
}

func (m *apiMock) Rigs(ctx context.Context) (nicehash.RawMessage, error) {
	args := m.Called(ctx)
	raw, _ := args.Get(0).(nicehash.RawMessage)
	return raw, args.Error(1)
}

const rigsFixture = `{"miningRigs":[
	{"rigId":"1","name":"alpha","minerStatus":"MINING"},
	{"rigId":"2","name":"beta","minerStatus":"OFFLINE"},
	{"rigId":"3","name":"alpha","minerStatus":"STOPPED"},
	{"rigId":"4","name":"gamma"}
]}`

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		rig  string
		want string
		err  error
	}{
		{name: "single", rig: "beta", want: `"OFFLINE"`},
		{name: "duplicate name keeps last", rig: "alpha", want: `"STOPPED"`},
		{name: "no status", rig: "gamma", want: `null`},
		{name: "unknown", rig: "delta", err: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &apiMock{}
			api.On("Rigs", mock.Anything).Return(nicehash.RawMessage(rigsFixture), nil).Once()

			got, err := New(api).Status(context.Background(), tt.rig)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, tt.want, string(got))
			}
			api.AssertExpectations(t)
		})
	}
}

func TestStatusPropagatesAPIError(t *testing.T) {
	apiErr := &nicehash.APIError{Status: 401, Reason: "Unauthorized"}
	api := &apiMock{}
	api.On("Rigs", mock.Anything).Return(nil, apiErr)

	_, err := New(api).Status(context.Background(), "alpha")

	var got *nicehash.APIError
	require.True(t, errors.As(err, &got))
	assert.True(t, got.Unauthorized())
}

func TestList(t *testing.T) {
	api := &apiMock{}
	api.On("Rigs", mock.Anything).Return(nicehash.RawMessage(rigsFixture), nil)

	rigs, err := New(api).List(context.Background())
	require.NoError(t, err)
	require.Len(t, rigs, 4)
	assert.Equal(t, Rig{ID: "2", Name: "beta", MinerStatus: "OFFLINE"}, rigs[1])
}

func TestNotFoundSurvivesWrapping(t *testing.T) {
	api := new(apiMock)
	api.On("Rigs", mock.Anything).Return(nicehash.RawMessage(rigsFixture), nil)

	_, err := New(api).Status(context.Background(), "delta")
	wrapped := errors.Wrap(err, "status")

	require.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, "status: rig not found", wrapped.Error())
}
