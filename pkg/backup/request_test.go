package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkbackup/pkg/config"
	apperrors "vkbackup/pkg/errors"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "", want: 5},
		{input: "   ", want: 5},
		{input: "12", want: 12},
		{input: " 3\n", want: 3},
		{input: "0", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "five", wantErr: true},
		{input: "2.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCount(tt.input, config.DefaultPhotoCount)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrorTypeConfig, apperrors.TypeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCountConfiguredDefault(t *testing.T) {
	got, err := ParseCount("", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	got, err = ParseCount(" ", 0)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPhotoCount, got)

	got, err = ParseCount("3", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestRequestValidate(t *testing.T) {
	assert.NoError(t, Request{UserID: "1", Count: 1}.Validate())
	assert.Error(t, Request{UserID: "", Count: 1}.Validate())
	assert.Error(t, Request{UserID: "1", Count: -3}.Validate())
}
