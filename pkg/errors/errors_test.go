package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "transport with status",
			err:  Transport(OpCreateFolder, 500, "unexpected status", nil),
			want: "create_folder transport error (code 500): unexpected status",
		},
		{
			name: "api error",
			err:  API(OpFetch, 5, "User authorization failed"),
			want: "fetch api error (code 5): User authorization failed",
		},
		{
			name: "config without op",
			err:  Config("vk_token is missing", nil),
			want: "config error: vk_token is missing",
		},
		{
			name: "wrapped cause",
			err:  Schema(OpFetch, "invalid response", io.ErrUnexpectedEOF),
			want: "fetch schema error: invalid response: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTypeOfThroughWrapping(t *testing.T) {
	base := Transport(OpUpload, 0, "network error", io.EOF)
	wrapped := fmt.Errorf("uploading 10.jpg: %w", base)

	assert.Equal(t, ErrorTypeTransport, TypeOf(wrapped))
	assert.Equal(t, OpUpload, OpOf(wrapped))
	assert.True(t, IsType(wrapped, ErrorTypeTransport))
	assert.True(t, stderrors.Is(wrapped, io.EOF))

	assert.Equal(t, ErrorType(""), TypeOf(io.EOF))
	assert.Equal(t, Op(""), OpOf(nil))
}
