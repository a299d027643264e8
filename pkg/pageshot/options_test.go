package pageshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsDefaults(t *testing.T) {
	options := NewOptions()

	assert.Equal(t, "http://localhost:8000/", options.URL)
	assert.Equal(t, "index.png", options.Output)
	assert.Equal(t, 1024, options.CaptureWidth)
	assert.Equal(t, 768, options.CaptureHeight)
	assert.Equal(t, EngineChromedp, options.Engine)
	assert.Zero(t, options.Timeout)
	assert.True(t, options.FailOnHTTPError)
	assert.False(t, options.StrictRender)
	assert.NoError(t, options.Validate())
}

func TestOptionsRequest(t *testing.T) {
	req := NewOptions().Request()

	assert.Equal(t, PageLoadRequest{
		URL:      "http://localhost:8000/",
		Viewport: Viewport{Width: 1024, Height: 768},
	}, req)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		target error
	}{
		{name: "zero width", modify: func(o *Options) { o.CaptureWidth = 0 }, target: ErrInvalidViewport},
		{name: "negative height", modify: func(o *Options) { o.CaptureHeight = -1 }, target: ErrInvalidViewport},
		{name: "unknown engine", modify: func(o *Options) { o.Engine = "phantom" }, target: ErrUnknownEngine},
		{name: "empty output", modify: func(o *Options) { o.Output = "" }},
		{name: "negative timeout", modify: func(o *Options) { o.Timeout = -5 }},
		{name: "empty url", modify: func(o *Options) { o.URL = " " }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			options := NewOptions()
			tc.modify(&options)

			err := options.Validate()
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "http://localhost:8000/", want: "http://localhost:8000/"},
		{in: "  https://example.com/a  ", want: "https://example.com/a"},
		{in: "localhost:8000/", want: "http://localhost:8000/"},
		{in: "example.com", want: "http://example.com"},
		{in: "127.0.0.1/x", want: "http://127.0.0.1/x"},
		{in: "file:///tmp/index.html", want: "file:///tmp/index.html"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizeURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := NormalizeURL("")
	assert.Error(t, err)
}

func TestCheckStatusCode(t *testing.T) {
	status, err := checkStatusCode("http://x/", 200, true)
	assert.Equal(t, StatusSuccess, status)
	assert.NoError(t, err)

	status, err = checkStatusCode("http://x/", 500, true)
	assert.Equal(t, StatusFail, status)
	assert.EqualError(t, err, "load http://x/: status 500")

	status, err = checkStatusCode("http://x/", 404, false)
	assert.Equal(t, StatusSuccess, status)
	assert.NoError(t, err)
}
