package service

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workitem-resolver-backend/internal/session"
)

func newTestIcons(t *testing.T, f *fakePolarion) *IconService {
	t.Helper()

	sess := session.NewSession(f.config(), session.NewNotifier())
	require.NoError(t, sess.Initialize())

	return NewIconService(sess, time.Minute)
}

func TestFetchIcon_ReturnsDataURI(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	f.icons["/icons/open.svg"] = []byte("<svg/>")

	icons := newTestIcons(t, f)

	dataURI, ok := icons.FetchIcon("/icons/open.svg")
	require.True(t, ok)
	assert.Equal(t, "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte("<svg/>")), dataURI)

	// Served from cache on repeat
	_, ok = icons.FetchIcon("/icons/open.svg")
	assert.True(t, ok)

	_, _, _, _, _, _, iconRequests := f.counts()
	assert.Equal(t, 1, iconRequests)
}

func TestFetchIcon_MissingIconCachedAsAbsent(t *testing.T) {
	f := newFakePolarion()
	defer f.close()

	icons := newTestIcons(t, f)

	_, ok := icons.FetchIcon("/icons/nope.png")
	assert.False(t, ok)

	_, ok = icons.FetchIcon("/icons/nope.png")
	assert.False(t, ok)

	_, _, _, _, _, _, iconRequests := f.counts()
	assert.Equal(t, 1, iconRequests)
}

func TestFetchIcon_EmptyURL(t *testing.T) {
	f := newFakePolarion()
	defer f.close()

	icons := newTestIcons(t, f)

	_, ok := icons.FetchIcon("")
	assert.False(t, ok)
}

func TestFetchAttachment_PayloadSurvivesRoundTrip(t *testing.T) {
	f := newFakePolarion()
	defer f.close()
	raw := []byte{0x00, 0x01, 0xfe, 0xff}
	f.attachments["att1"] = raw

	icons := newTestIcons(t, f)

	payload, ok := icons.FetchAttachment("P", "ABC-1", "att1")
	require.True(t, ok)

	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	_, ok = icons.FetchAttachment("P", "ABC-1", "att1")
	assert.True(t, ok)

	_, _, _, _, _, attachments, _ := f.counts()
	assert.Equal(t, 1, attachments)
}

func TestMimeTypeForIcon(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"/icons/a.gif", "image/gif"},
		{"/icons/a.jpg", "image/jpeg"},
		{"/icons/a.JPEG", "image/jpeg"},
		{"/icons/a.svg", "image/svg+xml"},
		{"/icons/a.svg?v=2", "image/svg+xml"},
		{"/icons/a.png", "image/png"},
		{"/icons/a", "image/png"},
		{"/icons/a.ico", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, mimeTypeForIcon(tt.url))
		})
	}
}
