package transcript

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/wpphistory/internal/chatstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaLayout(t *testing.T) {
	l, err := ParseMediaLayout("")
	require.NoError(t, err)
	assert.Equal(t, LayoutConversation, l)

	l, err = ParseMediaLayout("flat")
	require.NoError(t, err)
	assert.Equal(t, LayoutFlat, l)

	_, err = ParseMediaLayout("nested")
	assert.Error(t, err)
}

func TestMediaMissingPayload(t *testing.T) {
	store := newFakeStore()
	store.media[1] = &chatstore.MediaItem{ID: 1}
	store.media[2] = &chatstore.MediaItem{ID: 2, Latitude: coord(1.5)}
	r := NewMediaRenderer(store, newFakeResolver(t), testDomain, t.TempDir(), LayoutFlat, false, nil)

	tests := []struct {
		kind MessageKind
		ref  sql.NullInt64
		want string
	}{
		{KindImage, num(1), "[missing image]"},
		{KindVideo, num(1), "[missing video]"},
		{KindAudio, num(1), "[missing audio]"},
		{KindContact, num(1), "[missing contact]"},
		{KindLocation, num(1), "[missing location]"},
		{KindLocation, num(2), "[missing location]"},
		{KindImage, sql.NullInt64{}, "[missing image]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := r.Render(tt.kind, tt.ref, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, len(tests), r.Missing())
}

func TestMediaMissingItemRowIsFatal(t *testing.T) {
	r := NewMediaRenderer(newFakeStore(), newFakeResolver(t), testDomain, t.TempDir(), LayoutFlat, false, nil)

	_, err := r.Render(KindImage, num(99), "")
	assert.ErrorIs(t, err, chatstore.ErrMissingRecord)
}

func TestMediaRejectsNonMediaKind(t *testing.T) {
	r := NewMediaRenderer(newFakeStore(), newFakeResolver(t), testDomain, t.TempDir(), LayoutFlat, false, nil)

	_, err := r.Render(KindText, num(1), "")
	assert.Error(t, err)
}

func TestMediaCopiesImageFlat(t *testing.T) {
	store := newFakeStore()
	store.media[3] = &chatstore.MediaItem{ID: 3, LocalPath: str("Media/123@s/a/b/photo.jpg")}
	resolver := newFakeResolver(t)
	resolver.add("Library/Media/123@s/a/b/photo.jpg", "jpeg-bytes")
	out := t.TempDir()
	r := NewMediaRenderer(store, resolver, testDomain, out, LayoutFlat, false, nil)

	got, err := r.Render(KindImage, num(3), "Alice")
	require.NoError(t, err)
	assert.Equal(t, `<a href="media/photo.jpg"><img src="media/photo.jpg" style="width:200px;"></a>`, got)

	data, err := os.ReadFile(filepath.Join(out, "media", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	_, err = os.Stat(resolver.files["Library/Media/123@s/a/b/photo.jpg"])
	assert.NoError(t, err, "source blob must not be removed")
}

func TestMediaCopiesPerConversation(t *testing.T) {
	store := newFakeStore()
	store.media[7] = &chatstore.MediaItem{ID: 7, LocalPath: str("/Media/clip.mp4")}
	store.media[8] = &chatstore.MediaItem{ID: 8, LocalPath: str("Media/voice.opus")}
	resolver := newFakeResolver(t)
	resolver.add("Library/Media/clip.mp4", "mp4")
	resolver.add("Library/Media/voice.opus", "opus")
	out := t.TempDir()
	r := NewMediaRenderer(store, resolver, testDomain, out, LayoutConversation, false, nil)

	got, err := r.Render(KindVideo, num(7), "Alice")
	require.NoError(t, err)
	assert.Equal(t, `<a href="media/Alice/7-clip.mp4"><video src="media/Alice/7-clip.mp4" style="width:200px;" controls></a>`, got)
	assert.FileExists(t, filepath.Join(out, "media", "Alice", "7-clip.mp4"))

	got, err = r.Render(KindAudio, num(8), "Bob")
	require.NoError(t, err)
	assert.Equal(t, `<a href="media/Bob/8-voice.opus"><audio src="media/Bob/8-voice.opus" style="width:200px;" controls></a>`, got)
}

func TestMediaLinkEscapesPathSegments(t *testing.T) {
	store := newFakeStore()
	store.media[5] = &chatstore.MediaItem{ID: 5, LocalPath: str("Media/a%1.jpg")}
	resolver := newFakeResolver(t)
	resolver.add("Library/Media/a%1.jpg", "jpeg")
	out := t.TempDir()
	r := NewMediaRenderer(store, resolver, testDomain, out, LayoutConversation, true, nil)

	got, err := r.Render(KindImage, num(5), "Class #2")
	require.NoError(t, err)
	assert.Equal(t, `<a href="media/Class%20%232/5-a%251.jpg"><img src="media/Class%20%232/5-a%251.jpg" style="width:200px;"></a>`, got)
	assert.FileExists(t, filepath.Join(out, "media", "Class #2", "5-a%1.jpg"))
}

func TestMediaNotInBackupIsPlaceholder(t *testing.T) {
	store := newFakeStore()
	store.media[1] = &chatstore.MediaItem{ID: 1, LocalPath: str("Media/gone.mp4")}
	r := NewMediaRenderer(store, newFakeResolver(t), testDomain, t.TempDir(), LayoutFlat, false, nil)

	got, err := r.Render(KindVideo, num(1), "")
	require.NoError(t, err)
	assert.Equal(t, "[missing video]", got)
	assert.Equal(t, 1, r.Missing())
}

func TestMediaCopyFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.media[1] = &chatstore.MediaItem{ID: 1, LocalPath: str("Media/x.jpg")}
	resolver := newFakeResolver(t)
	resolver.files["Library/Media/x.jpg"] = filepath.Join(t.TempDir(), "does-not-exist")
	r := NewMediaRenderer(store, resolver, testDomain, t.TempDir(), LayoutFlat, false, nil)

	_, err := r.Render(KindImage, num(1), "")
	assert.Error(t, err)
}

func TestMediaContactCard(t *testing.T) {
	store := newFakeStore()
	store.media[1] = &chatstore.MediaItem{ID: 1, VCardName: str("Bob Smith")}
	store.media[2] = &chatstore.MediaItem{ID: 2, VCardName: str("=E2=9C=93")}
	store.media[3] = &chatstore.MediaItem{ID: 3, VCardName: str("=FF")}
	store.media[4] = &chatstore.MediaItem{ID: 4, VCardName: str("=E2=9C")}
	store.media[5] = &chatstore.MediaItem{ID: 5, VCardName: str("=4A=C3=BAlia")}
	r := NewMediaRenderer(store, newFakeResolver(t), testDomain, t.TempDir(), LayoutFlat, false, nil)

	tests := []struct {
		id   int64
		want string
	}{
		{1, "[contact - Bob Smith]"},
		{2, "[contact - ✓]"},
		{3, "[contact - =FF]"},
		{4, "[contact - =E2=9C]"},
		{5, "[contact - Júlia]"},
	}
	for _, tt := range tests {
		got, err := r.Render(KindContact, num(tt.id), "")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDecodeQuotedPrintable(t *testing.T) {
	assert.Equal(t, "✓", decodeQuotedPrintable("=E2=9C=93"))
	assert.Equal(t, "=FF", decodeQuotedPrintable("=FF"))
}

func TestMediaLocation(t *testing.T) {
	store := newFakeStore()
	store.media[1] = &chatstore.MediaItem{ID: 1, Latitude: coord(51.5), Longitude: coord(-0.1275)}
	store.media[2] = &chatstore.MediaItem{ID: 2, Latitude: coord(12), Longitude: coord(0)}
	r := NewMediaRenderer(store, newFakeResolver(t), testDomain, t.TempDir(), LayoutFlat, false, nil)

	got, err := r.Render(KindLocation, num(1), "")
	require.NoError(t, err)
	assert.Equal(t, "[location - 51.5, -0.1275]", got)

	got, err = r.Render(KindLocation, num(2), "")
	require.NoError(t, err)
	assert.Equal(t, "[location - 12.0, 0.0]", got)
}

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{51.5, "51.5"},
		{-180, "-180.0"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{-0.000015, "-1.5e-05"},
		{1e16, "1e+16"},
		{1234567, "1234567.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCoordinate(tt.in), "formatCoordinate(%v)", tt.in)
	}
}

func TestMediaEscapesWhenAsked(t *testing.T) {
	store := newFakeStore()
	store.media[1] = &chatstore.MediaItem{ID: 1, VCardName: str("Tom & Jerry")}
	r := NewMediaRenderer(store, newFakeResolver(t), testDomain, t.TempDir(), LayoutFlat, true, nil)

	got, err := r.Render(KindContact, num(1), "")
	require.NoError(t, err)
	assert.Equal(t, "[contact - Tom &amp; Jerry]", got)
}
