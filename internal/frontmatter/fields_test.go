package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stitchdocs/sitegen/internal/errs"
)

func TestDecode_RequiredFields(t *testing.T) {
	fields, err := Decode(map[string]any{
		"title":     "Threading",
		"permalink": "/docs/threading/",
	}, "en/docs/threading.md")
	require.NoError(t, err)
	require.Equal(t, "Threading", fields.Title)
	require.Equal(t, "/docs/threading/", fields.Permalink)
	require.Empty(t, fields.Excerpt)
	require.False(t, fields.TOC)
	require.False(t, fields.HasLastModifiedAt)
}

func TestDecode_MissingTitle_IsMalformedMetadata(t *testing.T) {
	_, err := Decode(map[string]any{"permalink": "/docs/x/"}, "en/docs/x.md")
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrMalformedMetadata))
}

func TestDecode_MissingPermalink_IsMalformedMetadata(t *testing.T) {
	_, err := Decode(map[string]any{"title": "X"}, "en/docs/x.md")
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrMalformedMetadata))
}

func TestDecode_DateForms(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want time.Time
	}{
		{"date only", "2020-05-16", time.Date(2020, 5, 16, 0, 0, 0, 0, time.UTC)},
		{"datetime", "2020-05-16 10:30:00", time.Date(2020, 5, 16, 10, 30, 0, 0, time.UTC)},
		{"native", time.Date(2020, 3, 28, 0, 0, 0, 0, time.UTC), time.Date(2020, 3, 28, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := Decode(map[string]any{
				"title": "t", "permalink": "/p/", "date": tc.in,
			}, "x.md")
			require.NoError(t, err)
			require.True(t, fields.HasDate)
			require.True(t, tc.want.Equal(fields.Date))
		})
	}
}

func TestDecode_InvalidDate_IsMalformedMetadata(t *testing.T) {
	_, err := Decode(map[string]any{
		"title": "t", "permalink": "/p/", "date": "yesterday",
	}, "x.md")
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrMalformedMetadata))
}

func TestDecode_Categories(t *testing.T) {
	fields, err := Decode(map[string]any{
		"title": "t", "permalink": "/p/",
		"categories": []any{"release", "news"},
	}, "x.md")
	require.NoError(t, err)
	require.Equal(t, []string{"release", "news"}, fields.Categories)

	single, err := Decode(map[string]any{
		"title": "t", "permalink": "/p/", "categories": "release",
	}, "x.md")
	require.NoError(t, err)
	require.Equal(t, []string{"release"}, single.Categories)
}

func TestDecode_ExtraFieldsPreserved(t *testing.T) {
	fields, err := Decode(map[string]any{
		"title": "t", "permalink": "/p/", "image": "/assets/x.png",
	}, "x.md")
	require.NoError(t, err)
	require.Equal(t, "/assets/x.png", fields.Extra["image"])
}

func TestFields_MapDecodeStable(t *testing.T) {
	original, err := Decode(map[string]any{
		"title":            "Release 2.1.0",
		"permalink":        "/posts/release-2-1-0/",
		"excerpt":          "Better satin columns.",
		"toc":              true,
		"order":            3,
		"date":             "2020-05-16",
		"last_modified_at": "2020-06-01",
		"categories":       []any{"release"},
	}, "x.md")
	require.NoError(t, err)

	decoded, err := Decode(original.Map(), "x.md")
	require.NoError(t, err)
	require.Equal(t, original.Title, decoded.Title)
	require.Equal(t, original.Permalink, decoded.Permalink)
	require.Equal(t, original.Excerpt, decoded.Excerpt)
	require.Equal(t, original.TOC, decoded.TOC)
	require.Equal(t, original.Order, decoded.Order)
	require.Equal(t, original.Categories, decoded.Categories)
	require.True(t, original.Date.Equal(decoded.Date))
	require.True(t, original.LastModifiedAt.Equal(decoded.LastModifiedAt))
}
