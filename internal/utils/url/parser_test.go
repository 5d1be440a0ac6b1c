package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
		"  https://example.com/padded  ",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateURL(u), u)
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///", "example.com"}
	for _, u := range invalid {
		assert.Error(t, ValidateURL(u), u)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("  https://example.com/a \n")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", got)

	_, err = Normalize("mailto:someone@example.com")
	assert.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{"relative path", "https://example.com/docs/page", "other", "https://example.com/docs/other"},
		{"root relative", "https://example.com/docs/page", "/img/a.png", "https://example.com/img/a.png"},
		{"protocol relative", "https://example.com/", "//cdn.example.com/x.js", "https://cdn.example.com/x.js"},
		{"parent", "https://example.com/a/b/c", "../d", "https://example.com/a/d"},
		{"absolute is untouched", "https://example.com/", "http://other.org/p?q=1", "http://other.org/p?q=1"},
		{"stray percent", "https://example.com/docs/", "/docs/100%zz", "https://example.com/docs/100%25zz"},
		{"space and trailing percent", "https://example.com/docs/", "img/a b%.png", "https://example.com/docs/img/a%20b%25.png"},
		{"valid escape kept", "https://example.com/", "/a%20b%", "https://example.com/a%20b%25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveURL(tt.base, tt.href))
		})
	}
}

func TestResolveURL_IdempotentOnAbsolute(t *testing.T) {
	abs := ResolveURL("https://example.com/x/", "y/z")
	assert.Equal(t, abs, ResolveURL("https://unrelated.net/", abs))
}

func TestHost(t *testing.T) {
	assert.Equal(t, "example.com:8080", Host("http://Example.com:8080/path"))
	assert.Equal(t, "", Host("://bad"))
}
