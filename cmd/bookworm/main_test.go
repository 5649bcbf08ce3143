package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectMode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		addURL    string
		authorURL string
		once      bool
		migrate   bool
		want      mode
	}{
		{name: "default serves", want: modeServe},
		{name: "add author", addURL: "https://example.test/author/show/1", want: modeAddAuthor},
		{name: "single author run", authorURL: "https://example.test/author/show/1", want: modeRunOne},
		{name: "once", once: true, want: modeRunAll},
		{name: "bare migrate exits after schema", migrate: true, want: modeMigrateOnly},
		{name: "migrate composes with once", once: true, migrate: true, want: modeRunAll},
		{name: "migrate composes with single run", authorURL: "https://example.test/author/show/1", migrate: true, want: modeRunOne},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, selectMode(tc.addURL, tc.authorURL, tc.once, tc.migrate))
		})
	}
}
