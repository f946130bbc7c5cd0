package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/internal/cli"
	"github.com/dmitrymomot/teamnames/pkg/config"
	"github.com/dmitrymomot/teamnames/pkg/lexicon"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
)

type harness struct {
	t     *testing.T
	store teamname.Store
	lex   *lexicon.Lexicon
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	lex, err := lexicon.Parse([]byte(`{
		"version": 3,
		"adjectives": {"warm": ["Swift"], "cool": ["Bold"]},
		"nouns": {"animals": ["Fox", "Owl"]}
	}`))
	require.NoError(t, err)
	return &harness{t: t, store: teamname.NewMemoryStore(), lex: lex}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	err := cli.Execute(context.Background(), args,
		cli.WithOutput(&out),
		cli.WithErrorOutput(&errOut),
		cli.WithStore(h.store),
		cli.WithLexicon(h.lex),
	)
	return out.String(), err
}

func (h *harness) runJSON(v any, args ...string) {
	h.t.Helper()
	out, err := h.run(append(args, "-o", "json")...)
	require.NoError(h.t, err)
	require.NoError(h.t, json.Unmarshal([]byte(out), v), out)
}

func TestReserveConfirmFlow(t *testing.T) {
	h := newHarness(t)

	var res []teamname.Reservation
	h.runJSON(&res, "reserve", "quiz")
	require.Len(t, res, 1)
	assert.False(t, res[0].Fallback)
	assert.Equal(t, 3, res[0].LexiconVersion)
	assert.Equal(t, 4, res[0].Total)
	assert.Equal(t, 3, res[0].Remaining)

	var conf teamname.Confirmation
	h.runJSON(&conf, "confirm", "quiz", res[0].Token, "--name", "  "+res[0].Name+" ")
	assert.Equal(t, res[0].Name, conf.Name)

	var history []teamname.Record
	h.runJSON(&history, "history", "quiz")
	require.Len(t, history, 1)
	assert.Equal(t, teamname.StatusAssigned, history[0].Status())

	var released map[string]bool
	h.runJSON(&released, "release", "quiz", res[0].Token)
	assert.True(t, released["released"])
	h.runJSON(&released, "release", "quiz", res[0].Token)
	assert.False(t, released["released"])
}

func TestReserveBatchAndFilters(t *testing.T) {
	h := newHarness(t)

	var res []teamname.Reservation
	h.runJSON(&res, "reserve", "quiz", "-n", "10", "--tone", "WARM")
	require.Len(t, res, 2)
	for _, r := range res {
		assert.Contains(t, []string{"SwiftFox", "SwiftOwl"}, r.Name)
	}

	var inv teamname.Inventory
	h.runJSON(&inv, "inventory", "quiz")
	assert.Equal(t, teamname.Inventory{Total: 4, Reserved: 2, Available: 2}, inv)

	h.runJSON(&res, "reserve", "quiz", "--tone", "warm")
	require.Len(t, res, 1)
	assert.True(t, res[0].Fallback)
	assert.Contains(t, res[0].Name, teamname.DefaultFallbackPrefix)
}

func TestConfirmMismatch(t *testing.T) {
	h := newHarness(t)

	var res []teamname.Reservation
	h.runJSON(&res, "reserve", "quiz")

	_, err := h.run("confirm", "quiz", res[0].Token, "--name", "SomethingElse")
	assert.ErrorIs(t, err, cli.ErrNotConfirmed)

	_, err = h.run("confirm", "quiz", "unknown-token")
	assert.ErrorIs(t, err, cli.ErrNotConfirmed)
}

func TestResetAndReleaseName(t *testing.T) {
	h := newHarness(t)

	var res []teamname.Reservation
	h.runJSON(&res, "reserve", "quiz", "-n", "3")
	require.Len(t, res, 3)

	out, err := h.run("release-name", "quiz", res[0].Name)
	require.NoError(t, err)
	assert.Contains(t, out, "released "+res[0].Name)

	var reset map[string]int64
	h.runJSON(&reset, "reset", "quiz")
	assert.Equal(t, int64(2), reset["released"])
}

func TestTableOutput(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("reserve", "quiz")
	require.NoError(t, err)
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Remaining")

	out, err = h.run("history", "quiz")
	require.NoError(t, err)
	assert.Contains(t, out, "reserved")

	out, err = h.run("lexicon", "--names", "-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Tones: cool, default, warm")
	assert.Contains(t, out, "Domains: animals, default")
	for _, name := range []string{"BoldFox", "BoldOwl", "SwiftFox", "SwiftOwl"} {
		assert.Contains(t, out, name)
	}
}

func TestInvalidArguments(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("reserve", "   ")
	assert.ErrorIs(t, err, teamname.ErrInvalidArgument)

	_, err = h.run("reserve", "quiz", "-o", "xml")
	assert.ErrorIs(t, err, cli.ErrUnknownFormat)

	_, err = h.run("reserve")
	assert.Error(t, err)
}

func TestBackends(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		err := cli.Execute(context.Background(), []string{"--store", "cassandra", "health"},
			cli.WithOutput(&bytes.Buffer{}), cli.WithErrorOutput(&bytes.Buffer{}))
		assert.ErrorIs(t, err, cli.ErrUnknownStore)
	})

	t.Run("memory", func(t *testing.T) {
		var out bytes.Buffer
		err := cli.Execute(context.Background(), []string{"--store", "memory", "health"},
			cli.WithOutput(&out), cli.WithErrorOutput(&bytes.Buffer{}))
		require.NoError(t, err)
		assert.Contains(t, out.String(), "memory store is healthy")
	})

	t.Run("sqlite persists between invocations", func(t *testing.T) {
		config.ResetCache()
		t.Cleanup(config.ResetCache)
		t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "teamnames.db"))

		exec := func(args ...string) string {
			var out bytes.Buffer
			err := cli.Execute(context.Background(), append([]string{"--store", "sqlite", "-o", "json"}, args...),
				cli.WithOutput(&out), cli.WithErrorOutput(&bytes.Buffer{}))
			require.NoError(t, err)
			return out.String()
		}

		var res []teamname.Reservation
		require.NoError(t, json.Unmarshal([]byte(exec("reserve", "quiz")), &res))
		require.Len(t, res, 1)

		var conf teamname.Confirmation
		require.NoError(t, json.Unmarshal([]byte(exec("confirm", "quiz", res[0].Token)), &conf))
		assert.Equal(t, res[0].Name, conf.Name)
	})
}
