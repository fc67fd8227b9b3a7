package statemachine_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocuments(t *testing.T) {
	t.Parallel()

	docs, err := statemachine.LoadDocuments("testdata/machines.yaml")
	require.NoError(t, err)
	require.Len(t, docs, 2, "empty documents are skipped")

	assert.Equal(t, "auth", docs[0].Name)
	assert.Equal(t, "loggedOut", docs[0].Initial)
	require.NotNil(t, docs[0].States["loggedIn"].OnEnter)
	assert.Equal(t, "sequence", docs[0].States["loggedIn"].OnEnter.Type)

	assert.Equal(t, "player", docs[1].Name)
	assert.Len(t, docs[1].States, 3)

	_, err = statemachine.LoadDocuments("testdata/missing.yaml")
	require.Error(t, err)
}

func TestReadDocumentsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "missing name",
			input:   "initial: a\nstates:\n  a: {}\n",
			wantErr: statemachine.ErrDocumentNameRequired,
		},
		{
			name:    "unknown target",
			input:   "name: m\ninitial: a\nstates:\n  a:\n    on:\n      GO: b\n",
			wantErr: statemachine.ErrTransitionTargetNotFound,
		},
		{
			name:    "undeclared initial",
			input:   "name: m\ninitial: z\nstates:\n  a: {}\n",
			wantErr: statemachine.ErrInitialStateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := statemachine.ReadDocuments(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := statemachine.ReadDocuments(strings.NewReader("name: m\nbogus: true\n"))
	require.Error(t, err, "unknown fields are rejected")

	docs, err := statemachine.DecodeDocuments(strings.NewReader("name: m\ninitial: z\nstates:\n  a: {}\n"))
	require.NoError(t, err, "decoding alone does not validate")
	require.Len(t, docs, 1)
}

func TestLoadDocumentFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"door.yaml": &fstest.MapFile{Data: []byte(`name: door
initial: closed
states:
  closed:
    on:
      OPEN: open
  open:
    on:
      CLOSE: closed
`)},
	}

	doc, err := statemachine.LoadDocumentFromFS(fsys, "door.yaml")
	require.NoError(t, err)
	assert.Equal(t, "door", doc.Name)

	_, err = statemachine.LoadDocumentFromFS(fsys, "window.yaml")
	require.Error(t, err)
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	docs, err := statemachine.LoadDocuments("testdata/machines.yaml")
	require.NoError(t, err)

	config, err := statemachine.BuildConfig[string, string](docs[0], nil)
	require.NoError(t, err)

	assert.Equal(t, "loggedOut", config.Initial)
	assert.NotNil(t, config.States["loggedIn"].OnEnter)
	assert.Nil(t, config.States["loggedOut"].OnEnter)

	machine := statemachine.MustNew(config)
	require.NoError(t, machine.Send(t.Context(), "LOGIN"))
	assert.Equal(t, "loggedIn", machine.State())
}

func TestBuildConfigUnknownHook(t *testing.T) {
	t.Parallel()

	doc := &statemachine.Document{
		Name:    "m",
		Initial: "a",
		States: map[string]statemachine.StateDocument{
			"a": {OnExit: &statemachine.HookConfig{Type: "teleport"}},
		},
	}

	_, err := statemachine.BuildConfig[string, string](doc, statemachine.NewHookFactory())
	require.ErrorIs(t, err, statemachine.ErrUnknownHookType)
	assert.Contains(t, err.Error(), "state a, onExit")
}
