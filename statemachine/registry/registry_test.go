package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/amp-labs/amp-fsm/statemachine/registry"
	smtesting "github.com/amp-labs/amp-fsm/statemachine/testing"
	"github.com/neilotoole/slogt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authConfig(t *testing.T) *statemachine.Config[string, string] {
	t.Helper()

	config, err := statemachine.BuildConfig[string, string](smtesting.AuthDocument(), nil)
	require.NoError(t, err)

	return config
}

func playerConfig(t *testing.T) *statemachine.Config[string, string] {
	t.Helper()

	config, err := statemachine.BuildConfig[string, string](smtesting.PlayerDocument(), nil)
	require.NoError(t, err)

	return config
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	require.NoError(t, registry.Create(reg, "auth", authConfig(t)))

	auth, err := registry.Get[string, string](reg, "auth")
	require.NoError(t, err)
	assert.Equal(t, "loggedOut", auth.State())
	assert.Equal(t, "auth", auth.Name())

	require.NoError(t, auth.Send(t.Context(), "LOGIN"))

	again, err := registry.Get[string, string](reg, "auth")
	require.NoError(t, err)
	assert.Same(t, auth, again, "lookups share the registered machine")
	assert.Equal(t, "loggedIn", again.State())
}

func TestCreateDuplicateName(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	require.NoError(t, registry.Create(reg, "auth", authConfig(t)))

	auth, err := registry.Get[string, string](reg, "auth")
	require.NoError(t, err)
	require.NoError(t, auth.Send(t.Context(), "LOGIN"))

	err = registry.Create(reg, "auth", playerConfig(t))
	require.ErrorIs(t, err, registry.ErrDuplicateName)
	assert.Equal(t, `FSM "auth" already exists`, err.Error())

	auth, err = registry.Get[string, string](reg, "auth")
	require.NoError(t, err)
	assert.Equal(t, "loggedIn", auth.State(), "the original machine is untouched")
	assert.Equal(t, 1, reg.Len())
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	_, err := registry.Get[string, string](reg, "nonexistent")
	require.ErrorIs(t, err, registry.ErrNotFound)
	assert.Equal(t, `FSM "nonexistent" not found`, err.Error())

	_, err = reg.Lookup("nonexistent")
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestCreateErrors(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	require.ErrorIs(t, registry.Create(reg, "", authConfig(t)), registry.ErrNameRequired)

	err := registry.Create(reg, "broken", &statemachine.Config[string, string]{Initial: "x"})
	require.ErrorIs(t, err, statemachine.ErrInvalidConfig)
	assert.Zero(t, reg.Len())
}

type doorState string

type doorEvent string

func TestGetTypeMismatch(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	config, err := statemachine.NewBuilder[doorState, doorEvent]("closed").
		Transition("closed", "OPEN", "open").
		Transition("open", "CLOSE", "closed").
		Build()
	require.NoError(t, err)

	require.NoError(t, registry.Create(reg, "door", config))

	_, err = registry.Get[string, string](reg, "door")
	require.ErrorIs(t, err, registry.ErrTypeMismatch)

	door, err := registry.Get[doorState, doorEvent](reg, "door")
	require.NoError(t, err)
	assert.Equal(t, doorState("closed"), door.State())
}

func TestResetAll(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	require.NoError(t, registry.Create(reg, "auth", authConfig(t)))
	require.NoError(t, registry.Create(reg, "player", playerConfig(t)))

	auth, err := registry.Get[string, string](reg, "auth")
	require.NoError(t, err)

	player, err := registry.Get[string, string](reg, "player")
	require.NoError(t, err)

	require.NoError(t, auth.Send(t.Context(), "LOGIN"))
	require.NoError(t, player.Send(t.Context(), "PLAY"))
	require.NoError(t, player.Send(t.Context(), "PAUSE"))

	reg.ResetAll()

	smtesting.AssertThat(t, auth, smtesting.InState("loggedOut"), smtesting.PreviousWas("loggedIn"))
	smtesting.AssertThat(t, player, smtesting.InState("stopped"), smtesting.PreviousWas("paused"))

	assert.Equal(t, []string{"auth", "player"}, reg.Names(), "reset removes nothing")
}

func TestResetAllEmpty(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.ResetAll()

	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.Names())
}

func TestNamesNaturalOrder(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	for _, name := range []string{"worker10", "worker2", "worker1"} {
		require.NoError(t, registry.Create(reg, name, authConfig(t)))
	}

	assert.Equal(t, []string{"worker1", "worker2", "worker10"}, reg.Names())
}

func TestConcurrentCreateSameName(t *testing.T) {
	t.Parallel()

	const workers = 32

	reg := registry.New()
	config := authConfig(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)

	for range workers {
		wg.Go(func() {
			err := registry.Create(reg, "shared", config)

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, registry.ErrDuplicateName) {
				dupes++
			}
		})
	}

	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, dupes)
	assert.Equal(t, 1, reg.Len())
}

func TestConcurrentCreateDistinctNames(t *testing.T) {
	t.Parallel()

	const workers = 32

	reg := registry.New()
	config := authConfig(t)

	var wg sync.WaitGroup

	for i := range workers {
		wg.Go(func() {
			assert.NoError(t, registry.Create(reg, fmt.Sprintf("m%d", i), config))
		})
	}

	wg.Wait()

	assert.Equal(t, workers, reg.Len())
}

func TestRegistryOptionsApplyToMachines(t *testing.T) {
	t.Parallel()

	promRegistry := prometheus.NewRegistry()

	reg := registry.New(
		statemachine.WithMetrics(statemachine.NewMetrics(promRegistry)),
		statemachine.WithLogger(statemachine.NewSlogLogger(slogt.New(t))),
	)

	require.NoError(t, reg.Load([]*statemachine.Document{smtesting.AuthDocument()}, nil))

	instance, err := reg.Lookup("auth")
	require.NoError(t, err)
	require.NoError(t, instance.Fire(t.Context(), "LOGIN"))

	count, err := testutil.GatherAndCount(promRegistry, "statemachine_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	docs := []*statemachine.Document{smtesting.AuthDocument(), smtesting.PlayerDocument()}
	require.NoError(t, reg.Load(docs, statemachine.NewHookFactory()))
	assert.Equal(t, []string{"auth", "player"}, reg.Names())

	err := reg.Load([]*statemachine.Document{smtesting.PlayerDocument()}, nil)
	require.ErrorIs(t, err, registry.ErrDuplicateName)

	bad := smtesting.AuthDocument()
	bad.Name = "bad"
	bad.States["loggedIn"] = statemachine.StateDocument{
		On:      map[string]string{"LOGOUT": "loggedOut"},
		OnEnter: &statemachine.HookConfig{Type: "teleport"},
	}

	err = reg.Load([]*statemachine.Document{bad}, nil)
	require.ErrorIs(t, err, statemachine.ErrUnknownHookType)
	assert.Equal(t, 2, reg.Len())
}
