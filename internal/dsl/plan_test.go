package dsl

import (
	"testing"
	"time"

	"github.com/rocketship-ai/loadplan/internal/plugins/script/registry"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
	"github.com/rocketship-ai/loadplan/internal/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPlanBuild(t *testing.T) {
	reg := registry.New()
	store := props.New()
	store.Init(map[string]any{"env": "staging"})

	cb := NewCallbackScript(reg, KindPreProcessor, "", runtime.PreProcessorShape,
		runtime.Func[*runtime.PreProcessorVars](noop), DefaultRemap)

	plan := NewPlan("Smoke").
		WithThreads(2).
		WithProperty("host", "example.com").
		Add(cb, RawSampler("Fetch", "echo ok").WithLanguage("shell"), Delay("", time.Second), Log("", "fetched ${Fetch}"))

	built, err := plan.Build(store)
	require.NoError(t, err)

	assert.Equal(t, PlanVersion, built.Version)
	assert.Equal(t, "Smoke", built.Name)
	assert.Equal(t, 2, built.Threads)
	assert.Equal(t, 1, built.Iterations)
	require.Len(t, built.Elements, 4)

	assert.Equal(t, KindPreProcessor, built.Elements[0].Kind)
	assert.Equal(t, "Script PreProcessor", built.Elements[0].Name)
	assert.Equal(t, "Fetch", built.Elements[1].Name)
	assert.Equal(t, "shell", built.Elements[1].Language)
	assert.Equal(t, Element{Kind: KindDelay, Name: "Constant Timer", Duration: "1s"}, *built.Elements[2])
	assert.Equal(t, Element{Kind: KindLog, Name: "Log Message", Message: "fetched ${Fetch}"}, *built.Elements[3])

	assert.Equal(t, "example.com", store.Get("host"))
	assert.Equal(t, "staging", store.Get("env"))
	assert.NotNil(t, store.Get(cb.ID()))

	plan.Close(store)
	assert.Nil(t, store.Get(cb.ID()))
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, "example.com", store.Get("host"), "plan properties outlive the plan")
}

func TestPlanBuild_Errors(t *testing.T) {
	initialized := props.New()
	initialized.Init(nil)

	tests := []struct {
		name        string
		plan        *Plan
		store       PropertyStore
		expectedErr string
	}{
		{
			name:        "no threads",
			plan:        NewPlan("p").WithThreads(0),
			store:       initialized,
			expectedErr: "threads must be at least 1",
		},
		{
			name:        "no iterations",
			plan:        NewPlan("p").WithIterations(0),
			store:       initialized,
			expectedErr: "iterations must be at least 1",
		},
		{
			name:        "properties need a loaded store",
			plan:        NewPlan("p").WithProperty("a", 1),
			store:       props.New(),
			expectedErr: "property store is not initialized",
		},
		{
			name:        "empty log message",
			plan:        NewPlan("p").Add(Log("", "")),
			store:       initialized,
			expectedErr: "log message is required",
		},
		{
			name:        "negative delay",
			plan:        NewPlan("p").Add(Delay("wait", -time.Second)),
			store:       initialized,
			expectedErr: "delay duration cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.plan.Build(tt.store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestPlanBuild_CallbackBeforePropertiesAreLoaded(t *testing.T) {
	reg := registry.New()
	cb := NewCallbackScript(reg, KindSampler, "Go", runtime.SamplerShape,
		runtime.Func[*runtime.SamplerVars](func(*runtime.SamplerVars) error { return nil }), DefaultRemap)
	t.Cleanup(func() { cb.Release(nil) })

	store := new(MockStore)
	store.On("Initialized").Return(false)

	_, err := NewPlan("early").Add(RawPreProcessor("", "noop"), cb).Build(store)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreNotInitialized)
	assert.Contains(t, err.Error(), "element 1")
	store.AssertNotCalled(t, "PutAll", mock.Anything)
}

func TestPlanClose_OnlyReleasesCallbacks(t *testing.T) {
	reg := registry.New()
	cb := NewCallbackScript(reg, KindPostProcessor, "", runtime.PostProcessorShape,
		runtime.Func[*runtime.PostProcessorVars](func(*runtime.PostProcessorVars) error { return nil }), DefaultRemap)

	store := new(MockStore)
	store.On("Delete", []string{cb.ID()}).Return().Once()

	NewPlan("close").Add(RawSampler("", "noop"), Delay("", 0), cb).Close(store)

	store.AssertExpectations(t)
	_, err := reg.Lookup(cb.ID())
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
