package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

var (
	managedRef = core.TableRef{Element: "DataMiner IDP", Table: 1100, Column: 1104}
	refreshRef = core.ParameterRef{Element: "DataMiner IDP", Parameter: 72}
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.AddElement(core.Element{AgentID: 1, ElementID: 1, Name: "A"}, map[string]string{"IDP": "true"})
	m.AddElement(core.Element{AgentID: 1, ElementID: 2, Name: "B"}, nil)
	m.AddToView("Encoders", "1/2")
	m.SetTable(managedRef, map[string]string{"1/1": "A"})
	m.AddParameter(refreshRef)

	all, err := m.ListElements(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inView, err := m.ListElements(ctx, "Encoders")
	require.NoError(t, err)
	assert.Equal(t, []core.Element{{AgentID: 1, ElementID: 2, Name: "B"}}, inView)

	_, err = m.ListElements(ctx, "Missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	v, err := m.GetProperty(ctx, "1/1", "IDP")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	_, err = m.GetProperty(ctx, "1/2", "IDP")
	assert.ErrorIs(t, err, core.ErrNotFound, "property not defined on element")
	_, err = m.GetProperty(ctx, "9/9", "IDP")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, m.SetProperty(ctx, "1/1", "IDP", ""))
	v, _ = m.Property("1/1", "IDP")
	assert.Equal(t, "", v)
	assert.Equal(t, []PropertyWrite{{Key: "1/1", Name: "IDP", Value: ""}}, m.Writes)

	rows, err := m.ReadTable(ctx, managedRef)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1/1": "A"}, rows)
	rows["1/9"] = "mutated"
	again, _ := m.ReadTable(ctx, managedRef)
	assert.Len(t, again, 1, "callers get a copy")

	_, err = m.ReadTable(ctx, core.TableRef{Element: "DataMiner IDP", Table: 1900, Column: 1903})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, m.Trigger(ctx, refreshRef, "1"))
	assert.Equal(t, []TriggerCall{{Element: "DataMiner IDP", Parameter: 72, Value: "1"}}, m.Triggers)
	assert.ErrorIs(t, m.Trigger(ctx, core.ParameterRef{Element: "DataMiner IDP", Parameter: 14}, "x"), core.ErrNotFound)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	_, err := m.ListElements(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.Trigger(ctx, refreshRef, "1"), context.Canceled)
}
