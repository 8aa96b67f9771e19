package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

func TestRegistryRecordAndSnapshot(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("hero")
	assert.False(t, ok)

	r.Record("hero", domain.Variant{Name: "b", Value: "blue"})
	v, ok := r.Get("hero")
	require.True(t, ok)
	assert.Equal(t, "b", v.Name)

	snap := r.Snapshot()
	snap["hero"] = domain.Variant{Name: "tampered"}
	v, _ = r.Get("hero")
	assert.Equal(t, "b", v.Name, "snapshot must not alias the registry")
	assert.Equal(t, 1, r.Len())
}

func TestBusDeliversToListenersInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(n domain.Notification) { got = append(got, "first:"+n.ExperimentID) })
	unsubscribe := b.Subscribe(func(n domain.Notification) { got = append(got, "second:"+n.ExperimentID) })

	b.Publish(domain.Notification{Name: domain.EditsNotificationName, ExperimentID: "a"})
	unsubscribe()
	b.Publish(domain.Notification{Name: domain.EditsNotificationName, ExperimentID: "b"})

	assert.Equal(t, []string{"first:a", "second:a", "first:b"}, got)
	assert.Len(t, b.Published(), 2)
}

func TestBusLateListenerMissesEarlierNotifications(t *testing.T) {
	b := NewBus()
	b.Publish(domain.Notification{ExperimentID: "early"})

	var got []domain.Notification
	b.Subscribe(func(n domain.Notification) { got = append(got, n) })
	assert.Empty(t, got)
}
