package respawn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/screepskernel/kernel/internal/durable"
	"github.com/screepskernel/kernel/internal/hostctx"
)

func TestDetectFreshWorld(t *testing.T) {
	d := NewDetector()
	ctx := hostctx.Context{Objects: nil, Root: durable.New()}
	status := d.Detect(ctx)
	assert.True(t, status.NeedsRespawn)
}

func TestDetectNotFreshWithLiveObjects(t *testing.T) {
	d := NewDetector()
	ctx := hostctx.Context{
		Objects: []hostctx.GameObject{{ID: "c1", Role: "harvester"}},
		Root:    durable.New(),
	}
	status := d.Detect(ctx)
	assert.False(t, status.NeedsRespawn)
}

func TestDetectNotFreshWithPersistedTasks(t *testing.T) {
	d := NewDetector()
	root := durable.New()
	root.Tasks()["resumed"] = map[string]any{"id": "resumed"}
	ctx := hostctx.Context{Objects: nil, Root: root}
	status := d.Detect(ctx)
	assert.False(t, status.NeedsRespawn)
}

func TestDetectorMinRoleCountThreshold(t *testing.T) {
	d := &Detector{MinRoleCount: 2}
	ctx := hostctx.Context{
		Objects: []hostctx.GameObject{{ID: "c1", Role: "harvester"}, {ID: "c2", Role: "harvester"}},
		Root:    durable.New(),
	}
	status := d.Detect(ctx)
	assert.True(t, status.NeedsRespawn)
}
