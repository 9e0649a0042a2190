package singleton

import (
	"reflect"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hallwick/stage"
	"github.com/hallwick/stage/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type GameDirector struct {
	Score int
}

type AudioMixer struct {
	Volume float64
}

type Prop struct {
	Kind string
}

// capturePub records the names of published lifecycle events.
type capturePub struct {
	names []string
}

func (pub *capturePub) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		pub.names = append(pub.names, stage.JSONMarshaler.NameFromMessage(msg))
	}
	return nil
}

func (pub *capturePub) Close() error {
	return nil
}

func (pub *capturePub) count(name string) int {
	var n int
	for _, got := range pub.names {
		if got == name {
			n++
		}
	}
	return n
}

func TestInstanceConstructs(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	director := For[GameDirector](k)
	assert.False(t, director.Exists())

	first := director.Instance()
	require.NotNil(t, first)
	assert.True(t, director.Exists())
	assert.Equal(t, 1, w.Current().Len()+w.Resident().Len())

	again := director.Instance()
	assert.Same(t, first, again)
	assert.Equal(t, 1, w.Current().Len()+w.Resident().Len())
}

func TestConstructedActorName(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	Instance[GameDirector](k)

	found := w.Find(reflect.TypeOf((*GameDirector)(nil)))
	require.Len(t, found, 1)
	assert.Equal(t, "singleton:game_director", found[0].Actor.Name())
	assert.True(t, found[0].Actor.Resident())
}

func TestInstanceAdopts(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	// Attached before the type is designated, so the keeper lets it
	// pass unclaimed.
	mixer := &AudioMixer{Volume: 0.8}
	boot := w.Spawn("boot")
	require.NoError(t, boot.Attach(mixer))
	assert.False(t, Exists[AudioMixer](k))

	got := Instance[AudioMixer](k)
	assert.Same(t, mixer, got)
	assert.True(t, Exists[AudioMixer](k))

	// Adoption reuses the existing actor and does not construct.
	assert.Equal(t, 1, w.Current().Len()+w.Resident().Len())
	// Persistence belongs to the attach path, not to adoption.
	assert.False(t, boot.Resident())
}

func TestAttachClaimsAndPersists(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	For[GameDirector](k)

	a := w.Spawn("director")
	require.NoError(t, a.Attach(&GameDirector{Score: 7}))

	assert.True(t, Exists[GameDirector](k))
	assert.True(t, a.Resident())
	assert.Equal(t, "resident", a.Scene())
	assert.Equal(t, 7, Instance[GameDirector](k).Score)
}

func TestDuplicateDiscarded(t *testing.T) {
	var (
		pub = &capturePub{}
		w   = scene.New(scene.OptFeed(pub))
		k   = NewKeeper(w, OptFeed(pub))
	)

	For[GameDirector](k)

	winner := &GameDirector{Score: 1}
	keep := w.Spawn("keep")
	require.NoError(t, keep.Attach(winner))

	loser := &GameDirector{Score: 2}
	drop := w.Spawn("drop")
	require.NoError(t, drop.Attach(loser))

	// The duplicate and its actor are gone before Attach returns.
	assert.False(t, drop.Alive())
	assert.False(t, w.Alive(drop.Handle()))
	assert.Len(t, w.Find(reflect.TypeOf((*GameDirector)(nil))), 1)

	// The canonical instance is untouched.
	assert.True(t, keep.Alive())
	assert.Same(t, winner, Instance[GameDirector](k))

	assert.Equal(t, 1, pub.count("stage.DuplicateDiscarded"))
	assert.Equal(t, 1, pub.count("stage.SingletonClaimed"))
	assert.Equal(t, 1, pub.count("stage.ActorPersisted"))
}

func TestReconcileIdempotent(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	director := For[GameDirector](k)
	inst := director.Instance()

	found := w.Find(reflect.TypeOf((*GameDirector)(nil)))
	require.Len(t, found, 1)

	// Reporting the same attachment again must change nothing.
	k.reconcile(found[0])

	assert.Same(t, inst, director.Instance())
	assert.True(t, found[0].Actor.Alive())
	assert.Len(t, w.Find(reflect.TypeOf((*GameDirector)(nil))), 1)
}

func TestReleaseOnActorDestroy(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	director := For[GameDirector](k)
	first := director.Instance()

	found := w.Find(reflect.TypeOf((*GameDirector)(nil)))
	require.Len(t, found, 1)
	w.DestroyNow(found[0].Actor)

	assert.False(t, director.Exists())

	second := director.Instance()
	assert.NotSame(t, first, second)
	assert.True(t, director.Exists())
}

func TestReleaseOnComponentDestroy(t *testing.T) {
	var (
		pub = &capturePub{}
		w   = scene.New()
		k   = NewKeeper(w, OptFeed(pub))
	)

	For[AudioMixer](k)

	mixer := &AudioMixer{}
	a := w.Spawn("audio")
	require.NoError(t, a.Attach(mixer))
	require.True(t, Exists[AudioMixer](k))

	w.DestroyNow(mixer)

	assert.True(t, a.Alive())
	assert.False(t, Exists[AudioMixer](k))
	assert.Equal(t, 1, pub.count("stage.SingletonReleased"))
}

func TestExistsHasNoSideEffects(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	assert.False(t, Exists[GameDirector](k))
	assert.Equal(t, 0, w.Current().Len()+w.Resident().Len())

	Instance[GameDirector](k)
	assert.True(t, Exists[GameDirector](k))

	require.NoError(t, w.Close())
	assert.False(t, Exists[GameDirector](k))
	assert.Equal(t, 0, w.Current().Len()+w.Resident().Len())
}

func TestClaimSurvivesSceneLoad(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	w.Define("arena", func(w *scene.World) error {
		w.Spawn("crate")
		return nil
	})

	director := For[GameDirector](k)
	inst := director.Instance()

	prop := w.Spawn("prop")
	require.NoError(t, prop.Attach(&Prop{Kind: "barrel"}))

	require.NoError(t, w.Load("arena"))

	// The scene-bound actor died with its scene, the claimed singleton
	// rode out the load in the resident set.
	assert.False(t, prop.Alive())
	assert.True(t, director.Exists())
	assert.Same(t, inst, director.Instance())
	assert.Equal(t, 1, w.Current().Len())
}

func TestUnmanagedTypesPassThrough(t *testing.T) {
	var (
		w = scene.New()
		k = NewKeeper(w)
	)

	a := w.Spawn("props")
	require.NoError(t, a.Attach(&Prop{Kind: "chair"}))

	b := w.Spawn("props")
	require.NoError(t, b.Attach(&Prop{Kind: "table"}))

	// Two live components of an unmanaged type are fine.
	assert.Len(t, w.Find(reflect.TypeOf((*Prop)(nil))), 2)
	assert.True(t, a.Alive())
	assert.True(t, b.Alive())
	assert.False(t, a.Resident())
	_ = k
}

func TestClaimEventVia(t *testing.T) {
	var (
		pub = &capturePub{}
		w   = scene.New()
		k   = NewKeeper(w, OptFeed(pub))
	)

	// Construct path claims via the attach hook.
	Instance[GameDirector](k)
	assert.Equal(t, 1, pub.count("stage.SingletonClaimed"))

	// Adoption path claims from the accessor.
	mixer := &AudioMixer{}
	require.NoError(t, w.Spawn("boot").Attach(mixer))
	Instance[AudioMixer](k)
	assert.Equal(t, 2, pub.count("stage.SingletonClaimed"))
}
