package feed

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/hallwick/stage"
	"github.com/hallwick/stage/scene"
)

// BindWorld registers directive handlers that steer the world: scene
// loads, spawns and destroys sent over the feed. Handlers post into
// the world and return immediately; the world applies the change on
// its next Tick. Call before the feed runs.
func BindWorld(feed *Feed, w *scene.World) {
	logger := feed.config.Logger

	feed.AddDirHandler(stage.NewDirHandler(func(ctx context.Context, d *stage.LoadScene) error {
		name := d.Name
		w.Post(func(w *scene.World) {
			if err := w.Load(name); err != nil {
				logger.Error("apply LoadScene directive", err, watermill.LogFields{"scene": name})
			}
		})
		return nil
	}))

	feed.AddDirHandler(stage.NewDirHandler(func(ctx context.Context, d *stage.SpawnActor) error {
		name := d.Name
		w.Post(func(w *scene.World) {
			w.Spawn(name)
		})
		return nil
	}))

	feed.AddDirHandler(stage.NewDirHandler(func(ctx context.Context, d *stage.DestroyActor) error {
		guid := d.GUID
		w.Post(func(w *scene.World) {
			if a, ok := w.FindActor(guid); ok {
				w.Destroy(a)
			}
		})
		return nil
	}))
}
