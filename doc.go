// Package sprig is a retained-mode 2D scene graph for [Ebitengine] built
// around sprite batching: any number of sprites that share a texture draw with
// a single draw call.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := sprig.NewScene()
//	// ... add nodes ...
//	sprig.Run(scene, sprig.RunConfig{
//		Title: "My Game", Width: 640, Height: 480,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly.
//
// # Scene graph
//
// Every visual element is a [Node]. Nodes form a tree rooted at
// [Scene.Root]. Children inherit their parent's transform and alpha, and
// siblings draw in ZIndex order, ties broken by insertion order.
//
// # Sprite batches
//
// A [SpriteBatch] owns one [Texture] and a [QuadBuffer] holding one quad per
// sprite in its subtree, stored in draw order. Add sprites through the batch
// or through the usual Node tree API; both keep the quads in sync:
//
//	batch := sprig.NewSpriteBatch("units", tex, sprig.BatchConfig{})
//	scene.Root().AddChild(batch.Node())
//
//	hero := sprig.NewSprite("hero", nil, atlas.Region("hero_idle"))
//	if err := batch.AddChild(hero); err != nil {
//		// ErrNotSprite or ErrTextureMismatch
//	}
//	hero.AddChild(sprig.NewSprite("sword", nil, atlas.Region("sword")))
//	hero.SetZIndex(3) // slot moves before the next draw
//
// Moving, tinting, hiding or tweening a batched sprite only rewrites its quad.
// Adding, removing and reordering shift the quad buffer and are meant for
// scene edits, not for every frame. Very large static sets such as tile maps
// can skip the tree with [SpriteBatch.InsertQuadFromSprite]; [TileLayer] does
// exactly that.
//
// # Textures
//
// Textures are reference counted. A [TextureCache] loads and holds them by
// name, and every batch retains the texture it draws from, so removing a
// texture from the cache never pulls it out from under a live batch.
//
// [Ebitengine]: https://ebitengine.org
package sprig
