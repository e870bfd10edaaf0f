// sprites10k spawns 10,000 sprites in one SpriteBatch that rotate, scale,
// fade and bounce around the screen, and shuffles their draw order a few at a
// time. The whole set draws with a single draw call.
package main

import (
	"image/color"
	"log"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/sprig"
)

const (
	screenW  = 1280
	screenH  = 720
	count    = 10_000
	texSize  = 64
	reorders = 16 // z changes per tick
)

type sprite struct {
	node       *sprig.Node
	dx, dy     float64
	rotSpeed   float64
	scaleSpeed float64
	scaleBase  float64
	scaleAmp   float64
	alphaSpeed float64
	phase      float64
}

// diamond draws a soft diamond so rotation and overlap are visible.
func diamond() *ebiten.Image {
	img := ebiten.NewImage(texSize, texSize)
	half := float64(texSize) / 2
	for y := 0; y < texSize; y++ {
		for x := 0; x < texSize; x++ {
			d := (math.Abs(float64(x)+0.5-half) + math.Abs(float64(y)+0.5-half)) / half
			if d > 1 {
				continue
			}
			a := uint8(255 * (1 - d*d))
			img.Set(x, y, color.RGBA{a, a, a, a})
		}
	}
	return img
}

func main() {
	cache := sprig.NewTextureCache()
	tex := cache.Add("diamond", diamond())

	scene := sprig.NewScene()
	scene.ClearColor = sprig.Color{R: 0.06, G: 0.06, B: 0.09, A: 1}

	batch := sprig.NewSpriteBatch("diamonds", tex, sprig.BatchConfig{Capacity: count})
	scene.Root().AddChild(batch.Node())

	sprites := make([]sprite, count)
	for i := range sprites {
		sp := sprig.NewSprite("diamond", nil, sprig.TextureRegion{})

		sp.X = rand.Float64() * screenW
		sp.Y = rand.Float64() * screenH
		sp.PivotX = texSize / 2
		sp.PivotY = texSize / 2

		base := 0.3 + rand.Float64()*0.4
		sp.ScaleX = base
		sp.ScaleY = base

		sp.Color = sprig.Color{
			R: 0.5 + rand.Float64()*0.5,
			G: 0.5 + rand.Float64()*0.5,
			B: 0.5 + rand.Float64()*0.5,
			A: 1,
		}

		if err := batch.AddChild(sp); err != nil {
			log.Fatal(err)
		}

		sprites[i] = sprite{
			node:       sp,
			dx:         (rand.Float64() - 0.5) * 4,
			dy:         (rand.Float64() - 0.5) * 4,
			rotSpeed:   (rand.Float64() - 0.5) * 0.08,
			scaleSpeed: 1 + rand.Float64()*2,
			scaleBase:  base,
			scaleAmp:   0.03 + rand.Float64()*0.07,
			alphaSpeed: 0.5 + rand.Float64()*2,
			phase:      rand.Float64() * math.Pi * 2,
		}
	}
	log.Println(batch)

	var frame float64
	scene.SetUpdateFunc(func() error {
		frame++
		t := frame / 60.0

		for i := 0; i < reorders; i++ {
			sprites[rand.IntN(count)].node.SetZIndex(rand.IntN(8))
		}

		for i := range sprites {
			s := &sprites[i]
			n := s.node

			n.X += s.dx
			n.Y += s.dy

			size := s.scaleBase * texSize
			if n.X < -size/2 {
				n.X = -size / 2
				s.dx = -s.dx
			} else if n.X > screenW-size/2 {
				n.X = screenW - size/2
				s.dx = -s.dx
			}
			if n.Y < -size/2 {
				n.Y = -size / 2
				s.dy = -s.dy
			} else if n.Y > screenH-size/2 {
				n.Y = screenH - size/2
				s.dy = -s.dy
			}

			n.Rotation += s.rotSpeed

			sc := s.scaleBase + s.scaleAmp*math.Sin(t*s.scaleSpeed+s.phase)
			n.ScaleX = sc
			n.ScaleY = sc

			n.Alpha = 0.5 + 0.5*math.Sin(t*s.alphaSpeed+s.phase)

			n.MarkDirty()
		}
		return nil
	})

	if err := sprig.Run(scene, sprig.RunConfig{
		Title:   "Sprig - 10k Sprites",
		Width:   screenW,
		Height:  screenH,
		ShowFPS: true,
	}); err != nil {
		log.Fatal(err)
	}
}
