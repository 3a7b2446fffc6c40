package sim

import (
	"fmt"
	"os"

	"github.com/rustcycles/rustcycles-sub000/internal/mathx"
	"gopkg.in/yaml.v3"
)

// Arena describes the static play area: where cycles spawn and the bounds
// bodies are kept inside.
type Arena struct {
	Name        string
	SpawnPoints []mathx.Vec3
	Min, Max    mathx.Vec3
}

type arenaFile struct {
	Name   string      `yaml:"name"`
	Bounds arenaBounds `yaml:"bounds"`
	Spawns []arenaVec  `yaml:"spawn_points"`
}

type arenaBounds struct {
	Min arenaVec `yaml:"min"`
	Max arenaVec `yaml:"max"`
}

type arenaVec struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

func (v arenaVec) vec() mathx.Vec3 {
	return mathx.V(v.X, v.Y, v.Z)
}

// LoadArena reads an arena definition from a YAML file.
func LoadArena(path string) (*Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read arena %s: %w", path, err)
	}
	var f arenaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse arena %s: %w", path, err)
	}
	if len(f.Spawns) == 0 {
		return nil, fmt.Errorf("arena %s: no spawn points", path)
	}
	a := &Arena{
		Name: f.Name,
		Min:  f.Bounds.Min.vec(),
		Max:  f.Bounds.Max.vec(),
	}
	for _, s := range f.Spawns {
		a.SpawnPoints = append(a.SpawnPoints, s.vec())
	}
	return a, nil
}

// DefaultArena returns a built-in arena used when no data file is available,
// e.g. in tests.
func DefaultArena() *Arena {
	return &Arena{
		Name: "default",
		SpawnPoints: []mathx.Vec3{
			mathx.V(-1, 5, 0),
			mathx.V(1, 5, 0),
			mathx.V(0, 5, -1),
			mathx.V(0, 5, 1),
		},
		Min: mathx.V(-50, 0, -50),
		Max: mathx.V(50, 50, 50),
	}
}

// SpawnPoint picks a spawn position for the n-th spawned cycle.
func (a *Arena) SpawnPoint(n int) mathx.Vec3 {
	return a.SpawnPoints[n%len(a.SpawnPoints)]
}
