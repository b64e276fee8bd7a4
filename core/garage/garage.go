package garage

import "fmt"

// Garage is a named location holding a vehicle pool.
type Garage struct {
	ID   int
	Name string
	Pool Pool
}

// New returns an empty garage.
func New(id int, name string) *Garage {
	return &Garage{ID: id, Name: name}
}

// Rename changes the display name.
func (g *Garage) Rename(name string) { g.Name = name }

func (g *Garage) String() string {
	return fmt.Sprintf("G%d - %s (Cars:%d)", g.ID, g.Name, g.Pool.Count())
}
