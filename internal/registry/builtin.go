package registry

import "github.com/vovakirdan/toontrek/internal/toonmap"

func init() {
	Register(DefaultMap, "Toontown", func() (*toonmap.Map, error) {
		t, err := toonmap.DefaultTopology()
		if err != nil {
			return nil, err
		}
		return toonmap.Build(t)
	})

	// Same table, but tunnels only lead the way they are listed.
	Register("toontown-classic", "Toontown (one-way tunnels)", func() (*toonmap.Map, error) {
		t, err := toonmap.DefaultTopology()
		if err != nil {
			return nil, err
		}
		t.Name = "Toontown (one-way tunnels)"
		t.Undirected = false
		return toonmap.Build(t)
	})
}
