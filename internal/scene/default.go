package scene

// Default is the built-in scene used when no scene file is given: two
// linked doorways at right angles and a crate sliding through one of
// them.
func Default() *Scene {
	return &Scene{
		Name: "doorways",
		Sky:  "#87a9c9",
		Player: Player{
			Position: Vec3{0, 1.6, -7},
		},
		Portals: []Portal{
			{
				Name:      "blue",
				Link:      "orange",
				Transform: Transform{Position: Vec3{-4, 1.25, 0}},
				Size:      [2]float32{2, 2.5},
				Frame:     "#2a5bd7",
			},
			{
				Name:      "orange",
				Link:      "blue",
				Transform: Transform{Position: Vec3{5, 1.25, 4}, Rotation: Vec3{0, -90, 0}},
				Size:      [2]float32{2, 2.5},
				Frame:     "#e8811c",
			},
		},
		Travellers: []Traveller{
			{
				Name:      "crate",
				Transform: Transform{Position: Vec3{-4, 0.5, -4}},
				Size:      Vec3{0.8, 0.8, 0.8},
				Color:     "#b5804a",
				Velocity:  Vec3{0, 0, 0.8},
			},
			{
				Name:      "beacon",
				Transform: Transform{Position: Vec3{-4, 1.1, -4}},
				Size:      Vec3{0.2, 0.2, 0.2},
				Color:     "#f2e14c",
				Follows:   "crate",
			},
		},
		Props: []Prop{
			{Name: "ground", Shape: "plane", Size: Vec3{60, 0, 60}, Color: "#5f7f52"},
			{Name: "pillar-red", Shape: "cube", Transform: Transform{Position: Vec3{-4, 1, 6}}, Size: Vec3{1, 2, 1}, Color: "#c23b3b"},
			{Name: "pillar-green", Shape: "cube", Transform: Transform{Position: Vec3{10, 1, 4}}, Size: Vec3{1, 2, 1}, Color: "#3bc25a"},
			{Name: "wall", Shape: "cube", Transform: Transform{Position: Vec3{0, 1.5, 12}}, Size: Vec3{30, 3, 0.5}, Color: "#8c8c8c"},
			{Name: "block", Shape: "cube", Transform: Transform{Position: Vec3{2, 0.5, -2}, Rotation: Vec3{0, 30, 0}}, Size: Vec3{1, 1, 1}, Color: "#6b4fa0"},
		},
	}
}
