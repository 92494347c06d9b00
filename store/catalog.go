package store

type Rarity string

const (
	Common    Rarity = "common"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

type Background struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Image       string `json:"image" yaml:"image"`
	Cost        int    `json:"cost" yaml:"cost"`
	Description string `json:"description" yaml:"description"`
	Rarity      Rarity `json:"rarity" yaml:"rarity"`
}

// Catalog is the fixed list of backgrounds on sale.
type Catalog []Background

func (c Catalog) Find(id string) (Background, bool) {
	for _, b := range c {
		if b.ID == id {
			return b, true
		}
	}
	return Background{}, false
}

func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "bg-0", Name: "Pixel Forest", Image: "/backgrounds/background-0.png", Cost: 50, Description: "A peaceful pixel forest", Rarity: Common},
		{ID: "bg-1", Name: "Cyber City", Image: "/backgrounds/background-1.png", Cost: 100, Description: "Neon-lit cyberpunk cityscape", Rarity: Common},
		{ID: "bg-2", Name: "Space Station", Image: "/backgrounds/background-2.png", Cost: 150, Description: "Futuristic space station", Rarity: Rare},
		{ID: "bg-3", Name: "Magic Castle", Image: "/backgrounds/background-3.png", Cost: 200, Description: "Enchanted magical castle", Rarity: Rare},
		{ID: "bg-4", Name: "Underwater", Image: "/backgrounds/background-4.png", Cost: 250, Description: "Deep ocean depths", Rarity: Epic},
		{ID: "bg-5", Name: "Volcano", Image: "/backgrounds/background-5.png", Cost: 300, Description: "Fiery volcanic landscape", Rarity: Epic},
		{ID: "bg-6", Name: "Cloud Kingdom", Image: "/backgrounds/background-6.png", Cost: 400, Description: "Floating cloud kingdom", Rarity: Legendary},
		{ID: "bg-7", Name: "Crystal Cave", Image: "/backgrounds/background-7.png", Cost: 500, Description: "Mystical crystal cave", Rarity: Legendary},
		{ID: "bg-8", Name: "Desert Oasis", Image: "/backgrounds/background-8.png", Cost: 350, Description: "Hidden desert oasis", Rarity: Epic},
		{ID: "bg-9", Name: "Aurora Sky", Image: "/backgrounds/background-9.png", Cost: 100, Description: "Northern lights sky", Rarity: Legendary},
	}
}
