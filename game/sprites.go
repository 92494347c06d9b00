package game

import "fmt"

type Pose uint8

const (
	Sitting Pose = iota
	Running
	numPoses
)

// spriteFiles is indexed by [clothed][pose][category]. The art was exported
// by several people, so names follow no pattern.
var spriteFiles = [2][numPoses][numCategories]string{
	{ // normal
		Sitting: {
			Black:   "Sitting Black Cat.gif",
			Grey:    "Sitting Grey Cat.gif",
			Pink:    "Sitting Pinkie.gif",
			Siamese: "Sitting Siamese.gif",
			Yellow:  "Sitting Yellow Cat.gif",
		},
		Running: {
			Black:   "Running Black Cat.png",
			Grey:    "Running Grey Cat.png",
			Pink:    "Running Pinkie.gif",
			Siamese: "Running Siamese.png",
			Yellow:  "Running Yellow Cat.gif",
		},
	},
	{ // clothed
		Sitting: {
			Black:   "Idle-Hat-Black.gif",
			Grey:    "Sitting-Clothed-Grey.gif",
			Pink:    "pink sentado - ropa.gif",
			Siamese: "SENTADO ROPA Siamese (1).gif",
			Yellow:  "Sitting-Hat-Yellow.gif",
		},
		Running: {
			Black:   "Running-Hat-Black.gif",
			Grey:    "Running-Clothed--Grey.gif",
			Pink:    "pink corriendo - ropa.gif",
			Siamese: "Corriendo Ropa Siames.gif",
			Yellow:  "Running-Hat-Yellow.gif",
		},
	},
}

// Sprite returns the asset path for a cat in the given pose. Every
// combination resolves; unknown categories use the black art.
func Sprite(cat Category, clothed bool, pose Pose) string {
	if cat >= numCategories {
		cat = Black
	}
	if pose >= numPoses {
		pose = Sitting
	}
	return fmt.Sprintf("/cats/%s/%s/%s", cat, wardrobe(clothed), spriteFiles[boolIndex(clothed)][pose][cat])
}

// SpriteFor picks the pose from the cat's motion state.
func SpriteFor(c Cat) string {
	pose := Sitting
	if c.Moving {
		pose = Running
	}
	return Sprite(c.Category, c.Clothed, pose)
}

// Portrait is the square sitting image used by dialogs and the VS screen.
func Portrait(cat Category, clothed bool) string {
	if cat >= numCategories {
		cat = Black
	}
	return fmt.Sprintf("/cats/%s/%s/%s-sitting.gif", cat, wardrobe(clothed), cat)
}

func wardrobe(clothed bool) string {
	if clothed {
		return "clothed"
	}
	return "normal"
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
