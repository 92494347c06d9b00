package game

const (
	DefaultViewportW = 1200.0
	DefaultViewportH = 600.0
	SpriteSize       = 96.0  // rendered cat box, px
	StartChance      = 0.002 // per tick, idle -> moving
	StopChance       = 0.002 // per tick, moving -> idle
	ArriveDistance   = 10.0  // pick a fresh waypoint inside this radius
	StepFraction     = 0.02  // share of the remaining vector covered per tick
	MinSpeed         = 0.5
	MaxSpeed         = 1.5
	InitialMoving    = 0.7 // share of cats that start out walking
	DecorativeCats   = 12
)
