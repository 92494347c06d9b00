package battle

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

var (
	ErrNotResolved = errors.New("battle has no result yet")
	ErrFinished    = errors.New("battle already finished")
)

type Phase int32

const (
	PhaseIntro Phase = iota
	PhaseBattle
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseBattle:
		return "battle"
	case PhaseResult:
		return "result"
	}
	return "unknown"
}

// Timing holds the pacing constants. They are tuning values only and do not
// feed into scoring.
type Timing struct {
	IntroDwell    time.Duration `yaml:"intro_dwell"`
	ProgressEvery time.Duration `yaml:"progress_every"`
	ProgressStep  int           `yaml:"progress_step"`
	RevealDelay   time.Duration `yaml:"reveal_delay"`
	Jitter        float64       `yaml:"jitter"`
}

func DefaultTiming() Timing {
	return Timing{
		IntroDwell:    2000 * time.Millisecond,
		ProgressEvery: 50 * time.Millisecond,
		ProgressStep:  5,
		RevealDelay:   500 * time.Millisecond,
		Jitter:        20,
	}
}

type EventKind uint8

const (
	EventPhase    EventKind = iota // entered Phase
	EventProgress                  // Progress moved
	EventFinished                  // Outcome is final
)

type Event struct {
	Kind     EventKind
	Phase    Phase
	Progress int
	Winner   *Competitor // set once Phase is PhaseResult
	Outcome  *Outcome    // set on EventFinished
}

// Outcome is how a battle ended. Winner is nil when it was closed early.
type Outcome struct {
	Winner    *Competitor
	Cancelled bool
}

type Config struct {
	ID     string // generated when empty
	Clock  clock.Clock
	Timing Timing
}

type Battle struct {
	ID         string
	Challenger Competitor
	Challenged Competitor
	clk        clock.Clock
	timing     Timing
	rnd        Rand
	notify     func(Event)
	phase      atomic.Int32
	progress   atomic.Int32
	ackc       chan chan error
	quit       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	outcome    Outcome
}

// Start shows the intro right away and runs the battle on its own
// goroutine. notify is called from that goroutine only, and never after
// Close or Acknowledge has returned.
func Start(cfg Config, a, b Competitor, r Rand, notify func(Event)) *Battle {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Timing == (Timing{}) {
		cfg.Timing = DefaultTiming()
	}
	if notify == nil {
		notify = func(Event) {}
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	bt := &Battle{
		ID:         cfg.ID,
		Challenger: a,
		Challenged: b,
		clk:        cfg.Clock,
		timing:     cfg.Timing,
		rnd:        r,
		notify:     notify,
		ackc:       make(chan chan error),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	intro := bt.clk.Timer(bt.timing.IntroDwell)
	go bt.run(intro)
	return bt
}

func (bt *Battle) Phase() Phase { return Phase(bt.phase.Load()) }
func (bt *Battle) Progress() int { return int(bt.progress.Load()) }
func (bt *Battle) Done() <-chan struct{} { return bt.done }

// Outcome is only meaningful once Done is closed.
func (bt *Battle) Outcome() Outcome {
	<-bt.done
	return bt.outcome
}

// Acknowledge dismisses the result screen and completes the battle with
// its winner. It fails before the result is shown.
func (bt *Battle) Acknowledge() (Outcome, error) {
	reply := make(chan error, 1)
	select {
	case bt.ackc <- reply:
		if err := <-reply; err != nil {
			return Outcome{}, err
		}
		return bt.Outcome(), nil
	case <-bt.done:
		return bt.outcome, ErrFinished
	}
}

// Close ends the battle from any phase. Pending timers are stopped before
// it returns. Closing after completion keeps the completed outcome.
func (bt *Battle) Close() Outcome {
	bt.closeOnce.Do(func() { close(bt.quit) })
	<-bt.done
	return bt.outcome
}

func (bt *Battle) run(intro *clock.Timer) {
	defer close(bt.done)

	var (
		ticker  *clock.Ticker
		reveal  *clock.Timer
		introC  = intro.C
		tickC   <-chan time.Time
		revealC <-chan time.Time
		winner  *Competitor
	)
	defer func() {
		intro.Stop()
		if ticker != nil {
			ticker.Stop()
		}
		if reveal != nil {
			reveal.Stop()
		}
	}()

	bt.notify(Event{Kind: EventPhase, Phase: PhaseIntro})

	for {
		select {
		case <-bt.quit:
			bt.finish(Outcome{Cancelled: true})
			return
		case reply := <-bt.ackc:
			if bt.Phase() != PhaseResult {
				reply <- ErrNotResolved
				continue
			}
			bt.finish(Outcome{Winner: winner})
			reply <- nil
			return
		case <-introC:
			introC = nil
			ticker = bt.clk.Ticker(bt.timing.ProgressEvery)
			tickC = ticker.C
			bt.enter(PhaseBattle, nil)
		case <-tickC:
			p := bt.Progress() + bt.timing.ProgressStep
			if p >= 100 {
				p = 100
				ticker.Stop()
				tickC = nil
				w := Decide(bt.Challenger, bt.Challenged, bt.timing.Jitter, bt.rnd)
				winner = &w
				reveal = bt.clk.Timer(bt.timing.RevealDelay)
				revealC = reveal.C
			}
			bt.progress.Store(int32(p))
			bt.notify(Event{Kind: EventProgress, Phase: PhaseBattle, Progress: p})
		case <-revealC:
			revealC = nil
			bt.enter(PhaseResult, winner)
		}
	}
}

func (bt *Battle) enter(p Phase, winner *Competitor) {
	bt.phase.Store(int32(p))
	bt.notify(Event{Kind: EventPhase, Phase: p, Progress: bt.Progress(), Winner: winner})
}

func (bt *Battle) finish(o Outcome) {
	bt.outcome = o
	bt.notify(Event{Kind: EventFinished, Phase: bt.Phase(), Progress: bt.Progress(), Outcome: &o})
}
