package network

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"brawlers/battle"
	"brawlers/cats"
	"brawlers/ens"
	"brawlers/game"
	"brawlers/protocol"
)

// challenge resolves the opponent, loads both fighters and starts the
// battle. Every precondition failure is reported to the client and nothing
// is started.
func (ss *session) challenge(query string) {
	if ss.address == "" {
		ss.fail(protocol.CodeUnauthorized, "connect a wallet to battle")
		return
	}
	if ss.activeBattle() != nil {
		ss.fail(protocol.CodeBattleBusy, "finish the current battle first")
		return
	}
	if ss.srv.resolver == nil {
		ss.fail(protocol.CodeUnresolved, "player search is not configured")
		return
	}

	ctx, cancel := ss.srv.lookupContext()
	defer cancel()

	mine, err := ss.srv.cats.Fighter(ctx, ss.address)
	if err != nil {
		ss.failErr(err)
		return
	}
	opp, err := ss.srv.resolver.Resolve(ctx, query)
	if err != nil {
		ss.failErr(err)
		return
	}
	if strings.EqualFold(opp.Address, ss.address) {
		ss.fail(protocol.CodeBadRequest, "you cannot challenge yourself")
		return
	}
	ss.srv.histories.For(ss.address).Add(opp)

	theirs, err := ss.srv.cats.Fighter(ctx, opp.Address)
	if errors.Is(err, cats.ErrNoFighter) {
		ss.fail(protocol.CodeNoFighter, fmt.Sprintf("%s has no cat to fight with", displayName(opp)))
		return
	}
	if err != nil {
		ss.failErr(err)
		return
	}

	self := ens.Identity{Address: common.HexToAddress(ss.address).Hex()}
	if id, err := ss.srv.resolver.Resolve(ctx, ss.address); err == nil {
		self = id
	}
	a, b := competitor(self, mine), competitor(opp, theirs)

	id := uuid.NewString()
	ss.sendMsg(protocol.MsgBattleStart, protocol.BattleStart{
		BattleID:   id,
		Challenger: fighter(a),
		Challenged: fighter(b),
	})
	bt := battle.Start(battle.Config{ID: id, Clock: ss.srv.clk, Timing: ss.srv.cfg.Battle}, a, b, ss.srv.newRand(),
		func(ev battle.Event) { ss.battleEvent(id, ev) })

	ss.mu.Lock()
	ss.battle = bt
	ss.mu.Unlock()
	log.Printf("battle %s: %s (%s) vs %s (%s)", id, a.Name, a.CatName, b.Name, b.CatName)
}

// battleEvent runs on the battle goroutine.
func (ss *session) battleEvent(id string, ev battle.Event) {
	switch ev.Kind {
	case battle.EventPhase, battle.EventProgress:
		out := protocol.BattleEvent{BattleID: id, Phase: ev.Phase.String(), Progress: ev.Progress}
		if ev.Winner != nil {
			f := fighter(*ev.Winner)
			out.Winner = &f
		}
		ss.sendMsg(protocol.MsgBattleEvent, out)
	case battle.EventFinished:
		out := protocol.BattleFinished{BattleID: id, Cancelled: ev.Outcome.Cancelled}
		if w := ev.Outcome.Winner; w != nil {
			f := fighter(*w)
			out.Winner = &f
			log.Printf("battle %s: %s wins", id, w.Name)
		}
		ss.sendMsg(protocol.MsgBattleFinished, out)
	}
}

func (ss *session) activeBattle() *battle.Battle {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.battle == nil {
		return nil
	}
	select {
	case <-ss.battle.Done():
		return nil
	default:
		return ss.battle
	}
}

func (ss *session) lookupBattle(id string) *battle.Battle {
	bt := ss.activeBattle()
	if bt == nil || bt.ID != id {
		ss.fail(protocol.CodeNoBattle, "no battle "+id)
		return nil
	}
	return bt
}

func (ss *session) acknowledge(id string) {
	bt := ss.lookupBattle(id)
	if bt == nil {
		return
	}
	if _, err := bt.Acknowledge(); err != nil {
		ss.failErr(err)
	}
}

func (ss *session) closeBattle(id string) {
	if bt := ss.lookupBattle(id); bt != nil {
		bt.Close()
	}
}

func competitor(id ens.Identity, m cats.Metadata) battle.Competitor {
	return battle.Competitor{
		Address:  id.Address,
		Name:     displayName(id),
		Avatar:   id.Avatar,
		CatName:  m.DisplayName(),
		Category: m.Color,
		Clothed:  m.Clothed,
		Stats:    m.Stats,
	}
}

func fighter(c battle.Competitor) protocol.Fighter {
	return protocol.Fighter{Competitor: c, Portrait: game.Portrait(c.Category, c.Clothed)}
}

// displayName is the ENS name, or a shortened address.
func displayName(id ens.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	if len(id.Address) < 10 {
		return id.Address
	}
	return id.Address[:6] + "..." + id.Address[len(id.Address)-4:]
}
