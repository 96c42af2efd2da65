package store

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tallyview/tally/ledger"
)

var (
	demoAssets         = []string{"ETH", "BTC", "USDC", "DAI", "MATIC", "OP"}
	demoChains         = []string{"ethereum", "optimism", "polygon"}
	demoExchanges      = []string{"kraken", "coinbase", "binance"}
	demoCounterparties = []string{"uniswap-v3", "curve", "1inch", "aave", "lido"}
)

// Seed replaces the table contents with a deterministic demo dataset of
// roughly n groups: plain transfers, swap bursts that cluster, exchange
// deposits and withdrawals with onchain counterparts (half of them
// matched), and a sprinkle of hidden spam.
func (s *Store) Seed(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	g := &demoGen{
		rng:    rand.New(rand.NewSource(1847)),
		cursor: time.Now().UTC().Truncate(time.Hour),
	}

	var events []ledger.Event
	for i := 0; i < n; i++ {
		switch {
		case i%7 == 2:
			events = append(events, g.swapBurst()...)
		case i%7 == 5:
			events = append(events, g.movementPair(i%2 == 1)...)
		case i%11 == 7:
			events = append(events, g.spamGroup()...)
		default:
			events = append(events, g.transferGroup()...)
		}
	}
	return s.InsertEvents(ctx, events)
}

// demoGen hands out monotonically decreasing timestamps and stable ids so
// reseeding produces the same ledger (modulo the anchor time).
type demoGen struct {
	rng    *rand.Rand
	cursor time.Time
	nextID int64
	groups int
}

func (g *demoGen) id() int64 {
	g.nextID++
	return g.nextID
}

func (g *demoGen) step() time.Time {
	g.cursor = g.cursor.Add(-time.Duration(30+g.rng.Intn(270)) * time.Minute)
	return g.cursor
}

func (g *demoGen) txHash() string {
	return fmt.Sprintf("0x%016x%016x", g.rng.Uint64(), g.rng.Uint64())
}

func (g *demoGen) amount() string {
	return fmt.Sprintf("%.4f", g.rng.Float64()*float64(1+g.rng.Intn(500)))
}

func (g *demoGen) pick(vals []string) string {
	return vals[g.rng.Intn(len(vals))]
}

func (g *demoGen) transferGroup() []ledger.Event {
	ts := g.step()
	hash := g.txHash()
	chain := g.pick(demoChains)
	asset := g.pick(demoAssets)

	events := []ledger.Event{{
		Identifier: g.id(),
		GroupID:    hash,
		EntryType:  ledger.EntryEVM,
		Detail: &ledger.EventDetail{
			Timestamp:    ts,
			Location:     chain,
			EventType:    "spend",
			EventSubtype: "fee",
			Asset:        "ETH",
			Amount:       fmt.Sprintf("%.6f", g.rng.Float64()*0.01),
			Notes:        "Burn ETH for gas",
			TxHash:       hash,
		},
	}}
	if g.rng.Intn(4) > 0 {
		events = append(events, ledger.Event{
			Identifier:    g.id(),
			GroupID:       hash,
			SequenceIndex: 1,
			EntryType:     ledger.EntryEVM,
			Detail: &ledger.EventDetail{
				Timestamp: ts,
				Location:  chain,
				EventType: "receive",
				Asset:     asset,
				Amount:    g.amount(),
				Notes:     fmt.Sprintf("Receive %s", asset),
				TxHash:    hash,
			},
		})
	}
	return events
}

// swapBurst emits 2 to 4 adjacent swap events in one group, the shape the
// timeline folds into a cluster row.
func (g *demoGen) swapBurst() []ledger.Event {
	ts := g.step()
	hash := g.txHash()
	chain := g.pick(demoChains)
	counterparty := g.pick(demoCounterparties)

	count := 2 + g.rng.Intn(3)
	events := make([]ledger.Event, 0, count)
	for i := 0; i < count; i++ {
		from := g.pick(demoAssets)
		to := g.pick(demoAssets)
		events = append(events, ledger.Event{
			Identifier:    g.id(),
			GroupID:       hash,
			SequenceIndex: i,
			EntryType:     ledger.EntryEVMSwap,
			Detail: &ledger.EventDetail{
				Timestamp:    ts,
				Location:     chain,
				EventType:    "trade",
				EventSubtype: "spend",
				Asset:        from,
				Amount:       g.amount(),
				Notes:        fmt.Sprintf("Swap %s for %s on %s", from, to, counterparty),
				Counterparty: counterparty,
				TxHash:       hash,
			},
		})
	}
	return events
}

// movementPair emits an exchange asset movement and its onchain
// counterpart inside the candidate window. Matched pairs carry the link in
// both directions; unmatched ones feed the movements tab.
func (g *demoGen) movementPair(matched bool) []ledger.Event {
	exchange := g.pick(demoExchanges)
	chain := g.pick(demoChains)
	asset := g.pick(demoAssets)
	amount := g.amount()
	deposit := g.rng.Intn(2) == 0

	moveTS := g.step()
	chainTS := moveTS.Add(time.Duration(10+g.rng.Intn(100)) * time.Minute)
	if deposit {
		chainTS = moveTS.Add(-time.Duration(10+g.rng.Intn(100)) * time.Minute)
	}

	g.groups++
	moveGroup := fmt.Sprintf("%s-%04d", exchange, g.groups)
	chainHash := g.txHash()
	moveID := g.id()
	chainID := g.id()

	direction, chainType, note := "withdrawal", "receive", "Withdraw %s from %s"
	if deposit {
		direction, chainType, note = "deposit", "spend", "Deposit %s to %s"
	}

	move := ledger.Event{
		Identifier: moveID,
		GroupID:    moveGroup,
		EntryType:  ledger.EntryAssetMovement,
		Detail: &ledger.EventDetail{
			Timestamp: moveTS,
			Location:  exchange,
			EventType: direction,
			Asset:     asset,
			Amount:    amount,
			Notes:     fmt.Sprintf(note, asset, exchange),
		},
	}
	chainEvent := ledger.Event{
		Identifier: chainID,
		GroupID:    chainHash,
		EntryType:  ledger.EntryEVM,
		Detail: &ledger.EventDetail{
			Timestamp: chainTS,
			Location:  chain,
			EventType: chainType,
			Asset:     asset,
			Amount:    amount,
			TxHash:    chainHash,
		},
	}
	if matched {
		move.Detail.MatchedEvent = chainID
		chainEvent.Detail.MatchedEvent = moveID
	}
	return []ledger.Event{move, chainEvent}
}

// spamGroup emits hidden airdrop noise, sometimes with one legitimate
// member so the reveal flow has both shapes to show.
func (g *demoGen) spamGroup() []ledger.Event {
	ts := g.step()
	hash := g.txHash()
	chain := g.pick(demoChains)

	count := 1 + g.rng.Intn(3)
	events := make([]ledger.Event, 0, count+1)
	for i := 0; i < count; i++ {
		events = append(events, ledger.Event{
			Identifier:    g.id(),
			GroupID:       hash,
			SequenceIndex: i,
			EntryType:     ledger.EntryEVM,
			Hidden:        true,
			Detail: &ledger.EventDetail{
				Timestamp:    ts,
				Location:     chain,
				EventType:    "receive",
				EventSubtype: "airdrop",
				Asset:        fmt.Sprintf("SPAM-%d", g.rng.Intn(100)),
				Amount:       g.amount(),
				Notes:        "Airdropped token",
				TxHash:       hash,
			},
		})
	}
	if g.rng.Intn(2) == 0 {
		events = append(events, ledger.Event{
			Identifier:    g.id(),
			GroupID:       hash,
			SequenceIndex: count,
			EntryType:     ledger.EntryEVM,
			Detail: &ledger.EventDetail{
				Timestamp: ts,
				Location:  chain,
				EventType: "receive",
				Asset:     g.pick(demoAssets),
				Amount:    g.amount(),
				TxHash:    hash,
			},
		})
	}
	return events
}
