// Package poller drives the background refresh loop: on every tick it
// re-fetches the public agent list and, when an agent context is active, that
// agent's detail. Ticks are never queued and in-flight fetches are never
// cancelled; instead every dispatch is stamped with a per-kind sequence
// number and stale responses (older than the last applied for that kind) are
// dropped at apply time, so overlapping fetches resolve deterministically in
// favor of the latest-dispatched one.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/arena-dashboard/pkg/api"
)

const kindAgentList = "agent-list"

// Gateway is the slice of the remote client the poller uses.
type Gateway interface {
	ListPublicAgents(ctx context.Context) ([]api.AgentSummary, error)
	GetAgent(ctx context.Context, id string) (*api.AgentDetail, error)
}

// Selection exposes the currently selected agent, read fresh on every tick.
type Selection interface {
	SelectedAgent() (string, bool)
}

// Sink receives admitted snapshots. Implementations translate them into UI
// updates; PollFailed is informational only — the next tick retries.
type Sink interface {
	ApplyAgentList(agents []api.AgentSummary)
	ApplyAgentDetail(id string, detail *api.AgentDetail)
	PollFailed(kind string, err error)
}

type Poller struct {
	gateway   Gateway
	selection Selection
	sink      Sink
	interval  time.Duration

	cron  *cron.Cron
	entry cron.EntryID

	mu      sync.Mutex
	nextSeq map[string]uint64
	applied map[string]uint64
	started bool
	paused  bool
}

func New(gateway Gateway, selection Selection, sink Sink, interval time.Duration) *Poller {
	return &Poller{
		gateway:   gateway,
		selection: selection,
		sink:      sink,
		interval:  interval,
		cron:      cron.New(),
		nextSeq:   make(map[string]uint64),
		applied:   make(map[string]uint64),
	}
}

// Start moves the poller from Idle to Running. Called once at application
// start; subsequent calls are no-ops. The poller never stops itself.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}

	entry, err := p.cron.AddFunc(scheduleFor(p.interval), func() { p.Tick(ctx) })
	if err != nil {
		return err
	}
	p.entry = entry
	p.started = true
	p.cron.Start()
	log.Info().Dur("interval", p.interval).Msg("poller running")

	// Immediate first refresh rather than waiting out the first period.
	go p.Tick(ctx)
	return nil
}

// Pause unregisters the refresh task while the terminal is backgrounded.
// In-flight fetches are not cancelled; they finish and pass through the
// staleness guard as usual.
func (p *Poller) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started || p.paused {
		return
	}
	p.cron.Remove(p.entry)
	p.paused = true
	log.Debug().Msg("poller paused")
}

// Resume re-registers the refresh task on focus and refreshes immediately.
func (p *Poller) Resume(ctx context.Context) {
	p.mu.Lock()
	if !p.started || !p.paused {
		p.mu.Unlock()
		return
	}
	entry, err := p.cron.AddFunc(scheduleFor(p.interval), func() { p.Tick(ctx) })
	if err == nil {
		p.entry = entry
		p.paused = false
	}
	p.mu.Unlock()
	log.Debug().Msg("poller resumed")
	go p.Tick(ctx)
}

func (p *Poller) Stop() {
	p.cron.Stop()
}

// Tick runs one refresh round: both fetches dispatch concurrently and Tick
// returns when they have resolved. Cron invokes each tick in its own
// goroutine, so a slow round overlaps the next instead of delaying it.
func (p *Poller) Tick(ctx context.Context) {
	var wg sync.WaitGroup

	listSeq := p.stamp(kindAgentList)
	wg.Add(1)
	go func() {
		defer wg.Done()
		agents, err := p.gateway.ListPublicAgents(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("agent list poll failed")
			p.sink.PollFailed(kindAgentList, err)
			return
		}
		if p.admit(kindAgentList, listSeq) {
			p.sink.ApplyAgentList(agents)
		}
	}()

	if id, ok := p.selection.SelectedAgent(); ok {
		kind := "agent:" + id
		seq := p.stamp(kind)
		wg.Add(1)
		go func() {
			defer wg.Done()
			detail, err := p.gateway.GetAgent(ctx, id)
			if err != nil {
				log.Warn().Err(err).Str("agent", id).Msg("agent detail poll failed")
				p.sink.PollFailed(kind, err)
				return
			}
			if p.admit(kind, seq) {
				p.sink.ApplyAgentDetail(id, detail)
			}
		}()
	}

	wg.Wait()
}

// stamp hands out the next dispatch sequence for a data kind.
func (p *Poller) stamp(kind string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSeq[kind]++
	return p.nextSeq[kind]
}

// admit records seq as applied unless a later dispatch already landed.
func (p *Poller) admit(kind string, seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq <= p.applied[kind] {
		log.Debug().Str("kind", kind).Uint64("seq", seq).Msg("stale response dropped")
		return false
	}
	p.applied[kind] = seq
	return true
}

func scheduleFor(interval time.Duration) string {
	return "@every " + interval.String()
}
