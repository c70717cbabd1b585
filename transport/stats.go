package transport

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	gnet "github.com/shirou/gopsutil/v4/net"

	"github.com/parterm-dev/parterm/wire"
)

// statsBroadcaster samples host resource usage on an interval and fans the
// latest sample out to every connected /stats subscriber.
type statsBroadcaster struct {
	interval time.Duration
	logger   zerolog.Logger

	mu          sync.Mutex
	subscribers map[chan *wire.SystemStats]struct{}

	prevNet    gnet.IOCountersStat
	havePrev   bool
}

func newStatsBroadcaster(interval time.Duration, logger zerolog.Logger) *statsBroadcaster {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &statsBroadcaster{
		interval:    interval,
		logger:      logger,
		subscribers: make(map[chan *wire.SystemStats]struct{}),
	}
}

func (b *statsBroadcaster) subscribe() chan *wire.SystemStats {
	ch := make(chan *wire.SystemStats, 4)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *statsBroadcaster) unsubscribe(ch chan *wire.SystemStats) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
	close(ch)
}

func (b *statsBroadcaster) run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample, err := b.sample(ctx)
			if err != nil {
				b.logger.Warn().Err(err).Msg("system stats sample failed")
				continue
			}
			b.publish(sample)
		}
	}
}

func (b *statsBroadcaster) publish(sample *wire.SystemStats) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- sample:
		default:
			// subscriber too slow for this tick, drop and wait for the next
		}
	}
}

func (b *statsBroadcaster) sample(ctx context.Context) (*wire.SystemStats, error) {
	sample := &wire.SystemStats{SampledAt: time.Now().Unix()}

	if name, err := host.HostnameWithContext(ctx); err == nil {
		sample.Hostname = name
	}

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		sample.CPUPercent = pct[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		sample.MemUsed = vm.Used
		sample.MemTotal = vm.Total
	}

	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		sample.DiskUsed = du.Used
		sample.DiskTotal = du.Total
	}

	if counters, err := gnet.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		cur := counters[0]
		b.mu.Lock()
		if b.havePrev {
			sample.NetRxBytes = cur.BytesRecv - b.prevNet.BytesRecv
			sample.NetTxBytes = cur.BytesSent - b.prevNet.BytesSent
		}
		b.prevNet = cur
		b.havePrev = true
		b.mu.Unlock()
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		sample.LoadAvg1 = avg.Load1
		sample.LoadAvg5 = avg.Load5
		sample.LoadAvg15 = avg.Load15
	}

	return sample, nil
}
