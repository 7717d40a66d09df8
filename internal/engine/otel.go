package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/openrails/openrails-sub024/internal/command"
)

const instrumentationName = "github.com/openrails/openrails-sub024/internal/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics holds the replay instruments. The queue gauge reads an atomic
// snapshot because the SDK observes it from its own goroutine. Its callback
// is registered only while a replay is running.
type metrics struct {
	meter     metric.Meter
	applied   metric.Int64Counter
	unbound   metric.Int64Counter
	deferred  metric.Int64Counter
	queueSize metric.Int64ObservableGauge
	pending   atomic.Int64
	reg       metric.Registration
}

func newMetrics(m metric.Meter) (*metrics, error) {
	mt := &metrics{meter: m}

	var err error
	mt.queueSize, err = m.Int64ObservableGauge(
		"replay.queue.size",
		metric.WithDescription("Commands still waiting to be replayed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	mt.applied, err = m.Int64Counter(
		"replay.commands.applied",
		metric.WithDescription("Total commands applied during replay"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating applied counter: %w", err)
	}

	mt.unbound, err = m.Int64Counter(
		"replay.commands.unbound",
		metric.WithDescription("Total replayed commands with no bound receiver"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unbound counter: %w", err)
	}

	mt.deferred, err = m.Int64Counter(
		"replay.camera.deferred",
		metric.WithDescription("Total ticks a camera command was held back by suspension"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating deferred counter: %w", err)
	}

	return mt, nil
}

// observe registers the queue gauge callback, replacing any earlier one.
func (mt *metrics) observe() error {
	if err := mt.unregister(); err != nil {
		return err
	}
	reg, err := mt.meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.queueSize, mt.pending.Load())
			return nil
		},
		mt.queueSize,
	)
	if err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}
	mt.reg = reg
	return nil
}

// unregister drops the queue gauge callback. It is safe to call when none
// is registered.
func (mt *metrics) unregister() error {
	if mt.reg == nil {
		return nil
	}
	reg := mt.reg
	mt.reg = nil
	if err := reg.Unregister(); err != nil {
		return fmt.Errorf("unregistering queue callback: %w", err)
	}
	return nil
}

func (mt *metrics) recordApplied(c command.Command, unbound bool) {
	kindAttr := attribute.String("kind", c.Kind().String())
	mt.applied.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
	if unbound {
		mt.unbound.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
	}
}

func (mt *metrics) recordDeferred() {
	mt.deferred.Add(context.Background(), 1)
}
