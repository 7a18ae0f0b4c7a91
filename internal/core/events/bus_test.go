package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/locpham246/task-manager/internal/core/events"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1}))
		bus = events.NewEventBus(logger)
	})

	newEvent := func(eventType string) events.Event {
		return events.BaseEvent{ID: "test-id", Type: eventType}
	}

	Describe("Publish", func() {
		It("fans out to every subscriber of the type", func() {
			var wg sync.WaitGroup
			wg.Add(2)
			var mu sync.Mutex
			var seen []string

			for _, name := range []string{"first", "second"} {
				n := name
				bus.Subscribe("thing.happened", func(_ context.Context, _ events.Event) error {
					mu.Lock()
					seen = append(seen, n)
					mu.Unlock()
					wg.Done()
					return nil
				})
			}

			Expect(bus.Publish(context.Background(), newEvent("thing.happened"))).To(Succeed())
			wg.Wait()
			Expect(seen).To(ConsistOf("first", "second"))
		})

		It("never propagates handler errors", func() {
			var wg sync.WaitGroup
			wg.Add(1)
			bus.Subscribe("thing.happened", func(_ context.Context, _ events.Event) error {
				defer wg.Done()
				return errors.New("boom")
			})

			Expect(bus.Publish(context.Background(), newEvent("thing.happened"))).To(Succeed())
			wg.Wait()
		})

		It("is a no-op with no subscribers", func() {
			Expect(bus.Publish(context.Background(), newEvent("nobody.cares"))).To(Succeed())
		})
	})

	Describe("PublishSync", func() {
		It("runs subscribers in registration order", func() {
			var order []int
			for i := 1; i <= 3; i++ {
				n := i
				bus.Subscribe("ordered", func(_ context.Context, _ events.Event) error {
					order = append(order, n)
					return nil
				})
			}

			Expect(bus.PublishSync(context.Background(), newEvent("ordered"))).To(Succeed())
			Expect(order).To(Equal([]int{1, 2, 3}))
		})

		It("stops at the first failing subscriber", func() {
			var ran []string
			bus.Subscribe("ordered", func(_ context.Context, _ events.Event) error {
				ran = append(ran, "first")
				return errors.New("boom")
			})
			bus.Subscribe("ordered", func(_ context.Context, _ events.Event) error {
				ran = append(ran, "second")
				return nil
			})

			Expect(bus.PublishSync(context.Background(), newEvent("ordered"))).To(HaveOccurred())
			Expect(ran).To(Equal([]string{"first"}))
		})
	})
})
