package service_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/limtzeyng/HERizon/common/logger"
	"github.com/limtzeyng/HERizon/internal/model"
	"github.com/limtzeyng/HERizon/internal/queue"
	"github.com/limtzeyng/HERizon/internal/service"
)

var _ = Describe("DeliveryService", func() {
	var (
		ctx    context.Context
		svc    service.DeliveryService
		queues *queue.Set
		mirror *mockMirror
	)

	submit := func(event, target string) *service.SubmitResult {
		res, err := svc.Submit(ctx, service.SubmitParams{Event: event, Target: &target})
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	BeforeEach(func() {
		ctx = context.Background()
		queues = queue.NewSet(50)
		mirror = &mockMirror{}
		svc = service.NewDeliveryService(service.DeliveryConfig{
			ResponseLogCapacity: 30,
			Queues:              queues,
			Mirror:              mirror,
			Logger:              slog.New(slog.NewTextHandler(GinkgoWriter, nil)),
		})
	})

	Describe("Submit", func() {
		It("rejects a missing or blank event", func() {
			for _, ev := range []string{"", "   "} {
				_, err := svc.Submit(ctx, service.SubmitParams{Event: ev})
				Expect(errors.Is(err, service.ErrInvalidInput)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring("missing event"))
			}
		})

		It("rejects an unknown target", func() {
			_, err := svc.Submit(ctx, service.SubmitParams{Event: model.EventUrgent, Target: logger.Ptr("UP")})
			Expect(errors.Is(err, service.ErrInvalidInput)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("ALL/LEFT/RIGHT"))
		})

		It("rejects a task event without task text", func() {
			_, err := svc.Submit(ctx, service.SubmitParams{Event: model.EventTaskAssigned, Target: logger.Ptr("ALL")})
			Expect(errors.Is(err, service.ErrInvalidInput)).To(BeTrue())

			_, err = svc.Submit(ctx, service.SubmitParams{Event: model.EventTaskAssigned, TaskText: logger.Ptr("  ")})
			Expect(errors.Is(err, service.ErrInvalidInput)).To(BeTrue())
			Expect(svc.Status(ctx).Sizes).To(Equal(model.QueueSizes{}))
		})

		It("does not touch state on rejection", func() {
			_, err := svc.Submit(ctx, service.SubmitParams{Event: ""})
			Expect(err).To(HaveOccurred())

			status := svc.Status(ctx)
			Expect(status.Latest.Event).To(BeNil())
			Expect(status.Latest.Target).To(Equal(model.TargetAll))
			Expect(mirror.packets).To(BeEmpty())
		})

		It("defaults to the broadcast queue and normalizes target case", func() {
			res, err := svc.Submit(ctx, service.SubmitParams{Event: model.EventNameCalled})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Packet.Target).To(Equal(model.TargetAll))

			res = submit(model.EventDirectionalSignal, "right")
			Expect(res.Packet.Target).To(Equal(model.TargetRight))
			Expect(res.Sizes).To(Equal(model.QueueSizes{All: 1, Left: 0, Right: 1}))
		})

		It("reports the post-insert size capped at capacity", func() {
			for i := 1; i <= 55; i++ {
				res := submit(fmt.Sprintf("E%d", i), "LEFT")
				Expect(res.Sizes.Left).To(Equal(min(i, 50)))
				Expect(res.Sizes.All).To(Equal(0))
			}
		})

		It("attaches a task id to task events with text", func() {
			res, err := svc.Submit(ctx, service.SubmitParams{
				Event:    model.EventTaskAssigned,
				Target:   logger.Ptr("LEFT"),
				TaskText: logger.Ptr(" restock aisle 4 "),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Packet.TaskText).To(HaveValue(Equal("restock aisle 4")))
			Expect(res.Packet.TaskID).NotTo(BeNil())
		})

		It("updates the latest state on every submission", func() {
			submit(model.EventUrgent, "LEFT")
			_, err := svc.Submit(ctx, service.SubmitParams{
				Event:    model.EventTaskAssigned,
				TaskText: logger.Ptr("call back"),
			})
			Expect(err).NotTo(HaveOccurred())

			latest := svc.Status(ctx).Latest
			Expect(latest.Event).To(HaveValue(Equal(model.EventTaskAssigned)))
			Expect(latest.Target).To(Equal(model.TargetAll))
			Expect(latest.TaskText).To(HaveValue(Equal("call back")))
		})

		It("mirrors the packet", func() {
			res := submit(model.EventUrgent, "LEFT")
			Expect(mirror.packets).To(HaveLen(1))
			Expect(mirror.packets[0].EventID).To(Equal(res.Packet.EventID))
		})

		It("succeeds when the mirror fails", func() {
			mirror.publishPacketFn = func(context.Context, model.Packet) error {
				return errors.New("redis down")
			}
			_, err := svc.Submit(ctx, service.SubmitParams{Event: model.EventUrgent})
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.Status(ctx).Sizes.All).To(Equal(1))
		})
	})

	Describe("Poll", func() {
		It("delivers a role packet once", func() {
			submit(model.EventUrgent, "LEFT")

			res := svc.Poll(ctx, "LEFT")
			Expect(res.Packet).NotTo(BeNil())
			Expect(res.Packet.Event).To(Equal(model.EventUrgent))
			Expect(res.Packet.Target).To(Equal(model.TargetLeft))
			Expect(res.Packet.TaskText).To(BeNil())

			Expect(svc.Poll(ctx, "LEFT").Packet).To(BeNil())
		})

		It("returns packets in FIFO order", func() {
			submit("A", "RIGHT")
			submit("B", "RIGHT")

			Expect(svc.Poll(ctx, "RIGHT").Packet.Event).To(Equal("A"))
			Expect(svc.Poll(ctx, "RIGHT").Packet.Event).To(Equal("B"))
		})

		It("prefers the dedicated queue over broadcast", func() {
			submit("BROADCAST", "ALL")
			submit("MINE", "LEFT")

			res := svc.Poll(ctx, "left")
			Expect(res.Packet.Event).To(Equal("MINE"))
			Expect(res.Sizes).To(Equal(model.QueueSizes{All: 1}))

			res = svc.Poll(ctx, "LEFT")
			Expect(res.Packet.Event).To(Equal("BROADCAST"))
			Expect(res.Packet.Target).To(Equal(model.TargetAll))
		})

		It("never serves another role's queue", func() {
			submit("FOR_RIGHT", "RIGHT")

			Expect(svc.Poll(ctx, "LEFT").Packet).To(BeNil())
			Expect(svc.Poll(ctx, "ALL").Packet).To(BeNil())
			Expect(svc.Poll(ctx, "RIGHT").Packet.Event).To(Equal("FOR_RIGHT"))
		})

		It("treats unknown and empty roles as broadcast-only", func() {
			submit("X", "ALL")
			submit("Y", "ALL")

			Expect(svc.Poll(ctx, "SPECTATOR").Packet.Event).To(Equal("X"))
			Expect(svc.Poll(ctx, "").Packet.Event).To(Equal("Y"))
		})

		It("returns empty every time on an empty queue", func() {
			for range 5 {
				res := svc.Poll(ctx, "RIGHT")
				Expect(res.Packet).To(BeNil())
				Expect(res.Sizes).To(Equal(model.QueueSizes{}))
			}
		})

		It("makes the oldest packet unreachable after overflow", func() {
			first := submit("E0", "ALL")
			for i := 1; i <= 50; i++ {
				submit(fmt.Sprintf("E%d", i), "ALL")
			}

			var got []string
			for {
				res := svc.Poll(ctx, "ALL")
				if res.Packet == nil {
					break
				}
				Expect(res.Packet.EventID).NotTo(Equal(first.Packet.EventID))
				got = append(got, res.Packet.Event)
			}
			Expect(got).To(HaveLen(50))
			Expect(got[0]).To(Equal("E1"))
		})

		It("normalizes legacy entries into packets", func() {
			queues.PushLegacy(model.TargetLeft, model.EventNameCalled)

			res := svc.Poll(ctx, "LEFT")
			Expect(res.Packet).NotTo(BeNil())
			Expect(res.Packet.Event).To(Equal(model.EventNameCalled))
			Expect(res.Packet.Target).To(Equal(model.TargetLeft))
			Expect(res.Packet.EventID).NotTo(BeEmpty())
			Expect(res.Packet.TaskID).To(BeNil())
		})

		It("hands each packet to exactly one of many concurrent pollers", func() {
			const n = 40
			ids := map[string]struct{}{}
			for i := range n {
				ids[submit(fmt.Sprint(i), "ALL").Packet.EventID] = struct{}{}
			}
			Expect(ids).To(HaveLen(n))

			var (
				mu  sync.Mutex
				got []string
				wg  sync.WaitGroup
			)
			for _, role := range []string{"LEFT", "RIGHT", "ALL", "LEFT", "RIGHT", "ALL"} {
				wg.Add(1)
				go func(role string) {
					defer GinkgoRecover()
					defer wg.Done()
					for {
						res := svc.Poll(ctx, role)
						if res.Packet == nil {
							return
						}
						mu.Lock()
						got = append(got, res.Packet.EventID)
						mu.Unlock()
					}
				}(role)
			}
			wg.Wait()

			Expect(got).To(HaveLen(n))
			for _, eventID := range got {
				Expect(ids).To(HaveKey(eventID))
			}
		})
	})

	Describe("RecordResponse", func() {
		It("requires a code or a label", func() {
			_, err := svc.RecordResponse(ctx, service.ResponseParams{User: logger.Ptr("Phone user")})
			Expect(errors.Is(err, service.ErrInvalidInput)).To(BeTrue())

			_, err = svc.RecordResponse(ctx, service.ResponseParams{Code: logger.Ptr(" "), Label: logger.Ptr("")})
			Expect(errors.Is(err, service.ErrInvalidInput)).To(BeTrue())
		})

		It("applies defaults and upper-cases the role", func() {
			resp, err := svc.RecordResponse(ctx, service.ResponseParams{Code: logger.Ptr("YES_SINGLE_TAP")})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User).To(Equal(model.DefaultResponseUser))
			Expect(resp.Role).To(Equal(model.DefaultResponseRole))
			Expect(resp.ReceivedAt).NotTo(BeZero())

			resp, err = svc.RecordResponse(ctx, service.ResponseParams{
				Label:         logger.Ptr("Acknowledge / Yes"),
				User:          logger.Ptr("Phone user"),
				Role:          logger.Ptr("left"),
				CustomPattern: logger.Ptr("..-"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Role).To(Equal("LEFT"))
			Expect(resp.User).To(Equal("Phone user"))
			Expect(resp.CustomPattern).To(HaveValue(Equal("..-")))
		})

		It("logs responses newest first", func() {
			for _, code := range []string{"X", "Y", "Z"} {
				_, err := svc.RecordResponse(ctx, service.ResponseParams{Code: logger.Ptr(code)})
				Expect(err).NotTo(HaveOccurred())
			}

			var codes []string
			for _, r := range svc.Status(ctx).Responses {
				codes = append(codes, *r.Code)
			}
			Expect(codes).To(Equal([]string{"Z", "Y", "X"}))
			Expect(mirror.responses).To(HaveLen(3))
		})

		It("keeps the newest 30 responses", func() {
			for i := range 35 {
				_, err := svc.RecordResponse(ctx, service.ResponseParams{Code: logger.Ptr(fmt.Sprint(i))})
				Expect(err).NotTo(HaveOccurred())
			}

			responses := svc.Status(ctx).Responses
			Expect(responses).To(HaveLen(30))
			Expect(*responses[0].Code).To(Equal("34"))
			Expect(*responses[29].Code).To(Equal("5"))
		})
	})

	Describe("Status", func() {
		It("does not consume queued packets", func() {
			submit(model.EventUrgent, "LEFT")
			submit(model.EventNameCalled, "ALL")

			for range 3 {
				Expect(svc.Status(ctx).Sizes).To(Equal(model.QueueSizes{All: 1, Left: 1}))
			}
			Expect(svc.Poll(ctx, "LEFT").Packet.Event).To(Equal(model.EventUrgent))
		})

		It("keeps the latest event after it is consumed", func() {
			submit(model.EventUrgent, "RIGHT")
			svc.Poll(ctx, "RIGHT")

			latest := svc.Status(ctx).Latest
			Expect(latest.Event).To(HaveValue(Equal(model.EventUrgent)))
			Expect(latest.Target).To(Equal(model.TargetRight))
		})
	})
})
