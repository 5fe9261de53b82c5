package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/halcyonlabs/carepulse/internal/adapters/mq/queue"
	"github.com/halcyonlabs/carepulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func conv(id string) model.Conversation {
	return model.Conversation{
		ConversationID: id,
		PatientID:      "patient-1",
		StartedAt:      time.Now().UTC(),
	}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a bounded queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		ctx := context.Background()

		Convey("When enqueueing within capacity", func() {
			So(q.Enqueue(ctx, conv("c1")), ShouldBeTrue)
			So(q.Enqueue(ctx, conv("c2")), ShouldBeTrue)

			Convey("Then the length reflects the backlog", func() {
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("And a full queue rejects with backpressure", func() {
				So(q.Enqueue(ctx, conv("c3")), ShouldBeFalse)
			})

			Convey("And dequeue delivers in order", func() {
				ch := q.Dequeue(ctx)
				first := <-ch
				second := <-ch
				So(first.ConversationID, ShouldEqual, "c1")
				So(second.ConversationID, ShouldEqual, "c2")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then it reports closed", func() {
				So(q.IsClosed(), ShouldBeTrue)
			})

			Convey("And enqueue is rejected", func() {
				So(q.Enqueue(ctx, conv("c9")), ShouldBeFalse)
			})

			Convey("And a second close is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})

			Convey("And the dequeue channel drains then closes", func() {
				ch := q.Dequeue(ctx)
				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})

		Convey("When the consumer context is cancelled", func() {
			consumerCtx, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(consumerCtx)
			cancel()

			Convey("Then the wrapped channel closes", func() {
				select {
				case _, open := <-ch:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					So("timed out waiting for channel close", ShouldBeEmpty)
				}
			})
		})
	})

	Convey("Given concurrent producers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		ctx := context.Background()

		done := make(chan bool, 10)
		for i := 0; i < 10; i++ {
			go func(n int) {
				for j := 0; j < 50; j++ {
					q.Enqueue(ctx, conv(fmt.Sprintf("c-%d-%d", n, j)))
				}
				done <- true
			}(i)
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		Convey("Then every event is queued exactly once", func() {
			So(q.Len(ctx), ShouldEqual, 500)
		})
	})
}
