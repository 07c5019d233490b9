package events_test

import (
	"testing"

	"github.com/ardanlabs/dispatch/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan out build events.")
	{
		evts := events.New()

		t.Logf("\tTest 0:\tWhen two receivers are registered.")
		{
			a := evts.Acquire("a")
			b := evts.Acquire("b")

			if evts.Acquire("a") != a {
				t.Fatalf("\t%s\tTest 0:\tShould get the same channel for the same id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same channel for the same id.", success)

			evts.Send(events.Event{Kind: events.KindTableBuilt, Digest: "0x01", Width: 2})

			for name, ch := range map[string]<-chan events.Event{"a": a, "b": b} {
				e := <-ch
				if e.Kind != events.KindTableBuilt || e.Digest != "0x01" || e.Width != 2 {
					t.Fatalf("\t%s\tTest 0:\tShould deliver the event to %s: %+v", failed, name, e)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould deliver the event to every receiver.", success)

			if err := evts.Release("a"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to release a receiver: %s", failed, err)
			}

			if _, open := <-a; open {
				t.Fatalf("\t%s\tTest 0:\tShould close a released channel.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould close a released channel.", success)

			if err := evts.Release("a"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould not release an unknown id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not release an unknown id.", success)
		}

		t.Logf("\tTest 1:\tWhen shutting down.")
		{
			evts.Shutdown()

			if evts.Len() != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould remove every receiver: %d", failed, evts.Len())
			}
			t.Logf("\t%s\tTest 1:\tShould remove every receiver.", success)

			evts.Send(events.Event{Kind: events.KindBuildFailed})
			t.Logf("\t%s\tTest 1:\tShould not block sending with no receivers.", success)
		}
	}
}
