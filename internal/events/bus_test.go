package events

import (
	"testing"
	"time"
)

const testTimeout = time.Second

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(NewLoginResult(true, ""))

	select {
	case e := <-ch:
		lr, ok := e.(LoginResult)
		if !ok || !lr.Data.Success {
			t.Fatalf("got %+v, want successful LoginResult", e)
		}
	case <-time.After(testTimeout):
		t.Fatal("expected an event to be delivered")
	}
}

func TestBusFansOutToMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(NewQuit(false))

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if _, ok := e.(Quit); !ok {
				t.Fatalf("got %+v, want Quit", e)
			}
		case <-time.After(testTimeout):
			t.Fatal("expected delivery to every subscriber")
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()

	bus.Publish(NewQuit(true))

	select {
	case e, ok := <-ch:
		if ok {
			t.Fatalf("unsubscribed channel received %+v", e)
		}
	case <-time.After(50 * time.Millisecond):
		// No delivery within the window: expected for a cancelled subscriber.
	}
}
