package device

import (
	"time"

	"github.com/HopIT-Hub/R1-Keys/aoa"
	"github.com/HopIT-Hub/R1-Keys/keysim"
)

// clickGap separates the down and up reports of a click so Android sees
// a distinct key press.
var clickGap = 30 * time.Millisecond

// injector types on one device connection as a HID keyboard. Media keys go
// out on the Consumer Control descriptor.
type injector struct {
	m          *Manager
	dev        Conn
	keyboardID uint16
	consumerID uint16
	kb         aoa.Keyboard
	consumer   uint16 // consumer usage currently held, 0 if none
}

func (in *injector) Press(k keysim.Key) error {
	if aoa.IsConsumer(k) {
		usage, err := aoa.ConsumerUsage(k)
		if err != nil {
			return err
		}
		if err := in.m.send(in.dev, in.consumerID, aoa.ConsumerReport(usage)); err != nil {
			return err
		}
		in.consumer = usage
		return nil
	}
	report, err := in.kb.Press(k)
	if err != nil {
		return err
	}
	return in.m.send(in.dev, in.keyboardID, report)
}

func (in *injector) Release(k keysim.Key) error {
	if aoa.IsConsumer(k) {
		usage, err := aoa.ConsumerUsage(k)
		if err != nil {
			return err
		}
		if in.consumer != usage {
			return nil
		}
		in.consumer = 0
		return in.m.send(in.dev, in.consumerID, aoa.ConsumerReport(0))
	}
	report, err := in.kb.Release(k)
	if err != nil {
		return err
	}
	return in.m.send(in.dev, in.keyboardID, report)
}

func (in *injector) Click(k keysim.Key) error {
	if err := in.Press(k); err != nil {
		return err
	}
	time.Sleep(clickGap)
	return in.Release(k)
}

// Close lifts anything still held and frees the device for the next
// injector.
func (in *injector) Close() error {
	var err error
	if in.kb.Held() {
		in.kb = aoa.Keyboard{}
		err = in.m.send(in.dev, in.keyboardID, in.kb.Report())
	}
	if in.consumer != 0 {
		in.consumer = 0
		if cerr := in.m.send(in.dev, in.consumerID, aoa.ConsumerReport(0)); err == nil {
			err = cerr
		}
	}
	in.m.release(in.dev)
	return err
}
