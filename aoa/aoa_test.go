package aoa

import (
	"bytes"
	"errors"
	"testing"

	"github.com/HopIT-Hub/R1-Keys/keysim"
)

type transfer struct {
	request uint8
	value   uint16
	index   uint16
	data    []byte
}

type fakeTransport struct {
	transfers []transfer
	failReq   uint8
	closed    bool
}

func (f *fakeTransport) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	if rType != bmRequestTypeOut {
		return 0, errors.New("unexpected request type")
	}
	if f.failReq != 0 && request == f.failReq {
		return 0, errors.New("pipe error")
	}
	f.transfers = append(f.transfers, transfer{request, val, idx, append([]byte(nil), data...)})
	return len(data), nil
}

func (f *fakeTransport) SerialNumber() (string, error) { return "R1TEST", nil }

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func TestRegisterDescriptor(t *testing.T) {
	ft := &fakeTransport{}
	d := NewDevice(ft)
	d.RegisterDelay = 0

	kbID, err := d.RegisterDescriptor(DescKeyboard)
	if err != nil {
		t.Fatalf("RegisterDescriptor(keyboard) error: %v", err)
	}
	ccID, err := d.RegisterDescriptor(DescConsumerControl)
	if err != nil {
		t.Fatalf("RegisterDescriptor(consumer) error: %v", err)
	}
	if kbID != 1 || ccID != 2 {
		t.Errorf("HID IDs = %d, %d, want 1, 2", kbID, ccID)
	}

	first := ft.transfers[0]
	if first.request != reqRegisterHID || first.value != 1 || int(first.index) != len(keyboardDescriptor) {
		t.Errorf("register transfer = %+v", first)
	}
	if second := ft.transfers[1]; second.request != reqSetHIDDesc || !bytes.Equal(second.data, keyboardDescriptor) {
		t.Errorf("descriptor transfer = %+v", second)
	}

	if err := d.SendReportTo(kbID, []byte{0, 0, 4, 0, 0, 0, 0, 0}); err != nil {
		t.Fatalf("SendReportTo error: %v", err)
	}
	if last := ft.transfers[len(ft.transfers)-1]; last.request != reqSendHIDEvent || last.value != kbID {
		t.Errorf("send transfer = %+v", last)
	}

	d.Close()
	if !ft.closed {
		t.Error("transport not closed")
	}
	unregistered := 0
	for _, tr := range ft.transfers {
		if tr.request == reqUnregisterHID {
			unregistered++
		}
	}
	if unregistered != 2 {
		t.Errorf("unregistered %d descriptors on close, want 2", unregistered)
	}
}

func TestRegisterDescriptorFailureUnregisters(t *testing.T) {
	ft := &fakeTransport{failReq: reqSetHIDDesc}
	d := NewDevice(ft)
	d.RegisterDelay = 0

	if _, err := d.RegisterDescriptor(DescKeyboard); err == nil {
		t.Fatal("RegisterDescriptor succeeded, want error")
	}
	if last := ft.transfers[len(ft.transfers)-1]; last.request != reqUnregisterHID {
		t.Errorf("last transfer = %+v, want unregister", last)
	}
}

func TestKeyboardUsage(t *testing.T) {
	tests := []struct {
		combo   string
		code    byte
		implied byte
	}{
		{"a", 0x04, 0},
		{"z", 0x1D, 0},
		{"1", 0x1E, 0},
		{"0", 0x27, 0},
		{"enter", 0x28, 0},
		{"space", 0x2C, 0},
		{"f1", 0x3A, 0},
		{"f12", 0x45, 0},
		{"f13", 0x68, 0},
		{"f24", 0x73, 0},
		{"up", 0x52, 0},
		{"numpad1", 0x59, 0},
		{"numpad0", 0x62, 0},
		{"grave", 0x35, 0},
		{"!", 0x1E, modLeftShift},
		{"?", 0x38, modLeftShift},
		{"plus", 0x2E, modLeftShift},
	}

	for _, tt := range tests {
		t.Run(tt.combo, func(t *testing.T) {
			u, err := KeyboardUsage(keysim.MustParse(tt.combo).Key)
			if err != nil {
				t.Fatalf("KeyboardUsage(%q) error: %v", tt.combo, err)
			}
			if u.Code != tt.code || u.Implied != tt.implied {
				t.Errorf("KeyboardUsage(%q) = %#x/%#x, want %#x/%#x", tt.combo, u.Code, u.Implied, tt.code, tt.implied)
			}
		})
	}

	for _, combo := range []string{"f25", "f35", "é", "volumeup"} {
		if _, err := KeyboardUsage(keysim.MustParse(combo).Key); !errors.Is(err, ErrNoUsage) {
			t.Errorf("KeyboardUsage(%q) error = %v, want ErrNoUsage", combo, err)
		}
	}
}

func TestKeyboardReports(t *testing.T) {
	var kb Keyboard
	c := keysim.MustParse("ctrl+shift+t")

	steps := []struct {
		press bool
		key   keysim.Key
		want  []byte
	}{
		{true, keysim.ModifierKey(c.Modifiers[0]), []byte{0x01, 0, 0, 0, 0, 0, 0, 0}},
		{true, keysim.ModifierKey(c.Modifiers[1]), []byte{0x03, 0, 0, 0, 0, 0, 0, 0}},
		{true, c.Key, []byte{0x03, 0, 0x17, 0, 0, 0, 0, 0}},
		{false, c.Key, []byte{0x03, 0, 0, 0, 0, 0, 0, 0}},
		{false, keysim.ModifierKey(c.Modifiers[1]), []byte{0x01, 0, 0, 0, 0, 0, 0, 0}},
		{false, keysim.ModifierKey(c.Modifiers[0]), []byte{0, 0, 0, 0, 0, 0, 0, 0}},
	}

	for i, s := range steps {
		var got []byte
		var err error
		if s.press {
			got, err = kb.Press(s.key)
		} else {
			got, err = kb.Release(s.key)
		}
		if err != nil {
			t.Fatalf("step %d error: %v", i, err)
		}
		if !bytes.Equal(got, s.want) {
			t.Errorf("step %d report = % x, want % x", i, got, s.want)
		}
	}
	if kb.Held() {
		t.Error("keyboard still reports held keys")
	}
}

func TestKeyboardImpliedShiftAndRollover(t *testing.T) {
	var kb Keyboard

	got, err := kb.Press(keysim.RuneKey('@'))
	if err != nil {
		t.Fatalf("Press(@) error: %v", err)
	}
	if want := []byte{modLeftShift, 0, 0x1F, 0, 0, 0, 0, 0}; !bytes.Equal(got, want) {
		t.Errorf("report = % x, want % x", got, want)
	}
	got, _ = kb.Release(keysim.RuneKey('@'))
	if got[0] != 0 {
		t.Errorf("implied shift still set after release: % x", got)
	}

	for _, r := range "abcdef" {
		if _, err := kb.Press(keysim.RuneKey(r)); err != nil {
			t.Fatalf("Press(%c) error: %v", r, err)
		}
	}
	if _, err := kb.Press(keysim.RuneKey('g')); !errors.Is(err, ErrRollover) {
		t.Errorf("seventh key error = %v, want ErrRollover", err)
	}
	got, _ = kb.Release(keysim.RuneKey('a'))
	if want := []byte{0, 0, 0x05, 0x06, 0x07, 0x08, 0x09, 0}; !bytes.Equal(got, want) {
		t.Errorf("report after releasing a = % x, want % x", got, want)
	}
}

func TestKeyboardSameKeyShifted(t *testing.T) {
	var kb Keyboard
	if _, err := kb.Press(keysim.RuneKey('1')); err != nil {
		t.Fatal(err)
	}
	got, err := kb.Press(keysim.RuneKey('!'))
	if err != nil {
		t.Fatalf("Press(!) error: %v", err)
	}
	if want := []byte{modLeftShift, 0, 0x1E, 0, 0, 0, 0, 0}; !bytes.Equal(got, want) {
		t.Errorf("report = % x, want % x", got, want)
	}
	got, _ = kb.Release(keysim.RuneKey('!'))
	if !bytes.Equal(got, make([]byte, 8)) {
		t.Errorf("report after release = % x, want all zero", got)
	}
}

func TestConsumerUsage(t *testing.T) {
	k := keysim.MustParse("volup").Key
	if !IsConsumer(k) {
		t.Fatal("volup should be a consumer key")
	}
	u, err := ConsumerUsage(k)
	if err != nil || u != 0xE9 {
		t.Fatalf("ConsumerUsage(volup) = %#x, %v", u, err)
	}
	if got := ConsumerReport(u); !bytes.Equal(got, []byte{0xE9, 0x00}) {
		t.Errorf("ConsumerReport = % x", got)
	}
	if IsConsumer(keysim.RuneKey('a')) {
		t.Error("a should not be a consumer key")
	}
}
