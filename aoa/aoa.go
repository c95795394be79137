// Package aoa implements the Android Open Accessory 2.0 HID protocol.
// It sends HID input events directly to an Android device over USB without
// requiring ADB, developer mode, or any setup on the Android side.
//
// Protocol reference: https://source.android.com/docs/core/interaction/accessories/aoa2
package aoa

import (
	"fmt"
	"time"

	"github.com/google/gousb"
)

const (
	// Rabbit R1 USB vendor/product ID in normal mode
	R1VendorID  = 0x0e8d
	R1ProductID = 0x2304

	// AOA HID control transfer request codes (bRequest values)
	reqRegisterHID   = 54 // ACCESSORY_REGISTER_HID
	reqUnregisterHID = 55 // ACCESSORY_UNREGISTER_HID
	reqSetHIDDesc    = 56 // ACCESSORY_SET_HID_REPORT_DESC
	reqSendHIDEvent  = 57 // ACCESSORY_SEND_HID_EVENT

	// bmRequestType for all AOA HID transfers:
	// host-to-device (0x00) | vendor (0x40) | device recipient (0x00) = 0x40
	bmRequestTypeOut = 0x40
)

// DescriptorType identifies which HID descriptor to use.
type DescriptorType int

const (
	DescKeyboard        DescriptorType = iota // Standard Keyboard (Usage Page 0x07)
	DescConsumerControl                       // Consumer Control (Usage Page 0x0C)
	DescSystemControl                         // Generic Desktop / System Control (Usage Page 0x01)
)

func (d DescriptorType) String() string {
	switch d {
	case DescKeyboard:
		return "Keyboard (0x07)"
	case DescConsumerControl:
		return "Consumer Control (0x0C)"
	case DescSystemControl:
		return "System Control (0x01)"
	default:
		return "Unknown"
	}
}

// Keyboard HID report descriptor.
// 8-byte reports: [modifier, reserved, key1, key2, key3, key4, key5, key6]
var keyboardDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xA1, 0x01, // Collection (Application)
	// Modifier byte (8 bits: Ctrl, Shift, Alt, GUI x2)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0xE0, //   Usage Minimum (Left Control)
	0x29, 0xE7, //   Usage Maximum (Right GUI)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x81, 0x02, //   Input (Data, Variable, Absolute) — modifier byte
	// Reserved byte
	0x95, 0x01, //   Report Count (1)
	0x75, 0x08, //   Report Size (8)
	0x81, 0x01, //   Input (Constant) — reserved byte
	// Key array (6 keys)
	0x95, 0x06, //   Report Count (6)
	0x75, 0x08, //   Report Size (8)
	0x15, 0x00, //   Logical Minimum (0)
	0x26, 0xFF, 0x00, // Logical Maximum (255)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0x00, //   Usage Minimum (0)
	0x29, 0xFF, //   Usage Maximum (255)
	0x81, 0x00, //   Input (Data, Array)
	0xC0, // End Collection
}

// Consumer Control HID report descriptor.
// 2-byte report: 16-bit usage value (little-endian).
var consumerDescriptor = []byte{
	0x05, 0x0C, // Usage Page (Consumer)
	0x09, 0x01, // Usage (Consumer Control)
	0xA1, 0x01, // Collection (Application)
	0x15, 0x00, // Logical Minimum (0)
	0x26, 0xFF, 0x0F, // Logical Maximum (4095)
	0x19, 0x00, // Usage Minimum (0)
	0x2A, 0xFF, 0x0F, // Usage Maximum (4095)
	0x75, 0x10, // Report Size (16 bits)
	0x95, 0x01, // Report Count (1)
	0x81, 0x00, // Input (Data, Array)
	0xC0, // End Collection
}

// System Control HID report descriptor.
// 1-byte report with system control usage.
var systemControlDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x80, // Usage (System Control)
	0xA1, 0x01, // Collection (Application)
	0x15, 0x01, // Logical Minimum (1)
	0x25, 0x03, // Logical Maximum (3)
	0x09, 0x81, // Usage (System Power Down)
	0x09, 0x82, // Usage (System Sleep)
	0x09, 0x83, // Usage (System Wake Up)
	0x75, 0x08, // Report Size (8 bits)
	0x95, 0x01, // Report Count (1)
	0x81, 0x00, // Input (Data, Array)
	0xC0, // End Collection
}

// System Control reports.
var (
	SystemWake    = []byte{0x03}
	SystemRelease = []byte{0x00}
)

// GetDescriptor returns the raw HID descriptor for the given type.
func GetDescriptor(dt DescriptorType) []byte {
	switch dt {
	case DescKeyboard:
		return keyboardDescriptor
	case DescConsumerControl:
		return consumerDescriptor
	case DescSystemControl:
		return systemControlDescriptor
	default:
		return nil
	}
}

// Transport is the part of a USB device handle the AOA protocol needs.
// *gousb.Device satisfies it; tests substitute a recorder.
type Transport interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	SerialNumber() (string, error)
	Close() error
}

// Device wraps a libusb handle to an Android device with AOA HID set up.
type Device struct {
	ctx        *gousb.Context
	dev        Transport
	nextHIDID  uint16   // next HID ID to assign
	registered []uint16 // all registered HID IDs for cleanup

	// RegisterDelay is how long RegisterDescriptor waits for Android to
	// create the input device.
	RegisterDelay time.Duration
}

// Open finds a connected R1 and opens a USB connection (no HID registration yet).
func Open(serial string) (*Device, error) {
	return OpenDevice(R1VendorID, R1ProductID, serial)
}

// OpenDevice opens the first device matching vid:pid (and serial, if set).
func OpenDevice(vid, pid gousb.ID, serial string) (*Device, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vid && desc.Product == pid
	})
	if err != nil && len(devs) == 0 {
		ctx.Close()
		return nil, fmt.Errorf("no device found (VID:0x%04x PID:0x%04x): %w", uint16(vid), uint16(pid), err)
	}

	var dev *gousb.Device
	for _, d := range devs {
		s, _ := d.SerialNumber()
		if dev == nil && (serial == "" || s == serial) {
			dev = d
		} else {
			d.Close()
		}
	}
	if dev == nil {
		ctx.Close()
		if serial == "" {
			return nil, fmt.Errorf("no device found (VID:0x%04x PID:0x%04x)", uint16(vid), uint16(pid))
		}
		return nil, fmt.Errorf("device with serial %q not found", serial)
	}

	dev.SetAutoDetach(true)

	d := NewDevice(dev)
	d.ctx = ctx
	return d, nil
}

// NewDevice wraps an already opened transport.
func NewDevice(t Transport) *Device {
	return &Device{dev: t, nextHIDID: 1, RegisterDelay: 300 * time.Millisecond}
}

// RegisterDescriptor registers an HID descriptor with the device via AOA2.
// Returns the assigned HID ID for use with SendReportTo.
func (d *Device) RegisterDescriptor(dt DescriptorType) (uint16, error) {
	desc := GetDescriptor(dt)
	if desc == nil {
		return 0, fmt.Errorf("unknown descriptor type %d", dt)
	}

	id := d.nextHIDID
	d.nextHIDID++

	// Register HID device (wValue = HID ID, wIndex = descriptor length)
	if err := d.controlTransfer(reqRegisterHID, id, uint16(len(desc)), nil); err != nil {
		return 0, fmt.Errorf("REGISTER_HID failed: %w", err)
	}

	// Send the HID report descriptor
	if err := d.controlTransfer(reqSetHIDDesc, id, 0, desc); err != nil {
		_ = d.controlTransfer(reqUnregisterHID, id, 0, nil)
		return 0, fmt.Errorf("SET_HID_REPORT_DESC failed: %w", err)
	}

	if d.RegisterDelay > 0 {
		time.Sleep(d.RegisterDelay)
	}

	d.registered = append(d.registered, id)
	return id, nil
}

// SendReportTo sends a raw HID report to a specific descriptor by HID ID.
func (d *Device) SendReportTo(hidID uint16, report []byte) error {
	return d.controlTransfer(reqSendHIDEvent, hidID, 0, report)
}

// Ping checks if the device is still connected by reading its serial number.
func (d *Device) Ping() error {
	_, err := d.dev.SerialNumber()
	return err
}

// Close releases USB resources.
func (d *Device) Close() {
	for _, id := range d.registered {
		_ = d.controlTransfer(reqUnregisterHID, id, 0, nil)
	}
	d.registered = nil
	d.dev.Close()
	if d.ctx != nil {
		d.ctx.Close()
	}
}

// controlTransfer sends a vendor control transfer to the device.
func (d *Device) controlTransfer(bRequest uint8, wValue uint16, wIndex uint16, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := d.dev.Control(
		bmRequestTypeOut,
		bRequest,
		wValue,
		wIndex,
		data,
	)
	if err != nil {
		return fmt.Errorf("control transfer (req=%d wValue=%d wIndex=%d): %w", bRequest, wValue, wIndex, err)
	}
	return nil
}
