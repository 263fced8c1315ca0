package audio

import (
	"context"
	"reflect"
	"testing"

	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/stretchr/testify/require"
)

func TestChooseSource(t *testing.T) {
	headset := Device{ID: "alsa_input.usb-headset", Description: "USB Headset", Available: true}
	webcam := Device{ID: "alsa_input.webcam", Description: "Webcam Microphone", Available: true, Default: true}
	mutedWebcam := webcam
	mutedWebcam.Muted = true
	unplugged := Device{ID: "alsa_input.usb-headset", Description: "USB Headset", Available: false}

	tests := []struct {
		name         string
		devices      []Device
		input        string
		fallback     string
		wantID       string
		wantWarning  string
		wantFallback bool
		wantErr      string
	}{
		{name: "default source", devices: []Device{headset, webcam}, input: "default", fallback: "default", wantID: "alsa_input.webcam"},
		{name: "blank input means default", devices: []Device{headset, webcam}, input: " ", fallback: "", wantID: "alsa_input.webcam"},
		{name: "input by description", devices: []Device{headset, webcam}, input: "USB headset", fallback: "default", wantID: "alsa_input.usb-headset"},
		{name: "muted default falls back", devices: []Device{headset, mutedWebcam}, input: "default", fallback: "headset", wantID: "alsa_input.usb-headset", wantWarning: "muted", wantFallback: true},
		{name: "unavailable input falls back to default", devices: []Device{unplugged, webcam}, input: "headset", fallback: "default", wantID: "alsa_input.webcam", wantWarning: "unavailable", wantFallback: true},
		{name: "muted default without fallback", devices: []Device{mutedWebcam}, input: "default", fallback: "default", wantErr: "is muted"},
		{name: "unknown input", devices: []Device{webcam}, input: "studio", fallback: "default", wantErr: "did not match"},
		{name: "missing fallback", devices: []Device{mutedWebcam}, input: "default", fallback: "studio", wantErr: "fallback \"studio\" not found"},
		{name: "no devices", devices: nil, input: "default", fallback: "default", wantErr: "no audio input devices"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			selection, err := chooseSource(tc.devices, tc.input, tc.fallback)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantID, selection.Device.ID)
			require.Equal(t, tc.wantFallback, selection.Fallback)
			if tc.wantWarning == "" {
				require.Empty(t, selection.Warning)
			} else {
				require.Contains(t, selection.Warning, tc.wantWarning)
			}
		})
	}
}

func TestDeviceMatches(t *testing.T) {
	dev := Device{ID: "alsa_input.usb-headset", Description: "USB Headset"}
	require.True(t, dev.matches("headset"))
	require.True(t, dev.matches("usb headset"))
	require.False(t, dev.matches("webcam"))
	require.False(t, dev.matches(""))
}

func TestPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	_, err := ListDevices(context.Background())
	require.Error(t, err)

	_, err = SelectDevice(context.Background(), "default", "default")
	require.Error(t, err)

	_, err = StartCapture(context.Background(), Device{ID: "mic"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connect pulse server")
}

func TestSourceStateString(t *testing.T) {
	require.Equal(t, "running", sourceStateString(0))
	require.Equal(t, "idle", sourceStateString(1))
	require.Equal(t, "suspended", sourceStateString(2))
	require.Equal(t, "unknown(7)", sourceStateString(7))
}

func TestSourceAvailable(t *testing.T) {
	require.False(t, sourceAvailable(nil))
	require.True(t, sourceAvailable(&pulseproto.GetSourceInfoReply{}))

	for availability, want := range map[uint32]bool{0: true, 1: false, 2: true} {
		info := &pulseproto.GetSourceInfoReply{ActivePortName: "analog-input-mic"}
		setPorts(t, info, map[string]uint32{"analog-input-mic": availability, "analog-input-linein": 1})
		require.Equal(t, want, sourceAvailable(info), "availability %d", availability)
	}
}

// setPorts fills the reply's anonymous port slice through reflection.
func setPorts(t *testing.T, info *pulseproto.GetSourceInfoReply, ports map[string]uint32) {
	t.Helper()

	slice := reflect.MakeSlice(reflect.TypeOf(info.Ports), 0, len(ports))
	for name, availability := range ports {
		item := reflect.New(slice.Type().Elem()).Elem()
		item.FieldByName("Name").SetString(name)
		item.FieldByName("Available").SetUint(uint64(availability))
		slice = reflect.Append(slice, item)
	}
	reflect.ValueOf(info).Elem().FieldByName("Ports").Set(slice)
}
