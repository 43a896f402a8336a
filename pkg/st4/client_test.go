package st4

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestClient() (*Client, *mockPort) {
	port := newMockPort()
	return New(port, WithTimeout(20*time.Millisecond)), port
}

func TestClient_Commands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		run  func(c *Client) error
		want string
	}{
		{"rapid both", func(c *Client) error { return c.GoRapid(ctx, Deg(0), Deg(0)) }, "G0 X0 Y0 \n"},
		{"rapid pan only", func(c *Client) error { return c.GoRapid(ctx, Deg(10), None) }, "G0 X32754 \n"},
		{"rapid tilt only", func(c *Client) error { return c.GoRapid(ctx, None, Deg(-1)) }, "G0 Y-8681 \n"},
		{"rapid no axes", func(c *Client) error { return c.GoRapid(ctx, None, None) }, "G0 \n"},
		{"coordinated", func(c *Client) error {
			return c.GoCoordinated(ctx, 2*time.Second, 500*time.Millisecond, Deg(1), Deg(1))
		}, "G1 T2 A0.5 X3275 Y8681 \n"},
		{"coordinated no axes", func(c *Client) error {
			return c.GoCoordinated(ctx, 1500*time.Millisecond, time.Second, None, None)
		}, "G1 T1.5 A1\n"},
		{"jog", func(c *Client) error { return c.Jog(ctx, Deg(-10), Deg(0.5)) }, "G2 X-32754 Y4340 \n"},
		{"jog no axes", func(c *Client) error { return c.Jog(ctx, None, None) }, "G2 \n"},
		{"set pan", func(c *Client) error { return c.SetMotorPosition(ctx, Pan, 10) }, "G200 M1 P32754\n"},
		{"set tilt", func(c *Client) error { return c.SetMotorPosition(ctx, Tilt, 10) }, "G200 M2 P86810\n"},
		{"set m3", func(c *Client) error { return c.SetMotorPosition(ctx, Aux3, 1) }, "G200 M3 P3275\n"},
		{"set m4", func(c *Client) error { return c.SetMotorPosition(ctx, Aux4, -1) }, "G200 M4 P-3275\n"},
		{"zero all", func(c *Client) error { return c.ZeroAllMotors(ctx) }, "G201\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, port := newTestClient()
			if err := tt.run(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := port.written(); got != tt.want {
				t.Errorf("wrote %q, want %q", got, tt.want)
			}
			if port.writes != 1 {
				t.Errorf("got %d writes, want 1", port.writes)
			}
		})
	}
}

func TestClient_SetMotorPosition_InvalidAxis(t *testing.T) {
	for _, axis := range []Axis{0, 5, -1} {
		c, port := newTestClient()
		err := c.SetMotorPosition(context.Background(), axis, 5)
		if !errors.Is(err, ErrInvalidAxis) {
			t.Errorf("SetMotorPosition(%d) error = %v, want ErrInvalidAxis", axis, err)
		}
		if port.writes != 0 {
			t.Errorf("SetMotorPosition(%d) wrote %q, want nothing", axis, port.written())
		}
	}
}

func TestClient_RapidThenReadLine(t *testing.T) {
	ctx := context.Background()
	c, port := newTestClient()

	if err := c.GoRapid(ctx, Deg(0), Deg(0)); err != nil {
		t.Fatalf("GoRapid: %v", err)
	}
	if got := port.written(); got != "G0 X0 Y0 \n" {
		t.Fatalf("wrote %q, want %q", got, "G0 X0 Y0 \n")
	}

	port.respond("Rapid to:,X0,Y0,Z0,W0\n")
	line, err := c.ReadLine(ctx)
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "Rapid to:,X0,Y0,Z0,W0" {
		t.Errorf("ReadLine() = %q, want %q", line, "Rapid to:,X0,Y0,Z0,W0")
	}
}

func TestClient_FirmwareVersion(t *testing.T) {
	c, port := newTestClient()
	port.respond("ST4 v1.2.3\r\n")

	version, err := c.FirmwareVersion(context.Background())
	if err != nil {
		t.Fatalf("FirmwareVersion: %v", err)
	}
	if version != "ST4 v1.2.3" {
		t.Errorf("FirmwareVersion() = %q, want %q", version, "ST4 v1.2.3")
	}
	if got := port.written(); got != "G700\n" {
		t.Errorf("wrote %q, want %q", got, "G700\n")
	}
}

func TestClient_ReadLine_KeepsRemainder(t *testing.T) {
	ctx := context.Background()
	c, port := newTestClient()
	port.respond("first\nsecond\nthird")

	for _, want := range []string{"first", "second", "third", ""} {
		got, err := c.ReadLine(ctx)
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Errorf("ReadLine() = %q, want %q", got, want)
		}
	}
}

func TestClient_ReadLine_Timeout(t *testing.T) {
	c, _ := newTestClient()

	start := time.Now()
	line, err := c.ReadLine(context.Background())
	if err != nil {
		t.Fatalf("timeout should not be an error, got %v", err)
	}
	if line != "" {
		t.Errorf("ReadLine() = %q, want empty", line)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("ReadLine took %v", elapsed)
	}
}

func TestClient_ReadLine_Partial(t *testing.T) {
	c, port := newTestClient()
	port.respond("Jog to:,X1")

	line, err := c.ReadLine(context.Background())
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "Jog to:,X1" {
		t.Errorf("ReadLine() = %q, want %q", line, "Jog to:,X1")
	}
}

func TestClient_ReadLine_InvalidUTF8(t *testing.T) {
	c, port := newTestClient()
	port.respond("ok\xff\n")

	line, err := c.ReadLine(context.Background())
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "ok�" {
		t.Errorf("ReadLine() = %q, want %q", line, "ok�")
	}
}

func TestClient_TransportErrors(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	c, port := newTestClient()
	port.writeErr = errBoom
	if err := c.ZeroAllMotors(ctx); !errors.Is(err, errBoom) {
		t.Errorf("ZeroAllMotors error = %v, want wrapped boom", err)
	}

	c, port = newTestClient()
	port.readErr = errBoom
	if _, err := c.ReadLine(ctx); !errors.Is(err, errBoom) {
		t.Errorf("ReadLine error = %v, want wrapped boom", err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, port := newTestClient()
	if err := c.Jog(ctx, Deg(1), None); !errors.Is(err, context.Canceled) {
		t.Errorf("Jog error = %v, want context.Canceled", err)
	}
	if port.writes != 0 {
		t.Errorf("wrote %q after cancel", port.written())
	}
}

func TestClient_Close(t *testing.T) {
	c, port := newTestClient()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !port.closed {
		t.Error("port not closed")
	}
}

func TestOpen_MissingDevice(t *testing.T) {
	_, err := Open("/dev/st4-does-not-exist")
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Open error = %v, want ErrOpen", err)
	}
}

func TestAxis_String(t *testing.T) {
	tests := []struct {
		axis Axis
		want string
	}{
		{Pan, "pan"},
		{Tilt, "tilt"},
		{Aux3, "m3"},
		{Aux4, "m4"},
		{7, "axis(7)"},
	}
	for _, tt := range tests {
		if got := tt.axis.String(); got != tt.want {
			t.Errorf("Axis(%d).String() = %q, want %q", int(tt.axis), got, tt.want)
		}
	}
}

func TestClient_ReadLine_TimeoutOnBlockingPort(t *testing.T) {
	port := newBlockingPort()
	c := New(port, WithTimeout(50*time.Millisecond))

	start := time.Now()
	line, err := c.ReadLine(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("timeout should not be an error, got %v", err)
	}
	if line != "" {
		t.Errorf("ReadLine() = %q, want empty", line)
	}
	if elapsed < 40*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("ReadLine returned after %v, want about 50ms", elapsed)
	}
	if port.timeoutSets == 0 {
		t.Error("ReadLine never set the port read timeout")
	}
}

func TestClient_ReadLine_TricklingBytesKeepTotalTimeout(t *testing.T) {
	port := newBlockingPort()
	c := New(port, WithTimeout(100*time.Millisecond))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case port.data <- []byte("x"):
				default:
				}
			}
		}
	}()

	start := time.Now()
	line, err := c.ReadLine(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line == "" {
		t.Error("expected the partial line received before the timeout")
	}
	if elapsed > 180*time.Millisecond {
		t.Errorf("ReadLine returned after %v, want the 100ms total timeout", elapsed)
	}
}

func TestClient_ReadLine_CancelWhileWaiting(t *testing.T) {
	port := newBlockingPort()
	c := New(port, WithTimeout(0))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	_, err := c.ReadLine(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ReadLine error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("ReadLine noticed cancellation after %v", elapsed)
	}
}

func TestClient_ReadLine_BlockingPortLine(t *testing.T) {
	port := newBlockingPort()
	c := New(port, WithTimeout(time.Second))

	time.AfterFunc(20*time.Millisecond, func() { port.feed("Jog to:,X3275,Y0,Z0,W0\r\n") })

	line, err := c.ReadLine(context.Background())
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "Jog to:,X3275,Y0,Z0,W0" {
		t.Errorf("ReadLine() = %q, want %q", line, "Jog to:,X3275,Y0,Z0,W0")
	}
}
