package event

// Names of the realtime frames observers receive.
const (
	NameMessage       = "message"
	NameQR            = "qr"
	NameReady         = "ready"
	NameAuthenticated = "authenticated"
)

const (
	TextConnecting    = "Connecting..."
	TextQRReceived    = "QR Code received, scan please!"
	TextReady         = "Whatsapp is ready!"
	TextAuthenticated = "Whatsapp is authenticated!"
	TextAuthFailure   = "Auth failure, restarting..."
	TextDisconnected  = "Whatsapp is disconnected!"
)

// LifecycleEvent is what the bridge publishes to every attached observer.
// The set of implementations is closed.
type LifecycleEvent interface {
	Name() string
	Data() string
	lifecycle()
}

// Connecting is sent to a single observer right after it attaches.
type Connecting struct{}

func (Connecting) Name() string { return NameMessage }
func (Connecting) Data() string { return TextConnecting }
func (Connecting) lifecycle()   {}

type StatusMessage struct {
	Text string
}

func (s StatusMessage) Name() string { return NameMessage }
func (s StatusMessage) Data() string { return s.Text }
func (StatusMessage) lifecycle()     {}

// ChallengePresented carries the pairing QR code as a PNG data URL.
// Code is the raw challenge, kept for local renderers only.
type ChallengePresented struct {
	DataURL string
	Code    string
}

func (c ChallengePresented) Name() string { return NameQR }
func (c ChallengePresented) Data() string { return c.DataURL }
func (ChallengePresented) lifecycle()     {}

type Authenticated struct{}

func (Authenticated) Name() string { return NameAuthenticated }
func (Authenticated) Data() string { return TextAuthenticated }
func (Authenticated) lifecycle()   {}

type Ready struct{}

func (Ready) Name() string { return NameReady }
func (Ready) Data() string { return TextReady }
func (Ready) lifecycle()   {}

type AuthFailed struct {
	Reason string
}

func (a AuthFailed) Name() string { return NameMessage }
func (a AuthFailed) Data() string { return TextAuthFailure }
func (AuthFailed) lifecycle()     {}

type Disconnected struct {
	Reason string
}

func (d Disconnected) Name() string { return NameMessage }
func (d Disconnected) Data() string { return TextDisconnected }
func (Disconnected) lifecycle()     {}

// Frame is the wire shape of an event on the realtime channel.
type Frame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

func ToFrame(e LifecycleEvent) Frame {
	return Frame{Event: e.Name(), Data: e.Data()}
}
