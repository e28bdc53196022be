// stream runs a headless world server-side and streams it to browsers
// over a websocket: positions go out as binary frames, pointer input
// comes back as the gravity tilt. All connected clients watch and tilt
// the same world.
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	_ "embed"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/bounce"
)

const (
	worldW = 1280
	worldH = 720

	tickRate   = 60
	spawnTries = 8000

	// BurstAt divides by mass (r²), so the force is sized for the
	// default 12-40px radius range.
	blastRadius = 300.0
	blastForce  = 150000.0
)

// Frame opcodes, first byte of every server-to-client message.
const (
	opFrame     byte = 0x01
	opWorldSize byte = 0x02
)

// Client actions, in clientInput.Action.
const (
	actionNone  uint8 = 0
	actionClick uint8 = 1
	actionBlast uint8 = 2
)

// clientInput is the little-endian wire struct browsers send. GX and GY
// are the tilt; X and Y are world coordinates for click actions.
type clientInput struct {
	GX, GY float32
	Action uint8
	_      [3]uint8
	X, Y   float32
}

//go:embed index.html
var indexHTML []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// hub fans simulation frames out to connected clients and holds the
// latest input. The world itself is touched only by the run loop.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	inputMu sync.Mutex
	gravity bounce.Vec2
	clicks  []clientInput
}

func newHub() *hub {
	return &hub{
		clients: make(map[*websocket.Conn]chan []byte),
		gravity: bounce.Vec2{Y: 1},
	}
}

// run steps the world at the tick rate and broadcasts each frame.
// Client input is drained at the top of the tick, so all world mutation
// happens here and nowhere else.
func (h *hub) run(w *bounce.World) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	const dt = 1.0 / tickRate
	for range ticker.C {
		gravity, clicks := h.drainInput()
		for _, in := range clicks {
			switch in.Action {
			case actionClick:
				x, y := float64(in.X), float64(in.Y)
				if w.PopAt(x, y) == nil {
					w.SpawnAt(x, y)
				}
			case actionBlast:
				w.BurstAt(float64(in.X), float64(in.Y), blastRadius, blastForce)
			}
		}

		w.Step(dt, gravity)
		h.broadcast(encodeFrame(w))
	}
}

func (h *hub) drainInput() (bounce.Vec2, []clientInput) {
	h.inputMu.Lock()
	defer h.inputMu.Unlock()
	gravity := h.gravity
	clicks := h.clicks
	h.clicks = nil
	return gravity, clicks
}

func (h *hub) broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- frame:
		default:
			// Slow client: drop the frame rather than stall the tick.
		}
	}
}

func (h *hub) add(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, 3)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		close(ch)
	}
	conn.Close()
}

// encodeFrame packs the world into one binary message:
// opcode, uint16 count, then per circle float32 x, y, radius and four
// color bytes. Little-endian throughout.
func encodeFrame(w *bounce.World) []byte {
	circles := w.Circles()
	buf := bytes.NewBuffer(make([]byte, 0, 3+16*len(circles)))
	buf.WriteByte(opFrame)
	binary.Write(buf, binary.LittleEndian, uint16(len(circles)))
	for _, c := range circles {
		binary.Write(buf, binary.LittleEndian, float32(c.Pos.X))
		binary.Write(buf, binary.LittleEndian, float32(c.Pos.Y))
		binary.Write(buf, binary.LittleEndian, float32(c.Radius))
		buf.WriteByte(uint8(c.Color.R * 255))
		buf.WriteByte(uint8(c.Color.G * 255))
		buf.WriteByte(uint8(c.Color.B * 255))
		buf.WriteByte(uint8(c.Color.A * 255))
	}
	return buf.Bytes()
}

func encodeWorldSize() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 9))
	buf.WriteByte(opWorldSize)
	binary.Write(buf, binary.LittleEndian, float32(worldW))
	binary.Write(buf, binary.LittleEndian, float32(worldH))
	return buf.Bytes()
}

func (h *hub) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Println("upgrade failed:", err)
		return
	}
	log.Printf("client connected: %s", conn.RemoteAddr())

	ch := h.add(conn)
	go writePump(conn, ch)

	if err := conn.WriteMessage(websocket.BinaryMessage, encodeWorldSize()); err != nil {
		h.remove(conn)
		return
	}

	defer func() {
		h.remove(conn)
		log.Printf("client disconnected: %s", conn.RemoteAddr())
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		var in clientInput
		if err := binary.Read(bytes.NewReader(message), binary.LittleEndian, &in); err != nil {
			log.Println("bad input message:", err)
			continue
		}
		if math.IsNaN(float64(in.GX)) || math.IsNaN(float64(in.GY)) {
			continue
		}

		h.inputMu.Lock()
		h.gravity = bounce.Vec2{X: float64(in.GX), Y: float64(in.GY)}
		if in.Action != actionNone {
			h.clicks = append(h.clicks, in)
		}
		h.inputMu.Unlock()
	}
}

func writePump(conn *websocket.Conn, ch <-chan []byte) {
	for message := range ch {
		if err := conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			return
		}
	}
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	circles := flag.Int("circles", 60, "number of circles to spawn")
	flag.Parse()

	world := bounce.NewWorld(bounce.DefaultConfig(bounce.Bounds{
		MaxX: worldW,
		MaxY: worldH,
	}))
	placed := world.SpawnInitial(*circles, spawnTries)
	log.Printf("spawned %d circles", placed)

	h := newHub()
	go h.run(world)

	http.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		rw.Write(indexHTML)
	})
	http.HandleFunc("/ws", h.handleWS)

	log.Printf("serving on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
