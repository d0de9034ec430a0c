// Command client is a terminal viewer for interactive placement: a top-down
// map of the mirrored world with a ghost cursor driven by the same pipeline
// the bot and server use.
//
// Keys: arrows move the cursor, b/d/w start a house/depot/wall session,
// r rotates, enter confirms, f finishes a wall chain, c cancels, q quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nsf/termbox-go"

	"rampart.gg/internal/mirror"
	"rampart.gg/internal/protocol"
	"rampart.gg/internal/sim/geom"
	"rampart.gg/internal/sim/placement"
)

type app struct {
	mu     sync.Mutex
	mirror *mirror.Mirror
	coord  *placement.Coordinator
	view   placement.GhostView

	cursor geom.Vec3
	status string

	conn *websocket.Conn
}

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "player", "player name")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[client] ", log.LstdFlags)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	if err := termbox.Init(); err != nil {
		logger.Fatalf("termbox: %v", err)
	}
	defer termbox.Close()

	a := &app{mirror: mirror.New(), conn: conn, status: "connecting"}
	go a.readLoop(logger)

	events := make(chan termbox.Event, 8)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if ev.Type == termbox.EventKey && !a.handleKey(ev) {
				return
			}
		case <-ticker.C:
		}
		a.tick()
		a.render()
	}
}

func (a *app) readLoop(logger *log.Logger) {
	for {
		_, msg, err := a.conn.ReadMessage()
		if err != nil {
			a.mu.Lock()
			a.status = "disconnected"
			a.mu.Unlock()
			return
		}
		a.mu.Lock()
		if err := a.mirror.Apply(msg); err == nil {
			if base, _ := protocol.DecodeBase(msg); base.Type == protocol.TypeWelcome {
				if c, err := a.mirror.NewCoordinator(); err == nil {
					a.coord = c
					a.cursor = geom.Vec3{}
					a.status = "connected as " + a.mirror.PlayerID
				}
			}
		}
		a.mu.Unlock()
	}
}

// handleKey returns false to quit.
func (a *app) handleKey(ev termbox.Event) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	step := 1.0
	switch ev.Key {
	case termbox.KeyArrowUp:
		a.cursor.Z -= step
	case termbox.KeyArrowDown:
		a.cursor.Z += step
	case termbox.KeyArrowLeft:
		a.cursor.X -= step
	case termbox.KeyArrowRight:
		a.cursor.X += step
	case termbox.KeyEnter:
		a.confirm()
	case termbox.KeyEsc:
		a.cancel()
	}
	switch ev.Ch {
	case 'q':
		return false
	case 'b':
		a.begin("house")
	case 'd':
		a.begin("depot")
	case 'w':
		a.begin("wall")
	case 'r':
		if a.coord != nil && a.coord.Active() {
			a.coord.Rotate(1)
		}
	case 'f':
		a.finishChain()
	case 'c':
		a.cancel()
	}
	return true
}

func (a *app) begin(buildingType string) {
	if a.coord == nil {
		return
	}
	def, ok := a.mirror.Catalog[buildingType]
	if !ok {
		a.status = "no catalog entry for " + buildingType
		return
	}
	a.coord.Begin(buildingType, def.Size, def.Chainable)
	a.status = "placing " + buildingType
}

func (a *app) confirm() {
	if a.coord == nil || !a.coord.Active() {
		return
	}
	if !a.view.Valid {
		a.status = "invalid: " + string(a.view.Reason)
		return
	}
	reqs := a.coord.Confirm(a.mirror.OwnBuilders(), false)
	if len(reqs) > 0 {
		a.send(reqs)
		a.status = fmt.Sprintf("sent %s", reqs[0].ID)
	} else {
		a.status = fmt.Sprintf("chain length %d", a.view.ChainLen+1)
	}
}

func (a *app) finishChain() {
	if a.coord == nil {
		return
	}
	reqs := a.coord.FinishChain(a.mirror.OwnBuilders(), false)
	if len(reqs) == 0 {
		return
	}
	a.send(reqs)
	a.status = fmt.Sprintf("sent chain of %d", len(reqs))
}

func (a *app) cancel() {
	if a.coord != nil {
		a.coord.Cancel()
	}
	a.status = "cancelled"
}

func (a *app) send(reqs []protocol.PlacementReq) {
	_ = a.conn.WriteJSON(protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            a.mirror.Tick,
		PlayerID:        a.mirror.PlayerID,
		Placements:      reqs,
	})
}

func (a *app) tick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.coord != nil && a.coord.Active() {
		a.view = a.coord.Update(a.cursor, 0.1)
	}
}

func (a *app) render() {
	a.mu.Lock()
	defer a.mu.Unlock()

	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	w, h := termbox.Size()
	mapH := h - 2
	if w <= 0 || mapH <= 0 {
		_ = termbox.Flush()
		return
	}

	// World-to-screen: one cell per world unit, camera centered on cursor.
	originX := a.cursor.X - float64(w)/2
	originZ := a.cursor.Z - float64(mapH)/2
	put := func(wx, wz float64, ch rune, fg termbox.Attribute) {
		sx := int(wx - originX)
		sy := int(wz - originZ)
		if sx >= 0 && sx < w && sy >= 0 && sy < mapH {
			termbox.SetCell(sx, sy, ch, fg, termbox.ColorDefault)
		}
	}

	for _, t := range a.mirror.TargetsNear(a.mirror.PlayerID, a.cursor, 64) {
		drawFootprint(put, t.Fp, '#', termbox.ColorBlue)
	}
	for _, u := range a.mirror.Units {
		fg := termbox.ColorYellow
		if u.Owner != a.mirror.PlayerID {
			fg = termbox.ColorRed
		}
		put(u.Position[0], u.Position[2], 'u', fg)
	}

	if a.coord != nil && a.coord.Active() {
		fg := termbox.ColorGreen
		if !a.view.Valid {
			fg = termbox.ColorRed
		}
		if s := a.coord.Session(); s != nil {
			drawFootprint(put, s.Footprint, 'o', fg)
			for _, seg := range s.Segments {
				drawFootprint(put, seg, 'o', termbox.ColorCyan)
			}
		}
	}
	put(a.cursor.X, a.cursor.Z, '+', termbox.ColorWhite|termbox.AttrBold)

	statusLine := fmt.Sprintf("tick %d  wood %d  stone %d  %s",
		a.mirror.Tick, a.mirror.Resources["wood"], a.mirror.Resources["stone"], a.status)
	for i, ch := range statusLine {
		if i >= w {
			break
		}
		termbox.SetCell(i, h-1, ch, termbox.ColorWhite, termbox.ColorDefault)
	}
	_ = termbox.Flush()
}

func drawFootprint(put func(float64, float64, rune, termbox.Attribute), fp geom.Footprint, ch rune, fg termbox.Attribute) {
	hx, hz := fp.BoundsHalf()
	for x := fp.Center.X - hx; x <= fp.Center.X+hx; x++ {
		for z := fp.Center.Z - hz; z <= fp.Center.Z+hz; z++ {
			put(x, z, ch, fg)
		}
	}
}
