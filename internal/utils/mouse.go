package utils

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// GlobalPointer reads the desktop pointer position through X11. It keeps
// working when the window does not own the cursor, which makes it usable
// as a mouse-look source under compositors that refuse cursor capture.
type GlobalPointer struct {
	conn   *xgb.Conn
	root   xproto.Window
	lastX  int
	lastY  int
	primed bool
}

func NewGlobalPointer() (*GlobalPointer, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}

	setup := xproto.Setup(conn)
	return &GlobalPointer{
		conn: conn,
		root: setup.DefaultScreen(conn).Root,
	}, nil
}

func (p *GlobalPointer) Position() (int, int, error) {
	reply, err := xproto.QueryPointer(p.conn, p.root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// Delta returns the pointer movement since the previous call. The first
// call only records the position.
func (p *GlobalPointer) Delta() (float32, float32, error) {
	x, y, err := p.Position()
	if err != nil {
		return 0, 0, err
	}
	if !p.primed {
		p.lastX, p.lastY, p.primed = x, y, true
		return 0, 0, nil
	}
	dx, dy := x-p.lastX, y-p.lastY
	p.lastX, p.lastY = x, y
	return float32(dx), float32(dy), nil
}

func (p *GlobalPointer) Close() {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
