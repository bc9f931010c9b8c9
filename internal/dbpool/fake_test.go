package dbpool

import (
	"context"
	"sync"
)

// fakeErr lets tests script the transient/fatal classification directly.
type fakeErr struct {
	msg       string
	transient bool
}

func (e *fakeErr) Error() string   { return e.msg }
func (e *fakeErr) Transient() bool { return e.transient }

// call records one statement the fake connection saw.
type call struct {
	sql  string
	args []any
}

// step scripts one response from the fake connection.
type step struct {
	rows  [][]any
	count int64
	err   error
}

// fakeConn replays scripted steps in order; extra calls succeed empty.
type fakeConn struct {
	mu     sync.Mutex
	script []step
	calls  []call
	closed bool
}

func (c *fakeConn) next(sql string, args []any) step {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, call{sql: sql, args: args})
	if len(c.script) == 0 {
		return step{}
	}
	s := c.script[0]
	c.script = c.script[1:]
	return s
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	s := c.next(sql, args)
	return s.count, s.err
}

func (c *fakeConn) Query(_ context.Context, sql string, args ...any) ([][]any, error) {
	s := c.next(sql, args)
	return s.rows, s.err
}

func (c *fakeConn) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) callSQL() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	for i, cl := range c.calls {
		out[i] = cl.sql
	}
	return out
}

// fakeDialer hands out fresh fakeConns, optionally failing first.
type fakeDialer struct {
	mu       sync.Mutex
	conns    []*fakeConn
	scripts  [][]step // script for the nth dialed conn
	dialErrs []error  // errors to return before dialing succeeds
}

func (d *fakeDialer) dial(context.Context) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.dialErrs) > 0 {
		err := d.dialErrs[0]
		d.dialErrs = d.dialErrs[1:]
		return nil, err
	}

	c := &fakeConn{}
	if len(d.scripts) > 0 {
		c.script = d.scripts[0]
		d.scripts = d.scripts[1:]
	}
	d.conns = append(d.conns, c)
	return c, nil
}
