package simkit

import (
	"bytes"
	"runtime"
	"strconv"
)

// OnLoop reports whether the caller is running on the loop goroutine.
func (t *Toolkit) OnLoop() bool {
	id := t.loopID.Load()
	return id != 0 && id == goroutineID()
}

// goroutineID parses the current goroutine's id from its stack header,
// "goroutine 18 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
