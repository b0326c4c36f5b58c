// Package singleinstance prevents two assistant processes from fighting
// over the same global hotkeys. Ownership is a bound loopback TCP port;
// the OS releases it automatically if the process dies.
package singleinstance

import (
	"fmt"
	"net"
)

// Acquire claims instance ownership on the given loopback port. It returns
// a release function on success, or an error when another instance already
// holds the port.
func Acquire(port int) (release func(), err error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("another instance appears to be running (port %d busy): %w", port, err)
	}

	// Drain and drop any stray connections so the accept queue never fills.
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	return func() { listener.Close() }, nil
}
