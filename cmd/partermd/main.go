// Command partermd serves a terminal emulation core over WebSocket: one PTY
// session per connecting client (or shared, when clients request the same
// session id), broadcasting parsed terminal events as hand-rolled protobuf
// frames.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}
