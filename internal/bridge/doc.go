// Package bridge lets one external controller drive a fixed-step simulation
// in lock-step over TCP.
//
// The controller writes one newline-terminated action line, the host's tick
// loop applies it and advances exactly one physics step, and the resulting
// state line is written back before the next action is read:
//
//   - [Framer]: turns a byte stream into trimmed, non-empty lines
//   - [Decode], [Encode]: action line to [Command], [StateVector] to state line
//   - [Coordinator]: single-slot handoff between the network goroutine and the tick loop
//   - [Acceptor]: owns the listener and the one accepted connection
//
// # Wire format
//
// Requests, client to bridge:
//
//	0,<pitch>,<yaw>,<thrust>,<roll>
//	1,<x>,<y>,<z>,<pitch>,<yaw>
//
// Responses, bridge to client, 13 fields:
//
//	dx,dy,dz,vx,vy,vz,wx,wy,wz,qx,qy,qz,qw
//
// # Concurrency
//
// The network goroutine blocks in Accept, Read and [Coordinator.Submit]. The
// tick side calls [Coordinator.Tick] once per cadence and never waits for a
// request. There is no timeout on a pending response: a tick loop that stops
// ticking stalls the connection until the bridge is closed.
package bridge
