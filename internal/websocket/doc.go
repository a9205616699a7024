// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package websocket pushes live engine status and log entries to dashboards.

The package uses gorilla/websocket with a hub-client architecture. The hub is
a suture service; the engine's status and log callbacks feed it through
BroadcastStatus and BroadcastLog, which never block the engine.

Key Components:

  - Hub: registers clients and fans broadcasts out to them
  - Client: one connection with a read pump and a write pump
  - Message: typed JSON envelope {"type": ..., "data": ...}

Message Types:

  - status: a backup.StatusSnapshot, sent on every status change and once
    when a client connects
  - log: a backup.LogEntry, sent for every engine log line
  - ping / pong: application-level keepalive initiated by the client

Slow Clients:

Each client has a buffered send queue. A client whose queue is full when a
broadcast arrives is disconnected and counted in websocket_errors_total.

Usage:

	hub := websocket.NewHub()
	engine.SetOnLog(hub.BroadcastLog)
	tree.AddMessagingService(hub)

	// in the HTTP handler
	client := websocket.NewClient(hub, conn)
	if hub.Attach(client) {
	    client.Start()
	}
*/
package websocket
