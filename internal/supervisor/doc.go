// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package supervisor provides process supervision for Dockvault using suture v4.

# Overview

Long-running components are organized into three layers for failure
isolation:

	RootSupervisor ("dockvault")
	├── EngineSupervisor ("engine-layer")
	│   ├── EngineService ("backup-engine")
	│   └── Scheduler ("backup-scheduler", if schedule.enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Hub ("websocket-hub")
	└── APISupervisor ("api-layer")
	    └── HTTPServerService ("http-server")

Crashed services are restarted with suture's backoff; a failure in one layer
does not restart the others. Supervisor events are logged through sutureslog,
which writes into the zerolog logger via logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddEngineService(services.NewEngineService(engine, 5*time.Second))
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))

	return tree.Serve(ctx)
*/
package supervisor
