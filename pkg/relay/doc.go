// Package relay is a development server for the realtime notification
// contract: the endpoint clients connect to while the production
// backend is out of reach or does not exist yet.
//
// # Surface
//
//   - GET /ws/{sessionID} upgrades to a websocket, greets the session
//     with a connection_established notification, answers ping frames
//     with pong, and honors join_room/leave_room membership frames.
//   - POST /emit publishes one Event to the connected audience.
//   - GET /healthz serves liveness plus any registered readiness checks.
//
// Events can also arrive from a Redis pub/sub channel (Bridge) or a
// timed YAML script (Player), letting backend services or a soak-test
// scenario drive notifications without touching the relay process.
//
// # Usage
//
//	srv := relay.NewServer(cfg, relay.WithLogger(log))
//
//	sc, err := relay.LoadScenario("demo.yaml")
//	if err != nil {
//	    return err
//	}
//	go relay.NewPlayer(sc, srv.Publisher(), log).Run(ctx)
//
//	httpSrv := httpserver.New(httpserver.WithAddr(cfg.Addr))
//	return httpSrv.Run(ctx, srv.Handler())
package relay
