// Package fedsync keeps a FED3 feeding device in step with the host: it syncs
// the device clock, streams the device's event frames into an operator log and
// records them to CSV.
//
// Every exchange on the serial link is a null-terminated UTF-8 frame. A single
// Manager owns the link and runs each operation under a FIFO ticket queue, so
// the background poll loop and foreground commands never interleave bytes.
//
// # Basic Usage
//
// Open a connection with the device defaults (57600 8N1, 2s read timeout):
//
//	endpoint, err := fedsync.NewEndpoint("/dev/ttyACM0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := fedsync.Dial(endpoint)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Shutdown()
//
//	echoed, err := m.SyncTime(time.Now())
//
// # Polling and Recording
//
// SystemState ties the connection, recording session and operator log
// together; a Poller drains incoming frames into it until its context ends:
//
//	state := fedsync.NewSystemState(fedsync.EndpointDialer(), afero.NewOsFs())
//	state.SetPorts([]string{"/dev/ttyACM0"})
//	state.SetOutputPath("/data/", true)
//
//	ctx, cancel := context.WithCancel(context.Background())
//	go fedsync.NewPoller(state, 0).Run(ctx)
//
//	state.ToggleRecording(time.Now()) // resets counters, opens /data/<year>-<week>-<day>_run-1.csv
//
// # Shutdown
//
// Manager.Shutdown stops admitting operations, waits for the ones already
// queued, then closes the port. After that every operation returns
// ErrDisabled immediately.
//
// # Error Handling
//
//	var (
//	    ErrReadTimeout   // no terminator before the read timeout
//	    ErrFrameDecode   // frame is not UTF-8
//	    ErrDisabled      // manager is shut down
//	    ErrNoConnection  // no port selected
//	    // ... and more
//	)
//
// Use errors.Is() for error type checking.
package fedsync
