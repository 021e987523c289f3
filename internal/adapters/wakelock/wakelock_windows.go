package wakelock

import (
	"runtime"

	"golang.org/x/sys/windows"
)

const (
	esContinuous     = 0x80000000
	esSystemRequired = 0x00000001
)

var procSetThreadExecutionState = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadExecutionState")

// The execution state belongs to the calling thread, so one locked thread
// sets it and later clears it.
func inhibit() (func() error, error) {
	if err := procSetThreadExecutionState.Find(); err != nil {
		return nil, err
	}

	started := make(chan error, 1)
	stop := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(stopped)

		r, _, err := procSetThreadExecutionState.Call(uintptr(esContinuous | esSystemRequired))
		if r == 0 {
			started <- err
			return
		}
		started <- nil
		<-stop
		procSetThreadExecutionState.Call(uintptr(esContinuous))
	}()

	if err := <-started; err != nil {
		return nil, err
	}
	return func() error {
		close(stop)
		<-stopped
		return nil
	}, nil
}
