package nlsock

import (
	"fmt"
	"log"
	"runtime"

	"github.com/vishvananda/netns"
)

// inNamespace runs fn on a thread that has joined the network namespace at
// path. Sockets keep the namespace they were created in, so fn only needs to
// create one.
func inNamespace(path string, fn func() error) error {
	runtime.LockOSThread()

	origin, err := netns.Get()
	if err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("could not get current namespace: %w", err)
	}
	defer origin.Close()

	target, err := netns.GetFromPath(path)
	if err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("could not open namespace %s: %w", path, err)
	}
	defer target.Close()

	if err := netns.Set(target); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("could not enter namespace %s: %w", path, err)
	}
	ferr := fn()
	if err := netns.Set(origin); err != nil {
		// The thread is stuck in the wrong namespace. Leaving it locked makes
		// the runtime throw it away when this goroutine exits.
		log.Println("Could not restore network namespace:", err)
		return fmt.Errorf("could not leave namespace %s: %w", path, err)
	}
	runtime.UnlockOSThread()
	return ferr
}
