package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/howeyc/fsnotify"

	"github.com/nf/nip/host"
)

// devMode runs romFile and resets the machine whenever the file changes.
// If debug is set it also runs the debugger console in the terminal.
func devMode(cfg host.Config, ui host.Frontend, debug bool, romFile string) error {
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return err
	}

	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}

	var (
		d      *debugger
		statef host.StateFunc
	)
	if debug {
		// The console owns the terminal.
		flag.Set("stderrthreshold", "FATAL")
		d = newDebugger()
		d.setROM(rom)
		statef = d.StateFunc
	}
	runner, err := host.NewRunner(cfg, ui, statef)
	if err != nil {
		return err
	}
	if d != nil {
		d.run = runner
		go func() {
			if err := d.Run(); err != nil {
				glog.Errorf("debug: %v", err)
			}
			runner.Stop()
		}()
		defer d.app.Stop()
	}

	go func() {
		var reload <-chan time.Time
		for {
			select {
			case ev := <-watcher.Event:
				if ev.Name == romFile && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				glog.Warningf("dev: watcher: %v", err)
			case <-reload:
				reload = nil
				rom, err := os.ReadFile(romFile)
				if err != nil {
					glog.Warningf("dev: %v", err)
					break
				}
				glog.V(1).Infof("dev: reset %s", filepath.Base(romFile))
				if err := runner.Swap(rom); err == host.ErrStopped {
					return
				} else if err != nil {
					glog.Warningf("dev: %v", err)
					break
				}
				if d != nil {
					d.setROM(rom)
					d.logf("reloaded %s", filepath.Base(romFile))
				}
			}
		}
	}()

	return runner.Run(rom)
}
