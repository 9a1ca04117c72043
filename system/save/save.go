package save

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	"github.com/skratchdot/open-golang/open"

	"github.com/pidgy/drafthud/core/global"
	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/region"
	"github.com/pidgy/drafthud/core/stats"
)

var (
	Directory = fmt.Sprintf("%d_%02d_%02d_%02d_%02d", now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute())

	// Root is the top level directory for everything saved by the process.
	Root = filepath.Join(global.WorkingDirectory(), "saved")

	images = "img"
	logs   = "log"

	now = time.Now()

	logfile = fmt.Sprintf("drafthud_%d.log", time.Now().Unix())

	cpu, ram *os.File

	mutex sync.Mutex
)

// Artifact writes the before and after images of one text isolation step,
// tagged by ident, and returns the file names written.
func Artifact(ident string, before, after image.Image) ([]string, error) {
	dir, err := createAllIfNotExist()
	if err != nil {
		return nil, err
	}

	ident = strings.NewReplacer("/", "-", `\`, "-", " ", "-").Replace(ident)

	files := []string{}
	for suffix, img := range map[string]image.Image{"before": before, "after": after} {
		if img == nil {
			continue
		}

		b, err := region.Encode(img)
		if err != nil {
			return files, err
		}

		file := filepath.Join(dir, images, fmt.Sprintf("%s-%s.png", ident, suffix))

		err = os.WriteFile(file, b, 0644)
		if err != nil {
			return files, err
		}

		files = append(files, file)
	}

	return files, nil
}

// Dir returns the directory of the current session.
func Dir() string {
	return filepath.Join(Root, Directory)
}

func Logs() {
	dir, err := createAllIfNotExist()
	if err != nil {
		notify.Error("[Save] Failed to create %s directory (%v)", Directory, err)
		return
	}

	f, err := os.OpenFile(filepath.Join(dir, logs, logfile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		notify.Error("[Save] Failed to open log file in %s (%v)", Directory, err)
		return
	}
	defer f.Close()

	for _, p := range notify.Feeds() {
		_, err := f.WriteString(fmt.Sprintf("%s\n", p.String()))
		if err != nil {
			notify.Error("[Save] Failed to write event logs in %s (%v)", Directory, err)
		}
	}

	for _, line := range stats.Lines() {
		_, err := f.WriteString(fmt.Sprintf("%s\n", line))
		if err != nil {
			notify.Error("[Save] Failed to append statistic logs in %s (%v)", Directory, err)
		}
	}
}

func Open() error {
	d, err := createAllIfNotExist()
	if err != nil {
		notify.Error("[Save] Failed to create \"%s/\" (%v)", Directory, err)
		return err
	}

	return open.Run(d)
}

func ProfileStart() {
	var err error

	cpu, err = os.Create("cpu.prof")
	if err != nil {
		notify.Error("[Save] Failed to create CPU profile (%v)", err)
		return
	}

	err = pprof.StartCPUProfile(cpu)
	if err != nil {
		notify.Error("[Save] Failed to start CPU profile (%v)", err)
		return
	}

	ram, err = os.Create("mem.prof")
	if err != nil {
		notify.Error("[Save] Failed to create RAM profile (%v)", err)
		return
	}

	runtime.GC()

	err = pprof.WriteHeapProfile(ram)
	if err != nil {
		notify.Error("[Save] Failed to write RAM profile (%v)", err)
		return
	}
}

func ProfileStop() {
	if cpu == nil {
		return
	}

	pprof.StopCPUProfile()
	cpu.Close()
	ram.Close()
}

func createAllIfNotExist() (string, error) {
	mutex.Lock()
	defer mutex.Unlock()

	d := Dir()

	for _, subdir := range []string{images, logs} {
		err := os.MkdirAll(filepath.Join(d, subdir), 0755)
		if err != nil {
			return "", err
		}
	}

	return d, nil
}
