package global

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	Title           = "DraftHUD"
	TitleAndVersion = Title + " " + Version
	Version         = "v" + VersionSemVer
	VersionSemVer   = "1.2.0"
	AssetDirectory  = `assets`
)

var (
	DebugMode = strings.Contains(strings.ToLower(os.Args[0]), "debug")
	Uptime    = time.Now()

	dir = ""
)

// WorkingDirectory returns the directory of the running executable, falling back
// to the process working directory when the executable cannot be resolved.
func WorkingDirectory() string {
	if dir != "" {
		return dir
	}

	e, err := os.Executable()
	if err != nil {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		dir = wd
		return dir
	}
	dir = filepath.Dir(e)

	return dir
}

func Assets() string {
	return filepath.Join(WorkingDirectory(), AssetDirectory)
}

func VersionDash() string {
	return strings.ReplaceAll(Version, ".", "-")
}
