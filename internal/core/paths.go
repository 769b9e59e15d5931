// Package core resolves where typeahead keeps its files.
package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const appName = "typeahead"

type Paths struct {
	HomeDir       string
	DataDir       string
	ConfigDir     string
	ConfigFile    string
	LogFile       string
	AnalyticsFile string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".local", "share", appName)
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			dataDir = filepath.Join(xdg, appName)
		}
		configDir := filepath.Join(homeDir, ".config", appName)
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, appName)
		}

		defaultPaths = &Paths{
			HomeDir:       homeDir,
			DataDir:       dataDir,
			ConfigDir:     configDir,
			ConfigFile:    filepath.Join(configDir, "config.yaml"),
			LogFile:       filepath.Join(dataDir, appName+".zst"),
			AnalyticsFile: filepath.Join(dataDir, "analytics.db"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func ConfigDir() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigDir
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func AnalyticsFile() string {
	ensureDefaultPaths()
	return defaultPaths.AnalyticsFile
}

// isLogFile matches typeahead.<anything>.zst as well as typeahead.zst.
func isLogFile(name string) bool {
	return strings.HasPrefix(name, appName+".") && strings.HasSuffix(name, ".zst")
}

func CleanLogFiles() error {
	ensureDefaultPaths()

	entries, err := os.ReadDir(defaultPaths.DataDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !isLogFile(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(defaultPaths.DataDir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// maxLogFiles is how many compressed logs RotateLogFiles keeps.
const maxLogFiles = 10

// RotateLogFiles removes all but the most recently modified log files.
// It runs whenever a new log sink is opened.
func RotateLogFiles() error {
	ensureDefaultPaths()

	entries, err := os.ReadDir(defaultPaths.DataDir)
	if err != nil {
		return err
	}

	var logFiles []logFileInfo
	for _, entry := range entries {
		if entry.IsDir() || !isLogFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logFiles = append(logFiles, logFileInfo{
			path:    filepath.Join(defaultPaths.DataDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	if len(logFiles) <= maxLogFiles {
		return nil
	}

	// newest first
	sort.Slice(logFiles, func(i, j int) bool {
		return logFiles[i].modTime.After(logFiles[j].modTime)
	})

	for _, f := range logFiles[maxLogFiles:] {
		if err := os.Remove(f.path); err != nil {
			return err
		}
	}

	return nil
}

type logFileInfo struct {
	path    string
	modTime time.Time
}
