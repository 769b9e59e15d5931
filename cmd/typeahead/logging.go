package main

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/robottwo/typeahead/internal/config"
	"github.com/robottwo/typeahead/internal/core"
)

// newCompressedSink creates a compressed sink for the file named by the URL
// path. Each process writes its own file, the path with the process id
// inserted before the extension, so the keyboard and the server can log side
// by side. An existing file with a valid zstd header gets new frames appended;
// anything else is truncated.
func newCompressedSink(u *url.URL) (zap.Sink, error) {
	filePath := withPID(u.Path)

	flags := os.O_CREATE | os.O_WRONLY

	fileInfo, err := os.Stat(filePath)
	if err == nil && fileInfo.Size() > 0 {
		if isValidZstdFile(filePath) {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return nil, err
	}

	encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &compressedSink{
		file:    file,
		encoder: encoder,
	}, nil
}

// withPID turns dir/name.ext into dir/name.<pid>.ext.
func withPID(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + strconv.Itoa(os.Getpid()) + ext
}

// isValidZstdFile checks if a file starts with the zstd magic number.
func isValidZstdFile(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer func() {
		_ = file.Close()
	}()

	buf := make([]byte, 4)
	n, err := file.Read(buf)
	if err != nil || n < 4 {
		return false
	}

	return buf[0] == 0x28 && buf[1] == 0xB5 && buf[2] == 0x2F && buf[3] == 0xFD
}

// compressedSink implements zap.Sink on top of a zstd encoder.
type compressedSink struct {
	file    *os.File
	encoder *zstd.Encoder
}

// Write returns len(p) on success, not the number of compressed bytes.
func (s *compressedSink) Write(p []byte) (int, error) {
	_, err := s.encoder.Write(p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *compressedSink) Sync() error {
	if err := s.encoder.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

// Close always closes the file, even if closing the encoder fails.
func (s *compressedSink) Close() error {
	encErr := s.encoder.Close()
	fileErr := s.file.Close()

	if encErr != nil {
		return encErr
	}
	return fileErr
}

// initializeLogger logs to the compressed file in the data directory plus any
// extra zap output paths. Development builds always log at debug.
func initializeLogger(cfg *config.Config, extraOutputs ...string) (*zap.Logger, error) {
	logLevel := zap.NewAtomicLevelAt(cfg.LogLevel())
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// old logs are pruned before a new file is opened
	_ = core.RotateLogFiles()

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = append([]string{
		"zstd://" + core.LogFile(),
	}, extraOutputs...)
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}
