// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package logging

import "github.com/rs/zerolog"

// LeveledLogger adapts zerolog to the key/value leveled logger interface
// used by go-retryablehttp. Info is demoted to debug; retryablehttp logs
// every request at info.
type LeveledLogger struct {
	logger zerolog.Logger
}

// NewLeveledLogger returns a LeveledLogger tagged with component.
func NewLeveledLogger(component string) LeveledLogger {
	return LeveledLogger{logger: WithComponent(component)}
}

func (l LeveledLogger) Error(msg string, kv ...interface{}) { l.log(l.logger.Error(), msg, kv) }
func (l LeveledLogger) Warn(msg string, kv ...interface{})  { l.log(l.logger.Warn(), msg, kv) }
func (l LeveledLogger) Info(msg string, kv ...interface{})  { l.log(l.logger.Debug(), msg, kv) }
func (l LeveledLogger) Debug(msg string, kv ...interface{}) { l.log(l.logger.Debug(), msg, kv) }

func (l LeveledLogger) log(event *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, kv[i+1])
	}
	event.Msg(msg)
}
