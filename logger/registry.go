package logger

import (
	"slices"
	"sync"
)

// stages maps a pipeline stage name to its *Logger.
var stages sync.Map

// Register makes l the logger for the named stage, replacing any earlier one.
func Register(stage string, l *Logger) {
	stages.Store(stage, l)
}

// Get returns the logger registered for stage, or the global logger tagged
// with the stage as its component.
func Get(stage string) *Logger {
	if l, ok := stages.Load(stage); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(stage)
}

// RegisterStages derives one component logger per stage from base and
// registers it. A nil base uses the global logger.
func RegisterStages(base *Logger, names ...string) {
	if base == nil {
		base = GetGlobalLogger()
	}
	for _, name := range names {
		Register(name, base.WithComponent(name))
	}
}

// Stages lists the registered stage names in sorted order.
func Stages() []string {
	var names []string
	stages.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	slices.Sort(names)
	return names
}
