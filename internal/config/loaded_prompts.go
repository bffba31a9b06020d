package config

import (
	"sync"
)

var (
	loadedPrompts   LoadedPrompts
	loadedPromptsMu sync.RWMutex
)

// LoadedPrompts holds prompt content loaded from external files.
// The prompt watcher replaces these at runtime, so access goes
// through the mutex-guarded accessors below.
type LoadedPrompts struct {
	SystemPrompt string
	UserPrompt   string
}

func getLoadedPrompts() LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

func setLoadedPrompts(p LoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = p
}
