// Package prompts holds the default system prompts and their override
// mechanism: per-key template files or a prompts.yaml pack in a templates
// directory.
package prompts

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// PromptKey is a type for identifying specific prompts.
type PromptKey string

const (
	// KeyClarification is the key for the clarification agent system prompt.
	KeyClarification PromptKey = "Clarification"
	// KeyAnswerSynthesis is the key for the answer normalization prompt.
	KeyAnswerSynthesis PromptKey = "AnswerSynthesis"
)

// packFilename is the YAML pack overriding several prompts at once.
const packFilename = "prompts.yaml"

// promptConfig defines the default content and override filename for a prompt.
type promptConfig struct {
	defaultContent string
	filename       string
	packKey        string
}

// promptRegistry maps a PromptKey to its configuration.
var promptRegistry = map[PromptKey]promptConfig{
	KeyClarification: {
		defaultContent: ClarificationSystemPrompt,
		filename:       "clarification_prompt.txt",
		packKey:        "clarification",
	},
	KeyAnswerSynthesis: {
		defaultContent: AnswerSynthesisSystemPrompt,
		filename:       "answer_synthesis_prompt.txt",
		packKey:        "answer_synthesis",
	},
}

// Loader resolves prompts with caching. Resolution order: per-key override
// file, prompts.yaml pack, hardcoded default.
type Loader struct {
	fs           afero.Fs
	templatesDir string

	mu    sync.RWMutex
	cache map[PromptKey]string
}

// NewLoader creates a Loader over the given filesystem. templatesDir may be
// empty, in which case defaults are always returned.
func NewLoader(fs afero.Fs, templatesDir string) *Loader {
	return &Loader{
		fs:           fs,
		templatesDir: strings.TrimSpace(templatesDir),
		cache:        make(map[PromptKey]string),
	}
}

// Get returns the prompt content for a key.
func (l *Loader) Get(key PromptKey) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	l.mu.RLock()
	cached, hit := l.cache[key]
	l.mu.RUnlock()
	if hit {
		return cached, nil
	}

	content, err := l.resolve(config)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.cache[key] = content
	l.mu.Unlock()
	return content, nil
}

// Invalidate drops the cache so the next Get re-reads overrides.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cache = make(map[PromptKey]string)
	l.mu.Unlock()
}

func (l *Loader) resolve(config promptConfig) (string, error) {
	if l.templatesDir == "" {
		return config.defaultContent, nil
	}

	// 1. Per-key override file.
	overridePath := filepath.Join(l.templatesDir, config.filename)
	if exists, _ := afero.Exists(l.fs, overridePath); exists {
		content, err := afero.ReadFile(l.fs, overridePath)
		if err != nil {
			return "", fmt.Errorf("read custom prompt file at %s: %w", overridePath, err)
		}
		return string(content), nil
	}

	// 2. YAML pack.
	packPath := filepath.Join(l.templatesDir, packFilename)
	if exists, _ := afero.Exists(l.fs, packPath); exists {
		data, err := afero.ReadFile(l.fs, packPath)
		if err != nil {
			return "", fmt.Errorf("read prompt pack at %s: %w", packPath, err)
		}
		var pack map[string]string
		if err := yaml.Unmarshal(data, &pack); err != nil {
			return "", fmt.Errorf("parse prompt pack at %s: %w", packPath, err)
		}
		if content, ok := pack[config.packKey]; ok && strings.TrimSpace(content) != "" {
			return content, nil
		}
	}

	// 3. Hardcoded default.
	return config.defaultContent, nil
}
