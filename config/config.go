package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/ZacxDev/stepsim/fs"
	"github.com/ZacxDev/stepsim/step"
	"github.com/pkg/errors"
	"go.starlark.net/starlark"
)

const (
	DefaultWorkers  = 5
	DefaultOverhead = 60
)

// Config is the caller-supplied surface of a simulation run.
type Config struct {
	Workers  int            `toml:"workers"`
	BaseCost int            `toml:"base_cost"`
	Overhead int            `toml:"overhead"`
	Costs    map[string]int `toml:"costs"`

	// set when a Starlark config defines cost(id)
	costHook starlark.Callable
	thread   *starlark.Thread
}

// Default returns the settings of the canonical puzzle: five workers and
// 60 extra time units per step.
func Default() *Config {
	return &Config{
		Workers:  DefaultWorkers,
		Overhead: DefaultOverhead,
	}
}

func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Overhead < 0 {
		return errors.Errorf("overhead must not be negative, got %d", c.Overhead)
	}
	if c.BaseCost < 0 {
		return errors.Errorf("base_cost must not be negative, got %d", c.BaseCost)
	}
	for id, cost := range c.Costs {
		if cost <= 0 {
			return errors.Errorf("cost of step %s must be positive, got %d", id, cost)
		}
	}
	return nil
}

// HasCostHook reports whether costs come from a Starlark cost(id) function.
func (c *Config) HasCostHook() bool {
	return c.costHook != nil
}

// CostFunc resolves step costs: the Starlark cost(id) hook if one was
// defined, otherwise the per-step table with the alphabet cost as fallback.
func (c *Config) CostFunc() step.CostFunc {
	if c.costHook != nil {
		return c.starlarkCost
	}

	fallback := step.AlphabetCost(c.BaseCost)
	return func(id string) int {
		if cost, ok := c.Costs[id]; ok {
			return cost
		}
		return fallback(id)
	}
}

// starlarkCost returns 0 on failure, which the scheduler rejects as an
// invalid cost before simulating.
func (c *Config) starlarkCost(id string) int {
	v, err := starlark.Call(c.thread, c.costHook, starlark.Tuple{starlark.String(id)}, nil)
	if err != nil {
		log.Printf("Error evaluating cost(%q): %v", id, err)
		return 0
	}
	n, err := starlark.AsInt32(v)
	if err != nil {
		log.Printf("Error evaluating cost(%q): %v", id, err)
		return 0
	}
	return n
}

// Load reads a .star or .toml config. Keys that are not set keep their
// default values.
func Load(fsys fs.FileSystem, filename string) (*Config, error) {
	data, err := fsys.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", filename)
	}

	var cfg *Config
	switch ext := filepath.Ext(filename); ext {
	case ".star":
		cfg, err = ParseStarlarkConfig(fsys, filename, data)
	case ".toml":
		cfg, err = ParseTOMLConfig(data)
	default:
		return nil, errors.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", filename)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", filename)
	}
	return cfg, nil
}

func ParseTOMLConfig(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	return cfg, nil
}

// ModuleCache is used to store loaded Starlark modules
type ModuleCache struct {
	modules map[string]starlark.StringDict
	mutex   sync.RWMutex
}

// NewModuleCache creates a new ModuleCache
func NewModuleCache() *ModuleCache {
	return &ModuleCache{
		modules: make(map[string]starlark.StringDict),
	}
}

// Get retrieves a module from the cache
func (mc *ModuleCache) Get(key string) (starlark.StringDict, bool) {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	module, ok := mc.modules[key]
	return module, ok
}

// Set stores a module in the cache
func (mc *ModuleCache) Set(key string, module starlark.StringDict) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.modules[key] = module
}

// moduleLoader resolves load() statements relative to the loading file and
// reads them through fsys, executing each module once.
func moduleLoader(fsys fs.FileSystem) func(*starlark.Thread, string) (starlark.StringDict, error) {
	return func(thread *starlark.Thread, module string) (starlark.StringDict, error) {
		cache := thread.Local("moduleCache").(*ModuleCache)

		filename := module
		if !filepath.IsAbs(filename) {
			filename = filepath.Join(filepath.Dir(thread.Name), filename)
		}

		if cachedModule, ok := cache.Get(filename); ok {
			return cachedModule, nil
		}

		src, err := fsys.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		child := &starlark.Thread{Name: filename, Load: thread.Load}
		child.SetLocal("moduleCache", cache)
		globals, err := starlark.ExecFile(child, filename, src, nil)
		if err != nil {
			return nil, err
		}

		cache.Set(filename, globals)
		return globals, nil
	}
}

// ParseStarlarkConfig executes a Starlark file that defines a global
// `config` dict and, optionally, a `cost(id)` function.
func ParseStarlarkConfig(fsys fs.FileSystem, filename string, src []byte) (*Config, error) {
	thread := &starlark.Thread{
		Name: filename,
		Load: moduleLoader(fsys),
	}
	thread.SetLocal("moduleCache", NewModuleCache())

	globals, err := starlark.ExecFile(thread, filename, src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute Starlark script")
	}

	cfg := Default()

	if configValue, ok := globals["config"]; ok {
		configDict, ok := configValue.(*starlark.Dict)
		if !ok {
			return nil, errors.New("global 'config' object is not a dictionary")
		}
		if err := parseConfigDict(cfg, configDict); err != nil {
			return nil, err
		}
	}

	if costValue, ok := globals["cost"]; ok {
		fn, ok := costValue.(starlark.Callable)
		if !ok {
			return nil, errors.Errorf("global 'cost' must be a function, got %s", costValue.Type())
		}
		cfg.costHook = fn
		cfg.thread = &starlark.Thread{Name: filename + ":cost"}
	}

	return cfg, nil
}

func parseConfigDict(cfg *Config, dict *starlark.Dict) error {
	if workers, ok, err := getIntValue(dict, "workers"); err != nil {
		return err
	} else if ok {
		cfg.Workers = workers
	}

	if base, ok, err := getIntValue(dict, "base_cost"); err != nil {
		return err
	} else if ok {
		cfg.BaseCost = base
	}

	if overhead, ok, err := getIntValue(dict, "overhead"); err != nil {
		return err
	} else if ok {
		cfg.Overhead = overhead
	}

	if costs, ok, err := getIntDict(dict, "costs"); err != nil {
		return err
	} else if ok {
		cfg.Costs = costs
	}

	return nil
}

func getIntValue(dict *starlark.Dict, key string) (int, bool, error) {
	value, found, err := dict.Get(starlark.String(key))
	if err != nil || !found {
		return 0, false, err
	}

	n, err := starlark.AsInt32(value)
	if err != nil {
		return 0, false, fmt.Errorf("expected int for key %s, got %s", key, value.Type())
	}

	return n, true, nil
}

func getIntDict(dict *starlark.Dict, key string) (map[string]int, bool, error) {
	value, found, err := dict.Get(starlark.String(key))
	if err != nil || !found {
		return nil, false, err
	}

	inner, ok := value.(*starlark.Dict)
	if !ok {
		return nil, false, fmt.Errorf("expected dict for key %s, got %s", key, value.Type())
	}

	result := make(map[string]int, inner.Len())
	for _, item := range inner.Items() {
		id, ok := item.Index(0).(starlark.String)
		if !ok {
			return nil, false, fmt.Errorf("expected string step id in %s, got %s", key, item.Index(0).Type())
		}
		n, err := starlark.AsInt32(item.Index(1))
		if err != nil {
			return nil, false, fmt.Errorf("expected int cost for step %s, got %s", id.GoString(), item.Index(1).Type())
		}
		result[id.GoString()] = n
	}

	return result, true, nil
}
