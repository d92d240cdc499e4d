package host

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/gowebpki/jcs"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mcoot/versusleague/internal/dependencies/clock"
	"github.com/mcoot/versusleague/internal/model"
)

const schemaBaseURL = "https://versusleague.local/schemas"

// Catalog holds deployed modules keyed by their content reference
type Catalog struct {
	mu      sync.RWMutex
	modules map[model.ModuleRef]*deployedModule
	clock   clock.Clock
}

type deployedModule struct {
	info      model.ModuleInfo
	version   *semver.Version
	contracts map[string]*deployedContract
}

type deployedContract struct {
	name        string
	init        *deployedEntrypoint
	entrypoints map[string]*deployedEntrypoint
}

type deployedEntrypoint struct {
	Entrypoint
	schema *jsonschema.Schema
}

// NewCatalog creates an empty catalog
func NewCatalog(clk clock.Clock) *Catalog {
	return &Catalog{
		modules: make(map[model.ModuleRef]*deployedModule),
		clock:   clk,
	}
}

type moduleDescriptor struct {
	Name      string               `json:"name"`
	Version   string               `json:"version"`
	Contracts []contractDescriptor `json:"contracts"`
}

type contractDescriptor struct {
	Name        string                 `json:"name"`
	Init        entrypointDescriptor   `json:"init"`
	Entrypoints []entrypointDescriptor `json:"entrypoints"`
}

type entrypointDescriptor struct {
	Name   string `json:"name"`
	Mode   string `json:"mode"`
	Schema string `json:"schema,omitempty"`
}

func describeEntrypoint(e Entrypoint) entrypointDescriptor {
	return entrypointDescriptor{Name: e.Name, Mode: e.Mode.String(), Schema: e.ParamSchema}
}

// ModuleRefOf computes the reference of a module: the hex SHA-256 of its
// descriptor in RFC 8785 canonical form
func ModuleRefOf(m Module) (model.ModuleRef, error) {
	desc := moduleDescriptor{Name: m.Name, Version: m.Version}
	for _, c := range m.Contracts {
		cd := contractDescriptor{Name: c.Name, Init: describeEntrypoint(c.Init)}
		for _, e := range c.Entrypoints {
			cd.Entrypoints = append(cd.Entrypoints, describeEntrypoint(e))
		}
		sort.Slice(cd.Entrypoints, func(i, j int) bool { return cd.Entrypoints[i].Name < cd.Entrypoints[j].Name })
		desc.Contracts = append(desc.Contracts, cd)
	}
	sort.Slice(desc.Contracts, func(i, j int) bool { return desc.Contracts[i].Name < desc.Contracts[j].Name })

	raw, err := json.Marshal(desc)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize module descriptor: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return model.ModuleRef(hex.EncodeToString(sum[:])), nil
}

// Deploy validates a module, compiles its parameter schemas and registers
// it. Deploying an identical module again returns the existing reference.
func (c *Catalog) Deploy(m Module) (model.ModuleRef, error) {
	version, err := semver.NewVersion(m.Version)
	if err != nil {
		return "", fmt.Errorf("invalid module version %q: %w", m.Version, err)
	}
	ref, err := ModuleRefOf(m)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.modules[ref]; exists {
		return ref, nil
	}

	dm := &deployedModule{
		info: model.ModuleInfo{
			Ref:        ref,
			Version:    version.String(),
			DeployedAt: c.clock.Now(),
		},
		version:   version,
		contracts: make(map[string]*deployedContract, len(m.Contracts)),
	}
	for _, contract := range m.Contracts {
		if contract.Name == "" {
			return "", fmt.Errorf("module %s: contract name is required", m.Name)
		}
		if _, dup := dm.contracts[contract.Name]; dup {
			return "", fmt.Errorf("module %s: duplicate contract %q", m.Name, contract.Name)
		}
		dc, err := compileContract(m.Name, contract)
		if err != nil {
			return "", err
		}
		dm.contracts[contract.Name] = dc
		dm.info.Contracts = append(dm.info.Contracts, contract.Name)
	}
	sort.Strings(dm.info.Contracts)

	c.modules[ref] = dm
	return ref, nil
}

func compileContract(moduleName string, contract Contract) (*deployedContract, error) {
	if contract.Init.Handler == nil {
		return nil, fmt.Errorf("contract %s: init handler is required", contract.Name)
	}
	init := contract.Init
	init.Mode = ModeMutable
	if init.Name == "" {
		init.Name = "init"
	}
	initEntry, err := compileEntrypoint(moduleName, contract.Name, init)
	if err != nil {
		return nil, err
	}

	dc := &deployedContract{
		name:        contract.Name,
		init:        initEntry,
		entrypoints: make(map[string]*deployedEntrypoint, len(contract.Entrypoints)),
	}
	for _, e := range contract.Entrypoints {
		if e.Name == "" || e.Handler == nil {
			return nil, fmt.Errorf("contract %s: entrypoint needs a name and a handler", contract.Name)
		}
		if _, dup := dc.entrypoints[e.Name]; dup {
			return nil, fmt.Errorf("contract %s: duplicate entrypoint %q", contract.Name, e.Name)
		}
		de, err := compileEntrypoint(moduleName, contract.Name, e)
		if err != nil {
			return nil, err
		}
		dc.entrypoints[e.Name] = de
	}
	return dc, nil
}

func compileEntrypoint(moduleName, contractName string, e Entrypoint) (*deployedEntrypoint, error) {
	de := &deployedEntrypoint{Entrypoint: e}
	if strings.TrimSpace(e.ParamSchema) == "" {
		return de, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	schemaURL := fmt.Sprintf("%s/%s/%s/%s.schema.json", schemaBaseURL, moduleName, contractName, e.Name)
	if err := compiler.AddResource(schemaURL, strings.NewReader(e.ParamSchema)); err != nil {
		return nil, fmt.Errorf("load schema for %s.%s: %w", contractName, e.Name, err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s.%s: %w", contractName, e.Name, err)
	}
	de.schema = schema
	return de, nil
}

func (c *Catalog) lookup(ref model.ModuleRef) (*deployedModule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[ref]
	return m, ok
}

// Module returns the description of a deployed module
func (c *Catalog) Module(ref model.ModuleRef) (model.ModuleInfo, bool) {
	m, ok := c.lookup(ref)
	if !ok {
		return model.ModuleInfo{}, false
	}
	return m.info, true
}

// List returns every deployed module ordered by version
func (c *Catalog) List() []model.ModuleInfo {
	c.mu.RLock()
	mods := make([]*deployedModule, 0, len(c.modules))
	for _, m := range c.modules {
		mods = append(mods, m)
	}
	c.mu.RUnlock()

	sort.Slice(mods, func(i, j int) bool {
		if mods[i].version.Equal(mods[j].version) {
			return mods[i].info.Ref < mods[j].info.Ref
		}
		return mods[i].version.LessThan(mods[j].version)
	})
	out := make([]model.ModuleInfo, len(mods))
	for i, m := range mods {
		out[i] = m.info
	}
	return out
}

func (e *deployedEntrypoint) validate(param []byte) error {
	if e.schema == nil {
		return nil
	}
	if len(param) == 0 {
		return fmt.Errorf("%w: parameter is required", model.ErrParse)
	}
	dec := json.NewDecoder(bytes.NewReader(param))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("%w: %v", model.ErrParse, err)
	}
	if err := e.schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", model.ErrParse, err)
	}
	return nil
}
