package modelgen

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Config holds all configuration for a generator run.
type Config struct {
	ConfigFile  string // Path to sqlmodel.yml or sqlmodel.toml
	Dir         string // Package directory; defaults to the config file's directory
	Output      string // Overrides the output file name from the config file
	PackageName string // Overrides the package name
	Logger      *slog.Logger
}

// Run executes the full generation pipeline and returns the path of the
// written file. Nothing is written when any model fails to derive.
func Run(cfg Config) (string, error) {
	path, out, err := render(cfg)
	if err != nil {
		return "", err
	}

	// 5. Write the file.
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	logger(cfg).Info("generated", "file", path)
	return path, nil
}

// render runs every step up to writing and returns the output path and the
// formatted source.
func render(cfg Config) (string, []byte, error) {
	log := logger(cfg)

	// 1. Load configuration.
	fileCfg, err := LoadConfig(cfg.ConfigFile)
	if err != nil {
		return "", nil, fmt.Errorf("loading config: %w", err)
	}
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Dir(cfg.ConfigFile)
	}
	output := fileCfg.Output
	if cfg.Output != "" {
		output = cfg.Output
	}

	// 2. Parse the package and derive the selected models.
	include, err := fileCfg.modelFilter()
	if err != nil {
		return "", nil, fmt.Errorf("loading config: %w", err)
	}
	src, err := ParseDir(dir, output, include)
	if err != nil {
		return "", nil, fmt.Errorf("deriving models: %w", err)
	}
	log.Debug("parsed package", "dir", dir, "package", src.Package, "models", len(src.Records))

	// 3. Resolve schemas against the derived models.
	schemas, records, err := resolve(fileCfg, src)
	if err != nil {
		return "", nil, fmt.Errorf("resolving schemas: %w", err)
	}

	// 4. Render.
	pkg := src.Package
	if fileCfg.Package != "" {
		pkg = fileCfg.Package
	}
	if cfg.PackageName != "" {
		pkg = cfg.PackageName
	}
	var buf bytes.Buffer
	if err := Emit(&buf, pkg, records, schemas); err != nil {
		return "", nil, fmt.Errorf("rendering %s: %w", output, err)
	}

	log.Debug("rendered", "output", output, "models", len(records), "schemas", len(schemas))
	return filepath.Join(dir, output), buf.Bytes(), nil
}

func logger(cfg Config) *slog.Logger {
	if cfg.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.Logger
}

// resolve orders records by first use in a schema, followed by selected
// records no schema lists, in source order.
func resolve(cfg *FileConfig, src *Source) ([]*Schema, []*Record, error) {
	var records []*Record
	emitted := make(map[string]bool)
	add := func(r *Record) {
		if !emitted[r.TypeName] {
			emitted[r.TypeName] = true
			records = append(records, r)
		}
	}

	schemas := make([]*Schema, 0, len(cfg.Schemas))
	for _, sc := range cfg.Schemas {
		if _, clash := src.Records[sc.Name]; clash {
			return nil, nil, fmt.Errorf("schema %q has the name of a model", sc.Name)
		}
		s := &Schema{Name: sc.Name}
		tables := make(map[string]bool, len(sc.Models))
		for _, name := range sc.Models {
			r, ok := src.Records[name]
			if !ok {
				return nil, nil, fmt.Errorf("schema %q: model %q not found or not selected", sc.Name, name)
			}
			if tables[r.Model.Table] {
				return nil, nil, fmt.Errorf("schema %q: table %q listed twice", sc.Name, r.Model.Table)
			}
			tables[r.Model.Table] = true
			s.Records = append(s.Records, r)
			add(r)
		}
		schemas = append(schemas, s)
	}
	for _, name := range src.Order {
		add(src.Records[name])
	}
	return schemas, records, nil
}
