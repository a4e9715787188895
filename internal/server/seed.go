package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kaptinlin/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/shopcart/internal/core/catalog"
)

//go:embed seed.schema.json
var seedSchemaJSON []byte

// SeedFile is the on-disk shape of a seed catalog.
type SeedFile struct {
	Products []catalog.Product `yaml:"products"`
}

// LoadSeedFiles reads every YAML file matching pattern, validates it against
// the seed schema, and returns the products in file then document order.
// Files are visited in lexical order.
func LoadSeedFiles(pattern string) ([]catalog.Product, error) {
	schema, err := jsonschema.NewCompiler().Compile(seedSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile seed schema: %w", err)
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no seed files match %q", pattern)
	}

	var products []catalog.Product
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		file, err := parseSeed(schema, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		products = append(products, file.Products...)
	}

	return products, nil
}

func parseSeed(schema *jsonschema.Schema, data []byte) (SeedFile, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return SeedFile{}, fmt.Errorf("parse yaml: %w", err)
	}

	asJSON, err := json.Marshal(doc)
	if err != nil {
		return SeedFile{}, fmt.Errorf("convert to json: %w", err)
	}

	result := schema.ValidateJSON(asJSON)
	if !result.IsValid() {
		msgs := make([]string, 0, len(result.Errors))
		for field, e := range result.Errors {
			msgs = append(msgs, fmt.Sprintf("%v: %v", field, e))
		}
		sort.Strings(msgs)
		return SeedFile{}, fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}

	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return SeedFile{}, fmt.Errorf("decode products: %w", err)
	}
	return file, nil
}
