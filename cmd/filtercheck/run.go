package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/BarkinBalci/insight-query-service/internal/dto"
	"github.com/BarkinBalci/insight-query-service/internal/entity"
	"github.com/BarkinBalci/insight-query-service/internal/logger"
	"github.com/BarkinBalci/insight-query-service/internal/properties"
)

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}

	log, err := logger.New("development",
		logger.WithService("filtercheck"),
		logger.WithLevel(options.LogLevel),
		logger.WithOutputs("stderr"))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	input, err := readInput(options.File, options.Format, stdin)
	if err != nil {
		return err
	}

	var result interface{}
	switch options.Mode {
	case "entity":
		props, err := properties.ParseEntity(input)
		if err != nil {
			return err
		}
		if props == nil {
			props = []properties.PropertyFilter{}
		}
		log.Debug("Normalized entity filters",
			zap.Int("leaves", len(props)),
			zap.Strings("unknown", unknownTypes(props)))
		result = dto.NormalizeEntityFiltersResponse{Properties: props}
	case "compare":
		result, err = compare(options, input, log)
		if err != nil {
			return err
		}
	default:
		group, err := properties.ParseGlobal(input)
		if err != nil {
			return err
		}
		if group != nil {
			leaves := group.Leaves()
			log.Debug("Normalized global filters",
				zap.String("shape", classify(input).String()),
				zap.Int("leaves", len(leaves)),
				zap.Strings("unknown", unknownTypes(leaves)))
		}
		result = dto.NormalizeFiltersResponse{Properties: group}
	}

	return write(stdout, result, options.Indent)
}

func compare(options *Options, input []byte, log *zap.Logger) (*dto.CompareEntitiesResponse, error) {
	if options.Against == "" {
		return nil, errors.New("compare mode requires --against")
	}
	other, err := readInput(options.Against, options.Format, nil)
	if err != nil {
		return nil, err
	}

	var a, b entity.Entity
	if err := json.Unmarshal(input, &a); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", options.File, err)
	}
	if err := json.Unmarshal(other, &b); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", options.Against, err)
	}

	cache, err := entity.NewSignatureCache(options.CacheSize)
	if err != nil {
		return nil, err
	}
	comparator := entity.NewComparator(cache)

	equal, err := comparator.Equal(&a, &b)
	if err != nil {
		return nil, err
	}
	aSupersetOfB, err := comparator.IsSuperset(&a, &b)
	if err != nil {
		return nil, err
	}
	bSupersetOfA, err := comparator.IsSuperset(&b, &a)
	if err != nil {
		return nil, err
	}

	log.Debug("Compared entities",
		zap.Strings("a", comparator.SortedSignatures(a.Properties)),
		zap.Strings("b", comparator.SortedSignatures(b.Properties)))

	return &dto.CompareEntitiesResponse{
		Equal:        equal,
		ASupersetOfB: aSupersetOfB,
		BSupersetOfA: bSupersetOfA,
	}, nil
}

// unknownTypes lists the leaf types passed through without a dedicated rule
func unknownTypes(leaves []properties.PropertyFilter) []string {
	var out []string
	for _, leaf := range leaves {
		if !leaf.Type.Known() {
			out = append(out, string(leaf.Type))
		}
	}
	return out
}

// readInput loads a file or stdin and returns it as JSON
func readInput(path, format string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		if stdin == nil {
			return nil, errors.New("no input file given")
		}
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}
	if format == "json" {
		return data, nil
	}

	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml to json: %w", err)
	}
	return out, nil
}

func classify(input []byte) properties.Shape {
	v, err := properties.Parse(input)
	if err != nil {
		return properties.ShapeInvalid
	}
	return properties.Classify(v)
}

func write(w io.Writer, v interface{}, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
