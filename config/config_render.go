package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

var (
	ErrCycleVars                 = errors.New("cycle vars")
	ErrMissingVars               = errors.New("missing vars")
	ErrUnsupportedConfigFileType = errors.New("unsupported config file type")

	// A = {{B}} is not valid TOML, it is parsed as A = "{{B:raw}}"
	bareVarRe   = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	quotedRawRe = regexp.MustCompile(`"\{\{([^}:]+):raw\}\}"`)
	rawMarkRe   = regexp.MustCompile(`\{\{([^}:]+):raw\}\}`)
)

// FileData is the content of a config file, already in TOML
type FileData struct {
	Name    string
	Content string
}

// ConfigRender merges config files, later files overriding earlier ones, and
// resolves the {{VAR}} references between values. A reference is first looked
// up in the environment as <prefix>_<VAR> (dots replaced by underscores).
type ConfigRender struct {
	FilesData     []FileData
	LookupEnvFunc func(key string) (string, bool)
	EnvPrefix     string
}

func NewConfigRender(filesData []FileData, envPrefix string) *ConfigRender {
	return &ConfigRender{
		FilesData:     filesData,
		LookupEnvFunc: os.LookupEnv,
		EnvPrefix:     envPrefix,
	}
}

// Render merges the files and resolves every var
func (c *ConfigRender) Render() (string, error) {
	merged, err := c.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return c.ResolveVars(merged)
}

// Merge returns the TOML resulting from loading every file in order. Vars are kept unresolved.
func (c *ConfigRender) Merge() (string, error) {
	k := koanf.New(".")
	for _, data := range c.FilesData {
		if err := k.Load(rawbytes.Provider([]byte(quoteVars(data.Content))), toml.Parser()); err != nil {
			log.Errorf("error loading file %s. Err:%v", data.Name, err)
			return "", fmt.Errorf("fail to load %s as toml. Err: %w", data.Name, err)
		}
	}
	marshaled, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return unquoteVars(string(marshaled)), nil
}

// ResolveVars replaces the vars of data until none is left. Each pass
// substitutes one level of indirection, a pass that changes nothing means
// the remaining vars are either undefined or depend on each other.
func (c *ConfigRender) ResolveVars(data string) (string, error) {
	maxPasses := len(c.GetVars(data)) + 1
	for pass := 0; ; pass++ {
		pending := c.GetVars(data)
		if len(pending) == 0 {
			return data, nil
		}
		values, err := definedValues(data)
		if err != nil {
			return data, err
		}
		if missing := c.missingVars(pending, values); len(missing) > 0 {
			return data, fmt.Errorf("missing vars: %v. Err: %w", missing, ErrMissingVars)
		}
		rendered := fasttemplate.ExecuteFuncString(data, startTag, endTag, func(w io.Writer, tag string) (int, error) {
			if v, ok := c.lookupEnv(tag); ok {
				return w.Write([]byte(v))
			}
			v := fmt.Sprintf("%v", values[tag])
			return w.Write([]byte(rawMarkRe.ReplaceAllString(v, startTag+"${1}"+endTag)))
		})
		if rendered == data || pass >= maxPasses {
			return data, fmt.Errorf("not resolved vars: %v. Err: %w", pending, ErrCycleVars)
		}
		data = rendered
	}
}

// GetVars returns the distinct vars referenced in configData
func (c *ConfigRender) GetVars(configData string) []string {
	tpl, err := fasttemplate.NewTemplate(configData, startTag, endTag)
	if err != nil {
		return []string{}
	}
	vars := []string{}
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if !contains(vars, tag) {
			vars = append(vars, tag)
		}
		return 0, nil
	})
	return vars
}

func (c *ConfigRender) missingVars(vars []string, values map[string]interface{}) []string {
	missing := []string{}
	for _, v := range vars {
		if _, ok := values[v]; ok {
			continue
		}
		if _, ok := c.lookupEnv(v); ok {
			continue
		}
		missing = append(missing, v)
	}
	return missing
}

func (c *ConfigRender) lookupEnv(tag string) (string, bool) {
	if c.LookupEnvFunc == nil {
		return "", false
	}
	return c.LookupEnvFunc(c.EnvPrefix + "_" + strings.ReplaceAll(tag, ".", "_"))
}

// definedValues returns the flattened values of data; values that are vars keep the {{VAR:raw}} form
func definedValues(data string) (map[string]interface{}, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(quoteVars(data))), toml.Parser()); err != nil {
		return nil, fmt.Errorf("error parsing config data. Err: %w", err)
	}
	return k.All(), nil
}

func quoteVars(data string) string {
	return bareVarRe.ReplaceAllString(data, `= "{{${1}:raw}}"`)
}

func unquoteVars(data string) string {
	return quotedRawRe.ReplaceAllString(data, startTag+"${1}"+endTag)
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func readFileToString(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser()); err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
