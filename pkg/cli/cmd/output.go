package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rzbill/cse/pkg/payload"
	"github.com/rzbill/cse/pkg/types"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// palette holds the colors of one command's output. Colors are off unless the
// output is a terminal.
type palette struct {
	added   *color.Color
	removed *color.Color
	heading *color.Color
	muted   *color.Color
	err     *color.Color
}

func newPalette(w io.Writer) *palette {
	p := &palette{
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		heading: color.New(color.FgCyan, color.Bold),
		muted:   color.New(color.FgHiBlack),
		err:     color.New(color.FgRed, color.Bold),
	}
	enabled := isTerminal(w)
	for _, c := range []*color.Color{p.added, p.removed, p.heading, p.muted, p.err} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func errorPrefix() string {
	return newPalette(os.Stderr).err.Sprint("Error: ")
}

// hasYAMLExtension checks whether a file name ends in .yaml or .yml.
func hasYAMLExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// readDocument reads a JSON or YAML file and returns it as JSON. "-" reads stdin.
func readDocument(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if hasYAMLExtension(path) || !json.Valid(data) {
		return payload.YAMLToJSON(data)
	}
	return data, nil
}

// isEnvelope reports whether a JSON document is a stored cluster entity rather
// than a request payload.
func isEnvelope(data []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, ok := probe["entityType"]
	return ok
}

// readEntity reads a cluster entity envelope from a JSON or YAML file.
func readEntity(path string, stdin io.Reader) (*types.ClusterEntity, error) {
	data, err := readDocument(path, stdin)
	if err != nil {
		return nil, err
	}
	entity := &types.ClusterEntity{}
	if err := json.Unmarshal(data, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// readEntityOrPayload accepts either a cluster entity envelope or a request
// payload and returns an envelope.
func readEntityOrPayload(path string, stdin io.Reader) (*types.ClusterEntity, error) {
	data, err := readDocument(path, stdin)
	if err != nil {
		return nil, err
	}
	if isEnvelope(data) {
		entity := &types.ClusterEntity{}
		if err := json.Unmarshal(data, entity); err != nil {
			return nil, err
		}
		return entity, nil
	}
	req, err := payload.Decode(data)
	if err != nil {
		return nil, err
	}
	return types.NewClusterEntity(req.Entity), nil
}

// writeDocument writes v as json or yaml.
func writeDocument(w io.Writer, v interface{}, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		// round trip through JSON so yaml keys follow the json tags
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
